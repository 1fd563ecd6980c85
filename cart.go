// Package cart is a persisted shopping-cart state container. A Cart owns an
// in-memory snapshot, applies every change through a pure reducer, recomputes
// derived totals in one pass, and mirrors each committed state to a pluggable
// storage adapter. Persistence failures are swallowed and logged; the
// in-memory state stays authoritative for the session.
package cart

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-cart/pkg/activity"
	"github.com/goliatone/go-cart/pkg/storage"
)

// Cart is the state container. All operations are safe for concurrent use;
// transitions are serialized by an internal lock and run to completion
// (reduce, recompute, persist) before returning.
type Cart struct {
	mu    sync.RWMutex
	cfg   cartConfig
	state Snapshot

	store   storage.Store[Snapshot]
	ref     storage.Ref
	emitter *activity.Emitter
}

// New constructs a cart. The persisted snapshot for the configured key is
// loaded once, synchronously; when none exists the cart is seeded from
// WithDefaultItems/WithMetadata and the seed is written through. A load
// failure falls back to the seed (and is logged), never to an error; the
// stored record is left untouched until the first mutation, in case a later
// reader can still salvage it.
func New(ctx context.Context, opts ...Option) (*Cart, error) {
	cfg := applyOptions(opts)

	store := cfg.store
	if store == nil {
		store = storage.NewMemoryStore[Snapshot]()
	}

	c := &Cart{
		cfg:   cfg,
		store: store,
		ref:   storage.Ref{Namespace: cfg.namespace, CartID: cfg.id},
		emitter: activity.NewEmitter(cfg.hooks, activity.Config{
			Enabled: len(cfg.hooks) > 0,
			Channel: cfg.channel,
		}),
	}

	if _, err := c.ref.Identifier(); err != nil {
		return nil, err
	}

	snapshot, _, ok, err := c.loadSnapshot(ctx)
	if ok && err == nil {
		c.state = recompute(snapshot)
		if cfg.id != "" {
			c.state.ID = cfg.id
		} else if c.state.ID == "" {
			c.state.ID = newCartID()
		}
		if c.state.Metadata == nil {
			c.state.Metadata = map[string]any{}
		}
		return c, nil
	}

	seed := Snapshot{
		ID:       cfg.id,
		Items:    cloneItems(cfg.defaultItems),
		Metadata: cloneMap(cfg.metadata),
	}
	if seed.ID == "" {
		seed.ID = newCartID()
	}
	if seed.Metadata == nil {
		seed.Metadata = map[string]any{}
	}
	for i := range seed.Items {
		if seed.Items[i].Quantity <= 0 {
			seed.Items[i].Quantity = 1
		}
	}
	c.state = recompute(seed)
	if err == nil {
		c.persist(ctx)
	}
	return c, nil
}

func (c *Cart) loadSnapshot(ctx context.Context) (Snapshot, storage.Meta, bool, error) {
	start := time.Now()
	snapshot, meta, ok, err := c.store.Load(ctx, c.ref)
	c.logStorage("load", time.Since(start), err)
	return snapshot, meta, ok, err
}

// persist writes the current state through the adapter. Failures are logged
// and swallowed: a broken store must never block cart usability.
func (c *Cart) persist(ctx context.Context) {
	meta := storage.Meta{
		SnapshotID: uuid.NewString(),
		UpdatedAt:  time.Now(),
	}
	start := time.Now()
	_, err := c.store.Save(ctx, c.ref, c.state.clone(), meta)
	c.logStorage("save", time.Since(start), err)
}

func (c *Cart) logStorage(op string, duration time.Duration, err error) {
	logger := c.cfg.storageLogger
	if logger == nil {
		logger = noopStorageLogger{}
	}
	key, _ := c.ref.Identifier()
	logger.LogStorage(StorageLogEvent{
		Op:       op,
		Key:      key,
		Duration: duration,
		Err:      err,
	})
}

// SetItems replaces the entire item collection. Quantities default to 1 when
// omitted and duplicate ids collapse last-wins, so the stored collection
// holds at most one line per id. Every item must carry an id.
func (c *Cart) SetItems(ctx context.Context, items []Item) error {
	for i := range items {
		if items[i].ID == "" {
			return ErrItemID
		}
	}

	c.mu.Lock()
	c.state = reduce(c.state, action{kind: actionSetItems, items: items})
	committed := cloneItems(c.state.Items)
	c.persist(ctx)
	c.mu.Unlock()

	if c.cfg.onSetItems != nil {
		c.cfg.onSetItems(committed)
	}
	c.emit(ctx, activity.Event{
		Verb:       activity.VerbItemsSet,
		ObjectType: "cart",
		Metadata:   map[string]any{"count": len(committed)},
	})
	return nil
}

// AddItem inserts item with the given quantity (default 1). A quantity <= 0
// is a no-op. When the id already exists the stored quantity is incremented
// instead and the update callback fires; this merge is not an error. A
// first-time insert requires a positive price.
func (c *Cart) AddItem(ctx context.Context, item Item, quantity ...int) error {
	qty := 1
	if len(quantity) > 0 {
		qty = quantity[0]
	}
	if qty <= 0 {
		return nil
	}
	if item.ID == "" {
		return ErrItemID
	}

	c.mu.Lock()
	existing, found := findItem(c.state.Items, item.ID)
	if !found {
		if item.Price <= 0 {
			c.mu.Unlock()
			return ErrItemPrice
		}
		item.Quantity = qty
		c.state = reduce(c.state, action{kind: actionAddItem, item: item})
		committed, _ := findItem(c.state.Items, item.ID)
		c.persist(ctx)
		c.mu.Unlock()

		c.notifyItemAdd(ctx, committed)
		return nil
	}

	merged := existing.Quantity + qty
	c.state = reduce(c.state, action{
		kind:  actionUpdateItem,
		id:    item.ID,
		patch: ItemPatch{Quantity: &merged},
	})
	committed, _ := findItem(c.state.Items, item.ID)
	c.persist(ctx)
	c.mu.Unlock()

	c.notifyItemUpdate(ctx, committed)
	return nil
}

// UpdateItem shallow-merges patch into the item with the given id. Returns
// ErrItemNotFound when the id is absent. A patch quantity <= 0 removes the
// item instead, preserving the positive-quantity invariant.
func (c *Cart) UpdateItem(ctx context.Context, id string, patch ItemPatch) error {
	if id == "" {
		return ErrItemID
	}
	if patch.Quantity != nil && *patch.Quantity <= 0 {
		return c.removeItem(ctx, id, true)
	}

	c.mu.Lock()
	if _, found := findItem(c.state.Items, id); !found {
		c.mu.Unlock()
		return ErrItemNotFound
	}
	c.state = reduce(c.state, action{kind: actionUpdateItem, id: id, patch: patch})
	committed, _ := findItem(c.state.Items, id)
	c.persist(ctx)
	c.mu.Unlock()

	c.notifyItemUpdate(ctx, committed)
	return nil
}

// UpdateItemQuantity overwrites the quantity for id. A quantity <= 0 removes
// the item and fires the removal callback; otherwise the item must already
// exist.
func (c *Cart) UpdateItemQuantity(ctx context.Context, id string, quantity int) error {
	if id == "" {
		return ErrItemID
	}
	if quantity <= 0 {
		return c.removeItem(ctx, id, false)
	}

	c.mu.Lock()
	if _, found := findItem(c.state.Items, id); !found {
		c.mu.Unlock()
		return ErrItemNotFound
	}
	c.state = reduce(c.state, action{
		kind:  actionUpdateItem,
		id:    id,
		patch: ItemPatch{Quantity: &quantity},
	})
	committed, _ := findItem(c.state.Items, id)
	c.persist(ctx)
	c.mu.Unlock()

	c.notifyItemUpdate(ctx, committed)
	return nil
}

// RemoveItem removes the item with the given id. Absent ids are a silent
// no-op; the removal callback fires only when an item was actually removed.
func (c *Cart) RemoveItem(ctx context.Context, id string) error {
	return c.removeItem(ctx, id, false)
}

// removeItem implements removal. When requireExisting is set an absent id is
// reported as ErrItemNotFound (UpdateItem's contract).
func (c *Cart) removeItem(ctx context.Context, id string, requireExisting bool) error {
	if id == "" {
		return ErrItemID
	}

	c.mu.Lock()
	_, found := findItem(c.state.Items, id)
	if !found {
		c.mu.Unlock()
		if requireExisting {
			return ErrItemNotFound
		}
		return nil
	}
	c.state = reduce(c.state, action{kind: actionRemoveItem, id: id})
	c.persist(ctx)
	c.mu.Unlock()

	if c.cfg.onItemRemove != nil {
		c.cfg.onItemRemove(id)
	}
	c.emit(ctx, activity.Event{
		Verb:       activity.VerbItemRemoved,
		ObjectType: "cart_item",
		ObjectID:   id,
	})
	return nil
}

// EmptyCart resets the item collection and all derived totals to zero.
// Metadata is preserved; use ClearMetadata for a full reset.
func (c *Cart) EmptyCart(ctx context.Context) error {
	c.mu.Lock()
	c.state = reduce(c.state, action{kind: actionEmptyCart})
	c.persist(ctx)
	c.mu.Unlock()

	if c.cfg.onEmptyCart != nil {
		c.cfg.onEmptyCart()
	}
	c.emit(ctx, activity.Event{
		Verb:       activity.VerbEmptied,
		ObjectType: "cart",
	})
	return nil
}

// SetMetadata replaces the metadata mapping. Items and totals are untouched.
func (c *Cart) SetMetadata(ctx context.Context, metadata map[string]any) error {
	c.mu.Lock()
	c.state = reduce(c.state, action{kind: actionSetMetadata, metadata: metadata})
	c.persist(ctx)
	c.mu.Unlock()

	c.emit(ctx, activity.Event{
		Verb:       activity.VerbMetadataSet,
		ObjectType: "cart_metadata",
	})
	return nil
}

// UpdateMetadata shallow-merges metadata into the existing mapping.
func (c *Cart) UpdateMetadata(ctx context.Context, metadata map[string]any) error {
	c.mu.Lock()
	c.state = reduce(c.state, action{kind: actionUpdateMetadata, metadata: metadata})
	c.persist(ctx)
	c.mu.Unlock()

	c.emit(ctx, activity.Event{
		Verb:       activity.VerbMetadataUpdated,
		ObjectType: "cart_metadata",
	})
	return nil
}

// ClearMetadata resets the metadata mapping to empty.
func (c *Cart) ClearMetadata(ctx context.Context) error {
	c.mu.Lock()
	c.state = reduce(c.state, action{kind: actionClearMetadata})
	c.persist(ctx)
	c.mu.Unlock()

	c.emit(ctx, activity.Event{
		Verb:       activity.VerbMetadataCleared,
		ObjectType: "cart_metadata",
	})
	return nil
}

// GetItem returns the item with the given id.
func (c *Cart) GetItem(id string) (Item, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	item, found := findItem(c.state.Items, id)
	return item, found
}

// InCart reports whether an item with the given id is present.
func (c *Cart) InCart(id string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, found := findItem(c.state.Items, id)
	return found
}

// ID returns the cart identifier.
func (c *Cart) ID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.ID
}

// Items returns a copy of the current item collection in insertion order.
func (c *Cart) Items() []Item {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return cloneItems(c.state.Items)
}

// TotalItems returns the sum of all item quantities.
func (c *Cart) TotalItems() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.TotalItems
}

// TotalUniqueItems returns the number of distinct line items.
func (c *Cart) TotalUniqueItems() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.TotalUniqueItems
}

// CartTotal returns the grand total in minor units.
func (c *Cart) CartTotal() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.CartTotal
}

// IsEmpty reports whether the cart holds no items.
func (c *Cart) IsEmpty() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.IsEmpty
}

// Metadata returns a copy of the metadata mapping.
func (c *Cart) Metadata() map[string]any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return cloneMap(c.state.Metadata)
}

// Snapshot returns a deep copy of the full cart state.
func (c *Cart) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.clone()
}

func (c *Cart) notifyItemAdd(ctx context.Context, item Item) {
	if c.cfg.onItemAdd != nil {
		c.cfg.onItemAdd(item)
	}
	c.emit(ctx, activity.Event{
		Verb:       activity.VerbItemAdded,
		ObjectType: "cart_item",
		ObjectID:   item.ID,
		Metadata:   map[string]any{"quantity": item.Quantity, "itemTotal": item.ItemTotal},
	})
}

func (c *Cart) notifyItemUpdate(ctx context.Context, item Item) {
	if c.cfg.onItemUpdate != nil {
		c.cfg.onItemUpdate(item)
	}
	c.emit(ctx, activity.Event{
		Verb:       activity.VerbItemUpdated,
		ObjectType: "cart_item",
		ObjectID:   item.ID,
		Metadata:   map[string]any{"quantity": item.Quantity, "itemTotal": item.ItemTotal},
	})
}

// emit fans the event out to configured hooks. Hook failures never abort a
// cart operation.
func (c *Cart) emit(ctx context.Context, event activity.Event) {
	if !c.emitter.Enabled() {
		return
	}
	event.CartID = c.ID()
	_ = c.emitter.Emit(ctx, event)
}

func findItem(items []Item, id string) (Item, bool) {
	for i := range items {
		if items[i].ID == id {
			return items[i].clone(), true
		}
	}
	return Item{}, false
}
