package cart

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/goliatone/go-cart/pkg/activity"
	"github.com/goliatone/go-cart/pkg/storage"
)

// Item is a single product line in a cart. Price is expressed in integer
// minor units (cents). ItemTotal is derived (price × quantity) and is
// recomputed on every transition; values set by callers are overwritten.
//
// Extra carries arbitrary caller-defined fields. They survive every
// transition untouched and are flattened into the item's JSON object, so the
// persisted shape is {id, price, quantity, itemTotal, ...extras}.
type Item struct {
	ID        string
	Price     int64
	Quantity  int
	ItemTotal int64
	Extra     map[string]any
}

// reservedItemFields are keys owned by the Item struct itself. Extra entries
// under these names are dropped during marshalling so the core fields always
// win.
var reservedItemFields = map[string]struct{}{
	"id":        {},
	"price":     {},
	"quantity":  {},
	"itemTotal": {},
}

// MarshalJSON flattens Extra into the item object alongside the core fields.
func (it Item) MarshalJSON() ([]byte, error) {
	payload := make(map[string]any, len(it.Extra)+4)
	for key, value := range it.Extra {
		if _, reserved := reservedItemFields[key]; reserved {
			continue
		}
		payload[key] = value
	}
	payload["id"] = it.ID
	payload["price"] = it.Price
	payload["quantity"] = it.Quantity
	payload["itemTotal"] = it.ItemTotal
	return json.Marshal(payload)
}

// UnmarshalJSON splits a flattened item object back into core fields plus
// Extra. Numbers are decoded via json.Number so integer prices round-trip
// without float drift.
func (it *Item) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var payload map[string]any
	if err := dec.Decode(&payload); err != nil {
		return fmt.Errorf("cart: decode item: %w", err)
	}

	out := Item{}
	for key, value := range payload {
		switch key {
		case "id":
			if s, ok := value.(string); ok {
				out.ID = s
			}
		case "price":
			n, err := asInt64(value)
			if err != nil {
				return fmt.Errorf("cart: item price: %w", err)
			}
			out.Price = n
		case "quantity":
			n, err := asInt64(value)
			if err != nil {
				return fmt.Errorf("cart: item quantity: %w", err)
			}
			out.Quantity = int(n)
		case "itemTotal":
			n, err := asInt64(value)
			if err != nil {
				return fmt.Errorf("cart: item total: %w", err)
			}
			out.ItemTotal = n
		default:
			if out.Extra == nil {
				out.Extra = map[string]any{}
			}
			out.Extra[key] = value
		}
	}
	*it = out
	return nil
}

func asInt64(value any) (int64, error) {
	switch v := value.(type) {
	case json.Number:
		return v.Int64()
	case float64:
		return int64(v), nil
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case nil:
		return 0, nil
	default:
		return 0, fmt.Errorf("unexpected number type %T", value)
	}
}

// clone returns a copy of the item with a detached Extra map.
func (it Item) clone() Item {
	out := it
	out.Extra = cloneMap(it.Extra)
	return out
}

// asMap returns the flattened representation used by rule evaluators.
func (it Item) asMap() map[string]any {
	out := make(map[string]any, len(it.Extra)+4)
	for key, value := range it.Extra {
		if _, reserved := reservedItemFields[key]; reserved {
			continue
		}
		out[key] = value
	}
	out["id"] = it.ID
	out["price"] = it.Price
	out["quantity"] = it.Quantity
	out["itemTotal"] = it.ItemTotal
	return out
}

// ItemPatch is a partial item update. Nil fields are left untouched; Extra
// entries are shallow-merged over the existing ones.
type ItemPatch struct {
	Price    *int64
	Quantity *int
	Extra    map[string]any
}

// apply shallow-merges the patch into item, returning the merged copy.
func (p ItemPatch) apply(item Item) Item {
	out := item.clone()
	if p.Price != nil {
		out.Price = *p.Price
	}
	if p.Quantity != nil {
		out.Quantity = *p.Quantity
	}
	if len(p.Extra) > 0 {
		if out.Extra == nil {
			out.Extra = make(map[string]any, len(p.Extra))
		}
		for key, value := range p.Extra {
			out.Extra[key] = value
		}
	}
	return out
}

// Snapshot is the full cart state as persisted: line items, derived totals
// and caller metadata. TotalItems, TotalUniqueItems, CartTotal, IsEmpty and
// every ItemTotal are derived and never independently settable.
type Snapshot struct {
	ID               string         `json:"id"`
	Items            []Item         `json:"items"`
	TotalItems       int            `json:"totalItems"`
	TotalUniqueItems int            `json:"totalUniqueItems"`
	CartTotal        int64          `json:"cartTotal"`
	IsEmpty          bool           `json:"isEmpty"`
	Metadata         map[string]any `json:"metadata"`
}

// clone returns a deep copy of the snapshot so callers can hold it without
// aliasing the live state.
func (s Snapshot) clone() Snapshot {
	out := s
	out.Items = cloneItems(s.Items)
	out.Metadata = cloneMap(s.Metadata)
	return out
}

func cloneItems(items []Item) []Item {
	if items == nil {
		return nil
	}
	out := make([]Item, len(items))
	for i := range items {
		out[i] = items[i].clone()
	}
	return out
}

func cloneMap(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	dst := make(map[string]any, len(src))
	for key, value := range src {
		dst[key] = value
	}
	return dst
}

// Option configures a Cart during construction.
type Option func(*cartConfig)

type cartConfig struct {
	id           string
	namespace    string
	defaultItems []Item
	metadata     map[string]any

	store storage.Store[Snapshot]

	onSetItems   func([]Item)
	onItemAdd    func(Item)
	onItemUpdate func(Item)
	onItemRemove func(string)
	onEmptyCart  func()

	hooks   activity.Hooks
	channel string

	storageLogger StorageLogger

	evaluator    Evaluator
	programCache ProgramCache
	functions    *FunctionRegistry
	evalLogger   EvaluatorLogger
}

func applyOptions(opts []Option) cartConfig {
	cfg := cartConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// WithID pins the cart identifier. Explicit ids also namespace the persisted
// key, letting multiple carts coexist in one store.
func WithID(id string) Option {
	return func(cfg *cartConfig) {
		cfg.id = id
	}
}

// WithNamespace overrides the storage key namespace shared by all carts.
func WithNamespace(namespace string) Option {
	return func(cfg *cartConfig) {
		cfg.namespace = namespace
	}
}

// WithDefaultItems seeds the cart when no persisted snapshot exists. Ignored
// when the store returns a snapshot.
func WithDefaultItems(items []Item) Option {
	return func(cfg *cartConfig) {
		cfg.defaultItems = cloneItems(items)
	}
}

// WithMetadata seeds cart metadata when no persisted snapshot exists.
func WithMetadata(metadata map[string]any) Option {
	return func(cfg *cartConfig) {
		cfg.metadata = cloneMap(metadata)
	}
}

// WithStore configures the persistence adapter. Defaults to an in-memory
// store when omitted.
func WithStore(store storage.Store[Snapshot]) Option {
	return func(cfg *cartConfig) {
		cfg.store = store
	}
}

// OnSetItems registers a callback invoked after SetItems commits.
func OnSetItems(fn func([]Item)) Option {
	return func(cfg *cartConfig) {
		cfg.onSetItems = fn
	}
}

// OnItemAdd registers a callback invoked after a new item is inserted. Adding
// an existing id merges quantities and fires OnItemUpdate instead.
func OnItemAdd(fn func(Item)) Option {
	return func(cfg *cartConfig) {
		cfg.onItemAdd = fn
	}
}

// OnItemUpdate registers a callback invoked after an existing item changes.
func OnItemUpdate(fn func(Item)) Option {
	return func(cfg *cartConfig) {
		cfg.onItemUpdate = fn
	}
}

// OnItemRemove registers a callback invoked with the removed item id.
func OnItemRemove(fn func(string)) Option {
	return func(cfg *cartConfig) {
		cfg.onItemRemove = fn
	}
}

// OnEmptyCart registers a callback invoked after EmptyCart commits.
func OnEmptyCart(fn func()) Option {
	return func(cfg *cartConfig) {
		cfg.onEmptyCart = fn
	}
}

// WithActivityHooks attaches activity hooks; each committed transition is
// fanned out to them as a normalized event. Hook failures never abort cart
// operations.
func WithActivityHooks(hooks activity.Hooks) Option {
	normalized := cloneActivityHooks(hooks)
	return func(cfg *cartConfig) {
		cfg.hooks = normalized
	}
}

// WithActivityChannel overrides the default channel stamped on emitted
// events.
func WithActivityChannel(channel string) Option {
	return func(cfg *cartConfig) {
		cfg.channel = channel
	}
}

// WithStorageLogger records persistence outcomes, including the swallowed
// save failures.
func WithStorageLogger(logger StorageLogger) Option {
	return func(cfg *cartConfig) {
		if logger == nil {
			cfg.storageLogger = noopStorageLogger{}
			return
		}
		cfg.storageLogger = logger
	}
}

// WithEvaluator configures the rule evaluator used by Evaluate.
func WithEvaluator(e Evaluator) Option {
	return func(cfg *cartConfig) {
		cfg.evaluator = e
	}
}

// WithProgramCache registers a compiled-rule cache shared by evaluators.
func WithProgramCache(cache ProgramCache) Option {
	return func(cfg *cartConfig) {
		cfg.programCache = cache
	}
}

// WithFunctionRegistry configures custom functions exposed to rules.
func WithFunctionRegistry(registry *FunctionRegistry) Option {
	return func(cfg *cartConfig) {
		if registry == nil {
			return
		}
		cfg.functions = registry.Clone()
	}
}

// WithCustomFunction registers fn under name for rule evaluation.
func WithCustomFunction(name string, fn Function) Option {
	return func(cfg *cartConfig) {
		if cfg.functions == nil {
			cfg.functions = NewFunctionRegistry()
		}
		_ = cfg.functions.Register(name, fn)
	}
}

// WithEvaluatorLogger attaches a logger for rule evaluations.
func WithEvaluatorLogger(logger EvaluatorLogger) Option {
	return func(cfg *cartConfig) {
		if logger == nil {
			cfg.evalLogger = noopEvaluatorLogger{}
			return
		}
		cfg.evalLogger = logger
	}
}

func cloneActivityHooks(hooks activity.Hooks) activity.Hooks {
	if len(hooks) == 0 {
		return nil
	}
	normalized := make([]activity.Hook, 0, len(hooks))
	for _, hook := range hooks {
		if hook == nil {
			continue
		}
		normalized = append(normalized, hook)
	}
	if len(normalized) == 0 {
		return nil
	}
	return activity.Hooks(normalized)
}
