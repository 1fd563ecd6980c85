package cart

import "fmt"

// actionKind names a cart state transition. The set is closed: dispatching
// any other kind is a programmer error and panics.
type actionKind string

const (
	actionSetItems       actionKind = "SET_ITEMS"
	actionAddItem        actionKind = "ADD_ITEM"
	actionUpdateItem     actionKind = "UPDATE_ITEM"
	actionRemoveItem     actionKind = "REMOVE_ITEM"
	actionEmptyCart      actionKind = "EMPTY_CART"
	actionSetMetadata    actionKind = "SET_CART_META"
	actionUpdateMetadata actionKind = "UPDATE_CART_META"
	actionClearMetadata  actionKind = "CLEAR_CART_META"
)

// action carries the payload for one transition. Only the fields relevant to
// its kind are set.
type action struct {
	kind     actionKind
	items    []Item
	item     Item
	id       string
	patch    ItemPatch
	metadata map[string]any
}

// reduce is the cart state-transition function. It is pure: the input
// snapshot is never mutated and the returned snapshot has all derived fields
// recomputed for items-affecting actions. Metadata actions leave items and
// totals untouched.
func reduce(state Snapshot, a action) Snapshot {
	switch a.kind {
	case actionSetItems:
		// Duplicate ids collapse last-wins so the collection holds at most
		// one line per id.
		items := make([]Item, 0, len(a.items))
		index := make(map[string]int, len(a.items))
		for _, it := range a.items {
			item := it.clone()
			if item.Quantity <= 0 {
				item.Quantity = 1
			}
			if at, seen := index[item.ID]; seen {
				items[at] = item
				continue
			}
			index[item.ID] = len(items)
			items = append(items, item)
		}
		state.Items = items

	case actionAddItem:
		item := a.item.clone()
		if item.Quantity <= 0 {
			item.Quantity = 1
		}
		state.Items = append(cloneItems(state.Items), item)

	case actionUpdateItem:
		items := cloneItems(state.Items)
		for i := range items {
			if items[i].ID == a.id {
				items[i] = a.patch.apply(items[i])
			}
		}
		state.Items = items

	case actionRemoveItem:
		items := make([]Item, 0, len(state.Items))
		for i := range state.Items {
			if state.Items[i].ID == a.id {
				continue
			}
			items = append(items, state.Items[i].clone())
		}
		state.Items = items

	case actionEmptyCart:
		// Metadata survives an emptied cart; ClearMetadata is the explicit
		// reset.
		state.Items = []Item{}

	case actionSetMetadata:
		state.Metadata = cloneMap(a.metadata)
		return state

	case actionUpdateMetadata:
		metadata := cloneMap(state.Metadata)
		if metadata == nil {
			metadata = make(map[string]any, len(a.metadata))
		}
		for key, value := range a.metadata {
			metadata[key] = value
		}
		state.Metadata = metadata
		return state

	case actionClearMetadata:
		state.Metadata = map[string]any{}
		return state

	default:
		panic(fmt.Sprintf("cart: unknown action kind %q", a.kind))
	}

	return recompute(state)
}
