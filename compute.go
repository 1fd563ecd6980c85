package cart

// Derived-state calculators. All of them are pure: they never mutate their
// input and cost one pass over the item list.

// calculateItemTotals returns a copy of items with each ItemTotal refreshed
// to price × quantity.
func calculateItemTotals(items []Item) []Item {
	if items == nil {
		return nil
	}
	out := make([]Item, len(items))
	for i := range items {
		out[i] = items[i].clone()
		out[i].ItemTotal = out[i].Price * int64(out[i].Quantity)
	}
	return out
}

// calculateTotalItems sums the quantities of all items.
func calculateTotalItems(items []Item) int {
	total := 0
	for i := range items {
		total += items[i].Quantity
	}
	return total
}

// calculateUniqueItems counts distinct line items.
func calculateUniqueItems(items []Item) int {
	return len(items)
}

// calculateCartTotal sums price × quantity over all items.
func calculateCartTotal(items []Item) int64 {
	var total int64
	for i := range items {
		total += items[i].Price * int64(items[i].Quantity)
	}
	return total
}

// recompute refreshes every derived field on the snapshot in one pass.
func recompute(s Snapshot) Snapshot {
	s.Items = calculateItemTotals(s.Items)
	s.TotalItems = calculateTotalItems(s.Items)
	s.TotalUniqueItems = calculateUniqueItems(s.Items)
	s.CartTotal = calculateCartTotal(s.Items)
	s.IsEmpty = s.TotalUniqueItems == 0
	return s
}
