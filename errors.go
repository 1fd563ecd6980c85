package cart

import "errors"

var (
	// ErrItemID indicates an operation received an item without an id.
	ErrItemID = errors.New("cart: item id is required")
	// ErrItemPrice indicates a first-time insert without a positive price.
	ErrItemPrice = errors.New("cart: item price is required for a new item")
	// ErrItemNotFound indicates the referenced id is absent from the cart.
	ErrItemNotFound = errors.New("cart: item not found")
	// ErrNoCart indicates FromContext found no cart on the context.
	ErrNoCart = errors.New("cart: no cart attached to context")
)
