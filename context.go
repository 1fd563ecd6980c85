package cart

import "context"

// The consumer accessor: a cart is attached to a context once, near the top
// of a call tree, and any nested caller can look it up without threading the
// handle through every signature. Lookup fails loudly when no cart is
// present.

type contextKey struct{}

// NewContext returns a copy of ctx carrying c.
func NewContext(ctx context.Context, c *Cart) context.Context {
	return context.WithValue(ctx, contextKey{}, c)
}

// FromContext returns the cart attached to ctx, or ErrNoCart when none is.
func FromContext(ctx context.Context) (*Cart, error) {
	if ctx == nil {
		return nil, ErrNoCart
	}
	c, ok := ctx.Value(contextKey{}).(*Cart)
	if !ok || c == nil {
		return nil, ErrNoCart
	}
	return c, nil
}

// MustFromContext is FromContext for call sites where a missing cart is a
// programming error.
func MustFromContext(ctx context.Context) *Cart {
	c, err := FromContext(ctx)
	if err != nil {
		panic(err)
	}
	return c
}
