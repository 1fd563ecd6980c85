package cart

import (
	"context"
	"errors"
	"testing"
)

func TestContextRoundTrip(t *testing.T) {
	c := newTestCart(t)

	ctx := NewContext(context.Background(), c)
	got, err := FromContext(ctx)
	if err != nil {
		t.Fatalf("FromContext: %v", err)
	}
	if got != c {
		t.Fatal("expected the same container back")
	}
}

func TestFromContextMissing(t *testing.T) {
	if _, err := FromContext(context.Background()); !errors.Is(err, ErrNoCart) {
		t.Fatalf("expected ErrNoCart, got %v", err)
	}
}

func TestMustFromContextPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for a bare context")
		}
	}()
	MustFromContext(context.Background())
}
