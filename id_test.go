package cart

import (
	"strings"
	"testing"
)

func TestNewCartID(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		id := newCartID()
		if len(id) != cartIDLength {
			t.Fatalf("expected %d characters, got %q", cartIDLength, id)
		}
		for _, r := range id {
			if !strings.ContainsRune(cartIDAlphabet, r) {
				t.Fatalf("unexpected character %q in id %q", r, id)
			}
		}
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}
