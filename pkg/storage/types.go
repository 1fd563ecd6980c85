package storage

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// DefaultNamespace keys the implicit shared cart when no explicit cart id is
// configured.
const DefaultNamespace = "go-cart"

// Ref identifies one persisted snapshot. An empty CartID addresses the
// shared default record for the namespace.
type Ref struct {
	Namespace string
	CartID    string
}

// Identifier returns the canonical storage key for the ref.
func (r Ref) Identifier() (string, error) {
	namespace := strings.TrimSpace(r.Namespace)
	if namespace == "" {
		namespace = DefaultNamespace
	}
	if strings.Contains(namespace, "/") {
		return "", fmt.Errorf("storage: namespace %q must not contain %q", r.Namespace, "/")
	}
	cartID := strings.TrimSpace(r.CartID)
	if cartID == "" {
		return namespace, nil
	}
	if strings.Contains(cartID, "/") {
		return "", fmt.Errorf("storage: cart id %q must not contain %q", r.CartID, "/")
	}
	return namespace + "/" + cartID, nil
}

// Meta is storage-owned bookkeeping persisted alongside a snapshot.
type Meta struct {
	SnapshotID string            `json:"snapshot_id,omitempty"`
	UpdatedAt  time.Time         `json:"updated_at,omitempty"`
	Extra      map[string]string `json:"extra,omitempty"`
}

func cloneMeta(meta Meta) Meta {
	out := meta
	if meta.Extra == nil {
		return out
	}
	out.Extra = make(map[string]string, len(meta.Extra))
	for k, v := range meta.Extra {
		out.Extra[k] = v
	}
	return out
}

// Store loads and saves one snapshot for a single ref.
//
// Load reports ok=false with a nil error when no record exists. Save
// replaces the record wholesale and returns the meta actually written.
type Store[T any] interface {
	Load(ctx context.Context, ref Ref) (snapshot T, meta Meta, ok bool, err error)
	Save(ctx context.Context, ref Ref, snapshot T, meta Meta) (Meta, error)
}
