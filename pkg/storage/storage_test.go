package storage

import (
	"context"
	"testing"
	"time"
)

type fixture struct {
	Name  string         `json:"name"`
	Count int            `json:"count"`
	Tags  map[string]any `json:"tags,omitempty"`
}

func TestRefIdentifier(t *testing.T) {
	tests := []struct {
		name    string
		ref     Ref
		want    string
		wantErr bool
	}{
		{name: "defaults", ref: Ref{}, want: DefaultNamespace},
		{name: "namespace only", ref: Ref{Namespace: "shop"}, want: "shop"},
		{name: "namespace and cart", ref: Ref{Namespace: "shop", CartID: "c1"}, want: "shop/c1"},
		{name: "default namespace with cart", ref: Ref{CartID: "c1"}, want: DefaultNamespace + "/c1"},
		{name: "trims whitespace", ref: Ref{Namespace: " shop ", CartID: " c1 "}, want: "shop/c1"},
		{name: "slash in namespace", ref: Ref{Namespace: "a/b"}, wantErr: true},
		{name: "slash in cart id", ref: Ref{CartID: "a/b"}, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.ref.Identifier()
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Identifier: %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore[fixture]()
	ctx := context.Background()
	ref := Ref{Namespace: "shop", CartID: "c1"}

	if _, _, ok, err := store.Load(ctx, ref); err != nil || ok {
		t.Fatalf("expected missing record, got ok=%v err=%v", ok, err)
	}

	in := fixture{Name: "cart", Count: 3, Tags: map[string]any{"region": "eu"}}
	meta := Meta{SnapshotID: "snap-1", UpdatedAt: time.Now()}
	if _, err := store.Save(ctx, ref, in, meta); err != nil {
		t.Fatalf("Save: %v", err)
	}

	out, gotMeta, ok, err := store.Load(ctx, ref)
	if err != nil || !ok {
		t.Fatalf("Load: ok=%v err=%v", ok, err)
	}
	if out.Name != in.Name || out.Count != in.Count {
		t.Errorf("expected %+v, got %+v", in, out)
	}
	if out.Tags["region"] != "eu" {
		t.Errorf("expected tags restored, got %v", out.Tags)
	}
	if gotMeta.SnapshotID != "snap-1" {
		t.Errorf("expected meta restored, got %+v", gotMeta)
	}
}

func TestMemoryStoreDelete(t *testing.T) {
	store := NewMemoryStore[fixture]()
	ctx := context.Background()
	ref := Ref{CartID: "c1"}

	store.Save(ctx, ref, fixture{Name: "x"}, Meta{})
	if store.Len() != 1 {
		t.Fatalf("expected one record, got %d", store.Len())
	}

	if err := store.Delete(ctx, ref); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, _, ok, _ := store.Load(ctx, ref); ok {
		t.Fatal("expected the record gone")
	}
	if err := store.Delete(ctx, ref); err != nil {
		t.Fatalf("deleting a missing record must not fail: %v", err)
	}
}

func TestMemoryStoreIsolatesCallers(t *testing.T) {
	store := NewMemoryStore[fixture]()
	ctx := context.Background()
	ref := Ref{CartID: "c1"}

	in := fixture{Name: "cart", Tags: map[string]any{"a": "1"}}
	store.Save(ctx, ref, in, Meta{})
	in.Tags["a"] = "mutated"

	out, _, _, _ := store.Load(ctx, ref)
	if out.Tags["a"] != "1" {
		t.Fatalf("stored record must not share state with the caller, got %v", out.Tags)
	}
}

func TestMemoryStoreRejectsBadKeys(t *testing.T) {
	store := NewMemoryStore[fixture]()
	ctx := context.Background()

	if _, err := store.Save(ctx, Ref{CartID: "a/b"}, fixture{}, Meta{}); err == nil {
		t.Fatal("expected a key error on save")
	}
	if _, _, _, err := store.Load(ctx, Ref{Namespace: "a/b"}); err == nil {
		t.Fatal("expected a key error on load")
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	store := NewFileStore[fixture](t.TempDir())
	ctx := context.Background()
	ref := Ref{Namespace: "shop", CartID: "c1"}

	if _, _, ok, err := store.Load(ctx, ref); err != nil || ok {
		t.Fatalf("expected missing record, got ok=%v err=%v", ok, err)
	}

	in := fixture{Name: "cart", Count: 2}
	meta, err := store.Save(ctx, ref, in, Meta{SnapshotID: "snap-1"})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if meta.UpdatedAt.IsZero() {
		t.Error("expected the store to stamp UpdatedAt")
	}

	out, gotMeta, ok, err := store.Load(ctx, ref)
	if err != nil || !ok {
		t.Fatalf("Load: ok=%v err=%v", ok, err)
	}
	if out.Name != "cart" || out.Count != 2 {
		t.Errorf("expected %+v, got %+v", in, out)
	}
	if gotMeta.SnapshotID != "snap-1" {
		t.Errorf("expected meta restored, got %+v", gotMeta)
	}
}

func TestFileStoreOverwrites(t *testing.T) {
	store := NewFileStore[fixture](t.TempDir())
	ctx := context.Background()
	ref := Ref{CartID: "c1"}

	store.Save(ctx, ref, fixture{Name: "v1"}, Meta{})
	store.Save(ctx, ref, fixture{Name: "v2"}, Meta{})

	out, _, ok, err := store.Load(ctx, ref)
	if err != nil || !ok {
		t.Fatalf("Load: ok=%v err=%v", ok, err)
	}
	if out.Name != "v2" {
		t.Fatalf("expected the latest record, got %+v", out)
	}
}
