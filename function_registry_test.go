package cart

import "testing"

func TestFunctionRegistry(t *testing.T) {
	registry := NewFunctionRegistry()

	err := registry.Register("double", func(args ...any) (any, error) {
		n, _ := args[0].(int)
		return n * 2, nil
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if err := registry.Register("double", func(...any) (any, error) { return nil, nil }); err == nil {
		t.Fatal("expected a duplicate registration error")
	}
	if err := registry.Register("", func(...any) (any, error) { return nil, nil }); err == nil {
		t.Fatal("expected an error for the empty name")
	}
	if err := registry.Register("nilfn", nil); err == nil {
		t.Fatal("expected an error for a nil function")
	}

	got, err := registry.Call("double", 21)
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if got != 42 {
		t.Fatalf("expected 42, got %v", got)
	}

	if _, err := registry.Call("ghost"); err == nil {
		t.Fatal("expected an error for the unregistered name")
	}
}

func TestFunctionRegistryCloneIsDetached(t *testing.T) {
	registry := NewFunctionRegistry()
	registry.Register("a", func(...any) (any, error) { return "a", nil })

	clone := registry.Clone()
	clone.Register("b", func(...any) (any, error) { return "b", nil })

	if _, err := registry.Call("b"); err == nil {
		t.Fatal("registrations on the clone must not leak back")
	}
	if _, err := clone.Call("a"); err != nil {
		t.Fatalf("clone must carry existing functions: %v", err)
	}

	names := clone.Names()
	if len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Fatalf("expected sorted names [a b], got %v", names)
	}
}

func TestProgramCache(t *testing.T) {
	cache := NewProgramCache()

	if _, ok := cache.Get("missing"); ok {
		t.Fatal("expected a miss")
	}
	cache.Set("expr", "compiled")
	got, ok := cache.Get("expr")
	if !ok || got != "compiled" {
		t.Fatalf("expected the cached value, got %v ok=%v", got, ok)
	}
	cache.Set("expr", "recompiled")
	if got, _ := cache.Get("expr"); got != "recompiled" {
		t.Fatalf("expected the latest value, got %v", got)
	}
}
