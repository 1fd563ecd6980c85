package activity

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNormalizeEvent(t *testing.T) {
	event := NormalizeEvent(Event{
		Verb:   "  " + VerbItemAdded + "  ",
		CartID: " cart-1 ",
	})

	if event.ID == "" {
		t.Error("expected a generated event id")
	}
	if event.Verb != VerbItemAdded {
		t.Errorf("expected trimmed verb, got %q", event.Verb)
	}
	if event.CartID != "cart-1" {
		t.Errorf("expected trimmed cart id, got %q", event.CartID)
	}
	if event.OccurredAt.IsZero() {
		t.Error("expected a default timestamp")
	}
}

func TestNormalizeEventKeepsProvidedFields(t *testing.T) {
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	event := NormalizeEvent(Event{
		ID:         "evt-1",
		Verb:       VerbEmptied,
		CartID:     "cart-1",
		OccurredAt: at,
	})

	if event.ID != "evt-1" {
		t.Errorf("expected caller id preserved, got %q", event.ID)
	}
	if !event.OccurredAt.Equal(at) {
		t.Errorf("expected caller timestamp preserved, got %v", event.OccurredAt)
	}
}

func TestHooksNotifyFansOut(t *testing.T) {
	var got []Event
	hooks := Hooks{
		HookFunc(func(_ context.Context, event Event) error {
			got = append(got, event)
			return nil
		}),
		nil,
		HookFunc(func(_ context.Context, event Event) error {
			got = append(got, event)
			return nil
		}),
	}

	err := hooks.Notify(context.Background(), Event{Verb: VerbItemAdded, CartID: "cart-1"})
	if err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected both hooks notified, got %d", len(got))
	}
	if got[0].ID == "" || got[0].ID != got[1].ID {
		t.Error("expected one normalized event shared across hooks")
	}
}

func TestHooksNotifySkipsIncompleteEvents(t *testing.T) {
	calls := 0
	hooks := Hooks{HookFunc(func(context.Context, Event) error {
		calls++
		return nil
	})}

	hooks.Notify(context.Background(), Event{CartID: "cart-1"})
	hooks.Notify(context.Background(), Event{Verb: VerbItemAdded})
	if calls != 0 {
		t.Fatalf("expected no notifications without verb and cart id, got %d", calls)
	}
}

func TestHooksNotifyJoinsErrors(t *testing.T) {
	first := errors.New("first")
	second := errors.New("second")
	hooks := Hooks{
		HookFunc(func(context.Context, Event) error { return first }),
		HookFunc(func(context.Context, Event) error { return nil }),
		HookFunc(func(context.Context, Event) error { return second }),
	}

	err := hooks.Notify(context.Background(), Event{Verb: VerbItemRemoved, CartID: "cart-1"})
	if !errors.Is(err, first) || !errors.Is(err, second) {
		t.Fatalf("expected both errors joined, got %v", err)
	}
}

func TestEmitterDefaults(t *testing.T) {
	var got Event
	hooks := Hooks{HookFunc(func(_ context.Context, event Event) error {
		got = event
		return nil
	})}

	emitter := NewEmitter(hooks, Config{Enabled: true})
	if !emitter.Enabled() {
		t.Fatal("expected an enabled emitter")
	}
	if err := emitter.Emit(context.Background(), Event{Verb: VerbMetadataSet, CartID: "cart-1"}); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if got.Channel != "cart" {
		t.Errorf("expected default channel, got %q", got.Channel)
	}
}

func TestEmitterDisabled(t *testing.T) {
	calls := 0
	hooks := Hooks{HookFunc(func(context.Context, Event) error {
		calls++
		return nil
	})}

	emitter := NewEmitter(hooks, Config{Enabled: false})
	if emitter.Enabled() {
		t.Fatal("expected a disabled emitter")
	}
	emitter.Emit(context.Background(), Event{Verb: VerbItemAdded, CartID: "cart-1"})
	if calls != 0 {
		t.Fatalf("expected no notifications when disabled, got %d", calls)
	}

	if NewEmitter(nil, Config{Enabled: true}).Enabled() {
		t.Fatal("an emitter without hooks has nothing to do")
	}
}
