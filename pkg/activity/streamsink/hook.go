// Package streamsink publishes cart activity events onto a watermill message
// bus so other services (analytics, abandoned-cart jobs) can consume them.
package streamsink

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/goliatone/go-cart/pkg/activity"
)

// DefaultTopic receives events when no explicit topic is configured.
const DefaultTopic = "cart.events"

// Hook adapts activity events to a watermill publisher.
type Hook struct {
	Publisher message.Publisher
	Topic     string
}

// payload is the wire shape published for each event.
type payload struct {
	ID         string         `json:"id"`
	Verb       string         `json:"verb"`
	CartID     string         `json:"cart_id"`
	ObjectType string         `json:"object_type,omitempty"`
	ObjectID   string         `json:"object_id,omitempty"`
	Channel    string         `json:"channel,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// Notify marshals the event and publishes it keyed by the event id. A nil
// publisher is a no-op so the hook can be wired unconditionally.
func (h Hook) Notify(_ context.Context, event activity.Event) error {
	if h.Publisher == nil {
		return nil
	}

	normalized := activity.NormalizeEvent(event)
	if normalized.Verb == "" || normalized.CartID == "" {
		return nil
	}

	raw, err := json.Marshal(payload{
		ID:         normalized.ID,
		Verb:       normalized.Verb,
		CartID:     normalized.CartID,
		ObjectType: normalized.ObjectType,
		ObjectID:   normalized.ObjectID,
		Channel:    normalized.Channel,
		Metadata:   normalized.Metadata,
		OccurredAt: normalized.OccurredAt,
	})
	if err != nil {
		return fmt.Errorf("streamsink: marshal event %q: %w", normalized.ID, err)
	}

	msg := message.NewMessage(normalized.ID, raw)
	msg.Metadata.Set("verb", normalized.Verb)
	msg.Metadata.Set("cart_id", normalized.CartID)

	return h.Publisher.Publish(h.topic(), msg)
}

func (h Hook) topic() string {
	if h.Topic != "" {
		return h.Topic
	}
	return DefaultTopic
}
