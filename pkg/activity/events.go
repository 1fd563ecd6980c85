// Package activity fans cart transitions out to consumer hooks as normalized
// events: audit trails, analytics sinks, message buses.
package activity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Verbs stamped on cart events, one per committed transition.
const (
	VerbItemsSet        = "cart.items_set"
	VerbItemAdded       = "cart.item_added"
	VerbItemUpdated     = "cart.item_updated"
	VerbItemRemoved     = "cart.item_removed"
	VerbEmptied         = "cart.emptied"
	VerbMetadataSet     = "cart.metadata_set"
	VerbMetadataUpdated = "cart.metadata_updated"
	VerbMetadataCleared = "cart.metadata_cleared"
)

// Event describes one committed cart transition.
type Event struct {
	ID         string
	Verb       string
	CartID     string
	ObjectType string
	ObjectID   string
	Channel    string
	Metadata   map[string]any
	OccurredAt time.Time
}

// NormalizeEvent trims whitespace, detaches metadata, and ensures the event
// carries an id and a timestamp.
func NormalizeEvent(event Event) Event {
	normalized := event
	normalized.ID = strings.TrimSpace(event.ID)
	normalized.Verb = strings.TrimSpace(event.Verb)
	normalized.CartID = strings.TrimSpace(event.CartID)
	normalized.ObjectType = strings.TrimSpace(event.ObjectType)
	normalized.ObjectID = strings.TrimSpace(event.ObjectID)
	normalized.Channel = strings.TrimSpace(event.Channel)
	normalized.Metadata = cloneMap(event.Metadata)
	if normalized.ID == "" {
		normalized.ID = uuid.NewString()
	}
	if normalized.OccurredAt.IsZero() {
		normalized.OccurredAt = time.Now()
	}
	return normalized
}

func cloneMap(src map[string]any) map[string]any {
	if len(src) == 0 {
		return nil
	}
	dst := make(map[string]any, len(src))
	for key, value := range src {
		dst[key] = value
	}
	return dst
}
