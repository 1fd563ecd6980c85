package storage

import (
	"encoding/json"
	"fmt"

	"github.com/goliatone/go-cart/internal/hydrate"
)

// record is the serialized envelope shared by every durable adapter: the
// snapshot payload plus storage-owned meta, written wholesale on each save.
type record struct {
	Snapshot json.RawMessage `json:"snapshot"`
	Meta     Meta            `json:"meta"`
}

func encodeRecord[T any](snapshot T, meta Meta) ([]byte, error) {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("storage: marshal snapshot: %w", err)
	}
	raw, err := json.Marshal(record{Snapshot: payload, Meta: meta})
	if err != nil {
		return nil, fmt.Errorf("storage: marshal record: %w", err)
	}
	return raw, nil
}

func decodeRecord[T any](source, key string, raw []byte) (T, Meta, error) {
	var zero T
	var rec record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return zero, Meta{}, fmt.Errorf("storage: parse record %q: %w", key, err)
	}
	decoder := hydrate.NewDecoder[T](hydrate.WithUseNumber[T]())
	snapshot, err := decoder.DecodeBytes(hydrate.Context{Key: key, Source: source}, rec.Snapshot)
	if err != nil {
		return zero, Meta{}, err
	}
	return snapshot, rec.Meta, nil
}
