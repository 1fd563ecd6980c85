package storage

import (
	"context"
	"sync"
)

// MemoryStore keeps serialized records in process memory. It is the default
// adapter and the one to reach for in tests. Records go through the same
// encode/decode path as the durable adapters, so round-trip behaviour matches
// production.
type MemoryStore[T any] struct {
	mu      sync.RWMutex
	records map[string][]byte
}

func NewMemoryStore[T any]() *MemoryStore[T] {
	return &MemoryStore[T]{records: map[string][]byte{}}
}

func (s *MemoryStore[T]) Load(_ context.Context, ref Ref) (T, Meta, bool, error) {
	var zero T
	key, err := ref.Identifier()
	if err != nil {
		return zero, Meta{}, false, err
	}

	s.mu.RLock()
	raw, ok := s.records[key]
	s.mu.RUnlock()
	if !ok {
		return zero, Meta{}, false, nil
	}

	snapshot, meta, err := decodeRecord[T]("memory", key, raw)
	if err != nil {
		return zero, Meta{}, false, err
	}
	return snapshot, cloneMeta(meta), true, nil
}

func (s *MemoryStore[T]) Save(_ context.Context, ref Ref, snapshot T, meta Meta) (Meta, error) {
	key, err := ref.Identifier()
	if err != nil {
		return Meta{}, err
	}
	raw, err := encodeRecord(snapshot, meta)
	if err != nil {
		return Meta{}, err
	}

	s.mu.Lock()
	s.records[key] = raw
	s.mu.Unlock()
	return cloneMeta(meta), nil
}

// Delete drops the record for ref. Missing records are not an error.
func (s *MemoryStore[T]) Delete(_ context.Context, ref Ref) error {
	key, err := ref.Identifier()
	if err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.records, key)
	s.mu.Unlock()
	return nil
}

// Len reports the number of stored records.
func (s *MemoryStore[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
