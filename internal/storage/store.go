// Package storage is the durable key/value replica behind the session.
package storage

import (
	"context"
	"sync"
)

// Op is a single write applied as part of a batch.
type Op struct {
	Key    string
	Value  string
	Delete bool
}

func SetOp(key, value string) Op { return Op{Key: key, Value: value} }

func DeleteOp(key string) Op { return Op{Key: key, Delete: true} }

// Store persists string values. Apply is all-or-nothing from the caller's view.
type Store interface {
	Load(ctx context.Context, keys ...string) (map[string]string, error)
	Apply(ctx context.Context, ops ...Op) error
}

// MemoryStore keeps values in process memory.
type MemoryStore struct {
	mu     sync.Mutex
	values map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (m *MemoryStore) Load(_ context.Context, keys ...string) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string]string, len(keys))
	for _, k := range keys {
		if v, ok := m.values[k]; ok {
			out[k] = v
		}
	}
	return out, nil
}

func (m *MemoryStore) Apply(_ context.Context, ops ...Op) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	applyOps(m.values, ops)
	return nil
}

// Has reports whether key is present.
func (m *MemoryStore) Has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.values[key]
	return ok
}

func applyOps(values map[string]string, ops []Op) {
	for _, op := range ops {
		if op.Delete {
			delete(values, op.Key)
			continue
		}
		values[op.Key] = op.Value
	}
}
