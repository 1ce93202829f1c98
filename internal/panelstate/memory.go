package panelstate

import (
	"context"
	"sync"
)

// MemoryStore is a Store without persistence, used in tests.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

// Raw returns the stored string for targetID exactly as persisted.
func (m *MemoryStore) Raw(targetID string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[Key(targetID)]
	return v, ok
}

// SetRaw stores an arbitrary string, bypassing encoding.
func (m *MemoryStore) SetRaw(targetID, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[Key(targetID)] = value
}

func (m *MemoryStore) Load(_ context.Context, targetID string) (State, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	state, ok := Decode(m.values[Key(targetID)])
	return state, ok, nil
}

func (m *MemoryStore) Save(_ context.Context, targetID string, state State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[Key(targetID)] = state.Encode()
	return nil
}
