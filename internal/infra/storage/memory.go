package storage

import (
	"context"
	"errors"
	"sync"
)

// ErrStoreUnavailable is returned by a MemoryStore that has been switched off.
var ErrStoreUnavailable = errors.New("store unavailable")

// MemoryStore is a process-local Store. It backs the server when no
// database path is configured and stands in for SQLite in tests.
type MemoryStore struct {
	mu      sync.RWMutex
	data    map[string][]byte
	failing bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

// SetFailing makes every operation return ErrStoreUnavailable, mimicking
// a disabled or full backing store.
func (m *MemoryStore) SetFailing(failing bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failing = failing
}

func (m *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.failing {
		return nil, ErrStoreUnavailable
	}
	v, ok := m.data[key]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), v...), nil
}

func (m *MemoryStore) Set(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing {
		return ErrStoreUnavailable
	}
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *MemoryStore) Remove(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing {
		return ErrStoreUnavailable
	}
	delete(m.data, key)
	return nil
}

func (m *MemoryStore) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.failing {
		return ErrStoreUnavailable
	}
	return nil
}

// MemoryEventRepository keeps the session log in memory.
type MemoryEventRepository struct {
	mu     sync.RWMutex
	events []GameEvent
}

func NewMemoryEventRepository() *MemoryEventRepository {
	return &MemoryEventRepository{}
}

func (r *MemoryEventRepository) Append(ctx context.Context, event GameEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *MemoryEventRepository) GetBySession(ctx context.Context, sessionID string) ([]GameEvent, error) {
	return r.filter(func(e GameEvent) bool { return e.SessionID == sessionID }), nil
}

func (r *MemoryEventRepository) GetByEventType(ctx context.Context, sessionID, eventType string) ([]GameEvent, error) {
	return r.filter(func(e GameEvent) bool {
		return e.SessionID == sessionID && e.EventType == eventType
	}), nil
}

func (r *MemoryEventRepository) Sessions(ctx context.Context, limit int) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool)
	var ids []string
	for i := len(r.events) - 1; i >= 0 && len(ids) < limit; i-- {
		id := r.events[i].SessionID
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (r *MemoryEventRepository) filter(keep func(GameEvent) bool) []GameEvent {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []GameEvent
	for _, e := range r.events {
		if keep(e) {
			result = append(result, e)
		}
	}
	return result
}
