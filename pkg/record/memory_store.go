package record

import (
	"context"
	"sync"
)

// MemoryStore implements DurableStore in process memory. It exists for
// tests and development; records survive nothing.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*Record
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]*Record),
	}
}

// Get returns a deep copy of the record for sid, or ErrNotFound.
func (m *MemoryStore) Get(ctx context.Context, sid string) (*Record, error) {
	if sid == "" {
		return nil, ErrEmptySID
	}

	m.mu.RLock()
	rec, ok := m.records[sid]
	m.mu.RUnlock()

	if !ok {
		return nil, ErrNotFound
	}
	return rec.Clone(), nil
}

// Put stores a deep copy of the record.
func (m *MemoryStore) Put(ctx context.Context, r *Record) error {
	if r == nil {
		return ErrNilRecord
	}
	if r.SID == "" {
		return ErrEmptySID
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.records[r.SID] = r.Clone()
	return nil
}

// Delete removes the record for sid. Deleting a missing record is a no-op.
func (m *MemoryStore) Delete(ctx context.Context, sid string) error {
	if sid == "" {
		return ErrEmptySID
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.records, sid)
	return nil
}

// Len returns the number of stored records.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}
