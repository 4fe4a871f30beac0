package store

import (
	"context"
	"sync"

	"stealthcompany.com/patientcare/internal/patient"
)

// MemStore keeps the collection in memory. It backs the "memory" store
// setting and the service tests.
type MemStore struct {
	mu      sync.Mutex
	records map[string]patient.Attributes
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{records: make(map[string]patient.Attributes)}
}

// Seed replaces the stored collection, bypassing the service. Intended for
// test setup.
func (m *MemStore) Seed(records map[string]patient.Attributes) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = copyRecords(records)
}

// LoadAll returns a copy of the stored collection.
func (m *MemStore) LoadAll(ctx context.Context) (map[string]patient.Attributes, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return copyRecords(m.records), nil
}

// SaveAll replaces the stored collection with a copy of records.
func (m *MemStore) SaveAll(ctx context.Context, records map[string]patient.Attributes) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = copyRecords(records)
	return nil
}

func copyRecords(in map[string]patient.Attributes) map[string]patient.Attributes {
	out := make(map[string]patient.Attributes, len(in))
	for id, attrs := range in {
		out[id] = attrs
	}
	return out
}
