package persistence

import (
	"sync"

	"github.com/arthur-debert/nedb/document"
)

// Memory is a non-durable Collaborator that records every persisted batch
// in process memory, for tests and for embedders that don't need
// durability — the role nanostore's filesystem_mock.go/filelock_mock.go
// fakes play in its own test suite.
type Memory struct {
	mu      sync.Mutex
	records []document.D
}

// NewMemory returns an empty in-memory collaborator.
func NewMemory() *Memory {
	return &Memory{}
}

// PersistNewState appends records to the in-memory log and always succeeds.
func (m *Memory) PersistNewState(records []document.D, done func(error)) {
	m.mu.Lock()
	m.records = append(m.records, records...)
	m.mu.Unlock()
	done(nil)
}

// LoadAll returns every record recorded so far, implementing Loader.
func (m *Memory) LoadAll() ([]document.D, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]document.D, len(m.records))
	copy(out, m.records)
	return out, nil
}

// Records exposes the raw recorded batch for test assertions.
func (m *Memory) Records() []document.D {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]document.D, len(m.records))
	copy(out, m.records)
	return out
}
