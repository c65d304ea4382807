package persistence

import (
	"testing"

	"github.com/arthur-debert/nedb/document"
)

func TestMemoryPersistAndLoad(t *testing.T) {
	m := NewMemory()
	done := make(chan error, 1)
	m.PersistNewState([]document.D{{"_id": "1", "a": 1.0}}, func(err error) { done <- err })
	if err := <-done; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	loaded, err := m.LoadAll()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(loaded) != 1 || loaded[0]["_id"] != "1" {
		t.Fatalf("unexpected records: %v", loaded)
	}
}
