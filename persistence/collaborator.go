// Package persistence defines the store's external persistence
// collaborator and ships two implementations: an append-only
// newline-delimited JSON log file (the default, durable backend) and an
// in-memory no-op recorder for tests and non-durable embedders.
//
// Persistence is deliberately kept outside the core (document/index/cursor/
// executor/store): the store only ever talks to the Collaborator
// interface, never to a file or a byte buffer directly.
package persistence

import "github.com/arthur-debert/nedb/document"

// Collaborator is the external persistence capability. Records are
// full documents (insert/update), tombstones ({"$$deleted": true, "_id":
// ...}), or index lifecycle markers ({"$$indexCreated": options} /
// {"$$indexRemoved": fieldName}). done's acknowledgement timing governs
// when the store's own completion signal fires.
type Collaborator interface {
	PersistNewState(records []document.D, done func(error))
}

// StorageBackend is the low-level capability a Collaborator implementation
// can use to reach durable storage. Neither JSONFile nor Memory uses it:
// JSONFile writes its log file directly.
type StorageBackend interface {
	GetItem(key string) ([]byte, bool, error)
	SetItem(key string, value []byte) error
	RemoveItem(key string) error
}

// Loader is implemented by collaborators that can replay a prior session's
// records, used by the store's loadDatabase operation.
type Loader interface {
	LoadAll() ([]document.D, error)
}
