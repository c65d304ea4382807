package store

import (
	"github.com/arthur-debert/nedb/document"
	"github.com/arthur-debert/nedb/index"
	"github.com/arthur-debert/nedb/storeerr"
	"github.com/arthur-debert/nedb/ttl"
)

// EnsureIndexOptions configures EnsureIndex.
type EnsureIndexOptions struct {
	FieldName string
	Unique    bool
	Sparse    bool

	// ExpireAfterSeconds, if non-nil, registers the index's field as a TTL
	// field: documents whose value at FieldName is a timestamp older than
	// ExpireAfterSeconds are dropped from read results and cascaded
	// to removal.
	ExpireAfterSeconds *float64
}

// EnsureIndex builds (or rebuilds) an index over opts.FieldName, backfilling
// it from every document currently under the _id index. A backfill failure
// (a unique violation among existing documents) discards the half-built
// index and leaves the store exactly as before.
func (s *Datastore) EnsureIndex(opts EnsureIndexOptions) error {
	return s.runTask(false, func() error {
		if opts.FieldName == "" {
			return storeerr.ErrMissingField
		}

		newIdx := index.New(opts.FieldName, opts.Unique, opts.Sparse, s.cmp)

		s.mu.RLock()
		existing := s.indexes["_id"].GetAll()
		s.mu.RUnlock()

		for _, d := range existing {
			if err := newIdx.Insert(d); err != nil {
				return err
			}
		}

		s.mu.Lock()
		s.indexes[opts.FieldName] = newIdx
		if opts.ExpireAfterSeconds != nil {
			s.ttl.Set(opts.FieldName, *opts.ExpireAfterSeconds)
		}
		s.mu.Unlock()

		return s.persistRecords([]document.D{indexCreatedRecord(opts)})
	})
}

// RemoveIndex drops a previously ensured index. The _id index cannot be
// removed.
func (s *Datastore) RemoveIndex(fieldName string) error {
	return s.runTask(false, func() error {
		if fieldName == "_id" {
			return storeerr.ErrInvalidUpdate
		}

		s.mu.Lock()
		_, existed := s.indexes[fieldName]
		delete(s.indexes, fieldName)
		s.ttl.Remove(fieldName)
		s.mu.Unlock()

		if !existed {
			return nil
		}
		return s.persistRecords([]document.D{{"$$indexRemoved": fieldName}})
	})
}

func indexCreatedRecord(opts EnsureIndexOptions) document.D {
	spec := document.D{
		"fieldName": opts.FieldName,
		"unique":    opts.Unique,
		"sparse":    opts.Sparse,
	}
	if opts.ExpireAfterSeconds != nil {
		spec["expireAfterSeconds"] = *opts.ExpireAfterSeconds
	}
	return document.D{"$$indexCreated": spec}
}

// LoadDatabase replays the persistence collaborator's log into the index
// set and transitions the executor to ready, releasing every task buffered
// before this call via the forceQueuing boot-task pattern.
func (s *Datastore) LoadDatabase() error {
	err := s.runTask(true, func() error {
		records, err := s.persist.LoadAll()
		if err != nil {
			return err
		}
		return s.replay(records)
	})
	s.exec.ProcessBuffer()
	return err
}

type indexDef struct {
	unique, sparse     bool
	expireAfterSeconds *float64
}

// replay rebuilds the index set and TTL registry from the collaborator's
// log in a single pass: index-lifecycle markers accumulate into defs (a
// later $$indexRemoved undoes an earlier $$indexCreated for the same
// field), and document records accumulate into live by _id ($$deleted
// removes). Once the log is fully folded, every live document is inserted
// into every index defs describes.
func (s *Datastore) replay(records []document.D) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	defs := map[string]indexDef{}
	live := map[interface{}]document.D{}

	for _, rec := range records {
		switch {
		case rec["$$indexCreated"] != nil:
			spec, _ := rec["$$indexCreated"].(document.D)
			field, _ := spec["fieldName"].(string)
			unique, _ := spec["unique"].(bool)
			sparse, _ := spec["sparse"].(bool)
			def := indexDef{unique: unique, sparse: sparse}
			if ea, ok := spec["expireAfterSeconds"].(float64); ok {
				def.expireAfterSeconds = &ea
			}
			defs[field] = def
		case rec["$$indexRemoved"] != nil:
			field, _ := rec["$$indexRemoved"].(string)
			delete(defs, field)
		default:
			if deleted, _ := rec["$$deleted"].(bool); deleted {
				delete(live, rec["_id"])
				continue
			}
			live[rec["_id"]] = rec
		}
	}

	s.indexes = map[string]*index.Index{"_id": index.New("_id", true, false, s.cmp)}
	s.ttl = ttl.NewRegistry()
	for field, def := range defs {
		s.indexes[field] = index.New(field, def.unique, def.sparse, s.cmp)
		if def.expireAfterSeconds != nil {
			s.ttl.Set(field, *def.expireAfterSeconds)
		}
	}

	for _, d := range live {
		for _, idx := range s.indexes {
			if err := idx.Insert(d); err != nil {
				return err
			}
		}
	}
	return nil
}
