// Package store implements the collection facade: it owns the index
// set and the executor, and composes the document, index and cursor
// primitives into the public CRUD/query surface.
package store

import (
	"fmt"
	"sync"
	"time"

	"github.com/arthur-debert/nedb/document"
	"github.com/arthur-debert/nedb/executor"
	"github.com/arthur-debert/nedb/index"
	"github.com/arthur-debert/nedb/persistence"
	"github.com/arthur-debert/nedb/storeerr"
	"github.com/arthur-debert/nedb/ttl"
)

// Config configures a Datastore at construction time.
type Config struct {
	// Comparator overrides the default lexicographic string comparison
	// used across matching, sorting and index ordering.
	Comparator document.StringComparator

	// Collaborator is the external persistence capability. A nil
	// Collaborator defaults to an in-memory, non-durable one.
	Collaborator Collaborator

	// Now overrides the clock, for deterministic tests and for TTL
	// evaluation. Defaults to time.Now.
	Now func() time.Time

	// Timestamps, when true, makes insert set createdAt/updatedAt when
	// absent from the document, and makes update carry createdAt over from
	// the old document and set updatedAt to the current time. This mirrors the
	// external "timestamp auto-injection" collaborator, kept out of the
	// core's scope: it is off by default and, when on, is
	// implemented as an optional facade behavior rather than a document-
	// model concern.
	Timestamps bool
}

// Collaborator is the persistence capability a Datastore needs: it can both
// accept new records (persistence.Collaborator) and replay everything
// recorded so far (persistence.Loader), which loadDatabase requires.
type Collaborator interface {
	persistence.Collaborator
	persistence.Loader
}

// Datastore is the collection facade.
type Datastore struct {
	exec *executor.Executor

	mu      sync.RWMutex
	indexes map[string]*index.Index
	ttl     *ttl.Registry

	persist    Collaborator
	cmp        document.StringComparator
	now        func() time.Time
	timestamps bool
}

// New constructs a Datastore. Callers must call LoadDatabase before any
// other operation completes: the executor starts in the buffered state and
// only LoadDatabase transitions it to ready.
func New(cfg Config) *Datastore {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Collaborator == nil {
		cfg.Collaborator = persistence.NewMemory()
	}
	return &Datastore{
		exec:       executor.New(),
		indexes:    map[string]*index.Index{"_id": index.New("_id", true, false, cfg.Comparator)},
		ttl:        ttl.NewRegistry(),
		persist:    cfg.Collaborator,
		cmp:        cfg.Comparator,
		now:        cfg.Now,
		timestamps: cfg.Timestamps,
	}
}

// Close stops the store's executor. Pending buffered tasks that were never
// released by LoadDatabase are dropped.
func (s *Datastore) Close() {
	s.exec.Close()
}

// StringComparator implements cursor.CandidateSource.
func (s *Datastore) StringComparator() document.StringComparator {
	return s.cmp
}

// runTask submits fn to the executor and blocks until it completes,
// translating the executor's callback-based completion signal into a
// synchronous return the way idiomatic Go call sites expect, per the
// "cyclic/polymorphic callbacks" design note: fn owns its own result via
// closure, the executor only owns sequencing.
func (s *Datastore) runTask(forceQueuing bool, fn func() error) error {
	resultCh := make(chan error, 1)
	s.exec.Push(executor.Task{Run: func(signal func(error)) {
		err := fn()
		resultCh <- err
		signal(err)
	}}, forceQueuing)
	return <-resultCh
}

// pushFireAndForget enqueues fn without waiting for it, used for cascaded
// TTL-expiry removes triggered from inside getCandidates: pushing never
// blocks, so this is safe to call both from a synchronous read
// (cursor.Exec, which runs outside the executor) and from inside an
// already-running task.
func (s *Datastore) pushFireAndForget(fn func()) {
	s.exec.Push(executor.Task{Run: func(signal func(error)) {
		fn()
		signal(nil)
	}}, false)
}

func (s *Datastore) persistRecords(records []document.D) error {
	if len(records) == 0 {
		return nil
	}
	resultCh := make(chan error, 1)
	s.persist.PersistNewState(records, func(err error) { resultCh <- err })
	if err := <-resultCh; err != nil {
		return fmt.Errorf("%w: %v", storeerr.ErrPersistenceFailure, err)
	}
	return nil
}

// GetCandidates picks at most one index by priority
// (direct equality, $in, range, else the _id index's full scan) and, unless
// allowStale is true, drops documents expired under any TTL index,
// cascading their removal as separate fire-and-forget tasks.
func (s *Datastore) GetCandidates(query document.D, allowStale bool) ([]document.D, error) {
	s.mu.RLock()
	candidates := s.pickCandidates(query)
	s.mu.RUnlock()

	if allowStale {
		return candidates, nil
	}
	return s.dropExpired(candidates), nil
}

func (s *Datastore) pickCandidates(query document.D) []document.D {
	if docs, ok := s.tryEquality(query); ok {
		return docs
	}
	if docs, ok := s.tryIn(query); ok {
		return docs
	}
	if docs, ok := s.tryRange(query); ok {
		return docs
	}
	return s.indexes["_id"].GetAll()
}

func (s *Datastore) tryEquality(query document.D) ([]document.D, bool) {
	for field, val := range query {
		if !isPlainScalar(val) {
			continue
		}
		idx, ok := s.indexes[field]
		if !ok {
			continue
		}
		return idx.GetMatching(val), true
	}
	return nil, false
}

func (s *Datastore) tryIn(query document.D) ([]document.D, bool) {
	for field, val := range query {
		ops, ok := val.(document.D)
		if !ok {
			continue
		}
		inVal, ok := ops["$in"]
		if !ok {
			continue
		}
		idx, ok := s.indexes[field]
		if !ok {
			continue
		}
		arr, _ := inVal.(document.A)
		return idx.GetMatching(arr), true
	}
	return nil, false
}

func (s *Datastore) tryRange(query document.D) ([]document.D, bool) {
	for field, val := range query {
		ops, ok := val.(document.D)
		if !ok {
			continue
		}
		idx, ok := s.indexes[field]
		if !ok {
			continue
		}
		rq := index.RangeQuery{}
		found := false
		if v, ok := ops["$gt"]; ok {
			rq.GT, rq.HasGT = v, true
			found = true
		}
		if v, ok := ops["$gte"]; ok {
			rq.GTE, rq.HasGTE = v, true
			found = true
		}
		if v, ok := ops["$lt"]; ok {
			rq.LT, rq.HasLT = v, true
			found = true
		}
		if v, ok := ops["$lte"]; ok {
			rq.LTE, rq.HasLTE = v, true
			found = true
		}
		if !found {
			continue
		}
		return idx.GetBetweenBounds(rq), true
	}
	return nil, false
}

func isPlainScalar(v interface{}) bool {
	switch v.(type) {
	case nil, bool, float64, string, document.Timestamp:
		return true
	default:
		return false
	}
}

func (s *Datastore) dropExpired(candidates []document.D) []document.D {
	now := s.now()
	out := make([]document.D, 0, len(candidates))
	for _, d := range candidates {
		if s.ttl.Expired(d, now) {
			doc := d
			s.pushFireAndForget(func() {
				s.removeDocFromAllIndexes(doc)
				_ = s.persistRecords([]document.D{tombstone(doc["_id"])})
			})
			continue
		}
		out = append(out, d)
	}
	return out
}

func tombstone(id interface{}) document.D {
	return document.D{"$$deleted": true, "_id": id}
}

func (s *Datastore) removeDocFromAllIndexes(doc document.D) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, idx := range s.indexes {
		_ = idx.Remove(doc)
	}
}
