package store

import (
	"fmt"

	"github.com/arthur-debert/nedb/document"
	"github.com/arthur-debert/nedb/idgen"
	"github.com/arthur-debert/nedb/index"
	"github.com/arthur-debert/nedb/storeerr"
)

const maxIDRetries = 8

// Insert inserts a single document, returning the stored copy (with its
// generated _id, if one was assigned).
func (s *Datastore) Insert(doc document.D) (document.D, error) {
	docs, err := s.InsertMany([]document.D{doc})
	if err != nil {
		return nil, err
	}
	return docs[0], nil
}

// InsertMany inserts every document in docs as one task: on failure at any
// position, every index is rolled back to the pre-call state across all
// documents already committed in this call.
func (s *Datastore) InsertMany(docs []document.D) ([]document.D, error) {
	var stored []document.D
	err := s.runTask(false, func() error {
		prepared, err := s.prepareInserts(docs)
		if err != nil {
			return err
		}

		committed := make([]document.D, 0, len(prepared))
		for _, d := range prepared {
			if err := s.insertIntoAllIndexes(d); err != nil {
				s.rollbackInserted(committed)
				return err
			}
			committed = append(committed, d)
		}

		if err := s.persistRecords(committed); err != nil {
			s.rollbackInserted(committed)
			return err
		}
		stored = committed
		return nil
	})
	return stored, err
}

func (s *Datastore) prepareInserts(docs []document.D) ([]document.D, error) {
	prepared := make([]document.D, 0, len(docs))
	for _, doc := range docs {
		d := document.DeepCopyDoc(doc)
		if err := document.CheckObject(d); err != nil {
			return nil, err
		}
		if err := s.assignID(d); err != nil {
			return nil, err
		}
		if s.timestamps {
			now := document.NewTimestamp(s.now())
			if _, ok := d["createdAt"]; !ok {
				d["createdAt"] = now
			}
			if _, ok := d["updatedAt"]; !ok {
				d["updatedAt"] = now
			}
		}
		prepared = append(prepared, d)
	}
	return prepared, nil
}

func (s *Datastore) assignID(d document.D) error {
	if v, ok := d["_id"]; ok && v != nil {
		return nil
	}
	s.mu.RLock()
	idIndex := s.indexes["_id"]
	s.mu.RUnlock()
	for i := 0; i < maxIDRetries; i++ {
		candidate := idgen.New16()
		if len(idIndex.GetMatching(candidate)) == 0 {
			d["_id"] = candidate
			return nil
		}
	}
	return fmt.Errorf("%w: could not generate a unique _id after %d attempts", storeerr.ErrUniqueViolation, maxIDRetries)
}

func (s *Datastore) insertIntoAllIndexes(d document.D) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	committed := make([]*index.Index, 0, len(s.indexes))
	for _, idx := range s.indexes {
		if err := idx.Insert(d); err != nil {
			for _, c := range committed {
				_ = c.Remove(d)
			}
			return err
		}
		committed = append(committed, idx)
	}
	return nil
}

func (s *Datastore) rollbackInserted(docs []document.D) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range docs {
		for _, idx := range s.indexes {
			_ = idx.Remove(d)
		}
	}
}

// UpdateOptions controls Update's matching and result shape.
type UpdateOptions struct {
	Multi             bool
	Upsert            bool
	ReturnUpdatedDocs bool
}

// UpdateResult reports the outcome of Update.
type UpdateResult struct {
	NumAffected int
	Upserted    bool
	Updated     interface{} // document.D, []document.D, or nil
}

// Update applies upd (a replacement document or a $-modifier set) to every
// document matching query.
func (s *Datastore) Update(query, upd document.D, opts UpdateOptions) (UpdateResult, error) {
	var result UpdateResult
	err := s.runTask(false, func() error {
		candidates, err := s.GetCandidates(query, true)
		if err != nil {
			return err
		}
		matcher := document.Matcher{Cmp: s.cmp}

		var matched []document.D
		for _, d := range candidates {
			if matcher.Match(d, query) {
				matched = append(matched, d)
				if !opts.Multi {
					break
				}
			}
		}

		if len(matched) == 0 {
			if !opts.Upsert {
				result = UpdateResult{}
				return nil
			}
			return s.runUpsert(query, upd, &result)
		}

		return s.runUpdate(matched, upd, opts, &result)
	})
	return result, err
}

func (s *Datastore) runUpsert(query, upd document.D, result *UpdateResult) error {
	newDoc, err := upsertDocument(query, upd)
	if err != nil {
		return err
	}
	prepared, err := s.prepareInserts([]document.D{newDoc})
	if err != nil {
		return err
	}
	if err := s.insertIntoAllIndexes(prepared[0]); err != nil {
		return err
	}
	if err := s.persistRecords(prepared); err != nil {
		s.rollbackInserted(prepared)
		return err
	}
	*result = UpdateResult{NumAffected: 1, Upserted: true, Updated: prepared[0]}
	return nil
}

// upsertDocument builds the document an upsert with no matches creates: a
// modifier update is applied against the query's equality constraints,
// mirroring the common nedb-family convention that $set-style upserts seed
// the new document from the query.
func upsertDocument(query, upd document.D) (document.D, error) {
	seed := document.D{}
	for k, v := range query {
		if len(k) > 0 && k[0] == '$' {
			continue
		}
		if sub, isObj := v.(document.D); isObj && isOperatorLikeObject(sub) {
			continue
		}
		seed[k] = v
	}
	return document.Modify(seed, upd)
}

func isOperatorLikeObject(d document.D) bool {
	for k := range d {
		if len(k) == 0 || k[0] != '$' {
			return false
		}
	}
	return len(d) > 0
}

func (s *Datastore) runUpdate(matched []document.D, upd document.D, opts UpdateOptions, result *UpdateResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pairsByIndex := make(map[string][]index.Pair, len(s.indexes))
	newDocs := make([]document.D, 0, len(matched))

	for _, old := range matched {
		newDoc, err := document.Modify(old, upd)
		if err != nil {
			return err
		}
		if s.timestamps {
			if created, ok := old["createdAt"]; ok {
				newDoc["createdAt"] = created
			}
			newDoc["updatedAt"] = document.NewTimestamp(s.now())
		}
		newDocs = append(newDocs, newDoc)
		for name := range s.indexes {
			pairsByIndex[name] = append(pairsByIndex[name], index.Pair{Old: old, New: newDoc})
		}
	}

	committed := make([]string, 0, len(s.indexes))
	for name, idx := range s.indexes {
		if err := idx.BatchUpdate(pairsByIndex[name]); err != nil {
			for _, cname := range committed {
				_ = s.indexes[cname].RevertUpdate(pairsByIndex[cname])
			}
			return err
		}
		committed = append(committed, name)
	}

	if err := s.persistRecords(newDocs); err != nil {
		for _, cname := range committed {
			_ = s.indexes[cname].RevertUpdate(pairsByIndex[cname])
		}
		return err
	}

	*result = UpdateResult{NumAffected: len(matched)}
	if opts.ReturnUpdatedDocs {
		if opts.Multi {
			result.Updated = newDocs
		} else {
			result.Updated = newDocs[0]
		}
	}
	return nil
}

// RemoveOptions controls Remove's matching.
type RemoveOptions struct {
	Multi bool
}

// Remove deletes every document matching query (or just the first, unless
// Multi is set), returning the number removed.
func (s *Datastore) Remove(query document.D, opts RemoveOptions) (int, error) {
	var n int
	err := s.runTask(false, func() error {
		candidates, err := s.GetCandidates(query, true)
		if err != nil {
			return err
		}
		matcher := document.Matcher{Cmp: s.cmp}

		var matched []document.D
		for _, d := range candidates {
			if matcher.Match(d, query) {
				matched = append(matched, d)
				if !opts.Multi {
					break
				}
			}
		}
		if len(matched) == 0 {
			return nil
		}

		s.mu.Lock()
		for _, d := range matched {
			for _, idx := range s.indexes {
				_ = idx.Remove(d)
			}
		}
		s.mu.Unlock()

		records := make([]document.D, 0, len(matched))
		for _, d := range matched {
			records = append(records, tombstone(d["_id"]))
		}
		if err := s.persistRecords(records); err != nil {
			return err
		}
		n = len(matched)
		return nil
	})
	return n, err
}
