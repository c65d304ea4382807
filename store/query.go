package store

import (
	"github.com/arthur-debert/nedb/cursor"
	"github.com/arthur-debert/nedb/document"
)

// Find returns a cursor over every document matching query. The cursor is
// a deferred read: nothing runs until Exec is called, and Exec runs
// synchronously against the store's current state without going through
// the executor — callers that interleave a cursor's Exec with concurrent
// writes on another goroutine are responsible for their own ordering.
func (s *Datastore) Find(query document.D) *cursor.Cursor {
	return cursor.New(s, query, cursor.ModeFind)
}

// FindOne returns the first document matching query, or nil if none match.
func (s *Datastore) FindOne(query document.D) (document.D, error) {
	res, err := cursor.New(s, query, cursor.ModeFindOne).Exec()
	if err != nil {
		return nil, err
	}
	return res.One, nil
}

// Count returns the number of documents matching query.
func (s *Datastore) Count(query document.D) (int, error) {
	res, err := cursor.New(s, query, cursor.ModeCount).Exec()
	if err != nil {
		return 0, err
	}
	return res.Count, nil
}
