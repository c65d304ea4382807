package store

import (
	"errors"
	"testing"
	"time"

	"github.com/arthur-debert/nedb/document"
	"github.com/arthur-debert/nedb/storeerr"
	"github.com/google/go-cmp/cmp"
)

func newTestStore(t *testing.T) *Datastore {
	t.Helper()
	s := New(Config{})
	if err := s.LoadDatabase(); err != nil {
		t.Fatalf("LoadDatabase: %v", err)
	}
	t.Cleanup(s.Close)
	return s
}

func TestInsertAssignsIDAndFindRoundTrips(t *testing.T) {
	s := newTestStore(t)

	stored, err := s.Insert(document.D{"name": "alice", "age": 30.0})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	id, ok := stored["_id"].(string)
	if !ok || id == "" {
		t.Fatalf("expected a generated _id, got %v", stored["_id"])
	}

	res, err := s.Find(document.D{"name": "alice"}).Exec()
	if err != nil {
		t.Fatalf("Exec: %v", err)
	}
	if len(res.Docs) != 1 || res.Docs[0]["_id"] != id {
		t.Fatalf("unexpected find result: %v", res.Docs)
	}
}

func TestInsertRejectsDollarKeys(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Insert(document.D{"$bad": 1.0})
	if !errors.Is(err, storeerr.ErrInvalidDocument) {
		t.Fatalf("expected ErrInvalidDocument, got %v", err)
	}
}

func TestUniqueIndexRejectsDuplicateAndLeavesStoreConsistent(t *testing.T) {
	s := newTestStore(t)
	if err := s.EnsureIndex(EnsureIndexOptions{FieldName: "email", Unique: true}); err != nil {
		t.Fatalf("EnsureIndex: %v", err)
	}

	if _, err := s.Insert(document.D{"email": "a@example.com"}); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	_, err := s.Insert(document.D{"email": "a@example.com"})
	if !errors.Is(err, storeerr.ErrUniqueViolation) {
		t.Fatalf("expected ErrUniqueViolation, got %v", err)
	}

	n, err := s.Count(document.D{"email": "a@example.com"})
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected the rejected insert to leave exactly one document, got %d", n)
	}
}

func TestUpdateMultiAndReturnUpdatedDocs(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.InsertMany([]document.D{
		{"kind": "fruit", "stock": 1.0},
		{"kind": "fruit", "stock": 2.0},
		{"kind": "veg", "stock": 5.0},
	}); err != nil {
		t.Fatalf("InsertMany: %v", err)
	}

	res, err := s.Update(
		document.D{"kind": "fruit"},
		document.D{"$inc": document.D{"stock": 1.0}},
		UpdateOptions{Multi: true, ReturnUpdatedDocs: true},
	)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if res.NumAffected != 2 {
		t.Fatalf("expected 2 affected, got %d", res.NumAffected)
	}
	updated, ok := res.Updated.([]document.D)
	if !ok || len(updated) != 2 {
		t.Fatalf("expected 2 returned docs, got %v", res.Updated)
	}
	for _, d := range updated {
		if d["stock"].(float64) < 2.0 {
			t.Fatalf("expected incremented stock, got %v", d["stock"])
		}
	}

	n, _ := s.Count(document.D{"kind": "veg"})
	if n != 1 {
		t.Fatalf("unrelated document should be untouched, count=%d", n)
	}
}

func TestUpdateUpsertInsertsWhenNoMatch(t *testing.T) {
	s := newTestStore(t)

	res, err := s.Update(
		document.D{"sku": "abc"},
		document.D{"$set": document.D{"stock": 10.0}},
		UpdateOptions{Upsert: true},
	)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if !res.Upserted || res.NumAffected != 1 {
		t.Fatalf("expected an upsert, got %+v", res)
	}

	doc, err := s.FindOne(document.D{"sku": "abc"})
	if err != nil {
		t.Fatalf("FindOne: %v", err)
	}
	if doc == nil || doc["stock"].(float64) != 10.0 {
		t.Fatalf("unexpected upserted document: %v", doc)
	}

	want := document.D{"_id": doc["_id"], "sku": "abc", "stock": 10.0}
	if diff := cmp.Diff(want, doc); diff != "" {
		t.Fatalf("unexpected upserted document shape (-want +got):\n%s", diff)
	}
}

func TestRemoveMulti(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.InsertMany([]document.D{
		{"kind": "a"}, {"kind": "a"}, {"kind": "b"},
	}); err != nil {
		t.Fatalf("InsertMany: %v", err)
	}

	n, err := s.Remove(document.D{"kind": "a"}, RemoveOptions{Multi: true})
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 removed, got %d", n)
	}

	remaining, err := s.Count(document.D{})
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if remaining != 1 {
		t.Fatalf("expected 1 remaining document, got %d", remaining)
	}
}

func TestTTLIndexCascadesExpiry(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s := New(Config{Now: func() time.Time { return now }})
	if err := s.LoadDatabase(); err != nil {
		t.Fatalf("LoadDatabase: %v", err)
	}
	defer s.Close()

	expireAfter := 60.0
	if err := s.EnsureIndex(EnsureIndexOptions{FieldName: "expiresAt", ExpireAfterSeconds: &expireAfter}); err != nil {
		t.Fatalf("EnsureIndex: %v", err)
	}

	stale := document.NewTimestamp(now.Add(-2 * time.Minute))
	if _, err := s.Insert(document.D{"expiresAt": stale}); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	res, err := s.Find(document.D{}).Exec()
	if err != nil {
		t.Fatalf("Exec: %v", err)
	}
	if len(res.Docs) != 0 {
		t.Fatalf("expected the expired document to be dropped from results, got %v", res.Docs)
	}
}

func TestEnsureIndexBackfillFailureLeavesStoreUntouched(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.InsertMany([]document.D{
		{"email": "dup@example.com"},
		{"email": "dup@example.com"},
	}); err != nil {
		t.Fatalf("InsertMany: %v", err)
	}

	err := s.EnsureIndex(EnsureIndexOptions{FieldName: "email", Unique: true})
	if !errors.Is(err, storeerr.ErrUniqueViolation) {
		t.Fatalf("expected ErrUniqueViolation, got %v", err)
	}

	n, _ := s.Count(document.D{"email": "dup@example.com"})
	if n != 2 {
		t.Fatalf("failed EnsureIndex must not drop existing documents, count=%d", n)
	}
}

func TestLoadDatabaseReplaysPersistedLog(t *testing.T) {
	backend := newRecordingCollaborator()
	s1 := New(Config{Collaborator: backend})
	if err := s1.LoadDatabase(); err != nil {
		t.Fatalf("LoadDatabase: %v", err)
	}
	if _, err := s1.Insert(document.D{"_id": "x1", "name": "bob"}); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if _, err := s1.Remove(document.D{"_id": "x1"}, RemoveOptions{}); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := s1.Insert(document.D{"_id": "x2", "name": "carol"}); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	s1.Close()

	s2 := New(Config{Collaborator: backend})
	if err := s2.LoadDatabase(); err != nil {
		t.Fatalf("LoadDatabase: %v", err)
	}
	defer s2.Close()

	n, err := s2.Count(document.D{})
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected only the surviving document to replay, got count=%d", n)
	}
	doc, _ := s2.FindOne(document.D{"_id": "x2"})
	if doc == nil {
		t.Fatalf("expected x2 to survive replay")
	}
}

// recordingCollaborator is a persistence.Collaborator backed by an
// in-process slice, used where the test needs two Datastore instances to
// share the same log (the standard Memory collaborator is adequate here;
// this wrapper just documents that sharing is intentional).
type recordingCollaborator struct {
	records []document.D
}

func newRecordingCollaborator() *recordingCollaborator {
	return &recordingCollaborator{}
}

func (c *recordingCollaborator) PersistNewState(records []document.D, done func(error)) {
	c.records = append(c.records, records...)
	done(nil)
}

func (c *recordingCollaborator) LoadAll() ([]document.D, error) {
	out := make([]document.D, len(c.records))
	copy(out, c.records)
	return out, nil
}
