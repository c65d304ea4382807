package cursor

import (
	"errors"
	"testing"

	"github.com/arthur-debert/nedb/document"
	"github.com/arthur-debert/nedb/storeerr"
)

type fakeSource struct {
	docs []document.D
}

func (f *fakeSource) GetCandidates(query document.D, allowStale bool) ([]document.D, error) {
	return f.docs, nil
}

func (f *fakeSource) StringComparator() document.StringComparator { return nil }

func TestCursorSortSkipLimit(t *testing.T) {
	src := &fakeSource{docs: []document.D{
		{"_id": "1", "n": 3.0},
		{"_id": "2", "n": 1.0},
		{"_id": "3", "n": 2.0},
	}}
	c := New(src, document.D{}, ModeFind)
	c.Sort([]SortField{{Path: "n", Dir: 1}}).Skip(1).Limit(1)
	res, err := c.Exec()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Docs) != 1 || res.Docs[0]["_id"] != "3" {
		t.Fatalf("unexpected result: %v", res.Docs)
	}
}

func TestCursorNoSortSkipLimitDuringFilter(t *testing.T) {
	src := &fakeSource{docs: []document.D{
		{"_id": "1", "n": 1.0},
		{"_id": "2", "n": 2.0},
		{"_id": "3", "n": 3.0},
		{"_id": "4", "n": 4.0},
	}}
	c := New(src, document.D{}, ModeFind)
	c.Skip(1).Limit(2)
	res, err := c.Exec()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Docs) != 2 {
		t.Fatalf("expected 2 docs, got %d", len(res.Docs))
	}
}

func TestCursorProjectionInclusion(t *testing.T) {
	src := &fakeSource{docs: []document.D{
		{"_id": "1", "a": 1.0, "b": 2.0},
	}}
	c := New(src, document.D{}, ModeFind)
	c.Projection(document.D{"a": 1, "_id": 0})
	res, err := c.Exec()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := res.Docs[0]
	if _, ok := got["_id"]; ok {
		t.Fatalf("expected _id excluded, got %v", got)
	}
	if got["a"] != 1.0 {
		t.Fatalf("expected a=1, got %v", got)
	}
	if _, ok := got["b"]; ok {
		t.Fatalf("expected b omitted, got %v", got)
	}
}

func TestCursorProjectionExclusion(t *testing.T) {
	src := &fakeSource{docs: []document.D{
		{"_id": "1", "a": 1.0, "b": 2.0},
	}}
	c := New(src, document.D{}, ModeFind)
	c.Projection(document.D{"b": 0})
	res, err := c.Exec()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := res.Docs[0]
	if _, ok := got["b"]; ok {
		t.Fatalf("expected b excluded, got %v", got)
	}
	if got["a"] != 1.0 || got["_id"] != "1" {
		t.Fatalf("expected a and _id retained, got %v", got)
	}
}

func TestCursorInconsistentProjectionRejected(t *testing.T) {
	src := &fakeSource{docs: []document.D{{"_id": "1", "a": 1.0, "b": 2.0}}}
	c := New(src, document.D{}, ModeFind)
	c.Projection(document.D{"a": 1, "b": 0})
	_, err := c.Exec()
	if !errors.Is(err, storeerr.ErrInconsistentProjection) {
		t.Fatalf("expected ErrInconsistentProjection, got %v", err)
	}
}

func TestCursorFindOneReturnsFirstMatch(t *testing.T) {
	src := &fakeSource{docs: []document.D{
		{"_id": "1", "n": 1.0},
		{"_id": "2", "n": 1.0},
	}}
	c := New(src, document.D{"n": 1.0}, ModeFindOne)
	res, err := c.Exec()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.One == nil || res.One["_id"] != "1" {
		t.Fatalf("unexpected result: %v", res.One)
	}
}

func TestCursorCountDoesNotSortOrProject(t *testing.T) {
	src := &fakeSource{docs: []document.D{
		{"_id": "1", "n": 1.0},
		{"_id": "2", "n": 2.0},
	}}
	c := New(src, document.D{}, ModeCount)
	c.Sort([]SortField{{Path: "n", Dir: -1}}).Projection(document.D{"n": 1})
	res, err := c.Exec()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Count != 2 {
		t.Fatalf("expected count 2, got %d", res.Count)
	}
}
