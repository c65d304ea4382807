package document

import (
	"errors"
	"testing"

	"github.com/arthur-debert/nedb/storeerr"
)

func TestCheckObjectRejectsDottedKey(t *testing.T) {
	err := CheckObject(D{"a.b": 1.0})
	if !errors.Is(err, storeerr.ErrInvalidDocument) {
		t.Fatalf("expected ErrInvalidDocument, got %v", err)
	}
}

func TestCheckObjectRejectsDollarKey(t *testing.T) {
	err := CheckObject(D{"$set": 1.0})
	if !errors.Is(err, storeerr.ErrInvalidDocument) {
		t.Fatalf("expected ErrInvalidDocument, got %v", err)
	}
}

func TestCheckObjectRecursesIntoNestedObjectsAndArrays(t *testing.T) {
	err := CheckObject(D{"a": A{D{"$bad": 1.0}}})
	if !errors.Is(err, storeerr.ErrInvalidDocument) {
		t.Fatalf("expected recursive rejection, got %v", err)
	}
}

func TestCheckObjectAcceptsValidDocument(t *testing.T) {
	if err := CheckObject(D{"a": 1.0, "b": D{"c": A{1.0, "x"}}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
