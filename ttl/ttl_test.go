package ttl

import (
	"testing"
	"time"

	"github.com/arthur-debert/nedb/document"
)

func TestRegistryExpired(t *testing.T) {
	r := NewRegistry()
	r.Set("createdAt", 60)

	now := time.Date(2024, 1, 1, 0, 5, 0, 0, time.UTC)
	old := document.D{"createdAt": document.NewTimestamp(now.Add(-2 * time.Minute))}
	fresh := document.D{"createdAt": document.NewTimestamp(now.Add(-30 * time.Second))}

	if !r.Expired(old, now) {
		t.Fatalf("expected old document to be expired")
	}
	if r.Expired(fresh, now) {
		t.Fatalf("expected fresh document to not be expired")
	}
}

func TestRegistryRemove(t *testing.T) {
	r := NewRegistry()
	r.Set("a", 1)
	r.Remove("a")
	if len(r.Fields()) != 0 {
		t.Fatalf("expected no TTL fields after remove")
	}
}
