// Package ttl tracks per-field expiry configuration for the store's TTL
// indexes: a document is expired when the field's timestamp value plus the
// configured number of seconds is strictly less than now.
package ttl

import (
	"sync"
	"time"

	"github.com/arthur-debert/nedb/document"
)

// Registry maps an indexed field name to its configured expireAfterSeconds.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]float64
}

// NewRegistry returns an empty TTL registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]float64)}
}

// Set registers fieldName as a TTL field, expiring expireAfterSeconds after
// its timestamp value.
func (r *Registry) Set(fieldName string, expireAfterSeconds float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[fieldName] = expireAfterSeconds
}

// Remove drops fieldName's TTL configuration, e.g. when its index is removed.
func (r *Registry) Remove(fieldName string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, fieldName)
}

// Fields returns the currently TTL-configured field names.
func (r *Registry) Fields() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.entries))
	for f := range r.entries {
		out = append(out, f)
	}
	return out
}

// Expired reports whether doc is expired under any registered TTL field, as
// of now.
func (r *Registry) Expired(doc document.D, now time.Time) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for field, seconds := range r.entries {
		v := document.GetDotValue(doc, field)
		ts, ok := v.(document.Timestamp)
		if !ok {
			continue
		}
		deadline := ts.Time.Add(time.Duration(seconds * float64(time.Second)))
		if deadline.Before(now) {
			return true
		}
	}
	return false
}
