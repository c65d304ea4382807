// Package idgen generates primary keys for documents: 16-character opaque
// identifiers drawn from a uniform random alphabet. Collisions are retried
// by the caller against the _id index (see Datastore.assignID in package
// store, which gives up after a fixed number of attempts); generation
// itself never fails.
package idgen

import (
	"crypto/rand"
)

const alphabet = "0123456789abcdef"

// New16 returns a 16-character hex-like identifier.
//
// google/uuid (already a dependency of this module, used by the JSON
// persistence backend for segment IDs) is deliberately not used here: it
// produces 36-character dashed identifiers, not the 16-character hex-like
// shape this generator needs.
func New16() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand.Read on a supported platform does not fail in
		// practice; panicking here matches the stdlib's own handling of
		// an exhausted entropy source, which every caller already treats
		// as unrecoverable.
		panic("idgen: crypto/rand unavailable: " + err.Error())
	}
	out := make([]byte, 16)
	for i, b := range buf {
		out[i] = alphabet[int(b)%len(alphabet)]
	}
	return string(out)
}
