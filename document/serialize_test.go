package document

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestMarshalUnmarshalDocRoundTripsTimestamp(t *testing.T) {
	ts := NewTimestamp(time.Date(2024, 3, 4, 5, 6, 7, 0, time.UTC))
	doc := D{"_id": "1", "when": ts, "tags": A{"a", "b"}}

	data, err := MarshalDoc(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got, err := UnmarshalDoc(data)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	gotTS, ok := got["when"].(Timestamp)
	if !ok {
		t.Fatalf("expected Timestamp, got %T", got["when"])
	}
	if !gotTS.Time.Equal(ts.Time) {
		t.Fatalf("timestamp mismatch: got %v want %v", gotTS.Time, ts.Time)
	}
	if got["_id"] != "1" {
		t.Fatalf("unexpected _id: %v", got["_id"])
	}
}

func TestMarshalUnmarshalDocRoundTripDeepEqual(t *testing.T) {
	doc := D{
		"_id":    "1",
		"name":   "alice",
		"tags":   A{"x", "y"},
		"nested": D{"count": 3.0, "ok": true, "missing": nil},
	}

	data, err := MarshalDoc(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got, err := UnmarshalDoc(data)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if diff := cmp.Diff(doc, got); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}
