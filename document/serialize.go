package document

import (
	"encoding/json"
	"time"
)

// dateTag is the on-disk representation of a Timestamp: encoding/json has
// no native date type, so a Timestamp round-trips as {"$$date": <millis>},
// converted back to Timestamp on load. This mirrors nanostore's own
// json.Marshal-the-whole-document persistence strategy
// (storage/internal/json_storage.go) generalized to handle a value type
// richer than nanostore's plain-string Dimensions map.
const dateTagKey = "$$date"

// MarshalDoc serializes doc to JSON, tagging Timestamp values so they
// survive the round trip.
func MarshalDoc(doc D) ([]byte, error) {
	return json.Marshal(taggedCopy(doc))
}

// UnmarshalDoc parses JSON produced by MarshalDoc (or plain JSON with no
// timestamps) back into a D, restoring tagged Timestamp values.
func UnmarshalDoc(data []byte) (D, error) {
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return untagCopy(raw).(D), nil
}

func taggedCopy(v interface{}) interface{} {
	switch t := v.(type) {
	case Timestamp:
		return D{dateTagKey: float64(t.Time.UnixMilli())}
	case D:
		out := make(D, len(t))
		for k, val := range t {
			out[k] = taggedCopy(val)
		}
		return out
	case A:
		out := make(A, len(t))
		for i, val := range t {
			out[i] = taggedCopy(val)
		}
		return out
	default:
		return v
	}
}

func untagCopy(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		if len(t) == 1 {
			if ms, ok := t[dateTagKey]; ok {
				if f, ok := ms.(float64); ok {
					return NewTimestamp(time.UnixMilli(int64(f)).UTC())
				}
			}
		}
		out := make(D, len(t))
		for k, val := range t {
			out[k] = untagCopy(val)
		}
		return out
	case []interface{}:
		out := make(A, len(t))
		for i, val := range t {
			out[i] = untagCopy(val)
		}
		return out
	default:
		return v
	}
}
