package document

import (
	"strconv"
	"strings"
)

// GetDotValue walks doc along path, a dot-separated sequence of keys, and
// returns the value found there or Undefined.
//
// When an intermediate value is an array and the next segment parses as a
// decimal integer, that segment indexes into the array. When an
// intermediate value is an array and the next segment is a non-numeric key,
// the remaining path is mapped over every element, and the per-element
// results (skipping elements where the key is absent) are collected into a
// new array — this is what lets a field defined once per array element be
// queried and sorted on as if it were scalar.
func GetDotValue(doc interface{}, path string) interface{} {
	if path == "" {
		return doc
	}
	segments := strings.Split(path, ".")
	return getDotValue(doc, segments)
}

func getDotValue(cur interface{}, segments []string) interface{} {
	if len(segments) == 0 {
		return cur
	}
	head, rest := segments[0], segments[1:]

	switch v := cur.(type) {
	case D:
		val, ok := v[head]
		if !ok {
			return Undefined
		}
		return getDotValue(val, rest)
	case A:
		if idx, err := strconv.Atoi(head); err == nil {
			if idx < 0 || idx >= len(v) {
				return Undefined
			}
			return getDotValue(v[idx], rest)
		}
		// Map the remaining path over every element.
		mapped := make(A, 0, len(v))
		for _, elem := range v {
			r := getDotValue(elem, segments)
			if IsUndefined(r) {
				continue
			}
			mapped = append(mapped, r)
		}
		if len(mapped) == 0 {
			return Undefined
		}
		return mapped
	default:
		return Undefined
	}
}

// SetDotValue returns a copy of doc with value written at path, creating
// intermediate objects as needed. It never mutates doc. Used by $set and by
// projection's inclusion path.
func SetDotValue(doc D, path string, value interface{}) D {
	out := DeepCopyDoc(doc)
	if out == nil {
		out = D{}
	}
	setDotValue(out, strings.Split(path, "."), value)
	return out
}

func setDotValue(cur D, segments []string, value interface{}) {
	head := segments[0]
	if len(segments) == 1 {
		cur[head] = value
		return
	}
	next, ok := cur[head].(D)
	if !ok {
		next = D{}
		cur[head] = next
	}
	setDotValue(next, segments[1:], value)
}

// UnsetDotValue returns a copy of doc with the value at path removed. If an
// intermediate segment doesn't resolve to an object, doc is returned
// unchanged (deep-copied).
func UnsetDotValue(doc D, path string) D {
	out := DeepCopyDoc(doc)
	if out == nil {
		return out
	}
	unsetDotValue(out, strings.Split(path, "."))
	return out
}

func unsetDotValue(cur D, segments []string) {
	head := segments[0]
	if len(segments) == 1 {
		delete(cur, head)
		return
	}
	next, ok := cur[head].(D)
	if !ok {
		return
	}
	unsetDotValue(next, segments[1:])
}
