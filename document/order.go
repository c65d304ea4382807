package document

import "sort"

// StringComparator overrides the default lexicographic comparison used for
// the string bucket of the total order, plugged in by an embedder as an
// external "string comparator" collaborator. It returns -1, 0 or 1 like
// strings.Compare.
type StringComparator func(a, b string) int

// Compare implements the total order over values:
//
//	undefined < null < number < string < boolean < timestamp < array < object
//
// cmp may be nil, in which case strings compare with plain code-point
// ordering (strings.Compare).
func Compare(a, b interface{}, cmp StringComparator) int {
	ca, cb := classify(a), classify(b)
	if ca != cb {
		if ca < cb {
			return -1
		}
		return 1
	}

	switch ca {
	case classUndefined, classNull:
		return 0
	case classNumber:
		fa, _ := asFloat64(a)
		fb, _ := asFloat64(b)
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		default:
			return 0
		}
	case classString:
		sa, sb := a.(string), b.(string)
		if cmp != nil {
			return cmp(sa, sb)
		}
		switch {
		case sa < sb:
			return -1
		case sa > sb:
			return 1
		default:
			return 0
		}
	case classBoolean:
		ba, bb := a.(bool), b.(bool)
		if ba == bb {
			return 0
		}
		if !ba && bb {
			return -1
		}
		return 1
	case classTimestamp:
		ta, tb := a.(Timestamp), b.(Timestamp)
		switch {
		case ta.Time.Before(tb.Time):
			return -1
		case ta.Time.After(tb.Time):
			return 1
		default:
			return 0
		}
	case classArray:
		return compareArrays(a.(A), b.(A), cmp)
	default:
		return compareObjects(a, b, cmp)
	}
}

func compareArrays(a, b A, cmp StringComparator) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if c := Compare(a[i], b[i], cmp); c != 0 {
			return c
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}

// compareObjects compares two objects by (key, value) pairs in sorted key
// order, then by length. D has no intrinsic ordering as a Go
// map, so the defining sequence is taken to be sorted key order, which
// keeps Compare a total, reflexive, transitive relation regardless of map
// iteration order.
func compareObjects(a, b interface{}, cmp StringComparator) int {
	da, oka := a.(D)
	db, okb := b.(D)
	if !oka || !okb {
		// Non-D objects (shouldn't normally occur) compare equal so the
		// relation stays total without panicking.
		return 0
	}

	ka := sortedKeys(da)
	kb := sortedKeys(db)
	n := len(ka)
	if len(kb) < n {
		n = len(kb)
	}
	for i := 0; i < n; i++ {
		if c := compareStrings(ka[i], kb[i], cmp); c != 0 {
			return c
		}
		if c := Compare(da[ka[i]], db[kb[i]], cmp); c != 0 {
			return c
		}
	}
	switch {
	case len(ka) < len(kb):
		return -1
	case len(ka) > len(kb):
		return 1
	default:
		return 0
	}
}

func compareStrings(a, b string, cmp StringComparator) int {
	if cmp != nil {
		return cmp(a, b)
	}
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func sortedKeys(d D) []string {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Less returns Compare(a, b, cmp) < 0. Convenience for sort.Slice callers.
func Less(a, b interface{}, cmp StringComparator) bool {
	return Compare(a, b, cmp) < 0
}
