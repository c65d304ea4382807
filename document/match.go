package document

import (
	"regexp"
)

// WherePredicate is the type expected for a $where clause: a callable
// supplied by the embedding application, invoked with the candidate
// document.
type WherePredicate func(doc D) bool

// Matcher bundles the state Match needs beyond the query and document
// themselves: the store's string comparator, used for $lt/$gt/... string
// comparisons so query semantics stay consistent with index and sort
// ordering.
type Matcher struct {
	Cmp StringComparator
}

// Match reports whether doc satisfies query.
func (m Matcher) Match(doc D, query D) bool {
	for key, val := range query {
		switch key {
		case "$or":
			subs, ok := val.(A)
			if !ok || !m.matchAny(doc, subs) {
				return false
			}
		case "$and":
			subs, ok := val.(A)
			if !ok || !m.matchAll(doc, subs) {
				return false
			}
		case "$nor":
			subs, ok := val.(A)
			if !ok || m.matchAny(doc, subs) {
				return false
			}
		case "$where":
			pred, ok := val.(WherePredicate)
			if !ok || !pred(doc) {
				return false
			}
		default:
			if !m.matchField(doc, key, val) {
				return false
			}
		}
	}
	return true
}

func (m Matcher) matchAny(doc D, subs A) bool {
	for _, s := range subs {
		q, ok := s.(D)
		if ok && m.Match(doc, q) {
			return true
		}
	}
	return false
}

func (m Matcher) matchAll(doc D, subs A) bool {
	for _, s := range subs {
		q, ok := s.(D)
		if !ok || !m.Match(doc, q) {
			return false
		}
	}
	return true
}

// matchField evaluates one field-path entry: either a plain value to
// equality-test, or an object of comparison operators.
func (m Matcher) matchField(doc D, path string, expected interface{}) bool {
	actual := GetDotValue(doc, path)

	if ops, ok := expected.(D); ok && isOperatorObject(ops) {
		for op, arg := range ops {
			eval, known := operators[op]
			if !known {
				return false
			}
			if !eval(m, actual, arg) {
				return false
			}
		}
		return true
	}

	return m.valueMatches(actual, expected)
}

// isOperatorObject reports whether every key of d is a known query
// operator, which distinguishes {"$gt": 3} from a literal object value to
// equality-test against.
func isOperatorObject(d D) bool {
	if len(d) == 0 {
		return false
	}
	for k := range d {
		if _, ok := operators[k]; !ok {
			return false
		}
	}
	return true
}

// valueMatches implements plain-value field matching including the
// array-membership rule: if the document value is an array, it matches
// when any element equals the query value, or the whole array equals it.
func (m Matcher) valueMatches(actual, expected interface{}) bool {
	if arr, ok := actual.(A); ok {
		for _, elem := range arr {
			if Equal(elem, expected) {
				return true
			}
		}
		return Equal(actual, expected)
	}
	return Equal(actual, expected)
}

// operators is the closed, statically-dispatched table of comparison
// operators, per the "dynamic operator dispatch" design note: adding an
// operator means adding a table entry, never reflection.
var operators map[string]func(m Matcher, actual, arg interface{}) bool

func init() {
	operators = map[string]func(m Matcher, actual, arg interface{}) bool{
		"$lt": func(m Matcher, actual, arg interface{}) bool {
			return compareOK(m, actual, arg, func(c int) bool { return c < 0 })
		},
		"$lte": func(m Matcher, actual, arg interface{}) bool {
			return compareOK(m, actual, arg, func(c int) bool { return c <= 0 })
		},
		"$gt": func(m Matcher, actual, arg interface{}) bool {
			return compareOK(m, actual, arg, func(c int) bool { return c > 0 })
		},
		"$gte": func(m Matcher, actual, arg interface{}) bool {
			return compareOK(m, actual, arg, func(c int) bool { return c >= 0 })
		},
		"$ne": func(m Matcher, actual, arg interface{}) bool {
			return !m.valueMatches(actual, arg)
		},
		"$in": func(m Matcher, actual, arg interface{}) bool {
			list, ok := arg.(A)
			if !ok {
				return false
			}
			for _, v := range list {
				if m.valueMatches(actual, v) {
					return true
				}
			}
			return false
		},
		"$nin": func(m Matcher, actual, arg interface{}) bool {
			list, ok := arg.(A)
			if !ok {
				return true
			}
			for _, v := range list {
				if m.valueMatches(actual, v) {
					return false
				}
			}
			return true
		},
		"$exists": func(m Matcher, actual, arg interface{}) bool {
			want, _ := arg.(bool)
			return !IsUndefined(actual) == want
		},
		"$regex": func(m Matcher, actual, arg interface{}) bool {
			s, ok := actual.(string)
			if !ok {
				return false
			}
			var pattern string
			switch p := arg.(type) {
			case string:
				pattern = p
			case *regexp.Regexp:
				return p.MatchString(s)
			default:
				return false
			}
			re, err := regexp.Compile(pattern)
			if err != nil {
				return false
			}
			return re.MatchString(s)
		},
		"$size": func(m Matcher, actual, arg interface{}) bool {
			arr, ok := actual.(A)
			if !ok {
				return false
			}
			n, ok := asFloat64(arg)
			if !ok {
				return false
			}
			return float64(len(arr)) == n
		},
		"$elemMatch": func(m Matcher, actual, arg interface{}) bool {
			arr, ok := actual.(A)
			if !ok {
				return false
			}
			sub, ok := arg.(D)
			if !ok {
				return false
			}
			for _, elem := range arr {
				if elemDoc, ok := elem.(D); ok {
					if m.Match(elemDoc, sub) {
						return true
					}
				} else if isOperatorObject(sub) {
					if m.matchField(D{"_": elem}, "_", sub) {
						return true
					}
				}
			}
			return false
		},
	}
}

func compareOK(m Matcher, actual, arg interface{}, ok func(int) bool) bool {
	if IsUndefined(actual) {
		return false
	}
	if classify(actual) != classify(arg) {
		// Cross-type range comparisons never match, mirroring the total
		// order's cross-type bucketing: a range query on a numeric field
		// never matches a document whose value at that path is a string.
		return false
	}
	return ok(Compare(actual, arg, m.Cmp))
}

// KnownOperator reports whether op is a recognized comparison operator,
// used by callers that validate a query shape before executing it.
func KnownOperator(op string) bool {
	_, ok := operators[op]
	return ok
}
