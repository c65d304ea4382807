package document

import "testing"

func TestMatchPlainEquality(t *testing.T) {
	doc := D{"a": 1.0}
	if !(Matcher{}).Match(doc, D{"a": 1.0}) {
		t.Fatalf("expected match")
	}
	if (Matcher{}).Match(doc, D{"a": 2.0}) {
		t.Fatalf("expected no match")
	}
}

func TestMatchArrayMembership(t *testing.T) {
	doc := D{"tags": A{"x", "y"}}
	if !(Matcher{}).Match(doc, D{"tags": "x"}) {
		t.Fatalf("expected element membership match")
	}
	if (Matcher{}).Match(doc, D{"tags": "z"}) {
		t.Fatalf("expected no match for absent element")
	}
}

func TestMatchComparisonOperators(t *testing.T) {
	doc := D{"n": 5.0}
	cases := []struct {
		query D
		want  bool
	}{
		{D{"n": D{"$gt": 3.0}}, true},
		{D{"n": D{"$gt": 10.0}}, false},
		{D{"n": D{"$gte": 5.0}}, true},
		{D{"n": D{"$lt": 3.0}}, false},
		{D{"n": D{"$lte": 5.0}}, true},
		{D{"n": D{"$ne": 5.0}}, false},
		{D{"n": D{"$in": A{1.0, 5.0}}}, true},
		{D{"n": D{"$nin": A{1.0, 5.0}}}, false},
	}
	for _, c := range cases {
		if got := (Matcher{}).Match(doc, c.query); got != c.want {
			t.Errorf("query %v: got %v want %v", c.query, got, c.want)
		}
	}
}

func TestMatchInEmptyMatchesNothingNinEmptyMatchesEverything(t *testing.T) {
	doc := D{"n": 5.0}
	if (Matcher{}).Match(doc, D{"n": D{"$in": A{}}}) {
		t.Fatalf("$in: [] must match nothing")
	}
	if !(Matcher{}).Match(doc, D{"n": D{"$nin": A{}}}) {
		t.Fatalf("$nin: [] must match everything")
	}
}

func TestMatchExists(t *testing.T) {
	doc := D{"a": 1.0}
	if !(Matcher{}).Match(doc, D{"a": D{"$exists": true}}) {
		t.Fatalf("expected $exists true match")
	}
	if !(Matcher{}).Match(doc, D{"b": D{"$exists": false}}) {
		t.Fatalf("expected $exists false match for absent field")
	}
}

func TestMatchRegexAgainstNonStringNeverMatchesOrPanics(t *testing.T) {
	doc := D{"n": 5.0}
	if (Matcher{}).Match(doc, D{"n": D{"$regex": "5"}}) {
		t.Fatalf("regex against a number must never match")
	}
}

func TestMatchSize(t *testing.T) {
	doc := D{"tags": A{"a", "b", "c"}}
	if !(Matcher{}).Match(doc, D{"tags": D{"$size": 3.0}}) {
		t.Fatalf("expected size match")
	}
	if (Matcher{}).Match(doc, D{"tags": D{"$size": 2.0}}) {
		t.Fatalf("expected no size match")
	}
}

func TestMatchElemMatch(t *testing.T) {
	doc := D{"items": A{D{"n": 1.0}, D{"n": 5.0}}}
	if !(Matcher{}).Match(doc, D{"items": D{"$elemMatch": D{"n": D{"$gt": 3.0}}}}) {
		t.Fatalf("expected elemMatch to find n=5")
	}
	if (Matcher{}).Match(doc, D{"items": D{"$elemMatch": D{"n": D{"$gt": 10.0}}}}) {
		t.Fatalf("expected no elemMatch")
	}
}

func TestMatchLogicalCombinators(t *testing.T) {
	doc := D{"a": 1.0, "b": 2.0}
	if !(Matcher{}).Match(doc, D{"$or": A{D{"a": 1.0}, D{"a": 99.0}}}) {
		t.Fatalf("expected $or match")
	}
	if !(Matcher{}).Match(doc, D{"$and": A{D{"a": 1.0}, D{"b": 2.0}}}) {
		t.Fatalf("expected $and match")
	}
	if (Matcher{}).Match(doc, D{"$nor": A{D{"a": 1.0}}}) {
		t.Fatalf("expected $nor to reject when a sub-query matches")
	}
}

func TestMatchWherePredicate(t *testing.T) {
	doc := D{"a": 4.0}
	pred := WherePredicate(func(d D) bool {
		v, _ := d["a"].(float64)
		return v > 2
	})
	if !(Matcher{}).Match(doc, D{"$where": pred}) {
		t.Fatalf("expected $where predicate to match")
	}
}
