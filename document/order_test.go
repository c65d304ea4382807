package document

import (
	"math"
	"testing"
	"time"
)

func TestCompareTypeBuckets(t *testing.T) {
	ts := NewTimestamp(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))
	values := []interface{}{
		Undefined,
		nil,
		0.0,
		"",
		false,
		true,
		ts,
		A{},
		D{},
	}

	for i := 0; i < len(values); i++ {
		for j := i + 1; j < len(values); j++ {
			if c := Compare(values[i], values[j], nil); c >= 0 {
				t.Errorf("expected values[%d] < values[%d] (%v < %v), got Compare=%d", i, j, values[i], values[j], c)
			}
		}
	}
}

func TestCompareArraysShorterPrefixIsLess(t *testing.T) {
	a := A{1.0, 2.0}
	b := A{1.0, 2.0, 0.0}
	if Compare(a, b, nil) >= 0 {
		t.Fatalf("expected shorter prefix array to be less")
	}
}

func TestCompareStringsWithCustomComparator(t *testing.T) {
	// A comparator that reverses natural order.
	reverse := func(a, b string) int {
		switch {
		case a < b:
			return 1
		case a > b:
			return -1
		default:
			return 0
		}
	}
	if Compare("a", "b", reverse) <= 0 {
		t.Fatalf("expected custom comparator to reverse ordering")
	}
}

func TestEqualNaNNeverEqualsItself(t *testing.T) {
	nan := math.NaN()
	if Equal(nan, nan) {
		t.Fatalf("NaN must not equal NaN")
	}
}

func TestEqualTimestampsSameInstant(t *testing.T) {
	a := NewTimestamp(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))
	b := NewTimestamp(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))
	if !Equal(a, b) {
		t.Fatalf("expected equal timestamps for same instant")
	}
}

func TestObjectComparisonUsesSortedKeyOrder(t *testing.T) {
	a := D{"a": 1.0, "b": 2.0}
	b := D{"a": 1.0, "b": 3.0}
	if Compare(a, b, nil) >= 0 {
		t.Fatalf("expected a < b by second key")
	}
}
