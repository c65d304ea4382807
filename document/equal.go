package document

// Equal implements structural recursive equality, used by $in,
// direct-value queries, and unique-index conflict tests. Timestamps
// are equal iff they represent the same instant; NaN never equals NaN
// (inherited naturally from float64 == below).
func Equal(a, b interface{}) bool {
	ca, cb := classify(a), classify(b)
	if ca != cb {
		return false
	}

	switch ca {
	case classUndefined, classNull:
		return true
	case classNumber:
		fa, _ := asFloat64(a)
		fb, _ := asFloat64(b)
		return fa == fb
	case classString:
		return a.(string) == b.(string)
	case classBoolean:
		return a.(bool) == b.(bool)
	case classTimestamp:
		return a.(Timestamp).Time.Equal(b.(Timestamp).Time)
	case classArray:
		aa, ba := a.(A), b.(A)
		if len(aa) != len(ba) {
			return false
		}
		for i := range aa {
			if !Equal(aa[i], ba[i]) {
				return false
			}
		}
		return true
	default:
		da, oka := a.(D)
		db, okb := b.(D)
		if !oka || !okb {
			return false
		}
		if len(da) != len(db) {
			return false
		}
		for k, v := range da {
			ov, exists := db[k]
			if !exists || !Equal(v, ov) {
				return false
			}
		}
		return true
	}
}
