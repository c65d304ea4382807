package document

import (
	"fmt"
	"sort"

	"github.com/arthur-debert/nedb/storeerr"
)

// modifierOrder is the fixed application order for the closed set of update
// modifiers. Declaration order would be the natural choice, but a Go map
// cannot preserve it; this canonical order is the deterministic substitute,
// chosen so that the common single-modifier update is unaffected and the
// rare multi-modifier update on related paths behaves predictably.
var modifierOrder = []string{"$set", "$unset", "$inc", "$min", "$max", "$push", "$pop", "$addToSet", "$pull"}

var knownModifiers = func() map[string]bool {
	m := make(map[string]bool, len(modifierOrder))
	for _, name := range modifierOrder {
		m[name] = true
	}
	return m
}()

// Modify applies upd to doc and returns a fresh document; doc is never
// mutated. If upd has no "$"-prefixed top-level keys it is a replacement;
// otherwise every top-level key must be a known modifier.
func Modify(doc D, upd D) (D, error) {
	if !hasModifierKeys(upd) {
		return replace(doc, upd)
	}

	for key := range upd {
		if !knownModifiers[key] {
			return nil, fmt.Errorf("%w: unknown modifier %q", storeerr.ErrInvalidUpdate, key)
		}
	}

	result := DeepCopyDoc(doc)
	for _, modName := range modifierOrder {
		ops, ok := upd[modName]
		if !ok {
			continue
		}
		fields, ok := ops.(D)
		if !ok {
			return nil, fmt.Errorf("%w: %s operand must be an object", storeerr.ErrInvalidUpdate, modName)
		}
		var err error
		result, err = applyModifier(result, modName, fields)
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

func hasModifierKeys(upd D) bool {
	for k := range upd {
		if len(k) > 0 && k[0] == '$' {
			return true
		}
	}
	return false
}

func replace(oldDoc, upd D) (D, error) {
	if newID, ok := upd["_id"]; ok {
		if oldID, ok2 := oldDoc["_id"]; ok2 && !Equal(newID, oldID) {
			return nil, fmt.Errorf("%w: replacement document _id %v differs from existing _id %v", storeerr.ErrInvalidUpdate, newID, oldID)
		}
	}
	result := DeepCopyDoc(upd)
	if result == nil {
		result = D{}
	}
	if id, ok := oldDoc["_id"]; ok {
		result["_id"] = id
	}
	return result, nil
}

func applyModifier(doc D, modName string, fields D) (D, error) {
	paths := sortedKeys(fields)
	var err error
	for _, path := range paths {
		operand := fields[path]
		switch modName {
		case "$set":
			doc = SetDotValue(doc, path, DeepCopy(operand))
		case "$unset":
			doc = UnsetDotValue(doc, path)
		case "$inc":
			doc, err = applyInc(doc, path, operand)
		case "$min":
			doc, err = applyMinMax(doc, path, operand, true)
		case "$max":
			doc, err = applyMinMax(doc, path, operand, false)
		case "$push":
			doc, err = applyPush(doc, path, operand)
		case "$pop":
			doc, err = applyPop(doc, path, operand)
		case "$addToSet":
			doc, err = applyAddToSet(doc, path, operand)
		case "$pull":
			doc, err = applyPull(doc, path, operand)
		}
		if err != nil {
			return nil, err
		}
	}
	return doc, nil
}

func applyInc(doc D, path string, operand interface{}) (D, error) {
	delta, ok := asFloat64(operand)
	if !ok {
		return nil, fmt.Errorf("%w: $inc operand for %q must be a number", storeerr.ErrInvalidUpdate, path)
	}
	cur := GetDotValue(doc, path)
	var base float64
	if !IsUndefined(cur) {
		var ok2 bool
		base, ok2 = asFloat64(cur)
		if !ok2 {
			return nil, fmt.Errorf("%w: $inc on %q: existing value is not a number", storeerr.ErrInvalidUpdate, path)
		}
	}
	return SetDotValue(doc, path, base+delta), nil
}

func applyMinMax(doc D, path string, operand interface{}, isMin bool) (D, error) {
	cur := GetDotValue(doc, path)
	if IsUndefined(cur) {
		return SetDotValue(doc, path, DeepCopy(operand)), nil
	}
	c := Compare(operand, cur, nil)
	if (isMin && c < 0) || (!isMin && c > 0) {
		return SetDotValue(doc, path, DeepCopy(operand)), nil
	}
	return doc, nil
}

func applyPush(doc D, path string, operand interface{}) (D, error) {
	cur := GetDotValue(doc, path)
	var arr A
	if !IsUndefined(cur) {
		existing, ok := cur.(A)
		if !ok {
			return nil, fmt.Errorf("%w: $push on %q: existing value is not an array", storeerr.ErrInvalidUpdate, path)
		}
		arr = append(A{}, existing...)
	}

	spec, isSpec := operand.(D)
	if isSpec && hasPushSubOps(spec) {
		each, _ := spec["$each"].(A)
		if each == nil {
			if v, ok := spec["$each"]; ok {
				each = A{v}
			}
		}
		arr = append(arr, each...)

		if sortSpec, ok := spec["$sort"]; ok {
			if err := sortPushed(arr, sortSpec); err != nil {
				return nil, err
			}
		}
		if sliceVal, ok := spec["$slice"]; ok {
			n, ok := asFloat64(sliceVal)
			if !ok {
				return nil, fmt.Errorf("%w: $slice operand for %q must be a number", storeerr.ErrInvalidUpdate, path)
			}
			arr = applySlice(arr, int(n))
		}
	} else {
		arr = append(arr, operand)
	}

	return SetDotValue(doc, path, arr), nil
}

func hasPushSubOps(d D) bool {
	_, hasEach := d["$each"]
	_, hasSlice := d["$slice"]
	_, hasSort := d["$sort"]
	return hasEach || hasSlice || hasSort
}

func sortPushed(arr A, sortSpec interface{}) error {
	switch s := sortSpec.(type) {
	case float64, int:
		n, _ := asFloat64(s)
		sort.SliceStable(arr, func(i, j int) bool {
			if n < 0 {
				return Compare(arr[i], arr[j], nil) > 0
			}
			return Compare(arr[i], arr[j], nil) < 0
		})
		return nil
	case D:
		sort.SliceStable(arr, func(i, j int) bool {
			for path, dir := range s {
				di, _ := asFloat64(dir)
				vi := GetDotValue(arr[i], path)
				vj := GetDotValue(arr[j], path)
				c := Compare(vi, vj, nil)
				if c == 0 {
					continue
				}
				if di < 0 {
					return c > 0
				}
				return c < 0
			}
			return false
		})
		return nil
	default:
		return fmt.Errorf("%w: unsupported $sort operand in $push", storeerr.ErrInvalidUpdate)
	}
}

// applySlice implements MongoDB's $slice semantics: positive n keeps the
// first n elements, negative n keeps the last |n| elements, 0 empties the
// array.
func applySlice(arr A, n int) A {
	if n == 0 {
		return A{}
	}
	if n > 0 {
		if n >= len(arr) {
			return arr
		}
		return arr[:n]
	}
	if -n >= len(arr) {
		return arr
	}
	return arr[len(arr)+n:]
}

// applyPop implements MongoDB's $pop semantics: operand 1 removes the last
// array element, -1 removes the first. A missing or empty array is left
// unchanged.
func applyPop(doc D, path string, operand interface{}) (D, error) {
	n, ok := asFloat64(operand)
	if !ok {
		return nil, fmt.Errorf("%w: $pop operand for %q must be a number", storeerr.ErrInvalidUpdate, path)
	}

	cur := GetDotValue(doc, path)
	if IsUndefined(cur) {
		return doc, nil
	}
	existing, ok := cur.(A)
	if !ok {
		return nil, fmt.Errorf("%w: $pop on %q: existing value is not an array", storeerr.ErrInvalidUpdate, path)
	}
	if len(existing) == 0 {
		return doc, nil
	}

	arr := append(A{}, existing...)
	if n < 0 {
		arr = arr[1:]
	} else {
		arr = arr[:len(arr)-1]
	}
	return SetDotValue(doc, path, arr), nil
}

func applyAddToSet(doc D, path string, operand interface{}) (D, error) {
	cur := GetDotValue(doc, path)
	var arr A
	if !IsUndefined(cur) {
		existing, ok := cur.(A)
		if !ok {
			return nil, fmt.Errorf("%w: $addToSet on %q: existing value is not an array", storeerr.ErrInvalidUpdate, path)
		}
		arr = append(A{}, existing...)
	}

	var toAdd A
	if spec, ok := operand.(D); ok {
		if each, ok := spec["$each"].(A); ok {
			toAdd = each
		} else {
			toAdd = A{operand}
		}
	} else {
		toAdd = A{operand}
	}

	for _, v := range toAdd {
		if !containsEqual(arr, v) {
			arr = append(arr, v)
		}
	}
	return SetDotValue(doc, path, arr), nil
}

func containsEqual(arr A, v interface{}) bool {
	for _, e := range arr {
		if Equal(e, v) {
			return true
		}
	}
	return false
}

func applyPull(doc D, path string, operand interface{}) (D, error) {
	cur := GetDotValue(doc, path)
	existing, ok := cur.(A)
	if !ok {
		// Nothing to pull from; leave doc unchanged.
		return doc, nil
	}

	matcher := Matcher{}
	out := make(A, 0, len(existing))
	for _, elem := range existing {
		if matchesPull(matcher, elem, operand) {
			continue
		}
		out = append(out, elem)
	}
	return SetDotValue(doc, path, out), nil
}

func matchesPull(m Matcher, elem, operand interface{}) bool {
	if q, ok := operand.(D); ok && isOperatorObject(q) {
		return m.matchField(D{"_": elem}, "_", q)
	}
	if q, ok := operand.(D); ok {
		if elemDoc, ok2 := elem.(D); ok2 {
			return m.Match(elemDoc, q)
		}
		return false
	}
	return Equal(elem, operand)
}
