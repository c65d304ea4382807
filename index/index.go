// Package index implements the store's ordered secondary-index layer: a
// keyed multimap built on a self-balancing (AVL) binary search tree, with
// unique/sparse semantics and rollback-capable batch mutation.
package index

import (
	"fmt"

	"github.com/arthur-debert/nedb/document"
	"github.com/arthur-debert/nedb/storeerr"
)

// Index is an ordered multimap over the values found at FieldName across a
// document collection.
type Index struct {
	FieldName string
	Unique    bool
	Sparse    bool

	tree *avlTree
	cmp  document.StringComparator
}

// Pair is an (old, new) document pair for a batch update commit.
type Pair struct {
	Old document.D
	New document.D
}

// New creates an index over fieldName. cmp overrides string comparison
// within the index's total order; nil uses plain code-point order.
func New(fieldName string, unique, sparse bool, cmp document.StringComparator) *Index {
	return &Index{
		FieldName: fieldName,
		Unique:    unique,
		Sparse:    sparse,
		tree:      newAVLTree(cmp),
		cmp:       cmp,
	}
}

// keyOf computes the indexed key for doc via a dotted-path read.
func (idx *Index) keyOf(doc document.D) interface{} {
	return document.GetDotValue(doc, idx.FieldName)
}

// Insert adds doc to the index. For an array-valued field, doc is indexed
// once per distinct element; on a mid-batch failure every entry
// already inserted by this call is removed before the error is returned,
// so Insert is all-or-nothing even for a single document.
func (idx *Index) Insert(doc document.D) error {
	k := idx.keyOf(doc)
	if document.IsUndefined(k) && idx.Sparse {
		return nil
	}

	arr, isArray := k.(document.A)
	if !isArray {
		return idx.insertOne(k, doc)
	}

	elems := distinctElements(arr)
	inserted := make([]interface{}, 0, len(elems))
	for _, elem := range elems {
		if err := idx.insertOne(elem, doc); err != nil {
			for _, done := range inserted {
				idx.tree.removeDoc(done, doc)
			}
			return err
		}
		inserted = append(inserted, elem)
	}
	return nil
}

func (idx *Index) insertOne(k interface{}, doc document.D) error {
	if idx.Unique {
		if n := idx.tree.find(k); n != nil && len(n.docs) > 0 {
			return fmt.Errorf("%w: field %q, key %v", storeerr.ErrUniqueViolation, idx.FieldName, k)
		}
	}
	idx.tree.insert(k, doc)
	return nil
}

// Remove deletes doc from the index, symmetric to Insert.
func (idx *Index) Remove(doc document.D) error {
	k := idx.keyOf(doc)
	if document.IsUndefined(k) && idx.Sparse {
		return nil
	}

	if arr, isArray := k.(document.A); isArray {
		for _, elem := range distinctElements(arr) {
			idx.tree.removeDoc(elem, doc)
		}
		return nil
	}
	idx.tree.removeDoc(k, doc)
	return nil
}

// Update removes oldDoc and inserts newDoc. On insert failure, oldDoc is
// re-inserted and the error propagated, leaving the index as it was.
func (idx *Index) Update(oldDoc, newDoc document.D) error {
	_ = idx.Remove(oldDoc)
	if err := idx.Insert(newDoc); err != nil {
		_ = idx.Insert(oldDoc)
		return err
	}
	return nil
}

// BatchUpdate applies pairs as a single atomic unit: every Old is removed,
// then every New is inserted. If insertion fails at position i, the News
// already inserted (positions < i) are removed, every Old is re-inserted,
// and the error is returned — the index is left bit-identical to its
// pre-call state.
func (idx *Index) BatchUpdate(pairs []Pair) error {
	for _, p := range pairs {
		_ = idx.Remove(p.Old)
	}

	for i, p := range pairs {
		if err := idx.Insert(p.New); err != nil {
			for j := 0; j < i; j++ {
				_ = idx.Remove(pairs[j].New)
			}
			for _, p2 := range pairs {
				_ = idx.Insert(p2.Old)
			}
			return err
		}
	}
	return nil
}

// RevertUpdate applies the inverse of a previously committed BatchUpdate:
// every New is removed and every Old is re-inserted. Used to unwind a
// multi-index commit when a sibling index's BatchUpdate fails.
func (idx *Index) RevertUpdate(pairs []Pair) error {
	for _, p := range pairs {
		_ = idx.Remove(p.New)
	}
	for _, p := range pairs {
		if err := idx.Insert(p.Old); err != nil {
			return err
		}
	}
	return nil
}

// GetMatching returns every document indexed under value. If value is an
// array (as in an $in clause) the per-element results are unioned and
// deduplicated by document identity (_id).
func (idx *Index) GetMatching(value interface{}) []document.D {
	if arr, ok := value.(document.A); ok {
		seen := make(map[interface{}]bool)
		var out []document.D
		for _, v := range arr {
			for _, d := range idx.getMatchingOne(v) {
				id := d["_id"]
				if seen[id] {
					continue
				}
				seen[id] = true
				out = append(out, d)
			}
		}
		return out
	}
	return idx.getMatchingOne(value)
}

func (idx *Index) getMatchingOne(value interface{}) []document.D {
	n := idx.tree.find(value)
	if n == nil {
		return nil
	}
	out := make([]document.D, len(n.docs))
	copy(out, n.docs)
	return out
}

// RangeQuery names the four range operators accepted by GetBetweenBounds.
type RangeQuery struct {
	GT  interface{}
	GTE interface{}
	LT  interface{}
	LTE interface{}

	HasGT, HasGTE, HasLT, HasLTE bool
}

// GetBetweenBounds performs an ordered range scan.
func (idx *Index) GetBetweenBounds(q RangeQuery) []document.D {
	var lo, hi *Bound
	switch {
	case q.HasGT:
		lo = &Bound{Value: q.GT, Inclusive: false}
	case q.HasGTE:
		lo = &Bound{Value: q.GTE, Inclusive: true}
	}
	switch {
	case q.HasLT:
		hi = &Bound{Value: q.LT, Inclusive: false}
	case q.HasLTE:
		hi = &Bound{Value: q.LTE, Inclusive: true}
	}

	var out []document.D
	idx.tree.between(lo, hi, &out)
	return out
}

// GetAll returns every document in the index, via in-order tree traversal.
// A document indexed under multiple keys (array field) appears once per
// key, matching the index's own bucket structure; callers that need
// collection-wide distinct documents (e.g. the _id index fallback scan)
// should use an index whose field never holds array values, as the _id
// index always does.
func (idx *Index) GetAll() []document.D {
	var out []document.D
	idx.tree.inorder(&out)
	return out
}

// Snapshot returns an opaque copy of the index's current tree, for callers
// that want an even cheaper rollback path than BatchUpdate's own journal
// (e.g. ensureIndex building a brand new index that might fail partway
// through a backfill).
func (idx *Index) Snapshot() *Snapshot {
	return &Snapshot{tree: idx.tree.clone()}
}

// Restore puts the index back to the state captured by s.
func (idx *Index) Restore(s *Snapshot) {
	idx.tree = s.tree
}

// Snapshot is an opaque point-in-time copy of an Index's tree.
type Snapshot struct {
	tree *avlTree
}

// distinctElements projects each array element through a type-tagged key
// ($null, $string<v>, $number<v>, $boolean<v>, $date<ms> for
// timestamps, else the element's own value) and returns one representative
// element per distinct projection, preserving first-seen order.
func distinctElements(arr document.A) []interface{} {
	seen := make(map[string]bool, len(arr))
	out := make([]interface{}, 0, len(arr))
	for _, elem := range arr {
		tag, ok := projectionTag(elem)
		if !ok {
			// No stable string tag (nested array/object): treated as
			// always-distinct, since structural dedup of nested
			// containers inside an indexed array isn't needed here.
			out = append(out, elem)
			continue
		}
		if seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, elem)
	}
	return out
}

func projectionTag(v interface{}) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "$null", true
	case string:
		return "$string<" + t + ">", true
	case float64:
		return fmt.Sprintf("$number<%v>", t), true
	case bool:
		return fmt.Sprintf("$boolean<%v>", t), true
	case document.Timestamp:
		return fmt.Sprintf("$date<%d>", t.Time.UnixMilli()), true
	default:
		return "", false
	}
}
