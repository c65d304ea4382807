package index

import (
	"github.com/arthur-debert/nedb/document"
)

// node is one key of the AVL tree backing an Index. docs holds every
// document that shares this key: exactly one when the owning index is
// unique, any number otherwise.
type node struct {
	key         interface{}
	docs        []document.D
	left, right *node
	height      int
}

func height(n *node) int {
	if n == nil {
		return 0
	}
	return n.height
}

func balanceFactor(n *node) int {
	if n == nil {
		return 0
	}
	return height(n.left) - height(n.right)
}

func updateHeight(n *node) {
	lh, rh := height(n.left), height(n.right)
	if lh > rh {
		n.height = lh + 1
	} else {
		n.height = rh + 1
	}
}

func rotateRight(y *node) *node {
	x := y.left
	y.left = x.right
	x.right = y
	updateHeight(y)
	updateHeight(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	x.right = y.left
	y.left = x
	updateHeight(x)
	updateHeight(y)
	return y
}

func rebalance(n *node) *node {
	updateHeight(n)
	bf := balanceFactor(n)
	if bf > 1 {
		if balanceFactor(n.left) < 0 {
			n.left = rotateLeft(n.left)
		}
		return rotateRight(n)
	}
	if bf < -1 {
		if balanceFactor(n.right) > 0 {
			n.right = rotateRight(n.right)
		}
		return rotateLeft(n)
	}
	return n
}

// avlTree is an ordered keyed multimap over document values under the total
// order from document.Compare. It never reorders equal-keyed documents: new
// documents for an existing key are appended to that key's bucket.
type avlTree struct {
	root *node
	cmp  document.StringComparator
}

func newAVLTree(cmp document.StringComparator) *avlTree {
	return &avlTree{cmp: cmp}
}

// insert adds doc under key, appending to the existing bucket if key is
// already present. It never fails; uniqueness is enforced by the caller
// (Index), which must check find before calling insert when the
// index is unique.
func (t *avlTree) insert(key interface{}, doc document.D) {
	t.root = t.insertNode(t.root, key, doc)
}

func (t *avlTree) insertNode(n *node, key interface{}, doc document.D) *node {
	if n == nil {
		return &node{key: key, docs: []document.D{doc}, height: 1}
	}
	c := document.Compare(key, n.key, t.cmp)
	switch {
	case c < 0:
		n.left = t.insertNode(n.left, key, doc)
	case c > 0:
		n.right = t.insertNode(n.right, key, doc)
	default:
		n.docs = append(n.docs, doc)
		return n
	}
	return rebalance(n)
}

// find returns the node holding key, or nil.
func (t *avlTree) find(key interface{}) *node {
	n := t.root
	for n != nil {
		c := document.Compare(key, n.key, t.cmp)
		switch {
		case c < 0:
			n = n.left
		case c > 0:
			n = n.right
		default:
			return n
		}
	}
	return nil
}

// removeDoc removes the most recently added document whose _id equals doc's
// _id from key's bucket, so undoing a just-made insert never drops an older
// entry that shares the _id. If the bucket becomes empty, the node itself is
// removed from the tree. Reports whether anything was removed.
func (t *avlTree) removeDoc(key interface{}, doc document.D) bool {
	n := t.find(key)
	if n == nil {
		return false
	}
	id := doc["_id"]
	idx := -1
	for i := len(n.docs) - 1; i >= 0; i-- {
		if document.Equal(n.docs[i]["_id"], id) {
			idx = i
			break
		}
	}
	if idx == -1 {
		return false
	}
	n.docs = append(n.docs[:idx], n.docs[idx+1:]...)
	if len(n.docs) == 0 {
		t.root = t.deleteNode(t.root, key)
	}
	return true
}

func (t *avlTree) deleteNode(n *node, key interface{}) *node {
	if n == nil {
		return nil
	}
	c := document.Compare(key, n.key, t.cmp)
	switch {
	case c < 0:
		n.left = t.deleteNode(n.left, key)
	case c > 0:
		n.right = t.deleteNode(n.right, key)
	default:
		if n.left == nil {
			return n.right
		}
		if n.right == nil {
			return n.left
		}
		succ := n.right
		for succ.left != nil {
			succ = succ.left
		}
		n.key, n.docs = succ.key, succ.docs
		n.right = t.deleteNode(n.right, succ.key)
	}
	return rebalance(n)
}

// inorder appends the docs of every node to out, in ascending key order.
func (t *avlTree) inorder(out *[]document.D) {
	inorderNode(t.root, out)
}

func inorderNode(n *node, out *[]document.D) {
	if n == nil {
		return
	}
	inorderNode(n.left, out)
	*out = append(*out, n.docs...)
	inorderNode(n.right, out)
}

// Bound is one end of a range scan. A nil *Bound leaves that side
// unconstrained; Value may legitimately be document.Undefined, nil (JSON
// null) or any other document value, so unboundedness is modeled by the
// pointer itself rather than by a sentinel value.
type Bound struct {
	Value     interface{}
	Inclusive bool
}

// between appends docs for every node whose key lies within [lo, hi] (each
// bound open or closed per its Inclusive flag), in ascending key order.
func (t *avlTree) between(lo, hi *Bound, out *[]document.D) {
	betweenNode(t.root, lo, hi, t.cmp, out)
}

func betweenNode(n *node, lo, hi *Bound, cmp document.StringComparator, out *[]document.D) {
	if n == nil {
		return
	}
	belowLo := lo != nil && belowBound(n.key, lo, cmp)
	aboveHi := hi != nil && aboveBound(n.key, hi, cmp)

	if !belowLo {
		betweenNode(n.left, lo, hi, cmp, out)
	}
	if !belowLo && !aboveHi {
		*out = append(*out, n.docs...)
	}
	if !aboveHi {
		betweenNode(n.right, lo, hi, cmp, out)
	}
}

func belowBound(key interface{}, lo *Bound, cmp document.StringComparator) bool {
	c := document.Compare(key, lo.Value, cmp)
	if lo.Inclusive {
		return c < 0
	}
	return c <= 0
}

func aboveBound(key interface{}, hi *Bound, cmp document.StringComparator) bool {
	c := document.Compare(key, hi.Value, cmp)
	if hi.Inclusive {
		return c > 0
	}
	return c >= 0
}

// clone returns a structural copy of the tree, sharing no node pointers
// with the original — used to snapshot a tree before a batch mutation so a
// failure can restore it in O(1) by swapping the snapshot back in.
func (t *avlTree) clone() *avlTree {
	return &avlTree{root: cloneNode(t.root), cmp: t.cmp}
}

func cloneNode(n *node) *node {
	if n == nil {
		return nil
	}
	docsCopy := make([]document.D, len(n.docs))
	copy(docsCopy, n.docs)
	return &node{
		key:    n.key,
		docs:   docsCopy,
		left:   cloneNode(n.left),
		right:  cloneNode(n.right),
		height: n.height,
	}
}
