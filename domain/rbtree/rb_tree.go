package rbtree

import (
	"cmp"

	"github.com/cockroachdb/errors"
)

// ErrIncomparableKeys is the panic value raised when less reports two keys
// as equivalent although they are not ==.
var ErrIncomparableKeys = errors.New("rbtree: keys are equivalent under less but not equal")

type nodeColor uint8

const (
	red   nodeColor = 0
	black nodeColor = 1
)

func (c nodeColor) String() string {
	switch c {
	case red:
		return "red"
	case black:
		return "black"
	default:
		return "invalid"
	}
}

// Node is a tree cell. Its fields are managed by the owning RBTree; a Node
// is only handed out to Allocator implementations for recycling.
type Node[K comparable, V any] struct {
	key    K
	value  V
	color  nodeColor
	left   *Node[K, V]
	right  *Node[K, V]
	parent *Node[K, V]
}

// Allocator supplies and takes back tree nodes. Put receives a zeroed node.
type Allocator[K comparable, V any] interface {
	Get() *Node[K, V]
	Put(*Node[K, V])
}

type heapAllocator[K comparable, V any] struct{}

func (heapAllocator[K, V]) Get() *Node[K, V] { return &Node[K, V]{} }
func (heapAllocator[K, V]) Put(*Node[K, V])  {}

type RBTree[K comparable, V any] struct {
	root  *Node[K, V]
	nil   *Node[K, V] // sentinel (black), never written after New
	size  int
	less  func(a, b K) bool
	alloc Allocator[K, V]
}

type Option[K comparable, V any] func(*RBTree[K, V])

// WithAllocator routes node allocation through a.
func WithAllocator[K comparable, V any](a Allocator[K, V]) Option[K, V] {
	return func(t *RBTree[K, V]) {
		if a != nil {
			t.alloc = a
		}
	}
}

// New constructs an empty tree ordered by less, which must be a strict
// total order over distinct keys: for a != b exactly one of less(a, b) and
// less(b, a) holds. Inserting a key that less cannot tell apart from a
// stored key but that is not == to it panics with ErrIncomparableKeys.
// Lookups of such a key report it as absent.
func New[K comparable, V any](less func(a, b K) bool, opts ...Option[K, V]) *RBTree[K, V] {
	nilNode := &Node[K, V]{color: black}
	t := &RBTree[K, V]{
		root:  nilNode,
		nil:   nilNode,
		less:  less,
		alloc: heapAllocator[K, V]{},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// NewOrdered constructs an empty tree using the natural order of K.
func NewOrdered[K cmp.Ordered, V any](opts ...Option[K, V]) *RBTree[K, V] {
	return New[K, V](cmp.Less[K], opts...)
}

func (t *RBTree[K, V]) Len() int { return t.size }

// Less reports the ordering function the tree was built with.
func (t *RBTree[K, V]) Less() func(a, b K) bool { return t.less }

// Insert adds key with value. If an equal key is already present nothing
// changes and the returned iterator points at the existing entry.
func (t *RBTree[K, V]) Insert(key K, value V) (Iterator[K, V], bool) {
	y := t.nil
	x := t.root
	goLeft := false
	for x != t.nil {
		y = x
		switch {
		case t.less(key, x.key):
			goLeft = true
			x = x.left
		case t.less(x.key, key):
			goLeft = false
			x = x.right
		case key == x.key:
			return t.at(x), false
		default:
			panic(errors.Wrapf(ErrIncomparableKeys, "%v and %v", key, x.key))
		}
	}

	z := t.alloc.Get()
	*z = Node[K, V]{
		key:    key,
		value:  value,
		color:  red,
		left:   t.nil,
		right:  t.nil,
		parent: y,
	}

	if y == t.nil {
		t.root = z
	} else if goLeft {
		y.left = z
	} else {
		y.right = z
	}
	t.size++
	t.insertFix(z)
	return t.at(z), true
}

// Delete removes key. It reports false if key is absent.
func (t *RBTree[K, V]) Delete(key K) bool {
	z := t.find(key)
	if z == t.nil {
		return false
	}
	t.deleteNode(z)
	return true
}

// DeleteAt removes the entry it points at. Iterators to the removed entry,
// and to its in-order successor, are invalidated.
func (t *RBTree[K, V]) DeleteAt(it Iterator[K, V]) bool {
	if it.tree != t || !it.Valid() {
		return false
	}
	t.deleteNode(it.node)
	return true
}

// Find returns an iterator at key, or End() if key is absent.
func (t *RBTree[K, V]) Find(key K) Iterator[K, V] {
	return t.at(t.find(key))
}

// Min returns an iterator at the smallest key, End() when empty.
func (t *RBTree[K, V]) Min() Iterator[K, V] {
	return t.at(t.minimum(t.root))
}

// Max returns an iterator at the largest key, REnd() when empty.
func (t *RBTree[K, V]) Max() Iterator[K, V] {
	n := t.maximum(t.root)
	if n == t.nil {
		return t.REnd()
	}
	return t.at(n)
}

func (t *RBTree[K, V]) Begin() Iterator[K, V] { return t.Min() }

func (t *RBTree[K, V]) End() Iterator[K, V] {
	return Iterator[K, V]{tree: t, node: t.nil, pos: atEnd}
}

func (t *RBTree[K, V]) REnd() Iterator[K, V] {
	return Iterator[K, V]{tree: t, node: t.nil, pos: atREnd}
}

// Root returns an iterator at the root entry, End() when empty.
func (t *RBTree[K, V]) Root() Iterator[K, V] { return t.at(t.root) }

// LowerBound returns the first entry whose key is not less than key.
func (t *RBTree[K, V]) LowerBound(key K) Iterator[K, V] {
	n := t.root
	res := t.nil
	for n != t.nil {
		if !t.less(n.key, key) {
			res = n
			n = n.left
		} else {
			n = n.right
		}
	}
	return t.at(res)
}

// UpperBound returns the first entry whose key is greater than key.
func (t *RBTree[K, V]) UpperBound(key K) Iterator[K, V] {
	n := t.root
	res := t.nil
	for n != t.nil {
		if t.less(key, n.key) {
			res = n
			n = n.left
		} else {
			n = n.right
		}
	}
	return t.at(res)
}

// Clone returns a deep copy: same shape and colors, freshly allocated nodes.
func (t *RBTree[K, V]) Clone() *RBTree[K, V] {
	c := &RBTree[K, V]{
		nil:   &Node[K, V]{color: black},
		size:  t.size,
		less:  t.less,
		alloc: t.alloc,
	}
	c.root = c.copySubtree(t, t.root, c.nil)
	return c
}

// Clear releases every node back to the allocator.
func (t *RBTree[K, V]) Clear() {
	t.freeSubtree(t.root)
	t.root = t.nil
	t.size = 0
}

// Swap exchanges the contents of t and o in O(1).
func (t *RBTree[K, V]) Swap(o *RBTree[K, V]) {
	*t, *o = *o, *t
}

/******************** Internal helpers ********************/

func (t *RBTree[K, V]) at(n *Node[K, V]) Iterator[K, V] {
	if n == t.nil {
		return t.End()
	}
	return Iterator[K, V]{tree: t, node: n, pos: onEntry}
}

func (t *RBTree[K, V]) find(key K) *Node[K, V] {
	n := t.root
	for n != t.nil {
		switch {
		case t.less(key, n.key):
			n = n.left
		case t.less(n.key, key):
			n = n.right
		case key == n.key:
			return n
		default:
			return t.nil
		}
	}
	return t.nil
}

func (t *RBTree[K, V]) minimum(n *Node[K, V]) *Node[K, V] {
	if n == t.nil {
		return t.nil
	}
	for n.left != t.nil {
		n = n.left
	}
	return n
}

func (t *RBTree[K, V]) maximum(n *Node[K, V]) *Node[K, V] {
	if n == t.nil {
		return t.nil
	}
	for n.right != t.nil {
		n = n.right
	}
	return n
}

func (t *RBTree[K, V]) next(n *Node[K, V]) *Node[K, V] {
	if n.right != t.nil {
		return t.minimum(n.right)
	}
	p := n.parent
	for p != t.nil && n == p.right {
		n = p
		p = p.parent
	}
	return p
}

func (t *RBTree[K, V]) prev(n *Node[K, V]) *Node[K, V] {
	if n.left != t.nil {
		return t.maximum(n.left)
	}
	p := n.parent
	for p != t.nil && n == p.left {
		n = p
		p = p.parent
	}
	return p
}

func (t *RBTree[K, V]) copySubtree(src *RBTree[K, V], n, parent *Node[K, V]) *Node[K, V] {
	if n == src.nil {
		return t.nil
	}
	m := t.alloc.Get()
	*m = Node[K, V]{
		key:    n.key,
		value:  n.value,
		color:  n.color,
		parent: parent,
	}
	m.left = t.copySubtree(src, n.left, m)
	m.right = t.copySubtree(src, n.right, m)
	return m
}

func (t *RBTree[K, V]) freeSubtree(n *Node[K, V]) {
	if n == t.nil {
		return
	}
	t.freeSubtree(n.left)
	t.freeSubtree(n.right)
	t.free(n)
}

func (t *RBTree[K, V]) free(n *Node[K, V]) {
	*n = Node[K, V]{}
	t.alloc.Put(n)
}
