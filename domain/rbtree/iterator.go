package rbtree

import (
	"iter"

	"github.com/cockroachdb/errors"
)

// ErrIteratorExhausted is the panic value raised when an End or REnd
// iterator is dereferenced.
var ErrIteratorExhausted = errors.New("rbtree: iterator is not positioned on an entry")

type position uint8

const (
	onEntry position = iota
	atEnd
	atREnd
)

// Iterator is a position in a tree: on an entry, past the largest entry
// (End) or before the smallest entry (REnd). It does not own the tree and
// must not outlive it. Removing the entry an iterator points at invalidates
// that iterator.
type Iterator[K comparable, V any] struct {
	tree *RBTree[K, V]
	node *Node[K, V]
	pos  position
}

// Valid reports whether it points at an entry.
func (it Iterator[K, V]) Valid() bool {
	return it.tree != nil && it.pos == onEntry
}

func (it Iterator[K, V]) IsEnd() bool  { return it.tree != nil && it.pos == atEnd }
func (it Iterator[K, V]) IsREnd() bool { return it.tree != nil && it.pos == atREnd }

// Equal reports whether both iterators denote the same position.
func (it Iterator[K, V]) Equal(o Iterator[K, V]) bool {
	return it.tree == o.tree && it.pos == o.pos && it.node == o.node
}

func (it Iterator[K, V]) Key() K {
	it.mustBeValid()
	return it.node.key
}

func (it Iterator[K, V]) Value() V {
	it.mustBeValid()
	return it.node.value
}

// Entry returns key and value together.
func (it Iterator[K, V]) Entry() (K, V) {
	it.mustBeValid()
	return it.node.key, it.node.value
}

// SetValue replaces the value in place. Keys are immutable.
func (it Iterator[K, V]) SetValue(v V) {
	it.mustBeValid()
	it.node.value = v
}

// ValueRef returns a pointer to the stored value. It stays usable until the
// entry is removed or the tree is cleared.
func (it Iterator[K, V]) ValueRef() *V {
	it.mustBeValid()
	return &it.node.value
}

// Next advances to the in-order successor and reports whether it now
// points at an entry. From REnd it moves to the smallest entry; at End it
// stays put and returns false.
func (it *Iterator[K, V]) Next() bool {
	if it.tree == nil {
		return false
	}
	t := it.tree
	switch it.pos {
	case atEnd:
		return false
	case atREnd:
		*it = t.at(t.minimum(t.root))
	default:
		*it = t.at(t.next(it.node))
	}
	return it.pos == onEntry
}

// Prev steps to the in-order predecessor and reports whether it now points
// at an entry. From End it moves to the largest entry; at REnd it stays put
// and returns false.
func (it *Iterator[K, V]) Prev() bool {
	if it.tree == nil {
		return false
	}
	t := it.tree
	var n *Node[K, V]
	switch it.pos {
	case atREnd:
		return false
	case atEnd:
		n = t.maximum(t.root)
	default:
		n = t.prev(it.node)
	}
	if n == t.nil {
		*it = t.REnd()
		return false
	}
	*it = t.at(n)
	return true
}

func (it Iterator[K, V]) mustBeValid() {
	if !it.Valid() {
		panic(ErrIteratorExhausted)
	}
}

// All yields entries in ascending key order.
func (t *RBTree[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for n := t.minimum(t.root); n != t.nil; n = t.next(n) {
			if !yield(n.key, n.value) {
				return
			}
		}
	}
}

// Backward yields entries in descending key order.
func (t *RBTree[K, V]) Backward() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for n := t.maximum(t.root); n != t.nil; n = t.prev(n) {
			if !yield(n.key, n.value) {
				return
			}
		}
	}
}
