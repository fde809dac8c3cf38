package treemap

import (
	"cmp"
	"iter"

	"github.com/cockroachdb/errors"

	"ordmap/domain/rbtree"
	"ordmap/infra/memory"
)

// ErrOutOfRange is returned by At for a key that is not in the map.
var ErrOutOfRange = errors.New("treemap: key out of range")

type Iterator[K comparable, V any] = rbtree.Iterator[K, V]

type Map[K comparable, V any] struct {
	tree *rbtree.RBTree[K, V]
	pool *memory.Pool[rbtree.Node[K, V]]
}

// New creates an empty map ordered by less. less must be a strict total
// order over distinct keys; see rbtree.New.
func New[K comparable, V any](less func(a, b K) bool) *Map[K, V] {
	pool := memory.NewPool(func() *rbtree.Node[K, V] {
		return &rbtree.Node[K, V]{}
	})
	return &Map[K, V]{
		tree: rbtree.New[K, V](less, rbtree.WithAllocator[K, V](pool)),
		pool: pool,
	}
}

// NewOrdered creates an empty map using the natural order of K.
func NewOrdered[K cmp.Ordered, V any]() *Map[K, V] {
	return New[K, V](cmp.Less[K])
}

// FromSeq builds a map from seq. Later duplicates of a key are ignored.
func FromSeq[K cmp.Ordered, V any](seq iter.Seq2[K, V]) *Map[K, V] {
	m := NewOrdered[K, V]()
	m.InsertAll(seq)
	return m
}

func (m *Map[K, V]) Len() int    { return m.tree.Len() }
func (m *Map[K, V]) Empty() bool { return m.tree.Len() == 0 }

// KeyLess returns the ordering function of the map.
func (m *Map[K, V]) KeyLess() func(a, b K) bool { return m.tree.Less() }

// Insert adds key with value unless key is already present. The iterator
// points at the entry for key in either case.
func (m *Map[K, V]) Insert(key K, value V) (Iterator[K, V], bool) {
	return m.tree.Insert(key, value)
}

// InsertAll inserts every pair of seq and returns how many were new.
func (m *Map[K, V]) InsertAll(seq iter.Seq2[K, V]) int {
	n := 0
	for k, v := range seq {
		if _, ok := m.tree.Insert(k, v); ok {
			n++
		}
	}
	return n
}

// Set stores value under key, replacing any previous value. It reports
// whether the key was new.
func (m *Map[K, V]) Set(key K, value V) bool {
	it, created := m.tree.Insert(key, value)
	if !created {
		it.SetValue(value)
	}
	return created
}

// Index returns a pointer to the value stored under key, inserting the
// zero value first if key is absent.
func (m *Map[K, V]) Index(key K) *V {
	var zero V
	it, _ := m.tree.Insert(key, zero)
	return it.ValueRef()
}

// At returns the value under key or an error wrapping ErrOutOfRange.
func (m *Map[K, V]) At(key K) (V, error) {
	it := m.tree.Find(key)
	if !it.Valid() {
		var zero V
		return zero, errors.Wrapf(ErrOutOfRange, "key %v", key)
	}
	return it.Value(), nil
}

func (m *Map[K, V]) Get(key K) (V, bool) {
	it := m.tree.Find(key)
	if !it.Valid() {
		var zero V
		return zero, false
	}
	return it.Value(), true
}

// Count is 1 when key is present and 0 otherwise.
func (m *Map[K, V]) Count(key K) int {
	if m.tree.Find(key).Valid() {
		return 1
	}
	return 0
}

func (m *Map[K, V]) Contains(key K) bool { return m.Count(key) == 1 }

// Erase removes key and returns the number of entries removed.
func (m *Map[K, V]) Erase(key K) int {
	if m.tree.Delete(key) {
		return 1
	}
	return 0
}

// EraseAt removes the entry at it.
func (m *Map[K, V]) EraseAt(it Iterator[K, V]) bool {
	return m.tree.DeleteAt(it)
}

// EraseRange removes [first, last) and returns the number of entries
// removed. Both iterators are invalid afterwards.
func (m *Map[K, V]) EraseRange(first, last Iterator[K, V]) int {
	var doomed []K
	for it := first; it.Valid() && !it.Equal(last); it.Next() {
		doomed = append(doomed, it.Key())
	}
	for _, k := range doomed {
		m.tree.Delete(k)
	}
	return len(doomed)
}

func (m *Map[K, V]) Find(key K) Iterator[K, V]       { return m.tree.Find(key) }
func (m *Map[K, V]) LowerBound(key K) Iterator[K, V] { return m.tree.LowerBound(key) }
func (m *Map[K, V]) UpperBound(key K) Iterator[K, V] { return m.tree.UpperBound(key) }

// EqualRange returns [LowerBound(key), UpperBound(key)).
func (m *Map[K, V]) EqualRange(key K) (Iterator[K, V], Iterator[K, V]) {
	return m.tree.LowerBound(key), m.tree.UpperBound(key)
}

func (m *Map[K, V]) Begin() Iterator[K, V] { return m.tree.Begin() }
func (m *Map[K, V]) End() Iterator[K, V]   { return m.tree.End() }
func (m *Map[K, V]) Last() Iterator[K, V]  { return m.tree.Max() }
func (m *Map[K, V]) REnd() Iterator[K, V]  { return m.tree.REnd() }

func (m *Map[K, V]) All() iter.Seq2[K, V]      { return m.tree.All() }
func (m *Map[K, V]) Backward() iter.Seq2[K, V] { return m.tree.Backward() }

// Range yields the entries with from <= key < to in ascending order.
func (m *Map[K, V]) Range(from, to K) iter.Seq2[K, V] {
	less := m.tree.Less()
	return func(yield func(K, V) bool) {
		for it := m.tree.LowerBound(from); it.Valid(); it.Next() {
			k, v := it.Entry()
			if !less(k, to) {
				return
			}
			if !yield(k, v) {
				return
			}
		}
	}
}

func (m *Map[K, V]) Keys() []K {
	out := make([]K, 0, m.Len())
	for k := range m.tree.All() {
		out = append(out, k)
	}
	return out
}

func (m *Map[K, V]) Values() []V {
	out := make([]V, 0, m.Len())
	for _, v := range m.tree.All() {
		out = append(out, v)
	}
	return out
}

// Clone returns a deep copy. The copy allocates from the same pool.
func (m *Map[K, V]) Clone() *Map[K, V] {
	return &Map[K, V]{tree: m.tree.Clone(), pool: m.pool}
}

func (m *Map[K, V]) Swap(o *Map[K, V]) {
	m.tree, o.tree = o.tree, m.tree
	m.pool, o.pool = o.pool, m.pool
}

func (m *Map[K, V]) Clear() { m.tree.Clear() }

// Validate checks the red-black invariants of the underlying tree.
func (m *Map[K, V]) Validate() error { return m.tree.Validate() }

// Height and BlackHeight expose the shape of the underlying tree.
func (m *Map[K, V]) Height() int      { return m.tree.Height() }
func (m *Map[K, V]) BlackHeight() int { return m.tree.BlackHeight() }

// LiveNodes reports nodes allocated from the pool and not yet released.
// Clones share their origin's pool and are included.
func (m *Map[K, V]) LiveNodes() int64 { return m.pool.InUse() }
