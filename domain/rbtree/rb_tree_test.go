package rbtree

import (
	"math/rand"
	"slices"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func keysOf[K comparable, V any](t *RBTree[K, V]) []K {
	var out []K
	for k := range t.All() {
		out = append(out, k)
	}
	return out
}

func TestRBTreeInsertFindDelete(t *testing.T) {
	tree := NewOrdered[int64, string]()
	_, created := tree.Insert(100, "a")
	require.True(t, created)

	it := tree.Find(100)
	require.True(t, it.Valid())
	assert.Equal(t, "a", it.Value())

	tree.Insert(200, "b")
	assert.Equal(t, int64(100), tree.Min().Key())
	assert.Equal(t, int64(200), tree.Max().Key())

	require.True(t, tree.Delete(100))
	assert.True(t, tree.Find(100).IsEnd())
	assert.Equal(t, 1, tree.Len())
	require.NoError(t, tree.Validate())
}

// --- Edge Cases ---

func TestDeleteNonExistentKey(t *testing.T) {
	tree := NewOrdered[int, int]()
	assert.False(t, tree.Delete(123))

	tree.Insert(1, 1)
	assert.False(t, tree.Delete(123))
	assert.Equal(t, 1, tree.Len())
}

func TestEmptyTreeMinMax(t *testing.T) {
	tree := NewOrdered[int, int]()
	assert.True(t, tree.Min().IsEnd())
	assert.True(t, tree.Max().IsREnd())
	assert.True(t, tree.Root().IsEnd())
	assert.True(t, tree.Find(7).Equal(tree.End()))
	require.NoError(t, tree.Validate())
}

func TestInsertDuplicateKey(t *testing.T) {
	tree := NewOrdered[int, string]()
	first, created := tree.Insert(150, "first")
	require.True(t, created)

	again, created := tree.Insert(150, "second")
	assert.False(t, created)
	assert.True(t, first.Equal(again))
	assert.Equal(t, "first", tree.Find(150).Value())
	assert.Equal(t, 1, tree.Len())
}

func TestAscendingInsertRotatesRoot(t *testing.T) {
	tree := NewOrdered[int, string]()
	tree.Insert(10, "A")
	tree.Insert(20, "B")
	tree.Insert(30, "C")

	var got []string
	for _, v := range tree.All() {
		got = append(got, v)
	}
	assert.Equal(t, []string{"A", "B", "C"}, got)
	assert.Equal(t, []int{10, 20, 30}, keysOf(tree))
	assert.Equal(t, 20, tree.Root().Key())
	require.NoError(t, tree.Validate())
}

func TestDeleteSmallestOfSeven(t *testing.T) {
	tree := NewOrdered[int, int]()
	for i := 1; i <= 7; i++ {
		tree.Insert(i, i*i)
		require.NoError(t, tree.Validate())
	}
	require.True(t, tree.Delete(1))
	require.NoError(t, tree.Validate())

	assert.Equal(t, []int{2, 3, 4, 5, 6, 7}, keysOf(tree))
	assert.Equal(t, 6, tree.Len())
}

func TestDeleteNodeWithTwoChildren(t *testing.T) {
	tree := NewOrdered[int, string]()
	for _, k := range []int{50, 30, 70, 20, 40, 60, 80} {
		tree.Insert(k, strings.Repeat("x", k/10))
	}
	require.True(t, tree.Delete(50))
	require.NoError(t, tree.Validate())
	assert.Equal(t, []int{20, 30, 40, 60, 70, 80}, keysOf(tree))
	assert.Equal(t, "xxxxxx", tree.Find(60).Value())
}

func TestDeleteEverythingInAnyOrder(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	tree := NewOrdered[int, int]()
	keys := rng.Perm(512)
	for _, k := range keys {
		tree.Insert(k, k)
	}
	require.NoError(t, tree.Validate())

	rng.Shuffle(len(keys), func(i, j int) { keys[i], keys[j] = keys[j], keys[i] })
	for i, k := range keys {
		require.True(t, tree.Delete(k), "delete %d", k)
		require.NoError(t, tree.Validate(), "after deleting %d", k)
		require.Equal(t, len(keys)-i-1, tree.Len())
	}
	assert.Equal(t, 0, tree.Len())
	assert.True(t, tree.Root().IsEnd())
	assert.True(t, tree.root == tree.nil)
}

func TestRandomInsertDeleteKeepsInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	tree := NewOrdered[int, int]()
	ref := map[int]int{}

	for i := 0; i < 5000; i++ {
		k := rng.Intn(400)
		if rng.Intn(3) == 0 {
			_, present := ref[k]
			require.Equal(t, present, tree.Delete(k))
			delete(ref, k)
		} else {
			_, present := ref[k]
			_, created := tree.Insert(k, i)
			require.Equal(t, !present, created)
			if !present {
				ref[k] = i
			}
		}
		if i%50 == 0 {
			require.NoError(t, tree.Validate(), "step %d", i)
		}
	}
	require.NoError(t, tree.Validate())

	want := make([]int, 0, len(ref))
	for k := range ref {
		want = append(want, k)
	}
	slices.Sort(want)
	assert.Equal(t, want, keysOf(tree))
	for k, v := range ref {
		assert.Equal(t, v, tree.Find(k).Value())
	}
}

func TestHeightStaysLogarithmic(t *testing.T) {
	tree := NewOrdered[int, struct{}]()
	for i := 0; i < 1<<12; i++ {
		tree.Insert(i, struct{}{})
	}
	require.NoError(t, tree.Validate())
	// 2*log2(n+1) bound
	assert.LessOrEqual(t, tree.Height(), 2*13)
	assert.GreaterOrEqual(t, tree.BlackHeight(), 6)
}

func TestBounds(t *testing.T) {
	tree := NewOrdered[int, int]()
	for _, k := range []int{10, 20, 30, 40} {
		tree.Insert(k, k)
	}
	assert.Equal(t, 20, tree.LowerBound(20).Key())
	assert.Equal(t, 30, tree.UpperBound(20).Key())
	assert.Equal(t, 20, tree.LowerBound(15).Key())
	assert.Equal(t, 10, tree.LowerBound(-5).Key())
	assert.True(t, tree.LowerBound(41).IsEnd())
	assert.True(t, tree.UpperBound(40).IsEnd())
}

type version struct {
	major int
	tag   string
}

func byMajor(a, b version) bool { return a.major < b.major }

func TestCustomLessOrdersDistinctKeys(t *testing.T) {
	tree := New[version, int](byMajor)
	for i, major := range []int{3, 1, 4, 5, 2} {
		_, ok := tree.Insert(version{major, "x"}, i)
		require.True(t, ok)
	}
	_, ok := tree.Insert(version{4, "x"}, 9)
	assert.False(t, ok)

	require.NoError(t, tree.Validate())
	var majors []int
	for k := range tree.All() {
		majors = append(majors, k.major)
	}
	assert.Equal(t, []int{1, 2, 3, 4, 5}, majors)
	assert.Equal(t, 2, tree.Find(version{4, "x"}).Value())
}

func TestIncomparableKeysAreRejected(t *testing.T) {
	tree := New[version, int](byMajor)
	_, ok := tree.Insert(version{1, "a"}, 1)
	require.True(t, ok)
	_, ok = tree.Insert(version{2, "a"}, 2)
	require.True(t, ok)
	_, ok = tree.Insert(version{0, "a"}, 0)
	require.True(t, ok)

	for _, tag := range []string{"b", "c", "d"} {
		k := version{1, tag}
		assertPanicsWith(t, ErrIncomparableKeys, func() { tree.Insert(k, 9) })
		assert.True(t, tree.Find(k).IsEnd())
		assert.False(t, tree.Delete(k))
	}

	// the tree is untouched and a real duplicate is still detected
	assert.Equal(t, 3, tree.Len())
	require.NoError(t, tree.Validate())
	_, ok = tree.Insert(version{1, "a"}, 5)
	assert.False(t, ok)
	assert.Equal(t, 1, tree.Find(version{1, "a"}).Value())
}

func assertPanicsWith(t *testing.T, target error, f func()) {
	t.Helper()
	defer func() {
		r := recover()
		require.NotNil(t, r, "expected a panic")
		err, ok := r.(error)
		require.True(t, ok, "panic value %v is not an error", r)
		assert.True(t, errors.Is(err, target), "panic %v is not %v", err, target)
	}()
	f()
}

func TestCloneIsDeep(t *testing.T) {
	tree := NewOrdered[int, string]()
	for i := 0; i < 64; i++ {
		tree.Insert(i, "orig")
	}
	c := tree.Clone()
	require.NoError(t, c.Validate())
	assert.Equal(t, tree.Height(), c.Height())
	assert.Equal(t, keysOf(tree), keysOf(c))

	c.Find(3).SetValue("copy")
	c.Delete(5)
	tree.Delete(9)

	assert.Equal(t, "orig", tree.Find(3).Value())
	assert.True(t, tree.Find(5).Valid())
	assert.True(t, c.Find(9).Valid())
	assert.NotSame(t, tree.root, c.root)
	require.NoError(t, tree.Validate())
	require.NoError(t, c.Validate())
}

type countingAllocator struct {
	live int
	gets int
}

func (a *countingAllocator) Get() *Node[int, int] {
	a.live++
	a.gets++
	return &Node[int, int]{}
}

func (a *countingAllocator) Put(n *Node[int, int]) {
	if n.left != nil || n.right != nil || n.parent != nil {
		panic("node returned without being reset")
	}
	a.live--
}

func TestAllocatorBookkeeping(t *testing.T) {
	alloc := &countingAllocator{}
	tree := New[int, int](func(a, b int) bool { return a < b }, WithAllocator[int, int](alloc))
	for i := 0; i < 100; i++ {
		tree.Insert(i, i)
	}
	tree.Insert(5, 5)
	assert.Equal(t, 100, alloc.live)

	for i := 0; i < 50; i++ {
		tree.Delete(i * 2)
	}
	assert.Equal(t, 50, alloc.live)

	c := tree.Clone()
	assert.Equal(t, 100, alloc.live)
	c.Clear()
	tree.Clear()
	assert.Equal(t, 0, alloc.live)
	assert.Equal(t, 0, tree.Len())
	require.NoError(t, tree.Validate())
}

func TestSwap(t *testing.T) {
	a := NewOrdered[int, int]()
	b := NewOrdered[int, int]()
	a.Insert(1, 1)
	b.Insert(2, 2)
	b.Insert(3, 3)

	a.Swap(b)
	assert.Equal(t, []int{2, 3}, keysOf(a))
	assert.Equal(t, []int{1}, keysOf(b))
	require.NoError(t, a.Validate())
	require.NoError(t, b.Validate())
}

func TestDump(t *testing.T) {
	tree := NewOrdered[int, int]()
	for _, k := range []int{2, 1, 3} {
		tree.Insert(k, k)
	}
	var sb strings.Builder
	tree.Dump(&sb)
	assert.Equal(t, "    3*\n2\n    1*\n", sb.String())
}
