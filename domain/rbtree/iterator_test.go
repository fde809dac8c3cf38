package rbtree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sevenTree() *RBTree[int, string] {
	tree := NewOrdered[int, string]()
	for _, k := range []int{4, 2, 6, 1, 3, 5, 7} {
		tree.Insert(k, string(rune('a'+k-1)))
	}
	return tree
}

func TestIteratorForwardReachesEnd(t *testing.T) {
	tree := sevenTree()
	var got []int
	it := tree.Begin()
	for ; it.Valid(); it.Next() {
		got = append(got, it.Key())
	}
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7}, got)
	assert.True(t, it.IsEnd())
	assert.True(t, it.Equal(tree.End()))

	// stepping past End is refused and leaves the position unchanged
	assert.False(t, it.Next())
	assert.True(t, it.IsEnd())
}

func TestIteratorBackwardFromEnd(t *testing.T) {
	tree := sevenTree()
	var got []int
	it := tree.End()
	for it.Prev() {
		got = append(got, it.Key())
	}
	assert.Equal(t, []int{7, 6, 5, 4, 3, 2, 1}, got)
	assert.True(t, it.IsREnd())
	assert.False(t, it.Prev())

	// the sequence restarts forward from REnd
	require.True(t, it.Next())
	assert.Equal(t, 1, it.Key())
}

func TestIteratorOnEmptyTree(t *testing.T) {
	tree := NewOrdered[int, int]()
	it := tree.Begin()
	assert.True(t, it.IsEnd())
	assert.False(t, it.Prev())
	assert.True(t, it.IsREnd())
	assert.False(t, it.Next())
	assert.True(t, it.IsEnd())
}

func TestIteratorDereferenceAtEndPanics(t *testing.T) {
	tree := sevenTree()
	assert.PanicsWithValue(t, ErrIteratorExhausted, func() { tree.End().Key() })
	assert.PanicsWithValue(t, ErrIteratorExhausted, func() { tree.REnd().Value() })
	assert.PanicsWithValue(t, ErrIteratorExhausted, func() { tree.Find(99).SetValue("x") })

	var zero Iterator[int, string]
	assert.False(t, zero.Valid())
	assert.False(t, zero.Next())
	assert.Panics(t, func() { zero.Key() })
}

func TestIteratorSetValue(t *testing.T) {
	tree := sevenTree()
	it := tree.Find(3)
	it.SetValue("three")
	*tree.Find(4).ValueRef() = "four"

	assert.Equal(t, "three", tree.Find(3).Value())
	k, v := tree.Find(4).Entry()
	assert.Equal(t, 4, k)
	assert.Equal(t, "four", v)
	require.NoError(t, tree.Validate())
}

func TestIteratorMidSequence(t *testing.T) {
	tree := sevenTree()
	it := tree.Find(4)
	require.True(t, it.Prev())
	assert.Equal(t, 3, it.Key())
	require.True(t, it.Next())
	require.True(t, it.Next())
	assert.Equal(t, 5, it.Key())

	last := tree.Max()
	assert.False(t, last.Next())
	assert.True(t, last.IsEnd())
}

func TestDeleteAt(t *testing.T) {
	tree := sevenTree()
	require.True(t, tree.DeleteAt(tree.Find(4)))
	assert.False(t, tree.DeleteAt(tree.End()))
	assert.False(t, tree.DeleteAt(sevenTree().Find(1)))
	require.NoError(t, tree.Validate())
	assert.Equal(t, []int{1, 2, 3, 5, 6, 7}, keysOf(tree))
}

func TestAllAndBackwardStopEarly(t *testing.T) {
	tree := sevenTree()
	var fwd, back []int
	for k := range tree.All() {
		if k > 3 {
			break
		}
		fwd = append(fwd, k)
	}
	for k := range tree.Backward() {
		if k < 5 {
			break
		}
		back = append(back, k)
	}
	assert.Equal(t, []int{1, 2, 3}, fwd)
	assert.Equal(t, []int{7, 6, 5}, back)
}
