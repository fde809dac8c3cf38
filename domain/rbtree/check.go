package rbtree

import (
	"fmt"
	"io"
	"strings"

	"github.com/cockroachdb/errors"
)

// Validate walks the whole tree and checks the coloring, black-height,
// ordering and parent-link invariants as well as the cached size.
func (t *RBTree[K, V]) Validate() error {
	if t.nil.color != black {
		return errors.AssertionFailedf("sentinel is %s", t.nil.color)
	}
	if t.nil.left != nil || t.nil.right != nil || t.nil.parent != nil {
		return errors.AssertionFailedf("sentinel links were written")
	}
	if t.root == t.nil {
		if t.size != 0 {
			return errors.AssertionFailedf("empty tree reports size %d", t.size)
		}
		return nil
	}
	if t.root.color != black {
		return errors.AssertionFailedf("root %v is %s", t.root.key, t.root.color)
	}

	count := 0
	if _, err := t.check(t.root, t.nil, nil, nil, &count); err != nil {
		return err
	}
	if count != t.size {
		return errors.AssertionFailedf("counted %d nodes, size is %d", count, t.size)
	}
	return nil
}

// check returns the black-height of n, counting the sentinel.
func (t *RBTree[K, V]) check(n, parent *Node[K, V], lo, hi *K, count *int) (int, error) {
	if n == t.nil {
		return 1, nil
	}
	if n.parent != parent {
		return 0, errors.AssertionFailedf("node %v has a stale parent link", n.key)
	}
	if n.color != red && n.color != black {
		return 0, errors.AssertionFailedf("node %v has color %d", n.key, n.color)
	}
	if n.color == red && (n.left.color == red || n.right.color == red) {
		return 0, errors.AssertionFailedf("red node %v has a red child", n.key)
	}
	if lo != nil && !t.less(*lo, n.key) {
		return 0, errors.AssertionFailedf("node %v is not greater than ancestor %v", n.key, *lo)
	}
	if hi != nil && !t.less(n.key, *hi) {
		return 0, errors.AssertionFailedf("node %v is not less than ancestor %v", n.key, *hi)
	}
	*count++

	lh, err := t.check(n.left, n, lo, &n.key, count)
	if err != nil {
		return 0, err
	}
	rh, err := t.check(n.right, n, &n.key, hi, count)
	if err != nil {
		return 0, err
	}
	if lh != rh {
		return 0, errors.AssertionFailedf("node %v: black-height %d on the left, %d on the right", n.key, lh, rh)
	}
	if n.color == black {
		lh++
	}
	return lh, nil
}

// Height is the number of nodes on the longest root-to-leaf path.
func (t *RBTree[K, V]) Height() int {
	return t.height(t.root)
}

func (t *RBTree[K, V]) height(n *Node[K, V]) int {
	if n == t.nil {
		return 0
	}
	return 1 + max(t.height(n.left), t.height(n.right))
}

// BlackHeight counts the black nodes from the root down to the sentinel,
// not counting the sentinel itself.
func (t *RBTree[K, V]) BlackHeight() int {
	h := 0
	for n := t.root; n != t.nil; n = n.left {
		if n.color == black {
			h++
		}
	}
	return h
}

// Dump prints the tree sideways, right subtree on top. Red nodes are
// marked with an asterisk.
func (t *RBTree[K, V]) Dump(w io.Writer) {
	t.dump(w, t.root, 0)
}

func (t *RBTree[K, V]) dump(w io.Writer, n *Node[K, V], depth int) {
	if n == t.nil {
		return
	}
	t.dump(w, n.right, depth+1)
	mark := ""
	if n.color == red {
		mark = "*"
	}
	fmt.Fprintf(w, "%s%v%s\n", strings.Repeat("    ", depth), n.key, mark)
	t.dump(w, n.left, depth+1)
}
