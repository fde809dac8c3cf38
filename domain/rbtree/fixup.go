package rbtree

// Rotations, rebalancing and node removal. None of these write through
// the sentinel: when the node filling a vacated slot is the sentinel, its
// parent travels alongside it as a local.

func (t *RBTree[K, V]) leftRotate(x *Node[K, V]) {
	y := x.right
	if y == t.nil {
		return
	}
	x.right = y.left
	if y.left != t.nil {
		y.left.parent = x
	}
	y.parent = x.parent
	if x.parent == t.nil {
		t.root = y
	} else if x == x.parent.left {
		x.parent.left = y
	} else {
		x.parent.right = y
	}
	y.left = x
	x.parent = y
}

func (t *RBTree[K, V]) rightRotate(y *Node[K, V]) {
	x := y.left
	if x == t.nil {
		return
	}
	y.left = x.right
	if x.right != t.nil {
		x.right.parent = y
	}
	x.parent = y.parent
	if y.parent == t.nil {
		t.root = x
	} else if y == y.parent.right {
		y.parent.right = x
	} else {
		y.parent.left = x
	}
	x.right = y
	y.parent = x
}

func (t *RBTree[K, V]) insertFix(z *Node[K, V]) {
	for z != t.root && z.parent.color == red {
		p := z.parent
		g := p.parent // p is red, so it is not the root
		if p == g.left {
			u := g.right
			if u.color == red {
				p.color = black
				u.color = black
				g.color = red
				z = g
				continue
			}
			if z == p.right {
				z = p
				t.leftRotate(z)
				p = z.parent
			}
			p.color = black
			g.color = red
			t.rightRotate(g)
		} else {
			u := g.left
			if u.color == red {
				p.color = black
				u.color = black
				g.color = red
				z = g
				continue
			}
			if z == p.left {
				z = p
				t.rightRotate(z)
				p = z.parent
			}
			p.color = black
			g.color = red
			t.leftRotate(g)
		}
	}
	t.root.color = black
}

// transplant puts v where u was. v.parent is left alone when v is the sentinel.
func (t *RBTree[K, V]) transplant(u, v *Node[K, V]) {
	if u.parent == t.nil {
		t.root = v
	} else if u == u.parent.left {
		u.parent.left = v
	} else {
		u.parent.right = v
	}
	if v != t.nil {
		v.parent = u.parent
	}
}

func (t *RBTree[K, V]) deleteNode(z *Node[K, V]) {
	if z.left != t.nil && z.right != t.nil {
		// Move the successor's entry up and remove the successor instead;
		// it has no left child.
		s := t.minimum(z.right)
		z.key, z.value = s.key, s.value
		z = s
	}

	x := z.left
	if x == t.nil {
		x = z.right
	}
	parent := z.parent
	removed := z.color

	t.transplant(z, x)
	t.size--
	t.free(z)

	if removed == black {
		t.deleteFix(x, parent)
	}
}

// deleteFix absorbs the missing black carried by x. parent is x's parent,
// which is tracked here rather than read from x so x may be the sentinel.
func (t *RBTree[K, V]) deleteFix(x, parent *Node[K, V]) {
	for x != t.root && x.color == black {
		if x == parent.left {
			w := parent.right
			if w.color == red {
				w.color = black
				parent.color = red
				t.leftRotate(parent)
				w = parent.right
			}
			if w.left.color == black && w.right.color == black {
				w.color = red
				x = parent
				parent = x.parent
				continue
			}
			if w.right.color == black {
				w.left.color = black
				w.color = red
				t.rightRotate(w)
				w = parent.right
			}
			w.color = parent.color
			parent.color = black
			w.right.color = black
			t.leftRotate(parent)
			x = t.root
		} else {
			w := parent.left
			if w.color == red {
				w.color = black
				parent.color = red
				t.rightRotate(parent)
				w = parent.left
			}
			if w.left.color == black && w.right.color == black {
				w.color = red
				x = parent
				parent = x.parent
				continue
			}
			if w.left.color == black {
				w.right.color = black
				w.color = red
				t.leftRotate(w)
				w = parent.left
			}
			w.color = parent.color
			parent.color = black
			w.left.color = black
			t.rightRotate(parent)
			x = t.root
		}
	}
	if x != t.nil {
		x.color = black
	}
}
