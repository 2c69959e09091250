package tree

import (
	"go.uber.org/zap"

	"github.com/benz9527/xtree/lib/infra"
)

// References:
// https://en.wikipedia.org/wiki/AVL_tree#Rebalancing
// Introduction to Algorithms (3rd), problem 13-3.
//
// AVL properties:
// p1. height(n) == 1 + max(height(n.left), height(n.right)),
//   the sentinel's height is -1 so a leaf's height is 0.
// p2. |height(n.left) - height(n.right)| <= 1 for every node.
// (Conclusion) The tree height is at most ~1.44*log2(n+2).

// AVLTree keeps the BST core balanced by rotations after every
// insert and delete. Search, min/max, succ/pred and the walks are
// the BST core ones.
type AVLTree[K infra.OrderedKey] struct {
	BinarySearchTree[K]
	rotations uint64
}

func NewAVLTree[K infra.OrderedKey](opts ...TreeOption[K]) *AVLTree[K] {
	return &AVLTree[K]{
		BinarySearchTree: BinarySearchTree[K]{
			treeCore: newTreeCore[K](newTreeConfig[K](opts...)),
		},
	}
}

func (t *AVLTree[K]) Insert(key K) Handle[K] {
	z := t.insertNode(key)
	t.rebalance(z)
	return t.arena.handle(z)
}

// Delete rebalances from the parent of the node physically unlinked,
// which is the successor's former parent when h has two children.
func (t *AVLTree[K]) Delete(h Handle[K]) error {
	fixFrom, err := t.remove(h)
	if err != nil {
		return err
	}
	t.rebalance(fixFrom)
	return nil
}

// Height is the root height, -1 for the empty tree.
func (t *AVLTree[K]) Height() int {
	return int(t.arena.height(t.root))
}

// Balance returns height(left) - height(right) of h's node.
func (t *AVLTree[K]) Balance(h Handle[K]) (int, error) {
	x, err := t.resolveNonSentinel(h)
	if err != nil {
		return 0, err
	}
	return int(t.balanceFactor(x)), nil
}

func (t *AVLTree[K]) Stats() TreeStats {
	stats := t.stats(t.Height())
	stats.Rotations = t.rotations
	return stats
}

// Release also resets the rotation counter.
func (t *AVLTree[K]) Release() {
	t.treeCore.Release()
	t.rotations = 0
}

func (t *AVLTree[K]) updateHeight(x nodeIdx) {
	t.arena.setHeight(x, 1+max(t.arena.height(t.arena.left(x)), t.arena.height(t.arena.right(x))))
}

func (t *AVLTree[K]) balanceFactor(x nodeIdx) int32 {
	return t.arena.height(t.arena.left(x)) - t.arena.height(t.arena.right(x))
}

/*
rebalance walks from x up to the root, inclusive.

rb1: balance(X) < -1 (right heavy).
(1) balance(R) <= 0, right-right case, left rotate X.

	  X                        R
	 / \                      / \
	L   R    leftRotate(X)   X   Rr
	   / \   ============>  / \
	  Rl  Rr               L   Rl

(2) balance(R) >= 1, right-left case, right rotate R then left rotate X.

	  X                      X                         Rl
	 / \                    / \                       /  \
	L   R   rightRotate(R) L   Rl    leftRotate(X)   X    R
	   /    =============>       \   ============>  /    /
	  Rl                          R                L    ..

balance(R) == 0 only happens after a delete, a single rotation is
enough and the double one would unbalance R.

rb2: balance(X) > 1 (left heavy), mirrored.
(1) balance(L) >= 0, left-left case, right rotate X.
(2) balance(L) <= -1, left-right case, left rotate L then right rotate X.

The walk keeps going after a fix-up, the ancestors' heights may
still change.
*/
func (t *AVLTree[K]) rebalance(x nodeIdx) {
	for ; x != nilIdx; x = t.arena.parent(x) {
		t.updateHeight(x)
		switch bf := t.balanceFactor(x); {
		case /* rb1 */ bf < -1:
			if r := t.arena.right(x); /* rb1 (2) */ t.balanceFactor(r) >= 1 {
				t.rightRotate(r)
			}
			t.leftRotate(x)
		case /* rb2 */ bf > 1:
			if l := t.arena.left(x); /* rb2 (2) */ t.balanceFactor(l) <= -1 {
				t.leftRotate(l)
			}
			t.rightRotate(x)
		default:
		}
	}
}

/*
		 |                         |
		 X                         Y
		/ \     leftRotate(X)     / \
	   L   Y    ============>    X   Yr
		  / \                   / \
		Yl   Yr                L   Yl
*/
func (t *AVLTree[K]) leftRotate(x nodeIdx) {
	arena := t.arena
	if x == nilIdx || arena.right(x) == nilIdx {
		// impossible run to here
		panic( /* debug assertion */ "[xtree] left rotate node x is nil or x.right is nil")
	}

	p, y := arena.parent(x), arena.right(x)
	dir := t.direction(x)
	arena.setRight(x, arena.left(y))
	arena.setLeft(y, x)

	arena.fixLink(x)
	arena.fixLink(y)

	switch dir {
	case Root:
		t.root = y
	case Left:
		arena.setLeft(p, y)
	case Right:
		arena.setRight(p, y)
	default:
		// impossible run to here
		panic( /* debug assertion */ "[xtree] unknown node direction to left-rotate")
	}
	arena.setParent(y, p)

	// x is y's child now.
	t.updateHeight(x)
	t.updateHeight(y)
	t.rotations++
	if t.trace {
		t.logger.Debug("[xtree] left rotate",
			zap.Any("x", arena.key(x)),
			zap.Any("y", arena.key(y)),
		)
	}
}

/*
		 |                         |
		 X                         Y
		/ \     rightRotate(X)    / \
	   Y   R    ============>   Yl   X
	  / \                           / \
	Yl   Yr                       Yr   R
*/
func (t *AVLTree[K]) rightRotate(x nodeIdx) {
	arena := t.arena
	if x == nilIdx || arena.left(x) == nilIdx {
		// impossible run to here
		panic( /* debug assertion */ "[xtree] right rotate node x is nil or x.left is nil")
	}

	p, y := arena.parent(x), arena.left(x)
	dir := t.direction(x)
	arena.setLeft(x, arena.right(y))
	arena.setRight(y, x)

	arena.fixLink(x)
	arena.fixLink(y)

	switch dir {
	case Root:
		t.root = y
	case Left:
		arena.setLeft(p, y)
	case Right:
		arena.setRight(p, y)
	default:
		// impossible run to here
		panic( /* debug assertion */ "[xtree] unknown node direction to right-rotate")
	}
	arena.setParent(y, p)

	t.updateHeight(x)
	t.updateHeight(y)
	t.rotations++
	if t.trace {
		t.logger.Debug("[xtree] right rotate",
			zap.Any("x", arena.key(x)),
			zap.Any("y", arena.key(y)),
		)
	}
}
