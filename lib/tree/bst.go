package tree

import (
	"go.uber.org/zap"

	"github.com/benz9527/xtree/lib/infra"
)

// BinarySearchTree is an unbalanced ordered tree. Duplicated keys are
// kept, a new key equal to an existing one is placed on its left.
type BinarySearchTree[K infra.OrderedKey] struct {
	treeCore[K]
}

func NewBinarySearchTree[K infra.OrderedKey](opts ...TreeOption[K]) *BinarySearchTree[K] {
	return &BinarySearchTree[K]{
		treeCore: newTreeCore[K](newTreeConfig[K](opts...)),
	}
}

func (t *BinarySearchTree[K]) search(key K) nodeIdx {
	x := t.root
	for x != nilIdx {
		res := t.kcmp(key, t.arena.key(x))
		if /* equal */ res == 0 {
			return x
		} else /* less */ if res < 0 {
			x = t.arena.left(x)
		} else /* greater */ {
			x = t.arena.right(x)
		}
	}
	return nilIdx
}

// insertNode always succeeds. Ties go left.
func (t *BinarySearchTree[K]) insertNode(key K) nodeIdx {
	z := t.arena.alloc(key)
	y, x, dir := nilIdx, t.root, Root
	for x != nilIdx {
		y = x
		if t.kcmp(key, t.arena.key(x)) <= 0 {
			x, dir = t.arena.left(x), Left
		} else {
			x, dir = t.arena.right(x), Right
		}
	}
	t.attach(z, y, dir)
	if t.trace {
		t.logger.Debug("[xtree] node inserted",
			zap.Any("key", key),
			zap.Uint32("node", uint32(z)),
			zap.Uint32("parent", uint32(y)),
			zap.Stringer("direction", dir),
		)
	}
	return z
}

func (t *BinarySearchTree[K]) Insert(key K) Handle[K] {
	return t.arena.handle(t.insertNode(key))
}

// Delete removes the node of h. Other handles stay valid, including
// the one of the successor spliced into the removed node's place.
func (t *BinarySearchTree[K]) Delete(h Handle[K]) error {
	_, err := t.remove(h)
	return err
}

// Search returns the sentinel handle if the key is absent.
func (t *BinarySearchTree[K]) Search(key K) Handle[K] {
	return t.arena.handle(t.search(key))
}

func (t *BinarySearchTree[K]) Minimum() (Handle[K], error) {
	if t.root == nilIdx {
		return t.arena.handle(nilIdx), ErrEmptyTreeAccess
	}
	return t.arena.handle(t.minimum(t.root)), nil
}

func (t *BinarySearchTree[K]) Maximum() (Handle[K], error) {
	if t.root == nilIdx {
		return t.arena.handle(nilIdx), ErrEmptyTreeAccess
	}
	return t.arena.handle(t.maximum(t.root)), nil
}

// Successor returns the sentinel handle if h holds the last key.
func (t *BinarySearchTree[K]) Successor(h Handle[K]) (Handle[K], error) {
	x, err := t.resolveNonSentinel(h)
	if err != nil {
		return t.arena.handle(nilIdx), err
	}
	return t.arena.handle(t.successor(x)), nil
}

// Predecessor returns the sentinel handle if h holds the first key.
func (t *BinarySearchTree[K]) Predecessor(h Handle[K]) (Handle[K], error) {
	x, err := t.resolveNonSentinel(h)
	if err != nil {
		return t.arena.handle(nilIdx), err
	}
	return t.arena.handle(t.predecessor(x)), nil
}

func (t *BinarySearchTree[K]) Stats() TreeStats {
	return t.stats(t.Height())
}
