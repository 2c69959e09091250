package tree

import (
	"fmt"

	"go.uber.org/multierr"

	"github.com/benz9527/xtree/lib/infra"
)

// Tree rule validation utilities. Each validator reports every
// violation it meets, combined by multierr, or nil.

// OrderViolationValidate checks the in-order walk never goes backwards
// by the tree's own comparator.
func OrderViolationValidate[K infra.OrderedKey](tree SearchTree[K]) error {
	core := tree.core()
	var (
		merr  error
		prev  K
		first = true
	)
	for h := range core.InOrder() {
		if !first && core.kcmp(prev, h.key) > 0 {
			merr = multierr.Append(merr, fmt.Errorf("key %v walked after %v: %w", h.key, prev, ErrOrderViolation))
		}
		prev, first = h.key, false
	}
	return merr
}

// LinkViolationValidate checks the sentinel is untouched, the parent
// and child links agree and the node count matches Len.
func LinkViolationValidate[K infra.OrderedKey](tree BinaryTree[K]) error {
	core := tree.core()
	arena := core.arena
	var merr error

	if s := arena.nodes[nilIdx]; s.parent != nilIdx || s.left != nilIdx || s.right != nilIdx || s.height != -1 {
		merr = multierr.Append(merr, fmt.Errorf("sentinel modified: %w", ErrLinkViolation))
	}
	if core.root != nilIdx && arena.parent(core.root) != nilIdx {
		merr = multierr.Append(merr, fmt.Errorf("root %v has a parent: %w", arena.key(core.root), ErrLinkViolation))
	}

	count := int64(0)
	for h := range core.PreOrder() {
		count++
		x := h.idx
		if l := arena.left(x); l != nilIdx && arena.parent(l) != x {
			merr = multierr.Append(merr, fmt.Errorf("left child %v of %v points to another parent: %w",
				arena.key(l), h.key, ErrLinkViolation))
		}
		if r := arena.right(x); r != nilIdx && arena.parent(r) != x {
			merr = multierr.Append(merr, fmt.Errorf("right child %v of %v points to another parent: %w",
				arena.key(r), h.key, ErrLinkViolation))
		}
	}
	if count != core.count {
		merr = multierr.Append(merr, fmt.Errorf("reachable nodes %d, len %d: %w", count, core.count, ErrLinkViolation))
	}
	return merr
}

// HeightViolationValidate checks every cached height against its children.
func HeightViolationValidate[K infra.OrderedKey](tree *AVLTree[K]) error {
	arena := tree.arena
	var merr error
	for h := range tree.PostOrder() {
		x := h.idx
		want := 1 + max(arena.height(arena.left(x)), arena.height(arena.right(x)))
		if got := arena.height(x); got != want {
			merr = multierr.Append(merr, fmt.Errorf("node %v height %d, expected %d: %w", h.key, got, want, ErrHeightViolation))
		}
	}
	return merr
}

// BalanceViolationValidate checks |height(left) - height(right)| <= 1.
func BalanceViolationValidate[K infra.OrderedKey](tree *AVLTree[K]) error {
	var merr error
	for h := range tree.PostOrder() {
		if bf := tree.balanceFactor(h.idx); bf < -1 || bf > 1 {
			merr = multierr.Append(merr, fmt.Errorf("node %v balance %d: %w", h.key, bf, ErrBalanceViolation))
		}
	}
	return merr
}

// AVLViolationValidate runs all of the validators above.
func AVLViolationValidate[K infra.OrderedKey](tree *AVLTree[K]) error {
	return multierr.Combine(
		OrderViolationValidate[K](tree),
		LinkViolationValidate[K](tree),
		HeightViolationValidate[K](tree),
		BalanceViolationValidate[K](tree),
	)
}
