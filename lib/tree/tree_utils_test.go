package tree

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func newValidatedAVLTree(t *testing.T) (*AVLTree[int], map[int]Handle[int]) {
	tree := NewAVLTree[int]()
	hs := make(map[int]Handle[int], 7)
	for _, k := range []int{5, 3, 8, 1, 4, 7, 9} {
		hs[k] = tree.Insert(k)
	}
	require.NoError(t, AVLViolationValidate(tree))
	return tree, hs
}

func TestViolationValidate_Order(t *testing.T) {
	tree, hs := newValidatedAVLTree(t)
	tree.arena.nodes[hs[1].idx].key = 6
	err := OrderViolationValidate[int](tree)
	require.ErrorIs(t, err, ErrOrderViolation)
	require.Len(t, multierr.Errors(err), 1)
	require.NoError(t, LinkViolationValidate[int](tree))
}

func TestViolationValidate_Link(t *testing.T) {
	tree, hs := newValidatedAVLTree(t)
	tree.arena.nodes[hs[1].idx].parent = hs[8].idx
	err := AVLViolationValidate(tree)
	require.ErrorIs(t, err, ErrLinkViolation)
	require.NotErrorIs(t, err, ErrOrderViolation)

	tree, _ = newValidatedAVLTree(t)
	tree.count++
	require.ErrorIs(t, LinkViolationValidate[int](tree), ErrLinkViolation)

	tree, _ = newValidatedAVLTree(t)
	tree.arena.nodes[nilIdx].parent = tree.root
	require.ErrorIs(t, LinkViolationValidate[int](tree), ErrLinkViolation)
}

func TestViolationValidate_HeightAndBalance(t *testing.T) {
	tree, hs := newValidatedAVLTree(t)
	tree.arena.nodes[hs[3].idx].height = 5
	err := AVLViolationValidate(tree)
	require.ErrorIs(t, err, ErrHeightViolation)
	require.ErrorIs(t, err, ErrBalanceViolation)
	require.NotErrorIs(t, err, ErrLinkViolation)

	// An unbalanced but consistent shape, built without rebalancing.
	tree = NewAVLTree[int]()
	for i := 0; i < 3; i++ {
		tree.updateHeight(tree.insertNode(i))
	}
	for h := range tree.PostOrder() {
		tree.updateHeight(h.idx)
	}
	err = AVLViolationValidate(tree)
	require.ErrorIs(t, err, ErrBalanceViolation)
	require.NotErrorIs(t, err, ErrHeightViolation)
	require.NoError(t, OrderViolationValidate[int](tree))
}
