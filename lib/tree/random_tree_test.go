package tree

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRandomTree_Reproducible(t *testing.T) {
	build := func() *RandomTree[int] {
		tree := NewRandomTree[int](WithRandomTreeSeed[int](42, 1024))
		for i := 0; i < 256; i++ {
			tree.Insert(i)
		}
		return tree
	}
	t1, t2 := build(), build()
	require.Equal(t, t1.PreorderWalk(nil), t2.PreorderWalk(nil))
	require.Equal(t, t1.InorderWalk(nil), t2.InorderWalk(nil))
	require.Equal(t, t1.Height(), t2.Height())
	require.Equal(t, int64(256), t1.Len())
	require.NoError(t, LinkViolationValidate[int](t1))
}

func TestRandomTree_InsertSearchDelete(t *testing.T) {
	tree := NewRandomTree[string]()
	words := []string{"hey", "igloo", "eric", "i", "jar", "kagaroo", "lamar", "fan", "apple"}
	hs := make(map[string]Handle[string], len(words))
	for _, w := range words {
		hs[w] = tree.Insert(w)
	}
	require.Equal(t, int64(len(words)), tree.Len())
	require.Equal(t, hs["hey"], tree.Root())
	for _, w := range words {
		require.Equal(t, hs[w], tree.Search(w))
	}
	require.True(t, tree.IsSentinel(tree.Search("zebra")))

	// Deleting never reorders the remaining in-order sequence.
	before := tree.InorderWalk(nil)
	require.NoError(t, tree.Delete(hs["eric"]))
	after := tree.InorderWalk(nil)
	idx := slices.Index(before, "eric")
	require.Equal(t, slices.Delete(before, idx, idx+1), after)
	require.True(t, tree.IsSentinel(tree.Search("eric")))
	require.NoError(t, LinkViolationValidate[string](tree))

	require.ErrorIs(t, tree.Delete(hs["eric"]), ErrTypeMismatch)
	require.ErrorIs(t, tree.Delete(tree.Search("eric")), ErrInvalidSentinelDeletion)

	for _, w := range words {
		if w == "eric" {
			continue
		}
		require.NoError(t, tree.Delete(hs[w]))
		require.NoError(t, LinkViolationValidate[string](tree))
	}
	require.True(t, tree.IsEmpty())
	stats := tree.Stats()
	require.Equal(t, uint64(9), stats.Inserts)
	require.Equal(t, uint64(9), stats.Deletes)
	require.Equal(t, -1, stats.Height)
}

func TestRandomTree_Release(t *testing.T) {
	tree := NewRandomTree[int](WithRandomTreeSeed[int](7, 7))
	hs := make([]Handle[int], 0, 32)
	for i := 0; i < 32; i++ {
		hs = append(hs, tree.Insert(i))
	}
	tree.Release()
	require.True(t, tree.IsEmpty())
	require.Equal(t, -1, tree.Height())
	for _, h := range hs {
		require.ErrorIs(t, tree.Delete(h), ErrTypeMismatch)
	}
	h := tree.Insert(1)
	require.Equal(t, h, tree.Root())
	require.Equal(t, []string{"1"}, tree.PreorderWalk(nil))
}
