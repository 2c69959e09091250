package tree

import (
	"math"
	randv2 "math/rand/v2"
	"slices"
	"sort"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/benz9527/xtree/lib/id"
	"github.com/benz9527/xtree/lib/infra"
	"github.com/benz9527/xtree/lib/xlog"
)

func inorderKeys[K infra.OrderedKey](tree BinaryTree[K]) []K {
	res := make([]K, 0, tree.Len())
	for h := range tree.InOrder() {
		res = append(res, h.Key())
	}
	return res
}

func preorderKeys[K infra.OrderedKey](tree BinaryTree[K]) []K {
	res := make([]K, 0, tree.Len())
	for h := range tree.PreOrder() {
		res = append(res, h.Key())
	}
	return res
}

func avlHeightBound(n int) int {
	return int(math.Ceil(1.44 * math.Log2(float64(n+2))))
}

func TestAVLTree_RoundTrip(t *testing.T) {
	tree := NewAVLTree[int]()
	for _, k := range []int{5, 3, 8, 1, 4, 7, 9} {
		tree.Insert(k)
	}
	require.Equal(t, []int{1, 3, 4, 5, 7, 8, 9}, inorderKeys[int](tree))
	require.Equal(t, []int{5, 3, 1, 4, 8, 7, 9}, preorderKeys[int](tree))
	require.Equal(t, []string{"1", "4", "3", "7", "9", "8", "5"}, tree.PostorderWalk(nil))
	require.Equal(t, 2, tree.Height())
	require.LessOrEqual(t, tree.Height(), int(math.Ceil(1.44*math.Log2(8))))
	require.Equal(t, "    1\n  3\n    4\n5\n    7\n  8\n    9\n", tree.String())
	require.NoError(t, AVLViolationValidate(tree))
}

func TestAVLTree_Words(t *testing.T) {
	tree := NewAVLTree[string]()
	var eric, apple Handle[string]
	for _, w := range []string{"hey", "igloo", "eric", "i", "jar", "kagaroo", "lamar", "fan", "apple"} {
		h := tree.Insert(w)
		switch w {
		case "eric":
			eric = h
		case "apple":
			apple = h
		}
		require.NoError(t, AVLViolationValidate(tree))
	}

	require.Equal(t,
		[]string{"igloo", "hey", "eric", "apple", "fan", "i", "kagaroo", "jar", "lamar"},
		tree.PreorderWalk(nil),
	)
	bf, err := tree.Balance(tree.Root())
	require.NoError(t, err)
	require.Equal(t, 1, bf)

	found := tree.Search("eric")
	require.False(t, tree.IsSentinel(found))
	require.Equal(t, eric, found)
	require.Equal(t, "apple", tree.Search("apple").Key())

	require.NoError(t, tree.Delete(eric))
	require.True(t, tree.IsSentinel(tree.Search("eric")))
	require.Equal(t,
		[]string{"apple", "fan", "hey", "i", "igloo", "jar", "kagaroo", "lamar"},
		tree.InorderWalk(func(h Handle[string]) string { return h.Key() }),
	)
	require.True(t, sort.StringsAreSorted(inorderKeys[string](tree)))
	require.NoError(t, AVLViolationValidate(tree))

	// The successor "fan" took eric's place, its handle is still valid.
	require.NoError(t, tree.Delete(apple))
	require.Equal(t, []string{"fan", "hey", "i", "igloo", "jar", "kagaroo", "lamar"}, inorderKeys[string](tree))
	require.NoError(t, tree.Delete(tree.Search("fan")))
	require.Equal(t, int64(6), tree.Len())
	require.NoError(t, AVLViolationValidate(tree))
}

func TestAVLTree_Rotations(t *testing.T) {
	testcases := []struct {
		name     string
		keys     []int
		preorder []int
	}{
		{"right-right", []int{1, 2, 3}, []int{2, 1, 3}},
		{"left-left", []int{3, 2, 1}, []int{2, 1, 3}},
		{"left-right", []int{3, 1, 2}, []int{2, 1, 3}},
		{"right-left", []int{1, 3, 2}, []int{2, 1, 3}},
		{"grandpa rotation", []int{1, 2, 3, 4, 5, 6, 7}, []int{4, 2, 1, 3, 6, 5, 7}},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(tt *testing.T) {
			tree := NewAVLTree[int]()
			for _, k := range tc.keys {
				tree.Insert(k)
			}
			require.Equal(tt, tc.preorder, preorderKeys[int](tree))
			require.NoError(tt, AVLViolationValidate(tree))
		})
	}
}

// The sibling subtree of the removed leaf has balance 0, only a single
// rotation restores the balance.
func TestAVLTree_DeleteZeroBalanceChild(t *testing.T) {
	tree := NewAVLTree[int]()
	hs := map[int]Handle[int]{}
	for _, k := range []int{2, 1, 4, 3, 5} {
		hs[k] = tree.Insert(k)
	}
	require.Equal(t, uint64(0), tree.Stats().Rotations)

	require.NoError(t, tree.Delete(hs[1]))
	require.Equal(t, []int{4, 2, 3, 5}, preorderKeys[int](tree))
	require.Equal(t, uint64(1), tree.Stats().Rotations)
	bf, err := tree.Balance(tree.Root())
	require.NoError(t, err)
	require.Equal(t, 1, bf)
	require.NoError(t, AVLViolationValidate(tree))
}

// Removing the root moves its successor 6 up, the unbalanced node is
// 6's former grandparent 8, far below the deleted position.
func TestAVLTree_DeleteRebalanceFromSuccessorParent(t *testing.T) {
	tree := NewAVLTree[int]()
	hs := map[int]Handle[int]{}
	for _, k := range []int{5, 2, 8, 1, 3, 7, 10, 4, 6, 9, 11, 12} {
		hs[k] = tree.Insert(k)
	}
	require.Equal(t, []int{5, 2, 1, 3, 4, 8, 7, 6, 10, 9, 11, 12}, preorderKeys[int](tree))
	require.Equal(t, uint64(0), tree.Stats().Rotations)

	require.NoError(t, tree.Delete(hs[5]))
	require.Equal(t, []int{6, 2, 1, 3, 4, 10, 8, 7, 9, 11, 12}, preorderKeys[int](tree))
	require.Equal(t, hs[6], tree.Root())
	require.Equal(t, 3, tree.Height())
	require.NoError(t, AVLViolationValidate(tree))

	_, err := tree.Balance(hs[5])
	require.ErrorIs(t, err, ErrTypeMismatch)
}

func TestAVLTree_Duplicates(t *testing.T) {
	tree := NewAVLTree[int]()
	h1 := tree.Insert(5)
	h2 := tree.Insert(5)
	h3 := tree.Insert(5)
	tree.Insert(4)
	tree.Insert(6)
	require.Equal(t, []int{4, 5, 5, 5, 6}, inorderKeys[int](tree))
	require.NoError(t, AVLViolationValidate(tree))

	require.NoError(t, tree.Delete(h1))
	require.False(t, tree.IsSentinel(tree.Search(5)))
	require.NoError(t, tree.Delete(h3))
	require.False(t, tree.IsSentinel(tree.Search(5)))
	require.NoError(t, tree.Delete(h2))
	require.True(t, tree.IsSentinel(tree.Search(5)))
	require.Equal(t, []int{4, 6}, inorderKeys[int](tree))
	require.NoError(t, AVLViolationValidate(tree))
}

func TestAVLTree_Errors(t *testing.T) {
	tree := NewAVLTree[int]()
	_, err := tree.Minimum()
	require.ErrorIs(t, err, ErrEmptyTreeAccess)
	_, err = tree.Maximum()
	require.ErrorIs(t, err, ErrEmptyTreeAccess)

	require.True(t, tree.IsEmpty())
	require.True(t, tree.IsSentinel(tree.Root()))
	require.ErrorIs(t, tree.Delete(tree.Root()), ErrInvalidSentinelDeletion)
	require.ErrorIs(t, tree.Delete(Handle[int]{}), ErrInvalidSentinelDeletion)
	require.ErrorIs(t, tree.Delete(tree.Search(1)), ErrInvalidSentinelDeletion)

	h := tree.Insert(1)
	_, err = tree.Successor(tree.Search(2))
	require.ErrorIs(t, err, ErrEmptyTreeAccess)
	_, err = tree.Predecessor(Handle[int]{})
	require.ErrorIs(t, err, ErrEmptyTreeAccess)
	_, err = tree.Balance(Handle[int]{})
	require.ErrorIs(t, err, ErrEmptyTreeAccess)

	other := NewAVLTree[int]()
	foreign := other.Insert(1)
	require.ErrorIs(t, tree.Delete(foreign), ErrTypeMismatch)
	_, err = tree.Successor(foreign)
	require.ErrorIs(t, err, ErrTypeMismatch)
	require.Equal(t, int64(1), other.Len())

	require.NoError(t, tree.Delete(h))
	require.ErrorIs(t, tree.Delete(h), ErrTypeMismatch)
	require.True(t, tree.IsEmpty())

	// The freed slot is reused, the old handle stays stale.
	h2 := tree.Insert(2)
	require.Equal(t, h.idx, h2.idx)
	require.ErrorIs(t, tree.Delete(h), ErrTypeMismatch)
	require.NoError(t, tree.Delete(h2))
}

func TestAVLTree_SequentialInsert(t *testing.T) {
	total := 100_000
	tree := NewAVLTree[int](WithTreeCapacity[int](total))
	rand := randv2.IntN(1_000)
	for i := 0; i < total; i++ {
		tree.Insert(i)
		if i%1000 == rand {
			require.NoError(t, BalanceViolationValidate(tree))
			require.LessOrEqual(t, tree.Height(), avlHeightBound(i+1))
		}
	}
	require.Equal(t, int64(total), tree.Len())
	require.LessOrEqual(t, tree.Height(), avlHeightBound(total))
	idx := 0
	for h := range tree.InOrder() {
		require.Equal(t, idx, h.Key())
		idx++
	}
	require.NoError(t, AVLViolationValidate(tree))

	tree.Release()
	require.True(t, tree.IsEmpty())
	require.Equal(t, int64(0), tree.Len())
	require.Equal(t, -1, tree.Height())
	require.Equal(t, uint64(0), tree.Stats().Rotations)
}

func TestAVLTree_Desc(t *testing.T) {
	tree := NewAVLTree[int](WithTreeDesc[int]())
	for i := 0; i < 100; i++ {
		tree.Insert(i)
	}
	keys := inorderKeys[int](tree)
	for i, k := range keys {
		require.Equal(t, 99-i, k)
	}
	first, err := tree.Minimum()
	require.NoError(t, err)
	require.Equal(t, 99, first.Key())
	require.NoError(t, AVLViolationValidate(tree))
}

func avlRandomInsertAndRemoveRunCore(t *testing.T, total int, keyFn func(i int) uint64) {
	tree := NewAVLTree[uint64]()
	counts := make(map[uint64]int, total)
	handles := make([]Handle[uint64], 0, total)
	for i := 0; i < total; i++ {
		k := keyFn(i)
		handles = append(handles, tree.Insert(k))
		counts[k]++
	}
	require.NoError(t, AVLViolationValidate(tree))
	require.LessOrEqual(t, tree.Height(), avlHeightBound(total))

	randv2.Shuffle(len(handles), func(i, j int) {
		handles[i], handles[j] = handles[j], handles[i]
	})
	removeTotal := total * 2 / 3
	for i := 0; i < removeTotal; i++ {
		h := handles[i]
		require.NoError(t, tree.Delete(h))
		counts[h.Key()]--
		if counts[h.Key()] == 0 {
			delete(counts, h.Key())
			require.True(t, tree.IsSentinel(tree.Search(h.Key())))
		} else {
			require.Equal(t, h.Key(), tree.Search(h.Key()).Key())
		}
		if i%97 == 0 {
			require.NoError(t, AVLViolationValidate(tree))
		}
	}
	require.Equal(t, int64(total-removeTotal), tree.Len())
	require.NoError(t, AVLViolationValidate(tree))
	for k := range counts {
		require.False(t, tree.IsSentinel(tree.Search(k)))
	}
	require.True(t, slices.IsSorted(inorderKeys[uint64](tree)))
}

func TestAVLTreeRandomInsertAndRemove(t *testing.T) {
	idGen, err := id.MonotonicNonZeroID()
	require.NoError(t, err)

	testcases := []struct {
		name  string
		total int
		keyFn func(i int) uint64
	}{
		{
			name:  "sequential number",
			total: 5000,
			keyFn: func(i int) uint64 { return uint64(i) },
		},
		{
			name:  "monotonic number",
			total: 5000,
			keyFn: func(int) uint64 { return idGen.Number() },
		},
		{
			name:  "random number",
			total: 5000,
			keyFn: func(int) uint64 { return randv2.Uint64() },
		},
		{
			name:  "random number with duplicates",
			total: 5000,
			keyFn: func(int) uint64 { return uint64(randv2.IntN(100)) },
		},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(tt *testing.T) {
			avlRandomInsertAndRemoveRunCore(tt, tc.total, tc.keyFn)
		})
	}
}

func TestAVLTree_Logger(t *testing.T) {
	logger := xlog.NewXLogger(
		xlog.WithXLoggerLevel(xlog.LogLevelError),
		xlog.WithXLoggerWriter(xlog.StdErr),
	)
	tree := NewAVLTree[string](WithTreeLogger[string](logger))
	require.True(t, tree.trace)
	for i := 0; i < 64; i++ {
		tree.Insert(strconv.Itoa(i))
	}
	for i := 0; i < 64; i += 2 {
		require.NoError(t, tree.Delete(tree.Search(strconv.Itoa(i))))
	}
	require.Equal(t, int64(32), tree.Len())
	require.NoError(t, AVLViolationValidate(tree))
	stats := tree.Stats()
	require.Equal(t, uint64(64), stats.Inserts)
	require.Equal(t, uint64(32), stats.Deletes)
	require.Greater(t, stats.Rotations, uint64(0))
}

func FuzzAVLTree_InsertDelete(f *testing.F) {
	f.Add([]byte{10, 20, 30, 41, 51, 8, 6, 4, 2, 1})
	f.Add([]byte{2, 2, 2, 2, 3, 5, 7, 9})
	f.Add([]byte{200, 100, 50, 25, 12, 6, 3, 1, 1, 1})
	f.Fuzz(func(t *testing.T, ops []byte) {
		tree := NewAVLTree[int]()
		live := make([]Handle[int], 0, len(ops))
		for _, op := range ops {
			if op&1 == 0 || len(live) == 0 {
				live = append(live, tree.Insert(int(op>>1)))
			} else {
				i := int(op>>1) % len(live)
				require.NoError(t, tree.Delete(live[i]))
				live[i] = live[len(live)-1]
				live = live[:len(live)-1]
			}
			require.NoError(t, AVLViolationValidate(tree))
		}
		require.Equal(t, int64(len(live)), tree.Len())
	})
}

func BenchmarkAVLTree_Random(b *testing.B) {
	b.StopTimer()
	tree := NewAVLTree[int]()
	rngArr := make([]int, 0, b.N)
	for i := 0; i < b.N; i++ {
		rngArr = append(rngArr, randv2.Int())
	}
	b.StartTimer()
	for i := 0; i < b.N; i++ {
		tree.Insert(rngArr[i])
	}
	b.ReportAllocs()
}

func BenchmarkAVLTree_Serial(b *testing.B) {
	tree := NewAVLTree[int]()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		tree.Insert(i)
	}
	b.ReportAllocs()
}
