package tree

import (
	randv2 "math/rand/v2"

	"go.uber.org/zap"

	"github.com/benz9527/xtree/lib/infra"
)

// RandomTree ignores the key order, every insert descends by coin
// flips until it meets an empty slot. Only the shape operations are
// offered, a search is a full scan.
type RandomTree[K infra.OrderedKey] struct {
	treeCore[K]
	rand *randv2.Rand
}

func NewRandomTree[K infra.OrderedKey](opts ...TreeOption[K]) *RandomTree[K] {
	cfg := newTreeConfig[K](opts...)
	var src randv2.Source
	if cfg.seed != nil {
		src = randv2.NewPCG(cfg.seed[0], cfg.seed[1])
	} else {
		src = randv2.NewPCG(randv2.Uint64(), randv2.Uint64())
	}
	return &RandomTree[K]{
		treeCore: newTreeCore[K](cfg),
		rand:     randv2.New(src),
	}
}

func (t *RandomTree[K]) Insert(key K) Handle[K] {
	z := t.arena.alloc(key)
	y, x, dir := nilIdx, t.root, Root
	for x != nilIdx {
		y = x
		if t.rand.IntN(2) == 0 {
			x, dir = t.arena.left(x), Left
		} else {
			x, dir = t.arena.right(x), Right
		}
	}
	t.attach(z, y, dir)
	if t.trace {
		t.logger.Debug("[xtree] random node inserted",
			zap.Any("key", key),
			zap.Uint32("node", uint32(z)),
			zap.Stringer("direction", dir),
		)
	}
	return t.arena.handle(z)
}

// Delete splices the in-order successor into a node with two
// children, so the in-order sequence only loses h's key.
func (t *RandomTree[K]) Delete(h Handle[K]) error {
	_, err := t.remove(h)
	return err
}

// Search returns the first node in pre-order holding key, the
// sentinel handle if none.
func (t *RandomTree[K]) Search(key K) Handle[K] {
	for h := range t.PreOrder() {
		if t.kcmp(key, h.key) == 0 {
			return h
		}
	}
	return t.arena.handle(nilIdx)
}

func (t *RandomTree[K]) Stats() TreeStats {
	return t.stats(t.Height())
}
