package tree

import (
	"github.com/benz9527/xtree/lib/infra"
	"github.com/benz9527/xtree/lib/xlog"
)

type treeConfig[K infra.OrderedKey] struct {
	kcmp     infra.OrderedKeyComparator[K]
	logger   xlog.XLogger
	seed     *[2]uint64
	capacity int
}

func newTreeConfig[K infra.OrderedKey](opts ...TreeOption[K]) *treeConfig[K] {
	cfg := &treeConfig[K]{}
	for _, o := range opts {
		o(cfg)
	}
	if cfg.kcmp == nil {
		cfg.kcmp = infra.AscOrderedKeyComparator[K]()
	}
	return cfg
}

type TreeOption[K infra.OrderedKey] func(*treeConfig[K])

// WithTreeDesc reverses the key order, the in-order walk yields
// the largest key first.
func WithTreeDesc[K infra.OrderedKey]() TreeOption[K] {
	return func(cfg *treeConfig[K]) {
		cfg.kcmp = infra.DescOrderedKeyComparator[K]()
	}
}

func WithTreeKeyComparator[K infra.OrderedKey](cmp infra.OrderedKeyComparator[K]) TreeOption[K] {
	return func(cfg *treeConfig[K]) {
		if cmp != nil {
			cfg.kcmp = cmp
		}
	}
}

// WithTreeLogger traces the structural changes (insert, delete,
// rotations) at debug level.
func WithTreeLogger[K infra.OrderedKey](logger xlog.XLogger) TreeOption[K] {
	return func(cfg *treeConfig[K]) {
		cfg.logger = logger
	}
}

// WithTreeCapacity pre-sizes the node arena.
func WithTreeCapacity[K infra.OrderedKey](capacity int) TreeOption[K] {
	return func(cfg *treeConfig[K]) {
		cfg.capacity = capacity
	}
}

// WithRandomTreeSeed makes the random shape tree reproducible.
// Ignored by the ordered trees.
func WithRandomTreeSeed[K infra.OrderedKey](seed1, seed2 uint64) TreeOption[K] {
	return func(cfg *treeConfig[K]) {
		cfg.seed = &[2]uint64{seed1, seed2}
	}
}
