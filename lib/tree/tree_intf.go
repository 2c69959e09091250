package tree

import (
	"errors"
	"fmt"
	"iter"

	"github.com/benz9527/xtree/lib/infra"
)

var (
	ErrInvalidSentinelDeletion = errors.New("[xtree] invalid sentinel deletion")
	ErrTypeMismatch            = errors.New("[xtree] handle is not a valid node of this tree")
	ErrEmptyTreeAccess         = errors.New("[xtree] access to an empty (sub)tree")

	ErrOrderViolation   = errors.New("[xtree] order violation")
	ErrLinkViolation    = errors.New("[xtree] link violation")
	ErrHeightViolation  = errors.New("[xtree] height violation")
	ErrBalanceViolation = errors.New("[xtree] balance violation")
)

type Direction int8

const (
	Left Direction = -1 + iota
	Root
	Right
)

func (dir Direction) String() string {
	switch dir {
	case Left:
		return "Left"
	case Root:
		return "Root"
	case Right:
		return "Right"
	default:
	}
	return fmt.Sprintf("Direction(%d)", int8(dir))
}

// Handle is an opaque reference to a node of the tree which created it.
// It stays valid until that node is deleted or the tree is released.
// The zero Handle is the sentinel.
type Handle[K infra.OrderedKey] struct {
	key   K
	owner uint64
	gen   uint32
	idx   nodeIdx
}

func (h Handle[K]) Key() K {
	return h.key
}

func (h Handle[K]) IsSentinel() bool {
	return h.idx == nilIdx
}

func (h Handle[K]) String() string {
	if h.IsSentinel() {
		return "nil"
	}
	return fmt.Sprint(h.key)
}

// Visitor is applied to every node of a walk, the results are
// returned to the caller in visiting order.
type Visitor[K infra.OrderedKey] func(h Handle[K]) string

type TreeStats struct {
	Len       int64
	Height    int
	Inserts   uint64
	Deletes   uint64
	Rotations uint64
}

// BinaryTree is shared by the ordered trees and the random shape tree.
// None of the implementations is safe for concurrent use.
type BinaryTree[K infra.OrderedKey] interface {
	Len() int64
	IsEmpty() bool
	IsSentinel(h Handle[K]) bool
	Root() Handle[K]
	Height() int
	Stats() TreeStats

	Insert(key K) Handle[K]
	Delete(h Handle[K]) error
	Search(key K) Handle[K]

	InOrder() iter.Seq[Handle[K]]
	PreOrder() iter.Seq[Handle[K]]
	PostOrder() iter.Seq[Handle[K]]
	InorderWalk(visitor Visitor[K]) []string
	PreorderWalk(visitor Visitor[K]) []string
	PostorderWalk(visitor Visitor[K]) []string

	Release()
	String() string

	core() *treeCore[K]
}

type SearchTree[K infra.OrderedKey] interface {
	BinaryTree[K]

	Minimum() (Handle[K], error)
	Maximum() (Handle[K], error)
	Successor(h Handle[K]) (Handle[K], error)
	Predecessor(h Handle[K]) (Handle[K], error)
}

var (
	_ SearchTree[int]    = (*BinarySearchTree[int])(nil)
	_ SearchTree[string] = (*AVLTree[string])(nil)
	_ BinaryTree[string] = (*RandomTree[string])(nil)
)
