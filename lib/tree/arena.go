package tree

import (
	"fmt"

	"github.com/benz9527/xtree/lib/id"
	"github.com/benz9527/xtree/lib/infra"
)

// nodeIdx addresses a node inside its tree's arena.
// Offset 0 is reserved for the sentinel, so the zero value
// of any link is the empty subtree.
type nodeIdx uint32

const nilIdx nodeIdx = 0

var arenaIDs = func() id.UUIDGen {
	gen, err := id.MonotonicNonZeroID()
	if err != nil {
		panic(err)
	}
	return gen
}()

type node[K infra.OrderedKey] struct {
	key    K
	parent nodeIdx
	left   nodeIdx
	right  nodeIdx
	height int32 // AVL only, the sentinel is -1 and a leaf is 0
	gen    uint32
	inUse  bool
}

/*
	nodes[0] is the sentinel "nil":

	+-----+-----+-----+-----+     +-----+
	| nil |  A  |  B  | (f) | ... |  N  |
	+-----+-----+-----+-----+     +-----+
	   ^ left == right == parent == 0, height == -1, never written.

(f) is a freed slot waiting in the free list, its generation has been
bumped so the handles issued before the release are stale.
*/
type nodeArena[K infra.OrderedKey] struct {
	nodes []node[K]
	free  []nodeIdx
	id    uint64
}

func newNodeArena[K infra.OrderedKey](capacity int) *nodeArena[K] {
	if capacity < 0 {
		capacity = 0
	}
	arena := &nodeArena[K]{
		id:    arenaIDs.Number(),
		nodes: make([]node[K], 1, capacity+1),
	}
	arena.nodes[nilIdx] = node[K]{height: -1}
	return arena
}

func (arena *nodeArena[K]) alloc(key K) nodeIdx {
	if size := len(arena.free); size > 0 {
		idx := arena.free[size-1]
		arena.free = arena.free[:size-1]
		n := &arena.nodes[idx]
		n.key = key
		n.inUse = true
		return idx
	}
	if uint64(len(arena.nodes)) > uint64(^uint32(0)) {
		panic( /* debug assertion */ "[xtree] arena index space exhausted")
	}
	arena.nodes = append(arena.nodes, node[K]{key: key, inUse: true})
	return nodeIdx(len(arena.nodes) - 1)
}

func (arena *nodeArena[K]) release(idx nodeIdx) {
	if idx == nilIdx {
		// impossible run to here
		panic( /* debug assertion */ "[xtree] release the sentinel")
	}
	n := &arena.nodes[idx]
	var zero K
	n.key = zero
	n.parent, n.left, n.right, n.height = nilIdx, nilIdx, nilIdx, 0
	n.inUse = false
	n.gen++
	arena.free = append(arena.free, idx)
}

// reset drops every node and changes the arena identity, so all
// previously issued handles are rejected afterwards.
func (arena *nodeArena[K]) reset() {
	clear(arena.nodes[1:])
	arena.nodes = arena.nodes[:1]
	arena.free = arena.free[:0]
	arena.id = arenaIDs.Number()
}

func (arena *nodeArena[K]) handle(idx nodeIdx) Handle[K] {
	if idx == nilIdx {
		return Handle[K]{owner: arena.id}
	}
	n := &arena.nodes[idx]
	return Handle[K]{
		key:   n.key,
		owner: arena.id,
		gen:   n.gen,
		idx:   idx,
	}
}

// resolve maps a non-sentinel handle back to its slot.
func (arena *nodeArena[K]) resolve(h Handle[K]) (nodeIdx, error) {
	if h.owner != arena.id {
		return nilIdx, fmt.Errorf("foreign handle (owner %d, tree %d): %w", h.owner, arena.id, ErrTypeMismatch)
	}
	if int(h.idx) >= len(arena.nodes) {
		return nilIdx, fmt.Errorf("handle index %d out of range: %w", h.idx, ErrTypeMismatch)
	}
	if n := &arena.nodes[h.idx]; !n.inUse || n.gen != h.gen {
		return nilIdx, fmt.Errorf("stale handle %v: %w", h, ErrTypeMismatch)
	}
	return h.idx, nil
}

func (arena *nodeArena[K]) key(idx nodeIdx) K          { return arena.nodes[idx].key }
func (arena *nodeArena[K]) parent(idx nodeIdx) nodeIdx { return arena.nodes[idx].parent }
func (arena *nodeArena[K]) left(idx nodeIdx) nodeIdx   { return arena.nodes[idx].left }
func (arena *nodeArena[K]) right(idx nodeIdx) nodeIdx  { return arena.nodes[idx].right }
func (arena *nodeArena[K]) height(idx nodeIdx) int32   { return arena.nodes[idx].height }

// The sentinel is immutable. Parent links of an empty subtree are
// simply not recorded.
func (arena *nodeArena[K]) setParent(idx, parent nodeIdx) {
	if idx != nilIdx {
		arena.nodes[idx].parent = parent
	}
}

func (arena *nodeArena[K]) setLeft(idx, child nodeIdx) {
	if idx == nilIdx {
		// impossible run to here
		panic( /* debug assertion */ "[xtree] link a left child to the sentinel")
	}
	arena.nodes[idx].left = child
}

func (arena *nodeArena[K]) setRight(idx, child nodeIdx) {
	if idx == nilIdx {
		// impossible run to here
		panic( /* debug assertion */ "[xtree] link a right child to the sentinel")
	}
	arena.nodes[idx].right = child
}

func (arena *nodeArena[K]) setHeight(idx nodeIdx, height int32) {
	if idx == nilIdx {
		// impossible run to here
		panic( /* debug assertion */ "[xtree] update the sentinel height")
	}
	arena.nodes[idx].height = height
}

// fixLink points the children of idx back to it.
func (arena *nodeArena[K]) fixLink(idx nodeIdx) {
	arena.setParent(arena.left(idx), idx)
	arena.setParent(arena.right(idx), idx)
}
