package tree

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/benz9527/xtree/lib/infra"
	"github.com/benz9527/xtree/lib/xlog"
)

// treeCore is the linkage shared by every tree kind. It only knows
// the shape of the tree, never the key order.
type treeCore[K infra.OrderedKey] struct {
	arena   *nodeArena[K]
	kcmp    infra.OrderedKeyComparator[K]
	logger  xlog.XLogger
	count   int64
	inserts uint64
	deletes uint64
	root    nodeIdx
	trace   bool
}

func newTreeCore[K infra.OrderedKey](cfg *treeConfig[K]) treeCore[K] {
	core := treeCore[K]{
		arena:  newNodeArena[K](cfg.capacity),
		kcmp:   cfg.kcmp,
		logger: cfg.logger,
		root:   nilIdx,
	}
	if core.logger != nil {
		core.trace = true
	} else {
		core.logger = xlog.NewNopXLogger()
	}
	return core
}

func (t *treeCore[K]) core() *treeCore[K] {
	return t
}

func (t *treeCore[K]) Len() int64 {
	return t.count
}

func (t *treeCore[K]) IsEmpty() bool {
	return t.root == nilIdx
}

func (t *treeCore[K]) IsSentinel(h Handle[K]) bool {
	return h.IsSentinel()
}

func (t *treeCore[K]) Root() Handle[K] {
	return t.arena.handle(t.root)
}

// Height counts the levels by BFS, -1 for the empty tree.
func (t *treeCore[K]) Height() int {
	if t.root == nilIdx {
		return -1
	}
	height := -1
	level := []nodeIdx{t.root}
	next := make([]nodeIdx, 0, 2)
	for len(level) > 0 {
		height++
		next = next[:0]
		for _, x := range level {
			if l := t.arena.left(x); l != nilIdx {
				next = append(next, l)
			}
			if r := t.arena.right(x); r != nilIdx {
				next = append(next, r)
			}
		}
		level, next = next, level
	}
	return height
}

func (t *treeCore[K]) stats(height int) TreeStats {
	return TreeStats{
		Len:     t.count,
		Height:  height,
		Inserts: t.inserts,
		Deletes: t.deletes,
	}
}

func (t *treeCore[K]) direction(x nodeIdx) Direction {
	if x == nilIdx {
		// impossible run to here
		panic( /* debug assertion */ "[xtree] sentinel node without direction")
	}
	p := t.arena.parent(x)
	if p == nilIdx {
		return Root
	}
	if t.arena.left(p) == x {
		return Left
	}
	return Right
}

// attach links the new node z under y, or makes it the root.
func (t *treeCore[K]) attach(z, y nodeIdx, dir Direction) {
	t.arena.setParent(z, y)
	switch dir {
	case Root:
		t.root = z
	case Left:
		t.arena.setLeft(y, z)
	case Right:
		t.arena.setRight(y, z)
	default:
		// impossible run to here
		panic( /* debug assertion */ "[xtree] unknown direction to attach")
	}
	t.count++
	t.inserts++
}

// transplant replaces the subtree u by the subtree v in u's parent slot.
func (t *treeCore[K]) transplant(u, v nodeIdx) {
	p := t.arena.parent(u)
	switch dir := t.direction(u); dir {
	case Root:
		t.root = v
	case Left:
		t.arena.setLeft(p, v)
	case Right:
		t.arena.setRight(p, v)
	default:
		// impossible run to here
		panic( /* debug assertion */ "[xtree] unknown node direction to transplant")
	}
	t.arena.setParent(v, p)
}

func (t *treeCore[K]) minimum(x nodeIdx) nodeIdx {
	for ; x != nilIdx && t.arena.left(x) != nilIdx; x = t.arena.left(x) {
	}
	return x
}

func (t *treeCore[K]) maximum(x nodeIdx) nodeIdx {
	for ; x != nilIdx && t.arena.right(x) != nilIdx; x = t.arena.right(x) {
	}
	return x
}

// The succ node of the current node is its next node in in-order.
func (t *treeCore[K]) successor(x nodeIdx) nodeIdx {
	if r := t.arena.right(x); r != nilIdx {
		return t.minimum(r)
	}
	y := t.arena.parent(x)
	// Backtrack to the first ancestor that x hangs on the left of.
	for y != nilIdx && x == t.arena.right(y) {
		x, y = y, t.arena.parent(y)
	}
	return y
}

// The pred node of the current node is its previous node in in-order.
func (t *treeCore[K]) predecessor(x nodeIdx) nodeIdx {
	if l := t.arena.left(x); l != nilIdx {
		return t.maximum(l)
	}
	y := t.arena.parent(x)
	for y != nilIdx && x == t.arena.left(y) {
		x, y = y, t.arena.parent(y)
	}
	return y
}

/*
unlink detaches z from the tree and returns the node the height
repair has to start from.

d1: z has no left child, its right subtree takes z's place.
d2: z has no right child, its left subtree takes z's place.
Repair starts at z's former parent.

d3: z has both children. Its successor S (the minimum of the right
subtree, no left child) is unlinked first by d1, then S is moved
into z's place with z's children and height.

	    |                   |
	    Z                   S
	   / \     unlink(Z)   / \
	  L   R   ==========> L   R
	     / \                 / \
	    P  ..               P  ..
	   / \                 / \
	  S  ..               Sr ..
	   \
	    Sr

Repair starts at S's former parent P, or at S itself when S was
z's direct right child (then P is the removed z).
*/
func (t *treeCore[K]) unlink(z nodeIdx) (fixFrom nodeIdx) {
	arena := t.arena
	switch zl, zr := arena.left(z), arena.right(z); {
	case /* d1 */ zl == nilIdx:
		fixFrom = arena.parent(z)
		t.transplant(z, zr)
	case /* d2 */ zr == nilIdx:
		fixFrom = arena.parent(z)
		t.transplant(z, zl)
	default /* d3 */ :
		s := t.minimum(zr)
		if fixFrom = t.unlink(s); fixFrom == z {
			fixFrom = s
		}
		// z's right child may have been replaced by s's right subtree.
		arena.setLeft(s, arena.left(z))
		arena.setRight(s, arena.right(z))
		arena.fixLink(s)
		arena.setHeight(s, arena.height(z))
		t.transplant(z, s)
	}
	return fixFrom
}

// remove validates the handle, unlinks and frees its node.
func (t *treeCore[K]) remove(h Handle[K]) (fixFrom nodeIdx, err error) {
	if h.IsSentinel() {
		return nilIdx, ErrInvalidSentinelDeletion
	}
	z, err := t.arena.resolve(h)
	if err != nil {
		return nilIdx, err
	}
	fixFrom = t.unlink(z)
	if t.trace {
		t.logger.Debug("[xtree] node unlinked",
			zap.Any("key", h.key),
			zap.Uint32("node", uint32(z)),
			zap.Uint32("fixFrom", uint32(fixFrom)),
		)
	}
	t.arena.release(z)
	t.count--
	t.deletes++
	return fixFrom, nil
}

func (t *treeCore[K]) resolveNonSentinel(h Handle[K]) (nodeIdx, error) {
	if h.IsSentinel() {
		return nilIdx, ErrEmptyTreeAccess
	}
	return t.arena.resolve(h)
}

// Release drops all nodes. Handles issued before are rejected afterwards.
func (t *treeCore[K]) Release() {
	t.arena.reset()
	t.root = nilIdx
	t.count = 0
}

// String renders the tree in in-order, one node per line, indented
// by two spaces per depth.
func (t *treeCore[K]) String() string {
	if t.root == nilIdx {
		return "nil\n"
	}

	type frame struct {
		idx   nodeIdx
		depth int
	}
	builder := strings.Builder{}
	stack := make([]frame, 0, 32)
	x, depth := t.root, 0
	for x != nilIdx || len(stack) > 0 {
		for ; x != nilIdx; x, depth = t.arena.left(x), depth+1 {
			stack = append(stack, frame{idx: x, depth: depth})
		}
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		builder.WriteString(strings.Repeat("  ", f.depth))
		builder.WriteString(fmt.Sprint(t.arena.key(f.idx)))
		builder.WriteByte('\n')
		x, depth = t.arena.right(f.idx), f.depth+1
	}
	return builder.String()
}
