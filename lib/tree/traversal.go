package tree

import (
	"iter"
)

// The walks below are lazy and stack based. Mutating the tree while
// a walk is in progress is not supported.

// InOrder yields the nodes in key order (ties in insertion-left order).
func (t *treeCore[K]) InOrder() iter.Seq[Handle[K]] {
	return func(yield func(Handle[K]) bool) {
		arena := t.arena
		stack := make([]nodeIdx, 0, 32)
		for x := t.root; x != nilIdx || len(stack) > 0; {
			for ; x != nilIdx; x = arena.left(x) {
				stack = append(stack, x)
			}
			x = stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if !yield(arena.handle(x)) {
				return
			}
			x = arena.right(x)
		}
	}
}

func (t *treeCore[K]) PreOrder() iter.Seq[Handle[K]] {
	return func(yield func(Handle[K]) bool) {
		if t.root == nilIdx {
			return
		}
		arena := t.arena
		stack := make([]nodeIdx, 0, 32)
		stack = append(stack, t.root)
		for len(stack) > 0 {
			x := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if !yield(arena.handle(x)) {
				return
			}
			if r := arena.right(x); r != nilIdx {
				stack = append(stack, r)
			}
			if l := arena.left(x); l != nilIdx {
				stack = append(stack, l)
			}
		}
	}
}

func (t *treeCore[K]) PostOrder() iter.Seq[Handle[K]] {
	return func(yield func(Handle[K]) bool) {
		arena := t.arena
		stack := make([]nodeIdx, 0, 32)
		last := nilIdx
		for x := t.root; x != nilIdx || len(stack) > 0; {
			if x != nilIdx {
				stack = append(stack, x)
				x = arena.left(x)
				continue
			}
			top := stack[len(stack)-1]
			if r := arena.right(top); r != nilIdx && r != last {
				x = r
				continue
			}
			if !yield(arena.handle(top)) {
				return
			}
			last = top
			stack = stack[:len(stack)-1]
		}
	}
}

func (t *treeCore[K]) InorderWalk(visitor Visitor[K]) []string {
	return t.walk(t.InOrder(), visitor)
}

func (t *treeCore[K]) PreorderWalk(visitor Visitor[K]) []string {
	return t.walk(t.PreOrder(), visitor)
}

func (t *treeCore[K]) PostorderWalk(visitor Visitor[K]) []string {
	return t.walk(t.PostOrder(), visitor)
}

// walk applies the visitor to every node of seq. A nil visitor
// renders the keys.
func (t *treeCore[K]) walk(seq iter.Seq[Handle[K]], visitor Visitor[K]) []string {
	if visitor == nil {
		visitor = Handle[K].String
	}
	res := make([]string, 0, t.count)
	for h := range seq {
		res = append(res, visitor(h))
	}
	return res
}
