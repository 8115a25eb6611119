// Copyright 2026 Oliver Eikemeier. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

// Package postdom computes dominator and post-dominator trees over a
// [flow.Graph].
//
// Both directions use the iterative fixed-point algorithm of Cooper, Harvey
// and Kennedy ("A Simple, Fast Dominance Algorithm") over a reverse postorder
// numbering. Post-dominance is dominance on the transposed graph, rooted at
// the virtual exit, so it holds with respect to every exit, normal and unwind.
package postdom

import (
	"fillmore-labs.com/joinscope/internal/flow"
)

// Tree is a (post-)dominator tree.
//
// Blocks unreachable from the root have no immediate dominator and report
// false from every query; they carry no coverage obligations.
type Tree struct {
	idom []flow.ID // immediate dominator per block, flow.None when unreachable

	// Preorder interval numbering of the dominator tree for O(1) queries.
	pre, post []int32

	root flow.ID
}

// Dominators builds the dominator tree rooted at the entry block.
func Dominators(g *flow.Graph) *Tree {
	return build(g, flow.Entry, succs(g), g.Preds)
}

// PostDominators builds the post-dominator tree rooted at the virtual exit.
func PostDominators(g *flow.Graph) *Tree {
	return build(g, g.Exit(), g.Preds, succs(g))
}

func succs(g *flow.Graph) func(flow.ID) []flow.ID {
	// Flatten edges once; the builder iterates them repeatedly.
	flat := make([][]flow.ID, g.Len())
	for id := range flat {
		edges := g.Block(flow.ID(id)).Succs

		ss := make([]flow.ID, len(edges))
		for i, e := range edges {
			ss[i] = e.To
		}

		flat[id] = ss
	}

	return func(id flow.ID) []flow.ID { return flat[id] }
}

// build runs the fixed point over the graph induced by next (traversal
// direction) and prev (join direction).
func build(g *flow.Graph, root flow.ID, next, prev func(flow.ID) []flow.ID) *Tree {
	n := g.Len()

	order, number := postorder(n, root, next)

	idom := make([]flow.ID, n)
	for i := range idom {
		idom[i] = flow.None
	}

	idom[root] = root

	// Iterate to fixed point; processing in reverse postorder converges in a
	// few passes even with back edges.
	for changed := true; changed; {
		changed = false

		for i := len(order) - 1; i >= 0; i-- {
			b := order[i]
			if b == root {
				continue
			}

			newIdom := flow.None
			for _, p := range prev(b) {
				if idom[p] == flow.None {
					continue // not yet processed or unreachable
				}

				if newIdom == flow.None {
					newIdom = p
				} else {
					newIdom = intersect(idom, number, newIdom, p)
				}
			}

			if newIdom != flow.None && idom[b] != newIdom {
				idom[b] = newIdom
				changed = true
			}
		}
	}

	idom[root] = flow.None // the root dominates itself trivially, not via a parent

	t := &Tree{idom: idom, root: root}
	t.renumber(order)

	return t
}

// postorder returns the blocks reachable from root in postorder, plus the
// postorder number per block (-1 for unreachable blocks).
func postorder(n int, root flow.ID, next func(flow.ID) []flow.ID) (order []flow.ID, number []int32) {
	number = make([]int32, n)
	for i := range number {
		number[i] = -1
	}

	type frame struct {
		id   flow.ID
		succ int
	}

	seen := make([]bool, n)
	seen[root] = true

	stack := make([]frame, 0, n)
	stack = append(stack, frame{id: root})

	for len(stack) > 0 {
		top := &stack[len(stack)-1]

		ss := next(top.id)
		if top.succ < len(ss) {
			s := ss[top.succ]
			top.succ++

			if !seen[s] {
				seen[s] = true

				stack = append(stack, frame{id: s})
			}

			continue
		}

		number[top.id] = int32(len(order))
		order = append(order, top.id)
		stack = stack[:len(stack)-1]
	}

	return order, number
}

// intersect walks both fingers up the tree until they meet.
func intersect(idom []flow.ID, number []int32, b1, b2 flow.ID) flow.ID {
	for b1 != b2 {
		for number[b1] < number[b2] {
			b1 = idom[b1]
		}

		for number[b2] < number[b1] {
			b2 = idom[b2]
		}
	}

	return b1
}

// renumber assigns preorder intervals over the dominator tree so that
// dominance queries are two integer comparisons.
func (t *Tree) renumber(order []flow.ID) {
	n := len(t.idom)

	children := make([][]flow.ID, n)
	for _, b := range order {
		if p := t.idom[b]; p != flow.None {
			children[p] = append(children[p], b)
		}
	}

	t.pre = make([]int32, n)
	t.post = make([]int32, n)
	for i := range t.pre {
		t.pre[i] = -1
	}

	var clock int32

	type frame struct {
		id    flow.ID
		child int
	}

	stack := []frame{{id: t.root}}
	t.pre[t.root] = clock
	clock++

	for len(stack) > 0 {
		top := &stack[len(stack)-1]

		if top.child < len(children[top.id]) {
			c := children[top.id][top.child]
			top.child++

			t.pre[c] = clock
			clock++

			stack = append(stack, frame{id: c})

			continue
		}

		t.post[top.id] = clock
		clock++
		stack = stack[:len(stack)-1]
	}
}

// Idom returns the immediate dominator of b, or false for the root and
// unreachable blocks.
func (t *Tree) Idom(b flow.ID) (flow.ID, bool) {
	id := t.idom[b]

	return id, id != flow.None
}

// Reachable reports whether b is reachable from the tree's root.
func (t *Tree) Reachable(b flow.ID) bool {
	return b == t.root || t.idom[b] != flow.None
}

// Dominates reports whether a (post-)dominates b. Every block dominates
// itself. Unreachable blocks dominate nothing and are dominated by nothing.
func (t *Tree) Dominates(a, b flow.ID) bool {
	if !t.Reachable(a) || !t.Reachable(b) {
		return false
	}

	return t.pre[a] <= t.pre[b] && t.post[b] <= t.post[a]
}
