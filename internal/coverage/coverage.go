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

// Package coverage decides whether every execution path from a spawn site to
// any function exit passes a join of that spawn's handle first.
//
// The check is a pure function over an immutable [flow.Graph] and its
// post-dominator tree; it never looks at syntax. Unwind exits count: an inline
// join covers only normal continuations, while a deferred join that dominates
// the spawn runs during unwinding as well and covers everything.
package coverage

import (
	"go/token"
	"slices"

	"fillmore-labs.com/joinscope/internal/flow"
	"fillmore-labs.com/joinscope/internal/flow/postdom"
)

// JoinSites records join positions per block, kept in source order.
type JoinSites map[flow.ID][]token.Pos

// Add records a join at pos inside block b.
func (j JoinSites) Add(b flow.ID, pos token.Pos) {
	i, _ := slices.BinarySearch(j[b], pos)
	j[b] = slices.Insert(j[b], i, pos)
}

// after returns the first join in b at or after from.
func (j JoinSites) after(b flow.ID, from token.Pos) (token.Pos, bool) {
	for _, pos := range j[b] {
		if pos >= from {
			return pos, true
		}
	}

	return token.NoPos, false
}

// Input is one spawn site's coverage query.
type Input struct {
	Graph *flow.Graph
	PDom  *postdom.Tree

	// Spawn is the block containing the spawn, SpawnPos the spawn statement.
	Spawn    flow.ID
	SpawnPos token.Pos

	// Joins are the inline join sites of the spawn's handle.
	Joins JoinSites

	// Detaches are sites abandoning the handle, per block.
	Detaches map[flow.ID]token.Pos

	// Deferred is true when a deferred join dominates the spawn, giving the
	// scope-exit guarantee that covers unwind paths.
	Deferred bool

	// FuncEnd bounds the region when the join is only guaranteed at
	// function exit.
	FuncEnd token.Pos
}

// Outcome is the coverage verdict for one spawn site.
type Outcome struct {
	Covered bool

	// Bound is the block every path is guaranteed to have joined by;
	// BoundPos is the corresponding program point. Valid when Covered.
	Bound    flow.ID
	BoundPos token.Pos

	// Witness identifies the uncovered exit when not Covered.
	Witness     flow.ID
	WitnessPos  token.Pos
	WitnessKind flow.ExitKind
}

// InCycle reports whether b lies on a cycle. Spawns inside loops produce a
// fresh handle per iteration and are rejected as unresolved rather than given
// a per-iteration region.
func InCycle(g *flow.Graph, b flow.ID) bool {
	seen := make([]bool, g.Len())

	queue := []flow.ID{b}
	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]

		for _, e := range g.Block(curr).Succs {
			if e.To == b {
				return true
			}

			if !seen[e.To] {
				seen[e.To] = true
				queue = append(queue, e.To)
			}
		}
	}

	return false
}

// Check verifies join coverage for one spawn site.
func Check(in Input) Outcome {
	if in.Deferred {
		// The join runs at scope exit on every path, including unwinding.
		return Outcome{Covered: true, Bound: in.Graph.Exit(), BoundPos: in.FuncEnd}
	}

	c := checker{
		in:   in,
		seen: make([]bool, in.Graph.Len()),
	}

	return c.run()
}

type checker struct {
	in       Input
	seen     []bool
	queue    []flow.ID
	barriers []flow.ID // join blocks actually shielding a path
}

// run walks all paths from the spawn, stopping at join barriers.
func (c *checker) run() Outcome {
	c.seen[c.in.Spawn] = true
	c.queue = append(c.queue, c.in.Spawn)

	for len(c.queue) > 0 {
		b := c.queue[0]
		c.queue = c.queue[1:]

		// Statements before the spawn are not part of its continuation.
		from := token.Pos(0)
		if b == c.in.Spawn {
			from = c.in.SpawnPos
		}

		if outcome, done := c.visit(b, from); done {
			return outcome
		}
	}

	return c.covered()
}

// visit inspects one block of the continuation. It reports an uncovered exit
// as soon as one is found.
func (c *checker) visit(b flow.ID, from token.Pos) (Outcome, bool) {
	block := c.in.Graph.Block(b)

	if pos, ok := c.detachAfter(b, from); ok {
		return c.uncovered(b, pos, flow.NoExit), true
	}

	if jp, ok := c.in.Joins.after(b, from); ok {
		// This path joins here. A statement between the continuation start
		// and the join can still panic past it.
		if p, panics := block.PanicAfter(from); panics && p < jp {
			return c.uncovered(b, p, flow.Panic), true
		}

		c.barriers = append(c.barriers, b)

		return Outcome{}, false // do not expand, path is covered
	}

	if p, panics := block.PanicAfter(from); panics {
		return c.uncovered(b, p, flow.Panic), true
	}

	if block.Exit != flow.NoExit {
		pos := block.End
		if !pos.IsValid() {
			pos = c.in.FuncEnd
		}

		return c.uncovered(b, pos, block.Exit), true
	}

	for _, e := range block.Succs {
		if e.Kind == flow.Unwind {
			continue // accounted for via Panics and Exit above
		}

		if !c.seen[e.To] {
			c.seen[e.To] = true
			c.queue = append(c.queue, e.To)
		}
	}

	return Outcome{}, false
}

func (c *checker) detachAfter(b flow.ID, from token.Pos) (token.Pos, bool) {
	pos, ok := c.in.Detaches[b]
	if !ok || pos < from {
		return token.NoPos, false
	}

	return pos, true
}

func (c *checker) uncovered(b flow.ID, pos token.Pos, kind flow.ExitKind) Outcome {
	return Outcome{
		Covered:     false,
		Witness:     b,
		WitnessPos:  pos,
		WitnessKind: kind,
	}
}

// covered computes the region bound: the nearest common ancestor of all
// shielding join blocks in the post-dominator tree. Every path passes its own
// barrier first and the bound afterwards, so the bound is the first program
// point guaranteed to lie after at least one join.
func (c *checker) covered() Outcome {
	if len(c.barriers) == 0 {
		// The spawn block cannot reach any exit; the region collapses.
		return Outcome{Covered: true, Bound: c.in.Spawn, BoundPos: c.in.SpawnPos}
	}

	bound := c.barriers[0]
	for _, b := range c.barriers[1:] {
		bound = c.nca(bound, b)
	}

	outcome := Outcome{Covered: true, Bound: bound}

	// When the bound block itself contains the join, the region ends at the
	// join statement; otherwise at the block entry.
	from := token.Pos(0)
	if bound == c.in.Spawn {
		from = c.in.SpawnPos
	}

	if jp, ok := c.in.Joins.after(bound, from); ok {
		outcome.BoundPos = jp
	} else if pos := c.in.Graph.Block(bound).Pos; pos.IsValid() {
		outcome.BoundPos = pos
	} else {
		outcome.BoundPos = c.in.FuncEnd // virtual exit
	}

	return outcome
}

// nca finds the nearest common ancestor of a and b in the post-dominator
// tree.
func (c *checker) nca(a, b flow.ID) flow.ID {
	for !c.in.PDom.Dominates(a, b) {
		parent, ok := c.in.PDom.Idom(a)
		if !ok {
			return c.in.Graph.Exit()
		}

		a = parent
	}

	return a
}
