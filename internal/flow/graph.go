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

package flow

import (
	"errors"
	"go/token"
	"slices"
)

// ID identifies a [Block] within its [Graph].
// The function entry is always [Entry], the virtual exit is assigned by [Graph.Freeze].
type ID int32

// Entry is the ID of the entry block of every graph.
const Entry ID = 0

// None marks the absence of a block.
const None ID = -1

// Edge is a directed edge to a successor block.
type Edge struct {
	To   ID
	Kind EdgeKind
}

// Block is a basic block: a source range with single entry and exit,
// successor edges and an optional exit kind.
//
// Blocks carry no statements. The source range is sufficient for the analysis,
// which orders program points by [token.Pos] within a block.
type Block struct {
	Pos, End token.Pos // source range covered by the block, may be invalid for synthetic blocks
	Exit     ExitKind  // how the block leaves the function, if it does
	Succs    []Edge

	// Panics are the positions of statements that may panic, in source
	// order. They induce an unwind edge to the virtual exit.
	Panics []token.Pos
}

// PanicAfter returns the first may-panic position strictly after from.
func (b *Block) PanicAfter(from token.Pos) (token.Pos, bool) {
	for _, p := range b.Panics {
		if p > from {
			return p, true
		}
	}

	return token.NoPos, false
}

// update grows the source range of the block to include [pos, end).
func (b *Block) update(pos, end token.Pos) {
	if !b.Pos.IsValid() || pos < b.Pos {
		b.Pos = pos
	}

	if end > b.End {
		b.End = end
	}
}

// Graph is an immutable-after-[Graph.Freeze] control-flow graph.
//
// Blocks live in an arena indexed by [ID], edges are index pairs. This avoids
// ownership cycles for graphs with back edges and keeps all traversals
// iterative.
type Graph struct {
	blocks []Block
	preds  [][]ID // computed by Freeze

	// Non-empty block IDs sorted by Pos for position lookup.
	byPos []ID

	exit   ID // virtual exit, valid after Freeze
	frozen bool
}

// ErrNoEntry is returned by [Graph.Freeze] for a graph without blocks.
var ErrNoEntry = errors.New("flow: graph has no entry block")

// ErrFrozen is raised when a frozen graph is mutated.
var ErrFrozen = errors.New("flow: graph is frozen")

// NewGraph returns an empty graph with a fresh entry block.
func NewGraph() *Graph {
	g := &Graph{exit: None}
	g.NewBlock(token.NoPos)

	return g
}

// NewBlock appends a block starting at pos and returns its ID.
func (g *Graph) NewBlock(pos token.Pos) ID {
	if g.frozen {
		panic(ErrFrozen)
	}

	g.blocks = append(g.blocks, Block{Pos: pos, End: token.NoPos})

	return ID(len(g.blocks) - 1)
}

// AddRange extends block b to cover the source range [pos, end).
func (g *Graph) AddRange(b ID, pos, end token.Pos) {
	if g.frozen {
		panic(ErrFrozen)
	}

	g.blocks[b].update(pos, end)
}

// AddEdge links from to to with the given kind. Duplicate edges are dropped.
func (g *Graph) AddEdge(from, to ID, kind EdgeKind) {
	if g.frozen {
		panic(ErrFrozen)
	}

	edge := Edge{To: to, Kind: kind}
	if slices.Contains(g.blocks[from].Succs, edge) {
		return
	}

	g.blocks[from].Succs = append(g.blocks[from].Succs, edge)
}

// AddPanic records a may-panic statement position in block b. Positions must
// be added in source order.
func (g *Graph) AddPanic(b ID, pos token.Pos) {
	if g.frozen {
		panic(ErrFrozen)
	}

	g.blocks[b].Panics = append(g.blocks[b].Panics, pos)
}

// MarkExit marks block b as leaving the function.
func (g *Graph) MarkExit(b ID, kind ExitKind) {
	if g.frozen {
		panic(ErrFrozen)
	}

	g.blocks[b].Exit = kind
}

// Freeze finalizes the graph: it validates the entry invariant, appends the
// virtual exit all exit blocks converge to, computes predecessor lists and
// the position index. The graph is read-only afterwards.
func (g *Graph) Freeze() error {
	if g.frozen {
		return nil
	}

	if len(g.blocks) == 0 {
		return ErrNoEntry
	}

	// The virtual exit joins normal and unwind exits, so post-dominance is
	// computed with respect to every exit at once.
	exit := g.NewBlock(token.NoPos)
	g.exit = exit

	for id := range g.blocks {
		b := &g.blocks[id]

		if b.Exit != NoExit {
			kind := Normal
			if b.Exit == Panic {
				kind = Unwind
			}

			g.AddEdge(ID(id), exit, kind)
		}

		if len(b.Panics) > 0 {
			g.AddEdge(ID(id), exit, Unwind)
		}
	}

	g.preds = make([][]ID, len(g.blocks))
	for id := range g.blocks {
		for _, e := range g.blocks[id].Succs {
			g.preds[e.To] = append(g.preds[e.To], ID(id))
		}
	}

	g.byPos = g.byPos[:0]
	for id := range g.blocks {
		if b := &g.blocks[id]; b.End.IsValid() {
			g.byPos = append(g.byPos, ID(id))
		}
	}

	slices.SortFunc(g.byPos, func(a, b ID) int { return int(g.blocks[a].Pos - g.blocks[b].Pos) })

	g.frozen = true

	return nil
}

// Len returns the number of blocks, including the virtual exit after Freeze.
func (g *Graph) Len() int { return len(g.blocks) }

// Exit returns the virtual exit block.
func (g *Graph) Exit() ID { return g.exit }

// Block returns the block with the given ID.
func (g *Graph) Block(id ID) *Block { return &g.blocks[id] }

// Preds returns the predecessors of id. Only valid after Freeze.
func (g *Graph) Preds(id ID) []ID { return g.preds[id] }

// BlockAt finds the block covering the given position.
func (g *Graph) BlockAt(pos token.Pos) (ID, bool) {
	i, ok := slices.BinarySearchFunc(g.byPos, pos, func(id ID, p token.Pos) int {
		switch b := &g.blocks[id]; {
		case b.End <= p:
			return -1

		case b.Pos > p:
			return 1

		default:
			return 0
		}
	})
	if !ok {
		return None, false
	}

	return g.byPos[i], true
}
