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

package coverage_test

import (
	"go/token"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "fillmore-labs.com/joinscope/internal/coverage"
	"fillmore-labs.com/joinscope/internal/flow"
	"fillmore-labs.com/joinscope/internal/flow/postdom"
)

const funcEnd = token.Pos(1000)

// straightLine builds a single block covering [10, 100) that returns.
func straightLine(t *testing.T) *flow.Graph {
	t.Helper()

	g := flow.NewGraph()
	g.AddRange(flow.Entry, 10, 100)
	g.MarkExit(flow.Entry, flow.Return)

	require.NoError(t, g.Freeze())

	return g
}

func input(g *flow.Graph, spawn flow.ID, spawnPos token.Pos) Input {
	return Input{
		Graph:    g,
		PDom:     postdom.PostDominators(g),
		Spawn:    spawn,
		SpawnPos: spawnPos,
		Joins:    make(JoinSites),
		Detaches: make(map[flow.ID]token.Pos),
		FuncEnd:  funcEnd,
	}
}

func TestJoinInSpawnBlock(t *testing.T) {
	t.Parallel()

	g := straightLine(t)

	in := input(g, flow.Entry, 20)
	in.Joins.Add(flow.Entry, 40)

	out := Check(in)
	require.True(t, out.Covered)
	assert.Equal(t, flow.Entry, out.Bound)
	assert.Equal(t, token.Pos(40), out.BoundPos)
}

func TestPanicBetweenSpawnAndJoin(t *testing.T) {
	t.Parallel()

	g := flow.NewGraph()
	g.AddRange(flow.Entry, 10, 100)
	g.AddPanic(flow.Entry, 30)
	g.MarkExit(flow.Entry, flow.Return)
	require.NoError(t, g.Freeze())

	in := input(g, flow.Entry, 20)
	in.Joins.Add(flow.Entry, 40)

	out := Check(in)
	require.False(t, out.Covered)
	assert.Equal(t, token.Pos(30), out.WitnessPos)
	assert.Equal(t, flow.Panic, out.WitnessKind)
}

// The spawn statement's own may-panic position must not count against it.
func TestSpawnPanicIgnored(t *testing.T) {
	t.Parallel()

	g := flow.NewGraph()
	g.AddRange(flow.Entry, 10, 100)
	g.AddPanic(flow.Entry, 20)
	g.MarkExit(flow.Entry, flow.Return)
	require.NoError(t, g.Freeze())

	in := input(g, flow.Entry, 20)
	in.Joins.Add(flow.Entry, 40)

	out := Check(in)
	assert.True(t, out.Covered)
}

func TestUncoveredExit(t *testing.T) {
	t.Parallel()

	g := straightLine(t)

	out := Check(input(g, flow.Entry, 20))
	require.False(t, out.Covered)
	assert.Equal(t, flow.Entry, out.Witness)
	assert.Equal(t, flow.Return, out.WitnessKind)
}

func TestDetach(t *testing.T) {
	t.Parallel()

	g := straightLine(t)

	in := input(g, flow.Entry, 20)
	in.Joins.Add(flow.Entry, 40)
	in.Detaches[flow.Entry] = 30

	out := Check(in)
	require.False(t, out.Covered)
	assert.Equal(t, token.Pos(30), out.WitnessPos)
	assert.Equal(t, flow.NoExit, out.WitnessKind)
}

func TestDeferredJoin(t *testing.T) {
	t.Parallel()

	g := flow.NewGraph()
	g.AddRange(flow.Entry, 10, 100)
	g.AddPanic(flow.Entry, 30) // covered by the deferred join
	g.MarkExit(flow.Entry, flow.Return)
	require.NoError(t, g.Freeze())

	in := input(g, flow.Entry, 20)
	in.Deferred = true

	out := Check(in)
	require.True(t, out.Covered)
	assert.Equal(t, g.Exit(), out.Bound)
	assert.Equal(t, funcEnd, out.BoundPos)
}

// Joins on both branches bound the region at their common post-dominator.
func TestBranchBound(t *testing.T) {
	t.Parallel()

	g := flow.NewGraph()
	g.AddRange(flow.Entry, 10, 20)

	a, b, after := g.NewBlock(20), g.NewBlock(30), g.NewBlock(40)
	g.AddRange(a, 20, 30)
	g.AddRange(b, 30, 40)
	g.AddRange(after, 40, 50)

	g.AddEdge(flow.Entry, a, flow.Branch)
	g.AddEdge(flow.Entry, b, flow.Branch)
	g.AddEdge(a, after, flow.Normal)
	g.AddEdge(b, after, flow.Normal)
	g.MarkExit(after, flow.Return)
	require.NoError(t, g.Freeze())

	in := input(g, flow.Entry, 15)
	in.Joins.Add(a, 25)
	in.Joins.Add(b, 35)

	out := Check(in)
	require.True(t, out.Covered)
	assert.Equal(t, after, out.Bound)
	assert.Equal(t, token.Pos(40), out.BoundPos)
}

func TestJoinMissingOnOneBranch(t *testing.T) {
	t.Parallel()

	g := flow.NewGraph()
	g.AddRange(flow.Entry, 10, 20)

	a, after := g.NewBlock(20), g.NewBlock(40)
	g.AddRange(a, 20, 30)
	g.AddRange(after, 40, 50)

	g.AddEdge(flow.Entry, a, flow.Branch)
	g.AddEdge(flow.Entry, after, flow.Branch)
	g.AddEdge(a, after, flow.Normal)
	g.MarkExit(after, flow.Return)
	require.NoError(t, g.Freeze())

	in := input(g, flow.Entry, 15)
	in.Joins.Add(a, 25)

	out := Check(in)
	require.False(t, out.Covered)
	assert.Equal(t, after, out.Witness)
	assert.Equal(t, flow.Return, out.WitnessKind)
}

func TestInCycle(t *testing.T) {
	t.Parallel()

	g := flow.NewGraph()
	g.AddRange(flow.Entry, 10, 20)

	body, after := g.NewBlock(20), g.NewBlock(40)
	g.AddRange(body, 20, 30)
	g.AddRange(after, 40, 50)

	g.AddEdge(flow.Entry, body, flow.Branch)
	g.AddEdge(body, body, flow.Branch) // self loop
	g.AddEdge(body, after, flow.Branch)
	g.MarkExit(after, flow.Return)
	require.NoError(t, g.Freeze())

	assert.True(t, InCycle(g, body))
	assert.False(t, InCycle(g, flow.Entry))
	assert.False(t, InCycle(g, after))
}

// TestCoverageOracle checks the soundness property on random graphs with
// planted joins: the spawn is covered exactly when no path from it reaches an
// exit while avoiding every join block.
func TestCoverageOracle(t *testing.T) {
	t.Parallel()

	const blocks = 8

	rng := rand.New(rand.NewPCG(3, 5))

	for range 200 {
		g := flow.NewGraph()
		for len(g.Block(flow.Entry).Succs) == 0 {
			g = randomGraph(t, rng, blocks)
		}

		in := input(g, flow.Entry, g.Block(flow.Entry).Pos)

		joins := make(map[flow.ID]bool)

		for b := flow.ID(1); int(b) < blocks; b++ {
			if rng.IntN(3) == 0 {
				joins[b] = true
				in.Joins.Add(b, g.Block(b).Pos)
			}
		}

		got := Check(in)
		want := !exitAvoiding(g, joins)

		require.Equal(t, want, got.Covered, "joins %v", joins)
	}
}

func randomGraph(t *testing.T, rng *rand.Rand, blocks int) *flow.Graph {
	t.Helper()

	g := flow.NewGraph()
	g.AddRange(flow.Entry, 10, 20)

	for i := 1; i < blocks; i++ {
		b := g.NewBlock(token.Pos(10 * (i + 1)))
		g.AddRange(b, token.Pos(10*(i+1)), token.Pos(10*(i+1)+10))
	}

	for from := range blocks {
		for range 2 {
			to := rng.IntN(blocks)
			if to != from {
				g.AddEdge(flow.ID(from), flow.ID(to), flow.Branch)
			}
		}
	}

	g.MarkExit(flow.ID(blocks-1), flow.Return)
	require.NoError(t, g.Freeze())

	return g
}

// exitAvoiding reports whether some exit block is reachable from the entry
// without entering a join block.
func exitAvoiding(g *flow.Graph, joins map[flow.ID]bool) bool {
	seen := map[flow.ID]bool{flow.Entry: true}

	queue := []flow.ID{flow.Entry}
	for len(queue) > 0 {
		b := queue[0]
		queue = queue[1:]

		if g.Block(b).Exit != flow.NoExit {
			return true
		}

		for _, e := range g.Block(b).Succs {
			if e.To == g.Exit() || joins[e.To] || seen[e.To] {
				continue
			}

			seen[e.To] = true
			queue = append(queue, e.To)
		}
	}

	return false
}
