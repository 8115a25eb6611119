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

// Package analyze runs the per-function joinscope pipeline.
//
// For one function body the stages are: locate spawn sites, build the
// control-flow graph, track each spawn's handle, decide escape, check join
// coverage against the post-dominator tree and assign the lifetime region.
// Every spawn site is judged independently; one rejection never aborts the
// others.
package analyze

import (
	"context"
	"go/ast"
	"go/token"
	"go/types"
	"runtime/trace"

	"golang.org/x/tools/go/analysis"

	"fillmore-labs.com/joinscope/internal/capture"
	"fillmore-labs.com/joinscope/internal/coverage"
	"fillmore-labs.com/joinscope/internal/flow"
	"fillmore-labs.com/joinscope/internal/flow/astcfg"
	"fillmore-labs.com/joinscope/internal/flow/postdom"
	"fillmore-labs.com/joinscope/internal/handle"
	"fillmore-labs.com/joinscope/internal/lifetime"
	"fillmore-labs.com/joinscope/internal/taskspec"
	"fillmore-labs.com/joinscope/verdict"
)

// Site is the analysis result for one spawn site.
type Site struct {
	// Spawn is the spawn call expression.
	Spawn *ast.CallExpr

	// Captures are the variables the spawned closure borrows, when its body
	// is visible at the spawn site.
	Captures []capture.Variable

	Verdict verdict.Verdict
}

// Function analyzes one function body.
type Function struct {
	Pass       *analysis.Pass
	Classifier *taskspec.Classifier
}

// Analyze produces a verdict per spawn site of decl, in source order.
func (f Function) Analyze(ctx context.Context, decl *ast.FuncDecl) ([]Site, error) {
	defer trace.StartRegion(ctx, "Analyze").End()

	body := decl.Body

	spawns := f.spawnSites(body)
	if len(spawns) == 0 {
		return nil, nil
	}

	g, err := astcfg.Build(f.Pass.TypesInfo, f.Classifier, body)
	if err != nil {
		return nil, err
	}

	fn := function{
		Function: f,
		body:     body,
		scope:    f.Pass.TypesInfo.Scopes[decl.Type],
		graph:    g,
	}

	sites := make([]Site, 0, len(spawns))
	for _, spawn := range spawns {
		sites = append(sites, fn.analyzeSpawn(spawn))
	}

	return sites, nil
}

// spawnSites finds all spawn calls directly in body. A spawn inside a nested
// function literal belongs to another activation and is judged there.
func (f Function) spawnSites(body *ast.BlockStmt) []*ast.CallExpr {
	var spawns []*ast.CallExpr

	for _, stmt := range body.List {
		ast.Inspect(stmt, func(n ast.Node) bool {
			switch n := n.(type) {
			case *ast.FuncLit:
				return false

			case *ast.CallExpr:
				if f.Classifier.Classify(f.Pass.TypesInfo, n) == taskspec.Spawn {
					spawns = append(spawns, n)
				}
			}

			return true
		})
	}

	return spawns
}

// function carries the per-body state shared by all spawn sites.
type function struct {
	Function

	body  *ast.BlockStmt
	scope *types.Scope
	graph *flow.Graph

	pdom *postdom.Tree // lazily built
	dom  *postdom.Tree
}

func (fn *function) postDominators() *postdom.Tree {
	if fn.pdom == nil {
		fn.pdom = postdom.PostDominators(fn.graph)
	}

	return fn.pdom
}

func (fn *function) dominators() *postdom.Tree {
	if fn.dom == nil {
		fn.dom = postdom.Dominators(fn.graph)
	}

	return fn.dom
}

// analyzeSpawn runs the pipeline stages for one spawn site.
func (fn *function) analyzeSpawn(spawn *ast.CallExpr) Site {
	site := Site{
		Spawn:    spawn,
		Captures: fn.captures(spawn),
	}

	spawnBlock, ok := fn.graph.BlockAt(spawn.Pos())
	if !ok {
		site.Verdict = reject(spawn, verdict.Unresolved, spawn.Pos(), spawn.End())

		return site
	}

	// A spawn inside a loop produces a distinct handle per iteration; no
	// single region fits them all.
	if coverage.InCycle(fn.graph, spawnBlock) {
		site.Verdict = reject(spawn, verdict.Unresolved, spawn.Pos(), spawn.End())

		return site
	}

	h := handle.Track(fn.Pass.TypesInfo, fn.Classifier, fn.body, spawn)

	if use, escaped := h.Escape(); escaped {
		status := verdict.Escaped
		if use.Kind == handle.UseUnknown {
			status = verdict.Unresolved
		}

		site.Verdict = reject(spawn, status, use.Pos, use.End)

		return site
	}

	site.Verdict = fn.checkCoverage(spawn, spawnBlock, h, site.Captures)

	return site
}

// checkCoverage verifies join coverage and assigns the lifetime region.
func (fn *function) checkCoverage(
	spawn *ast.CallExpr, spawnBlock flow.ID, h *handle.Handle, captures []capture.Variable,
) verdict.Verdict {
	in := coverage.Input{
		Graph:    fn.graph,
		PDom:     fn.postDominators(),
		Spawn:    spawnBlock,
		SpawnPos: spawn.Pos(),
		Joins:    make(coverage.JoinSites),
		Detaches: make(map[flow.ID]token.Pos),
		Deferred: fn.deferredCovers(spawnBlock, spawn.Pos(), h.DeferredJoins()),
		FuncEnd:  fn.body.End(),
	}

	for _, u := range h.Joins() {
		if b, ok := fn.graph.BlockAt(u.Pos); ok {
			in.Joins.Add(b, u.Pos)
		}
	}

	for _, u := range h.Detaches() {
		b, ok := fn.graph.BlockAt(u.Pos)
		if !ok {
			continue
		}

		if prev, dup := in.Detaches[b]; !dup || u.Pos < prev {
			in.Detaches[b] = u.Pos
		}
	}

	out := coverage.Check(in)
	if !out.Covered {
		v := reject(spawn, verdict.UncoveredPath, out.WitnessPos, out.WitnessPos)
		v.Unwind = out.WitnessKind == flow.Panic

		return v
	}

	return lifetime.Assign(spawn, out, captures)
}

// deferredCovers reports whether a deferred join is registered on every path
// from the spawn, which makes it run on every continuation, unwinding
// included. That holds when the defer precedes the spawn or dominates its
// block, and also when it follows the spawn in the same block with no
// possible unwind in between.
func (fn *function) deferredCovers(spawnBlock flow.ID, spawnPos token.Pos, deferred []handle.Use) bool {
	for _, u := range deferred {
		b, ok := fn.graph.BlockAt(u.Pos)
		if !ok {
			continue
		}

		if b == spawnBlock {
			if u.Pos < spawnPos {
				return true
			}

			if p, ok := fn.graph.Block(b).PanicAfter(spawnPos); !ok || p >= u.Pos {
				return true
			}

			continue
		}

		if fn.dominators().Dominates(b, spawnBlock) {
			return true
		}
	}

	return false
}

// captures extracts the borrowed variables of the spawned closure.
func (fn *function) captures(spawn *ast.CallExpr) []capture.Variable {
	for _, arg := range spawn.Args {
		if lit, ok := ast.Unparen(arg).(*ast.FuncLit); ok {
			return capture.FromClosure(fn.Pass.TypesInfo, lit, fn.scope, spawn.Pos(), fn.body)
		}
	}

	return nil
}

func reject(spawn *ast.CallExpr, status verdict.Status, witness, witnessEnd token.Pos) verdict.Verdict {
	return verdict.Verdict{
		Spawn:      spawn.Pos(),
		SpawnEnd:   spawn.End(),
		Status:     status,
		Witness:    witness,
		WitnessEnd: witnessEnd,
	}
}
