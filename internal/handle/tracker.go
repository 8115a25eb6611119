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

// Package handle follows the join-handle value produced by a spawn expression
// through the current function and classifies every use site.
//
// Tracking is intraprocedural: moves between plain locals are followed, both
// arms of a conditional independently. Anything else that removes the value
// from view — a store into an aggregate, a return, an argument to an
// unclassified function, a use inside another closure, dynamic indexing — is
// conservative: stores and returns escape, unaccounted uses leave the handle
// unresolved, which is treated as escaping too.
package handle

import (
	"go/ast"
	"go/token"
	"go/types"
	"slices"

	"fillmore-labs.com/joinscope/internal/taskspec"
)

// Use is one classified use site of a handle.
type Use struct {
	Pos, End token.Pos
	Kind     UseKind
}

// Handle is the trackable value identity originating at a spawn site.
type Handle struct {
	// Spawn is the originating spawn call.
	Spawn *ast.CallExpr

	// Vars are the handle variable and every local it was moved to.
	Vars []*types.Var

	// Uses are all classified use sites, in source order.
	Uses []Use
}

// Resolved reports whether every reachable use site was classified.
func (h *Handle) Resolved() bool {
	for _, u := range h.Uses {
		if u.Kind == UseUnknown {
			return false
		}
	}

	return true
}

// Escape returns the first use that forces the conservative static lifetime,
// if any.
func (h *Handle) Escape() (Use, bool) {
	for _, u := range h.Uses {
		if u.Kind.escapes() {
			return u, true
		}
	}

	return Use{}, false
}

// Joins returns all inline join use sites.
func (h *Handle) Joins() []Use {
	return h.filter(UseJoin)
}

// DeferredJoins returns all joins registered with defer.
func (h *Handle) DeferredJoins() []Use {
	return h.filter(UseDeferredJoin)
}

// Detaches returns all sites abandoning the handle without a join.
func (h *Handle) Detaches() []Use {
	return h.filter(UseDetach)
}

func (h *Handle) filter(kind UseKind) []Use {
	var uses []Use

	for _, u := range h.Uses {
		if u.Kind == kind {
			uses = append(uses, u)
		}
	}

	return uses
}

// Track resolves the handle produced by spawn within body.
//
// The handle variable is either the receiver of a method-style spawn
// (wg.Go(fn)) or the variable a handle-returning spawn is assigned to
// (h := spawn(fn)). A handle-returning spawn whose result is discarded yields
// a handle with a single detach use.
func Track(info *types.Info, cl *taskspec.Classifier, body *ast.BlockStmt, spawn *ast.CallExpr) *Handle {
	h := &Handle{Spawn: spawn}

	if v := taskspec.Receiver(info, spawn); v != nil {
		if packageLevel(v) {
			h.Uses = append(h.Uses, Use{Pos: spawn.Pos(), End: spawn.End(), Kind: UseStore})

			return h
		}

		h.Vars = append(h.Vars, v)
	} else if v, discarded := spawnResult(info, body, spawn); v != nil {
		// A handle bound to a package-level variable is visible to other
		// functions, beyond this tracking.
		if packageLevel(v) {
			h.Uses = append(h.Uses, Use{Pos: spawn.Pos(), End: spawn.End(), Kind: UseStore})

			return h
		}

		h.Vars = append(h.Vars, v)
	} else if discarded {
		h.Uses = append(h.Uses, Use{Pos: spawn.Pos(), End: spawn.End(), Kind: UseDetach})

		return h
	} else {
		// The produced value flows somewhere we cannot follow.
		h.Uses = append(h.Uses, Use{Pos: spawn.Pos(), End: spawn.End(), Kind: UseUnknown})

		return h
	}

	// Moves grow h.Vars during the walk; iterate until no new alias appears.
	for tracked := 0; tracked < len(h.Vars); tracked++ {
		h.collectUses(info, cl, body, h.Vars[tracked])
	}

	return h
}

// spawnResult finds the variable a handle-returning spawn call is bound to.
// discarded is true when the call is a plain expression statement.
func spawnResult(info *types.Info, body *ast.BlockStmt, spawn *ast.CallExpr) (v *types.Var, discarded bool) {
	if _, ok := info.TypeOf(spawn).(*types.Tuple); ok {
		return nil, false // multi-value results are not tracked
	}

	found := false

	ast.Inspect(body, func(n ast.Node) bool {
		if found {
			return false
		}

		switch n := n.(type) {
		case *ast.ExprStmt:
			if ast.Unparen(n.X) == spawn {
				found, discarded = true, true
			}

		case *ast.AssignStmt:
			for i, rhs := range n.Rhs {
				if ast.Unparen(rhs) != spawn || i >= len(n.Lhs) {
					continue
				}

				found = true

				if ident, ok := ast.Unparen(n.Lhs[i]).(*ast.Ident); ok && ident.Name != "_" {
					if obj, ok := info.Defs[ident].(*types.Var); ok {
						v = obj
					} else if obj, ok := info.Uses[ident].(*types.Var); ok {
						v = obj
					}
				} else {
					discarded = true // assigned to the blank identifier or an untracked place
				}
			}
		}

		return !found
	})

	return v, discarded
}

// collectUses classifies every use of v in body and appends it to h.Uses.
func (h *Handle) collectUses(info *types.Info, cl *taskspec.Classifier, body *ast.BlockStmt, v *types.Var) {
	w := &walker{}

	w.walk(body, func(ident *ast.Ident, stack []ast.Node) {
		if info.Uses[ident] != v {
			return
		}

		h.Uses = append(h.Uses, h.classify(info, cl, ident, stack))
	})
}

// classify determines the use kind of one identifier occurrence from its
// ancestor chain. stack[len-1] is the identifier itself.
func (h *Handle) classify(info *types.Info, cl *taskspec.Classifier, ident *ast.Ident, stack []ast.Node) Use {
	use := Use{Pos: ident.Pos(), End: ident.End(), Kind: UseUnknown}

	// A use inside any function literal is concurrent with the tracked flow
	// and cannot be ordered against it.
	for _, n := range stack[:len(stack)-1] {
		if _, ok := n.(*ast.FuncLit); ok {
			return use
		}
	}

	// Strip parentheses and an address-of: (&wg).Wait(), join(&wg).
	for {
		switch p := parentOf(stack, 1).(type) {
		case *ast.ParenExpr:
			stack = stack[:len(stack)-1]

			continue

		case *ast.UnaryExpr:
			if p.Op == token.AND {
				stack = stack[:len(stack)-1]

				continue
			}
		}

		break
	}

	switch p := parentOf(stack, 1).(type) {
	case *ast.SelectorExpr:
		// Method call on the handle: wg.Go(fn), wg.Wait().
		call, ok := parentOf(stack, 2).(*ast.CallExpr)
		if !ok || ast.Unparen(call.Fun) != p {
			return use
		}

		use.Kind = h.classifyCall(info, cl, call, parentOf(stack, 3))

		return use

	case *ast.CallExpr:
		// The handle as a call argument: join(h), detach(h).
		if ast.Unparen(p.Fun) == stack[len(stack)-1] {
			return use // calling the handle itself
		}

		use.Kind = h.classifyCall(info, cl, p, parentOf(stack, 2))

		return use

	case *ast.AssignStmt:
		use.Kind = h.classifyAssign(info, p, stack[len(stack)-1])

		return use

	case *ast.ReturnStmt:
		use.Kind = UseReturn

		return use

	case *ast.CompositeLit:
		use.Kind = UseStore

		return use

	default:
		return use
	}
}

// classifyCall maps a task call to a use kind; grandparent detects defer.
func (h *Handle) classifyCall(info *types.Info, cl *taskspec.Classifier, call *ast.CallExpr, above ast.Node) UseKind {
	_, deferred := above.(*ast.DeferStmt)

	switch cl.Classify(info, call) {
	case taskspec.Spawn:
		return UseSpawn

	case taskspec.Join:
		if deferred {
			return UseDeferredJoin
		}

		return UseJoin

	case taskspec.Detach:
		return UseDetach

	default:
		return UseUnknown
	}
}

// classifyAssign handles the tracked value appearing in an assignment.
func (h *Handle) classifyAssign(info *types.Info, assign *ast.AssignStmt, node ast.Node) UseKind {
	if u, ok := node.(*ast.UnaryExpr); ok && u.Op == token.AND {
		node = ast.Unparen(u.X)
	}

	// On the left-hand side the handle variable is overwritten, which drops
	// the old value without joining it - unless the assignment is the one
	// binding this spawn's own result.
	for _, lhs := range assign.Lhs {
		if ast.Unparen(lhs) != node {
			continue
		}

		for _, rhs := range assign.Rhs {
			if ast.Unparen(rhs) == h.Spawn {
				return UseSpawn
			}
		}

		return UseDetach
	}

	if len(assign.Lhs) != len(assign.Rhs) {
		return UseUnknown
	}

	for i, rhs := range assign.Rhs {
		if stripAddr(rhs) != node {
			continue
		}

		ident, ok := ast.Unparen(assign.Lhs[i]).(*ast.Ident)
		if !ok {
			return UseStore // s.h = v, xs[i] = v
		}

		if ident.Name == "_" {
			return UseDetach // explicitly discarded
		}

		if obj, ok := info.Defs[ident].(*types.Var); ok {
			return h.move(obj)
		}

		if obj, ok := info.Uses[ident].(*types.Var); ok {
			return h.move(obj)
		}

		return UseUnknown
	}

	return UseUnknown
}

// move records a new alias of the handle, once.
func (h *Handle) move(obj *types.Var) UseKind {
	if packageLevel(obj) {
		return UseStore
	}

	if !slices.Contains(h.Vars, obj) {
		h.Vars = append(h.Vars, obj)
	}

	return UseMove
}

// packageLevel reports whether the variable is declared at package scope,
// where it outlives and outreaches the current function.
func packageLevel(obj *types.Var) bool {
	parent := obj.Parent()

	return parent != nil && parent.Parent() == types.Universe
}

func stripAddr(expr ast.Expr) ast.Expr {
	expr = ast.Unparen(expr)
	if u, ok := expr.(*ast.UnaryExpr); ok && u.Op == token.AND {
		return ast.Unparen(u.X)
	}

	return expr
}

// parentOf returns the n-th ancestor of the stack top, or nil.
func parentOf(stack []ast.Node, n int) ast.Node {
	if len(stack) <= n {
		return nil
	}

	return stack[len(stack)-1-n]
}

// walker visits identifiers with their ancestor chain.
type walker struct {
	stack []ast.Node
}

func (w *walker) walk(root ast.Node, visit func(ident *ast.Ident, stack []ast.Node)) {
	ast.Inspect(root, func(n ast.Node) bool {
		if n == nil {
			w.stack = w.stack[:len(w.stack)-1]

			return false
		}

		w.stack = append(w.stack, n)

		if ident, ok := n.(*ast.Ident); ok {
			visit(ident, w.stack)
		}

		return true
	})
}
