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

// Package capture extracts the outer variables a spawned closure borrows.
//
// A variable is captured when it is referenced inside the closure body but
// declared outside of it. Go closures capture by reference, so every extracted
// variable carries a lifetime obligation; data passed to the task by argument
// is copied and needs none, matching the move-capture exclusion of the
// analysis. Package-level variables are excluded as well: their storage is
// never reclaimed during the function.
package capture

import (
	"go/ast"
	"go/token"
	"go/types"
	"slices"
)

// Variable is one borrowed outer variable of a spawned closure.
type Variable struct {
	Obj *types.Var

	// ScopeEnd is the natural drop point: the end of the block the owner is
	// declared in.
	ScopeEnd token.Pos

	// DroppedAt is the position of the earliest explicit invalidation of the
	// owner after the spawn (reassignment or mutation), or [token.NoPos].
	DroppedAt token.Pos
}

// FromClosure extracts the captured variables of a spawned closure.
//
// fnScope is the scope of the enclosing function; only variables declared
// within it (or nested scopes) are owners with a bounded lifetime. spawnPos
// marks the spawn, body is the enclosing function body used to locate explicit
// invalidations of the owners.
func FromClosure(info *types.Info, lit *ast.FuncLit, fnScope *types.Scope, spawnPos token.Pos, body *ast.BlockStmt) []Variable {
	if lit == nil {
		return nil
	}

	var vars []Variable

	seen := make(map[*types.Var]struct{})

	ast.Inspect(lit.Body, func(n ast.Node) bool {
		ident, ok := n.(*ast.Ident)
		if !ok {
			return true
		}

		obj, ok := info.Uses[ident].(*types.Var)
		if !ok {
			return true
		}

		if _, dup := seen[obj]; dup {
			return true
		}

		if !freeIn(obj, lit, fnScope) {
			return true
		}

		seen[obj] = struct{}{}
		vars = append(vars, Variable{
			Obj:       obj,
			ScopeEnd:  scopeEnd(obj, fnScope),
			DroppedAt: droppedAt(info, body, obj, spawnPos),
		})

		return true
	})

	slices.SortFunc(vars, func(a, b Variable) int { return int(a.Obj.Pos() - b.Obj.Pos()) })

	return vars
}

// freeIn reports whether obj is a free variable of lit owned by the enclosing
// function.
func freeIn(obj *types.Var, lit *ast.FuncLit, fnScope *types.Scope) bool {
	if obj.IsField() {
		return false
	}

	// Declared inside the closure, including its parameters.
	if lit.Pos() <= obj.Pos() && obj.Pos() < lit.End() {
		return false
	}

	// Owned by the enclosing function, not a package-level variable.
	return fnScope != nil && fnScope.Contains(obj.Pos())
}

// scopeEnd finds the end of the innermost scope declaring obj.
func scopeEnd(obj *types.Var, fnScope *types.Scope) token.Pos {
	if s := obj.Parent(); s != nil && s.End().IsValid() {
		return s.End()
	}

	// Parameters have the function scope as parent in some configurations;
	// fall back to the function end.
	if fnScope != nil {
		return fnScope.End()
	}

	return token.NoPos
}

// droppedAt locates the earliest explicit invalidation of obj after spawnPos:
// a reassignment or mutation of the owner while the task may still borrow it.
func droppedAt(info *types.Info, body *ast.BlockStmt, obj *types.Var, spawnPos token.Pos) token.Pos {
	dropped := token.NoPos

	record := func(pos token.Pos) {
		if pos <= spawnPos {
			return
		}

		if !dropped.IsValid() || pos < dropped {
			dropped = pos
		}
	}

	ast.Inspect(body, func(n ast.Node) bool {
		switch n := n.(type) {
		case *ast.FuncLit:
			return false // writes inside other closures are not in program order here

		case *ast.AssignStmt:
			if n.Tok == token.DEFINE {
				return true // a new variable, not a reassignment of the owner
			}

			for _, lhs := range n.Lhs {
				if ident, ok := ast.Unparen(lhs).(*ast.Ident); ok && info.Uses[ident] == obj {
					record(ident.Pos())
				}
			}

		case *ast.IncDecStmt:
			if ident, ok := ast.Unparen(n.X).(*ast.Ident); ok && info.Uses[ident] == obj {
				record(ident.Pos())
			}
		}

		return true
	})

	return dropped
}
