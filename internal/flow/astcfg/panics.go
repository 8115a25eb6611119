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

package astcfg

import (
	"go/ast"
	"go/types"

	"fillmore-labs.com/joinscope/internal/flow"
	"fillmore-labs.com/joinscope/internal/taskspec"
)

// addSimple appends a straight-line statement to block b: it extends the
// source range and records an unwind edge when the statement may panic.
func (b *builder) addSimple(current flow.ID, stmt ast.Stmt) {
	b.g.AddRange(current, stmt.Pos(), stmt.End())

	if b.mayPanic(stmt) {
		b.g.AddPanic(current, stmt.Pos())
	}
}

// addExpr extends block b with an expression evaluated in it.
func (b *builder) addExpr(current flow.ID, expr ast.Expr) {
	b.g.AddRange(current, expr.Pos(), expr.End())

	if b.exprMayPanic(expr) {
		b.g.AddPanic(current, expr.Pos())
	}
}

// mayPanic reports whether evaluating the statement can unwind the function.
// Calls, indexing, type assertions and pointer dereferences count; code inside
// nested function literals does not run here and is skipped. Recognized task
// operations are modeled as spawn, join or detach sites instead, so they never
// double as unwind witnesses; their operands are still inspected.
func (b *builder) mayPanic(stmt ast.Stmt) bool {
	found := false

	ast.Inspect(stmt, func(n ast.Node) bool {
		if found {
			return false
		}

		switch n := n.(type) {
		case *ast.FuncLit:
			return false

		case *ast.CallExpr:
			if b.classifier != nil && b.classifier.Classify(b.info, n) != taskspec.NotTask {
				return true
			}

			found = true

			return false

		case *ast.IndexExpr, *ast.TypeAssertExpr, *ast.StarExpr:
			found = true

			return false
		}

		return true
	})

	return found
}

func (b *builder) exprMayPanic(expr ast.Expr) bool {
	return b.mayPanic(&ast.ExprStmt{X: expr})
}

// isPanicCall recognizes a call to the predeclared panic function.
func isPanicCall(info *types.Info, call *ast.CallExpr) bool {
	ident, ok := ast.Unparen(call.Fun).(*ast.Ident)
	if !ok || ident.Name != "panic" {
		return false
	}

	_, isBuiltin := info.ObjectOf(ident).(*types.Builtin)

	return isBuiltin
}
