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

// Package astcfg constructs a [flow.Graph] for a Go function body.
//
// The builder traverses the AST and creates blocks and edges based on control
// flow semantics, including unwind edges: every statement that may panic links
// its block to the virtual exit, so coverage checks see abnormal
// continuations too.
//
// The append* methods return the block where subsequent statements belong.
package astcfg

import (
	"fmt"
	"go/ast"
	"go/token"
	"go/types"

	"fillmore-labs.com/joinscope/internal/flow"
	"fillmore-labs.com/joinscope/internal/taskspec"
)

// Build constructs the control-flow graph for a function body. The classifier
// exempts recognized task operations from the may-panic approximation; a nil
// classifier treats every call as opaque.
func Build(info *types.Info, classifier *taskspec.Classifier, body *ast.BlockStmt) (*flow.Graph, error) {
	b := &builder{
		info:       info,
		classifier: classifier,
		g:          flow.NewGraph(),
		labels:     make(map[string]*labelTarget),
		targets:    newTargetScopes(),
	}

	end := b.appendStmtList(flow.Entry, body.List)
	b.g.MarkExit(end, flow.Return) // implicit return at the end of the body

	if err := b.g.Freeze(); err != nil {
		return nil, err
	}

	return b.g, nil
}

type builder struct {
	info       *types.Info
	classifier *taskspec.Classifier
	g          *flow.Graph
	labels     map[string]*labelTarget

	targets targetScopes
}

// appendStmtList appends a list of statements to the current block.
func (b *builder) appendStmtList(current flow.ID, list []ast.Stmt) flow.ID {
	for _, s := range list {
		current = b.appendStmt(current, s, nil)
	}

	return current
}

// appendStmt appends a single statement to the current block.
// labeled indicates if the statement has a label target for break/continue.
func (b *builder) appendStmt(current flow.ID, stmt ast.Stmt, labeled *labelTarget) flow.ID {
	switch stmt := stmt.(type) {
	// keep-sorted start newline_separated=yes
	case *ast.AssignStmt, *ast.DeclStmt, *ast.GoStmt, *ast.IncDecStmt, *ast.SendStmt:
		b.addSimple(current, stmt)
		return current

	case *ast.BadStmt, *ast.EmptyStmt:
		return current

	case *ast.BlockStmt:
		return b.appendStmtList(current, stmt.List)

	case *ast.BranchStmt:
		return b.appendBranchStmt(current, stmt)

	case *ast.DeferStmt:
		// Deferred calls run at scope exit; only operand evaluation happens
		// here, which we treat as non-panicking.
		b.g.AddRange(current, stmt.Pos(), stmt.End())
		return current

	case *ast.ExprStmt:
		b.addSimple(current, stmt)

		if call, ok := stmt.X.(*ast.CallExpr); ok && isPanicCall(b.info, call) {
			b.g.MarkExit(current, flow.Panic)

			return b.g.NewBlock(stmt.End()) // unreachable after panic
		}

		return current

	case *ast.ForStmt:
		return b.appendForStmt(current, stmt, labeled)

	case *ast.IfStmt:
		return b.appendIfStmt(current, stmt)

	case *ast.LabeledStmt:
		return b.appendLabeledStmt(current, stmt)

	case *ast.RangeStmt:
		return b.appendRangeStmt(current, stmt, labeled)

	case *ast.ReturnStmt:
		b.addSimple(current, stmt)
		b.g.MarkExit(current, flow.Return)

		return b.g.NewBlock(stmt.End()) // unreachable after return

	case *ast.SelectStmt:
		return b.appendCaseBodies(current, stmt.Body, stmt.End(), labeled, false)

	case *ast.SwitchStmt:
		if stmt.Init != nil {
			b.addSimple(current, stmt.Init)
		}

		if stmt.Tag != nil {
			b.addExpr(current, stmt.Tag)
		}

		return b.appendCaseBodies(current, stmt.Body, stmt.End(), labeled, true)

	case *ast.TypeSwitchStmt:
		if stmt.Init != nil {
			b.addSimple(current, stmt.Init)
		}

		b.addSimple(current, stmt.Assign)

		return b.appendCaseBodies(current, stmt.Body, stmt.End(), labeled, false)

	default: // *ast.CaseClause and *ast.CommClause
		msg := fmt.Errorf("unexpected statement type: %T", stmt)
		panic(msg)
		// keep-sorted end
	}
}

// appendLabeledStmt handles labeled statements.
func (b *builder) appendLabeledStmt(current flow.ID, stmt *ast.LabeledStmt) flow.ID {
	labeled := b.labelTargetFor(stmt.Label)
	body := labeled.body

	b.g.AddRange(body, stmt.Stmt.Pos(), stmt.Stmt.Pos())
	b.g.AddEdge(current, body, flow.Normal)

	return b.appendStmt(body, stmt.Stmt, labeled)
}

// appendBranchStmt handles break, continue, goto and fallthrough.
func (b *builder) appendBranchStmt(current flow.ID, stmt *ast.BranchStmt) flow.ID {
	target := flow.None
	if stmt.Label == nil {
		target = b.targets.branchTarget(stmt.Tok)
	} else {
		target = b.labelTargetFor(stmt.Label).branchTarget(stmt.Tok)
	}

	b.g.AddRange(current, stmt.Pos(), stmt.End())

	if target != flow.None {
		b.g.AddEdge(current, target, flow.Normal)
	}

	return b.g.NewBlock(stmt.End()) // unreachable after the jump
}

// labelTargetFor retrieves or creates a target for the given label.
func (b *builder) labelTargetFor(label *ast.Ident) *labelTarget {
	if target, ok := b.labels[label.Name]; ok {
		return target
	}

	target := &labelTarget{
		body: b.g.NewBlock(token.NoPos), // may be a forward goto reference
		brk:  flow.None,
		cont: flow.None,
	}
	b.labels[label.Name] = target

	return target
}

// appendIfStmt handles if statements.
func (b *builder) appendIfStmt(current flow.ID, stmt *ast.IfStmt) flow.ID {
	if stmt.Init != nil {
		b.addSimple(current, stmt.Init)
	}

	b.addExpr(current, stmt.Cond)

	after := b.g.NewBlock(stmt.End())
	body := b.g.NewBlock(stmt.Body.Pos())

	afterBody := b.appendStmtList(body, stmt.Body.List)
	b.g.AddEdge(afterBody, after, flow.Normal)

	elseBranch := after
	if stmt.Else != nil {
		elseBranch = b.g.NewBlock(stmt.Else.Pos())

		afterElse := b.appendStmt(elseBranch, stmt.Else, nil)
		b.g.AddEdge(afterElse, after, flow.Normal)
	}

	b.g.AddEdge(current, body, flow.Branch)
	b.g.AddEdge(current, elseBranch, flow.Branch)

	return after
}

// appendForStmt handles for loops.
func (b *builder) appendForStmt(current flow.ID, stmt *ast.ForStmt, labeled *labelTarget) flow.ID {
	if stmt.Init != nil {
		b.addSimple(current, stmt.Init)
	}

	body := b.g.NewBlock(stmt.Body.Lbrace + 1)
	after, old := b.newAfterBlock(labeled, stmt.End())

	cond := body
	if stmt.Cond != nil {
		cond = b.g.NewBlock(stmt.Cond.Pos())
		b.addExpr(cond, stmt.Cond)
		b.g.AddEdge(cond, body, flow.Branch)
		b.g.AddEdge(cond, after, flow.Branch)
	}

	b.g.AddEdge(current, cond, flow.Normal)

	post := cond
	if stmt.Post != nil {
		post = b.g.NewBlock(stmt.Post.Pos())
		b.addSimple(post, stmt.Post)
		b.g.AddEdge(post, cond, flow.Normal) // back edge
	}

	if labeled != nil {
		labeled.cont = post
	}

	oldc := b.targets.pushContinue(post)

	bodyEnd := b.appendStmtList(body, stmt.Body.List)
	b.g.AddEdge(bodyEnd, post, flow.Normal)

	b.targets.popContinue(oldc)
	b.targets.popBreak(old)

	return after
}

// appendRangeStmt handles range loops.
func (b *builder) appendRangeStmt(current flow.ID, stmt *ast.RangeStmt, labeled *labelTarget) flow.ID {
	if stmt.Key != nil {
		b.addExpr(current, stmt.Key)

		if stmt.Value != nil {
			b.addExpr(current, stmt.Value)
		}
	}

	b.addExpr(current, stmt.X)

	body := b.g.NewBlock(stmt.Body.Lbrace + 1)
	after, old := b.newAfterBlock(labeled, stmt.End())

	b.g.AddEdge(current, body, flow.Branch)
	b.g.AddEdge(current, after, flow.Branch)

	if labeled != nil {
		labeled.cont = body
	}

	oldc := b.targets.pushContinue(body)

	bodyEnd := b.appendStmtList(body, stmt.Body.List)
	b.g.AddEdge(bodyEnd, body, flow.Branch) // back edge
	b.g.AddEdge(bodyEnd, after, flow.Branch)

	b.targets.popContinue(oldc)
	b.targets.popBreak(old)

	return after
}

// appendCaseBodies handles the clause list of switch, type switch and select
// statements. fallthroughOK enables fallthrough targets for plain switches.
func (b *builder) appendCaseBodies(current flow.ID, cases *ast.BlockStmt, end token.Pos, labeled *labelTarget, fallthroughOK bool) flow.ID {
	numCases := len(cases.List)
	if numCases == 0 {
		return current
	}

	after, old := b.newAfterBlock(labeled, end)

	hasDefault := false
	bodies := make([]flow.ID, numCases)

	for i, clause := range cases.List {
		bodies[i] = b.g.NewBlock(clausePos(clause))
		b.g.AddEdge(current, bodies[i], flow.Branch)

		if isDefaultClause(clause) {
			hasDefault = true
		}
	}

	// Without a default clause control can fall through the whole statement.
	// Select statements always block until a clause is ready.
	if !hasDefault && fallthroughOK {
		b.g.AddEdge(current, after, flow.Branch)
	}

	for i, clause := range cases.List {
		var ft flow.ID = flow.None
		if fallthroughOK && i < numCases-1 {
			ft = bodies[i+1]
		}

		oldf := b.targets.pushFallthrough(ft)

		bodyEnd := b.appendStmtList(bodies[i], clauseBody(clause))
		b.g.AddEdge(bodyEnd, after, flow.Normal)

		b.targets.popFallthrough(oldf)
	}

	b.targets.popBreak(old)

	return after
}

func (b *builder) newAfterBlock(labeled *labelTarget, pos token.Pos) (after, old flow.ID) {
	after = b.g.NewBlock(pos)

	if labeled != nil {
		labeled.brk = after
	}

	old = b.targets.pushBreak(after)

	return after, old
}

func clausePos(clause ast.Stmt) token.Pos {
	switch clause := clause.(type) {
	case *ast.CaseClause:
		return clause.Colon + 1

	case *ast.CommClause:
		return clause.Colon + 1

	default:
		msg := fmt.Errorf("unexpected clause type: %T", clause)
		panic(msg)
	}
}

func clauseBody(clause ast.Stmt) []ast.Stmt {
	switch clause := clause.(type) {
	case *ast.CaseClause:
		return clause.Body

	case *ast.CommClause:
		if clause.Comm != nil {
			return append([]ast.Stmt{clause.Comm}, clause.Body...)
		}

		return clause.Body

	default:
		msg := fmt.Errorf("unexpected clause type: %T", clause)
		panic(msg)
	}
}

func isDefaultClause(clause ast.Stmt) bool {
	switch clause := clause.(type) {
	case *ast.CaseClause:
		return clause.List == nil

	case *ast.CommClause:
		return clause.Comm == nil

	default:
		return false
	}
}
