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

// Package taskspec classifies call expressions as spawn, join or detach
// operations of a task API.
//
// The classification is host-defined: nothing in the analysis hard-codes a
// particular concurrency primitive. Specs use the format "pkg/path.Func" or
// "pkg/path.Type.Method" and are matched against the resolved callee.
package taskspec

import (
	"go/ast"
	"go/types"
	"strings"
	"unicode"
)

// Kind is the classification of a call expression.
type Kind uint8

//go:generate go tool stringer -type Kind -linecomment
const (
	// NotTask is a call that is neither spawn, join nor detach.
	NotTask Kind = iota // not a task operation

	// Spawn starts an independently executing task and yields its handle.
	Spawn // spawn

	// Join blocks until the handle's task has completed.
	Join // join

	// Detach abandons the handle without waiting for the task.
	Detach // detach
)

// Spec holds the parsed components of a function specification.
type Spec struct {
	PkgPath  string
	TypeName string // empty for package-level functions
	FuncName string
}

// Parse parses a "pkg/path.Func" or "pkg/path.Type.Method" specification.
func Parse(s string) Spec {
	spec := Spec{}

	lastDot := strings.LastIndex(s, ".")
	if lastDot == -1 {
		spec.FuncName = s

		return spec
	}

	spec.FuncName = s[lastDot+1:]
	prefix := s[:lastDot]

	// A second dot with an uppercase component indicates Type.Method.
	secondLastDot := strings.LastIndex(prefix, ".")
	if secondLastDot != -1 {
		possibleType := prefix[secondLastDot+1:]
		if possibleType != "" && unicode.IsUpper(rune(possibleType[0])) {
			spec.TypeName = possibleType
			spec.PkgPath = prefix[:secondLastDot]

			return spec
		}
	}

	spec.PkgPath = prefix

	return spec
}

// ParseList parses a comma-separated list of specifications.
func ParseList(s string) []Spec {
	if s == "" {
		return nil
	}

	parts := strings.Split(s, ",")

	specs := make([]Spec, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			specs = append(specs, Parse(part))
		}
	}

	return specs
}

// Matches checks whether fn satisfies the specification.
func (s Spec) Matches(fn *types.Func) bool {
	if fn.Name() != s.FuncName {
		return false
	}

	pkg := fn.Pkg()
	if pkg == nil || pkg.Path() != s.PkgPath {
		return false
	}

	sig, ok := fn.Type().(*types.Signature)
	if !ok {
		return false
	}

	recv := sig.Recv()
	if s.TypeName == "" {
		return recv == nil
	}

	if recv == nil {
		return false
	}

	recvType := recv.Type()
	if ptr, ok := recvType.(*types.Pointer); ok {
		recvType = ptr.Elem()
	}

	named, ok := recvType.(*types.Named)
	if !ok {
		return false
	}

	return named.Obj().Name() == s.TypeName
}

// Classifier answers the spawn/join/detach capability query for one pass.
type Classifier struct {
	spawners, joiners, detachers []Spec
}

// Default specifications recognized without configuration.
const (
	defaultSpawners = "sync.WaitGroup.Go," +
		"golang.org/x/sync/errgroup.Group.Go,golang.org/x/sync/errgroup.Group.TryGo"
	defaultJoiners = "sync.WaitGroup.Wait,golang.org/x/sync/errgroup.Group.Wait"
)

// New builds a Classifier from the default specifications plus the given
// comma-separated extensions.
func New(spawners, joiners, detachers string) *Classifier {
	return &Classifier{
		spawners:  append(ParseList(defaultSpawners), ParseList(spawners)...),
		joiners:   append(ParseList(defaultJoiners), ParseList(joiners)...),
		detachers: ParseList(detachers),
	}
}

// Classify determines the [Kind] of a call expression.
func (c *Classifier) Classify(info *types.Info, call *ast.CallExpr) Kind {
	fn := callee(info, call)
	if fn == nil {
		return NotTask
	}

	switch {
	case matchesAny(c.spawners, fn):
		return Spawn

	case matchesAny(c.joiners, fn):
		return Join

	case matchesAny(c.detachers, fn):
		return Detach

	default:
		return NotTask
	}
}

// IsJoin reports whether the call is a join operation.
func (c *Classifier) IsJoin(info *types.Info, call *ast.CallExpr) bool {
	return c.Classify(info, call) == Join
}

func matchesAny(specs []Spec, fn *types.Func) bool {
	for _, spec := range specs {
		if spec.Matches(fn) {
			return true
		}
	}

	return false
}

// callee resolves the called function, or nil when the callee cannot be
// determined statically.
func callee(info *types.Info, call *ast.CallExpr) *types.Func {
	switch fun := ast.Unparen(call.Fun).(type) {
	case *ast.Ident:
		if f, ok := info.ObjectOf(fun).(*types.Func); ok {
			return f
		}

	case *ast.SelectorExpr:
		if sel := info.Selections[fun]; sel != nil {
			if f, ok := sel.Obj().(*types.Func); ok {
				return f
			}
		} else if f, ok := info.ObjectOf(fun.Sel).(*types.Func); ok {
			return f
		}
	}

	return nil
}

// Receiver returns the receiver variable of a method-style task call, like the
// wait group of wg.Go(fn). It returns nil for package-level spawners.
func Receiver(info *types.Info, call *ast.CallExpr) *types.Var {
	sel, ok := ast.Unparen(call.Fun).(*ast.SelectorExpr)
	if !ok {
		return nil
	}

	switch x := ast.Unparen(sel.X).(type) {
	case *ast.Ident:
		if v, ok := info.ObjectOf(x).(*types.Var); ok {
			return v
		}

	case *ast.UnaryExpr: // (&wg).Go(fn)
		if ident, ok := ast.Unparen(x.X).(*ast.Ident); ok {
			if v, ok := info.ObjectOf(ident).(*types.Var); ok {
				return v
			}
		}
	}

	return nil
}
