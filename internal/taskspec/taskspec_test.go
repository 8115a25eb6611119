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

package taskspec_test

import (
	"go/ast"
	"go/token"
	"go/types"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "fillmore-labs.com/joinscope/internal/taskspec"
	"fillmore-labs.com/joinscope/internal/testsource"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		spec string
		want Spec
	}{
		{
			name: "Method",
			spec: "sync.WaitGroup.Go",
			want: Spec{PkgPath: "sync", TypeName: "WaitGroup", FuncName: "Go"},
		},
		{
			name: "MethodDeepPath",
			spec: "golang.org/x/sync/errgroup.Group.Wait",
			want: Spec{PkgPath: "golang.org/x/sync/errgroup", TypeName: "Group", FuncName: "Wait"},
		},
		{
			name: "Function",
			spec: "example.com/pool.Submit",
			want: Spec{PkgPath: "example.com/pool", FuncName: "Submit"},
		},
		{
			name: "FunctionDottedDomain",
			spec: "example.com/v2.go", // "com/v2" is no type name
			want: Spec{PkgPath: "example.com/v2", FuncName: "go"},
		},
		{
			name: "Bare",
			spec: "panic",
			want: Spec{FuncName: "panic"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, Parse(tt.spec))
		})
	}
}

func TestParseList(t *testing.T) {
	t.Parallel()

	specs := ParseList(" sync.WaitGroup.Go , example.com/pool.Submit ,,")
	assert.Equal(t, []Spec{
		{PkgPath: "sync", TypeName: "WaitGroup", FuncName: "Go"},
		{PkgPath: "example.com/pool", FuncName: "Submit"},
	}, specs)

	assert.Nil(t, ParseList(""))
}

// poolPackage fabricates example.com/pool with a method (*Pool).Submit and a
// package-level function Drain.
func poolPackage() (method, function *types.Func) {
	pkg := types.NewPackage("example.com/pool", "pool")

	name := types.NewTypeName(token.NoPos, pkg, "Pool", nil)
	named := types.NewNamed(name, types.NewStruct(nil, nil), nil)

	recv := types.NewVar(token.NoPos, pkg, "p", types.NewPointer(named))
	method = types.NewFunc(token.NoPos, pkg, "Submit",
		types.NewSignatureType(recv, nil, nil, nil, nil, false))

	function = types.NewFunc(token.NoPos, pkg, "Drain",
		types.NewSignatureType(nil, nil, nil, nil, nil, false))

	return method, function
}

func TestMatches(t *testing.T) {
	t.Parallel()

	method, function := poolPackage()

	tests := []struct {
		name string
		spec string
		fn   *types.Func
		want bool
	}{
		{name: "Method", spec: "example.com/pool.Pool.Submit", fn: method, want: true},
		{name: "MethodAsFunction", spec: "example.com/pool.Submit", fn: method, want: false},
		{name: "WrongType", spec: "example.com/pool.Queue.Submit", fn: method, want: false},
		{name: "WrongPackage", spec: "example.com/queue.Pool.Submit", fn: method, want: false},
		{name: "WrongName", spec: "example.com/pool.Pool.Add", fn: method, want: false},
		{name: "Function", spec: "example.com/pool.Drain", fn: function, want: true},
		{name: "FunctionAsMethod", spec: "example.com/pool.Pool.Drain", fn: function, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, Parse(tt.spec).Matches(tt.fn))
		})
	}
}

func TestDefaultSpecs(t *testing.T) {
	t.Parallel()

	sync := types.NewPackage("sync", "sync")
	name := types.NewTypeName(token.NoPos, sync, "WaitGroup", nil)
	named := types.NewNamed(name, types.NewStruct(nil, nil), nil)

	recv := types.NewVar(token.NoPos, sync, "wg", types.NewPointer(named))
	goFn := types.NewFunc(token.NoPos, sync, "Go",
		types.NewSignatureType(recv, nil, nil, nil, nil, false))

	assert.True(t, Parse("sync.WaitGroup.Go").Matches(goFn))
	assert.False(t, Parse("sync.WaitGroup.Wait").Matches(goFn))
}

const classifySrc = `package test

type Group struct{}

func (g *Group) Go(fn func()) {}
func (g *Group) Wait()        {}
func (g *Group) Forget()      {}

func f() {
	var g Group
	g.Go(func() {})
	g.Wait()
	g.Forget()
	println(g)
}
`

func TestClassify(t *testing.T) {
	t.Parallel()

	fset, file, decl := testsource.ParseFile(t, classifySrc)
	_, info := testsource.Check(t, fset, file)

	c := New("test.Group.Go", "test.Group.Wait", "test.Group.Forget")

	var kinds []Kind

	ast.Inspect(decl.Body, func(n ast.Node) bool {
		if _, ok := n.(*ast.FuncLit); ok {
			return false
		}

		if call, ok := n.(*ast.CallExpr); ok {
			kinds = append(kinds, c.Classify(info, call))

			if recv := Receiver(info, call); recv != nil {
				assert.Equal(t, "g", recv.Name())
			}
		}

		return true
	})

	assert.Equal(t, []Kind{Spawn, Join, Detach, NotTask}, kinds)
	assert.True(t, c.IsJoin(info, mustCall(t, decl, 1)))
}

// mustCall returns the i-th expression statement call in fn's body.
func mustCall(t *testing.T, fn *ast.FuncDecl, i int) *ast.CallExpr {
	t.Helper()

	var calls []*ast.CallExpr

	for _, stmt := range fn.Body.List {
		if e, ok := stmt.(*ast.ExprStmt); ok {
			if call, ok := e.X.(*ast.CallExpr); ok {
				calls = append(calls, call)
			}
		}
	}

	require.Greater(t, len(calls), i)

	return calls[i]
}
