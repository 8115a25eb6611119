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

package capture_test

import (
	"go/ast"
	"go/types"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "fillmore-labs.com/joinscope/internal/capture"
	"fillmore-labs.com/joinscope/internal/testsource"
)

// extract parses the fragment and runs FromClosure on its first function
// literal, treating the literal's end as the spawn point.
func extract(t *testing.T, src string) ([]Variable, *types.Scope) {
	t.Helper()

	fset, f, fn, _ := testsource.Parse(t, src)
	_, info := testsource.Check(t, fset, f)

	lit := firstFuncLit(t, fn)
	fnScope := info.Scopes[fn.Type]
	require.NotNil(t, fnScope)

	return FromClosure(info, lit, fnScope, lit.End(), fn.Body), fnScope
}

func firstFuncLit(t *testing.T, fn *ast.FuncDecl) *ast.FuncLit {
	t.Helper()

	var lit *ast.FuncLit

	ast.Inspect(fn.Body, func(n ast.Node) bool {
		if lit != nil {
			return false
		}

		if l, ok := n.(*ast.FuncLit); ok {
			lit = l
		}

		return lit == nil
	})

	require.NotNil(t, lit, "no function literal found")

	return lit
}

func names(vars []Variable) []string {
	ns := make([]string, 0, len(vars))
	for _, v := range vars {
		ns = append(ns, v.Obj.Name())
	}

	return ns
}

func TestFromClosure(t *testing.T) {
	t.Parallel()

	vars, fnScope := extract(t, `
	x := 1
	ys := make([]int, 4)
	lit := func() {
		x++
		_ = ys
	}
	_ = lit
	x = 2
`)

	require.Equal(t, []string{"x", "ys"}, names(vars))

	x, ys := vars[0], vars[1]

	// x is reassigned after the spawn, ys never is.
	assert.True(t, x.DroppedAt.IsValid())
	assert.False(t, ys.DroppedAt.IsValid())

	assert.Equal(t, fnScope.End(), x.ScopeEnd)
	assert.Equal(t, fnScope.End(), ys.ScopeEnd)
}

func TestInnerBlockOwner(t *testing.T) {
	t.Parallel()

	vars, _ := extract(t, `
	x := 0
	{
		y := 1
		lit := func() {
			_ = x
			_ = y
		}
		_ = lit
	}
	_ = x
`)

	require.Equal(t, []string{"x", "y"}, names(vars))

	// y lives only until the inner block ends.
	assert.Less(t, vars[1].ScopeEnd, vars[0].ScopeEnd)
	assert.False(t, vars[0].DroppedAt.IsValid())
	assert.False(t, vars[1].DroppedAt.IsValid())
}

// Variables declared by the closure itself, including parameters, are not
// captures.
func TestClosureOwnedExcluded(t *testing.T) {
	t.Parallel()

	vars, _ := extract(t, `
	x := 1
	lit := func(a int) {
		b := a + x
		_ = b
	}
	lit(2)
`)

	assert.Equal(t, []string{"x"}, names(vars))
}

func TestNilClosure(t *testing.T) {
	t.Parallel()

	assert.Nil(t, FromClosure(nil, nil, nil, 0, nil))
}
