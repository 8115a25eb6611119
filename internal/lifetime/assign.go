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

// Package lifetime turns a covered spawn site into its final verdict.
//
// The region bound is the program point every path is guaranteed to have
// joined by. Each captured owner's storage must outlive that bound: its
// declaring scope must not end first, and it must not be explicitly
// invalidated inside the region.
package lifetime

import (
	"go/ast"
	"go/token"

	"fillmore-labs.com/joinscope/internal/capture"
	"fillmore-labs.com/joinscope/internal/coverage"
	"fillmore-labs.com/joinscope/verdict"
)

// Assign checks every captured owner against the computed region and builds
// the verdict for a covered spawn site.
func Assign(spawn *ast.CallExpr, out coverage.Outcome, captures []capture.Variable) verdict.Verdict {
	v := verdict.Verdict{
		Spawn:    spawn.Pos(),
		SpawnEnd: spawn.End(),
		Status:   verdict.Accepted,
		Region:   verdict.Region{Start: spawn.Pos(), End: out.BoundPos},
	}

	for _, cv := range captures {
		// An explicit invalidation inside the region fires first: it is the
		// scope-ordering error the relaxation cannot fix.
		if cv.DroppedAt.IsValid() && cv.DroppedAt < out.BoundPos {
			return insufficient(v, cv, cv.DroppedAt)
		}

		if cv.ScopeEnd.IsValid() && cv.ScopeEnd < out.BoundPos {
			return insufficient(v, cv, cv.ScopeEnd)
		}
	}

	return v
}

func insufficient(v verdict.Verdict, cv capture.Variable, drop token.Pos) verdict.Verdict {
	v.Status = verdict.InsufficientOwnerScope
	v.Owner = cv.Obj
	v.Witness, v.WitnessEnd = drop, drop

	return v
}
