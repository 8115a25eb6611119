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

// Package verdict is the result model of the joinscope analysis.
//
// One [Verdict] is produced per spawn site. An accepted verdict carries the
// minimal lifetime region its borrowed captures must stay valid for,
// replacing the conservative whole-function obligation. Rejections keep the
// conservative rule in force; they never make a program less acceptable than
// it was without the analysis.
package verdict

import (
	"go/token"
	"go/types"
)

// Status is the per-spawn-site analysis outcome.
type Status uint8

//go:generate go tool stringer -type Status -linecomment
const (
	// Accepted means every path joins the handle before the captured owners
	// can be invalidated; the verdict carries the computed region.
	Accepted Status = iota // ok

	// Escaped means the handle's flow leaves the analyzable region.
	Escaped // esc

	// Unresolved means the handle's uses could not all be classified.
	// Treated exactly like Escaped, reported distinctly.
	Unresolved // flw

	// UncoveredPath means some path from the spawn reaches an exit without
	// passing a join.
	UncoveredPath // pth

	// InsufficientOwnerScope means the region is sound but a captured
	// owner is dropped or invalidated before its bound.
	InsufficientOwnerScope // scp
)

// Relaxes reports whether the status replaces the static obligation.
func (s Status) Relaxes() bool { return s == Accepted }

// Region is the minimal interval of program points during which the borrows
// of a spawn site must remain valid: [spawn, bound).
type Region struct {
	Start, End token.Pos
}

// Verdict is the analysis result for one spawn site.
type Verdict struct {
	// Spawn locates the spawn expression.
	Spawn, SpawnEnd token.Pos

	Status Status

	// Region is valid for [Accepted].
	Region Region

	// Witness locates the evidence for a rejection: the escaping use, the
	// uncovered exit, or the premature drop point.
	Witness, WitnessEnd token.Pos

	// Unwind marks an uncovered exit on an unwind path.
	Unwind bool

	// Owner is the offending variable for [InsufficientOwnerScope].
	Owner *types.Var
}
