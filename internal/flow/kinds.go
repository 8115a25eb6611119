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

package flow

// EdgeKind classifies a control-flow edge.
type EdgeKind uint8

//go:generate go tool stringer -type EdgeKind -linecomment
const (
	// Normal is an unconditional transfer of control.
	Normal EdgeKind = iota // normal

	// Branch is one arm of a conditional transfer.
	Branch // branch

	// Unwind is taken when a statement in the source block panics.
	Unwind // unwind
)

// ExitKind classifies how a block leaves the function.
type ExitKind uint8

//go:generate go tool stringer -type ExitKind -linecomment
const (
	// NoExit means control continues to a successor.
	NoExit ExitKind = iota // none

	// Return is a normal function return.
	Return // return

	// Panic terminates the function by unwinding.
	Panic // panic
)
