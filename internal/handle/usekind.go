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

package handle

// UseKind classifies one use site of a join handle.
type UseKind uint8

//go:generate go tool stringer -type UseKind -linecomment
const (
	// UseSpawn starts another task on the same handle.
	UseSpawn UseKind = iota // spawn

	// UseJoin waits for the handle's tasks to complete.
	UseJoin // join

	// UseDeferredJoin is a join registered with defer, so it also runs while
	// unwinding.
	UseDeferredJoin // deferred join

	// UseMove transfers the handle to another local variable, which is
	// tracked in its place.
	UseMove // move

	// UseStore places the handle in a container or aggregate.
	UseStore // store

	// UseReturn returns the handle from the function.
	UseReturn // return

	// UseDetach abandons the handle without joining.
	UseDetach // detach

	// UseUnknown is a use the tracker cannot account for.
	UseUnknown // unknown
)

// escapes reports whether the use makes the handle leave the analyzable
// region of the function.
func (k UseKind) escapes() bool {
	return k == UseStore || k == UseReturn || k == UseUnknown
}
