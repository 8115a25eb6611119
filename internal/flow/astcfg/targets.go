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
	"go/token"

	"fillmore-labs.com/joinscope/internal/flow"
)

// labelTarget tracks the blocks a labeled statement can jump to.
type labelTarget struct {
	body      flow.ID // target of goto
	brk, cont flow.ID // targets of labeled break/continue, set by the loop
}

// branchTarget returns the jump destination for the given branch token.
func (l *labelTarget) branchTarget(tok token.Token) flow.ID {
	switch tok {
	case token.BREAK:
		return l.brk

	case token.CONTINUE:
		return l.cont

	case token.GOTO:
		return l.body

	default:
		return flow.None
	}
}

// targetScopes tracks the current break, continue and fallthrough targets
// while nested statements are traversed. The push methods return the previous
// target for the matching pop.
type targetScopes struct {
	brk, cont, fall flow.ID
}

// newTargetScopes returns empty target scopes.
func newTargetScopes() targetScopes {
	return targetScopes{brk: flow.None, cont: flow.None, fall: flow.None}
}

func (t *targetScopes) branchTarget(tok token.Token) flow.ID {
	switch tok {
	case token.BREAK:
		return t.brk

	case token.CONTINUE:
		return t.cont

	case token.FALLTHROUGH:
		return t.fall

	default:
		return flow.None
	}
}

func (t *targetScopes) pushBreak(target flow.ID) (old flow.ID) {
	old, t.brk = t.brk, target

	return old
}

func (t *targetScopes) popBreak(old flow.ID) {
	t.brk = old
}

func (t *targetScopes) pushContinue(target flow.ID) (old flow.ID) {
	old, t.cont = t.cont, target

	return old
}

func (t *targetScopes) popContinue(old flow.ID) {
	t.cont = old
}

func (t *targetScopes) pushFallthrough(target flow.ID) (old flow.ID) {
	old, t.fall = t.fall, target

	return old
}

func (t *targetScopes) popFallthrough(old flow.ID) {
	t.fall = old
}
