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

// Package report turns spawn-site verdicts into analysis diagnostics.
package report

import (
	"context"
	"fmt"
	"runtime/trace"
	"strings"

	"golang.org/x/tools/go/analysis"

	"fillmore-labs.com/joinscope/internal/analyze"
	"fillmore-labs.com/joinscope/internal/astutil"
	"fillmore-labs.com/joinscope/internal/capture"
	"fillmore-labs.com/joinscope/internal/config"
	"fillmore-labs.com/joinscope/verdict"
)

// Process emits one diagnostic per rejected spawn site that borrows
// variables. Accepted sites are reported only with [config.ReportAccepted],
// stating the assigned lifetime region.
//
// A site capturing nothing borrows nothing, so its verdict carries no
// obligation and stays silent either way; hosts still see it in the analyzer
// result.
func Process(ctx context.Context, p *analysis.Pass, currentFile astutil.CurrentFile, sites []analyze.Site, option config.BitMask[config.Config]) {
	defer trace.StartRegion(ctx, "Report").End()

	for _, site := range sites {
		if len(site.Captures) == 0 {
			continue
		}

		if site.Verdict.Status == verdict.Accepted && !option.Enabled(config.ReportAccepted) {
			continue
		}

		if currentFile.NoLintComment(site.Verdict.Spawn) {
			continue
		}

		p.Report(createDiagnostic(site))
	}
}

// createDiagnostic constructs the diagnostic for one spawn site, anchored at
// the spawn expression with the verdict's witness as related information.
func createDiagnostic(site analyze.Site) analysis.Diagnostic {
	v := site.Verdict
	names := concatNames(site.Captures)

	diagnostic := analysis.Diagnostic{
		Pos: v.Spawn,
		End: v.SpawnEnd,
	}

	switch v.Status {
	case verdict.Accepted:
		diagnostic.Message = fmt.Sprintf("Task borrowing %s is joined on every path (js:%s)", names, v.Status)
		diagnostic.Related = []analysis.RelatedInformation{{
			Pos:     v.Region.End,
			Message: "Lifetime region ends here",
		}}

	case verdict.Escaped:
		diagnostic.Message = fmt.Sprintf("Handle of task borrowing %s escapes before any join (js:%s)", names, v.Status)
		diagnostic.Related = related(v, "Handle escapes here")

	case verdict.Unresolved:
		diagnostic.Message = fmt.Sprintf("Handle of task borrowing %s cannot be resolved to a join (js:%s)", names, v.Status)
		diagnostic.Related = related(v, "Handle flow is lost here")

	case verdict.UncoveredPath:
		path, witness := "exit path", "This exit is reached without a join"
		if v.Unwind {
			path, witness = "unwind path", "A panic here bypasses the join"
		}

		diagnostic.Message = fmt.Sprintf("Task borrowing %s is not joined on every %s (js:%s)", names, path, v.Status)
		diagnostic.Related = related(v, witness)

	case verdict.InsufficientOwnerScope:
		diagnostic.Message = fmt.Sprintf("Owner '%s' of borrowed data is invalidated before the task's join (js:%s)", v.Owner.Name(), v.Status)
		diagnostic.Related = related(v, "Owner is invalidated here")
	}

	return diagnostic
}

func related(v verdict.Verdict, message string) []analysis.RelatedInformation {
	if !v.Witness.IsValid() {
		return nil
	}

	return []analysis.RelatedInformation{{Pos: v.Witness, End: v.WitnessEnd, Message: message}}
}

// concatNames formats the captured variable names into a human-readable
// string (e.g., "'a', 'b' and 'c'").
func concatNames(captures []capture.Variable) string {
	var allNames strings.Builder

	for i, c := range captures {
		if i > 0 {
			var separator string
			if i == len(captures)-1 {
				separator = " and "
			} else {
				separator = ", "
			}

			allNames.WriteString(separator) // ignore error
		}

		allNames.WriteByte('\'')           // ignore error
		allNames.WriteString(c.Obj.Name()) // ignore error
		allNames.WriteByte('\'')           // ignore error
	}

	return allNames.String()
}
