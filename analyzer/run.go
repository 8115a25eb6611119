// Copyright 2025-2026 Oliver Eikemeier. All Rights Reserved.
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

package analyzer

import (
	"context"
	"errors"
	"fmt"
	"go/ast"
	"runtime"
	"runtime/trace"

	"golang.org/x/sync/errgroup"
	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"

	"fillmore-labs.com/joinscope/internal/analyze"
	"fillmore-labs.com/joinscope/internal/astutil"
	"fillmore-labs.com/joinscope/internal/config"
	"fillmore-labs.com/joinscope/internal/report"
	"fillmore-labs.com/joinscope/internal/taskspec"
)

// ErrResultMissing is returned when a required analyzer result is missing.
// This typically indicates a configuration error where the analyzer's
// Requires field is not properly set.
var ErrResultMissing = errors.New("analyzer result missing")

// unit is one function declaration queued for analysis, remembering the file
// it was declared in.
type unit struct {
	file  astutil.CurrentFile
	decl  *ast.FuncDecl
	sites []analyze.Site
}

// run executes the joinscope analyzer's pipeline.
//
// Functions are analyzed concurrently; each function's control-flow graph and
// handle tracking are independent of all others. Reporting happens afterwards
// in source order, so diagnostics stay deterministic.
func (r *runOptions) run(p *analysis.Pass) (any, error) {
	// Retrieves the [inspector.Inspector] from the pass results.
	in, ok := p.ResultOf[inspect.Analyzer].(*inspector.Inspector)
	if !ok {
		return nil, fmt.Errorf("joinscope: %s %w", inspect.Analyzer.Name, ErrResultMissing)
	}

	ctx := context.Background()

	ctx, task := trace.NewTask(ctx, "JoinScope")
	defer task.End()

	units := r.collect(p, in)

	f := analyze.Function{
		Pass:       p,
		Classifier: taskspec.New(r.spawners, r.joiners, r.detachers),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for _, u := range units {
		g.Go(func() error {
			sites, err := f.Analyze(gctx, u.decl)
			if err != nil {
				return fmt.Errorf("joinscope: function %s: %w", u.decl.Name.Name, err)
			}

			u.sites = sites

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &Result{}

	for _, u := range units {
		report.Process(ctx, p, u.file, u.sites, r.behavior)

		for _, site := range u.sites {
			result.Verdicts = append(result.Verdicts, site.Verdict)
		}
	}

	return result, nil
}

// collect gathers the function declarations to analyze, in source order.
func (r *runOptions) collect(p *analysis.Pass, in *inspector.Inspector) []*unit {
	var units []*unit

	// Remember the current file over all functions declared in it
	var currentFile astutil.CurrentFile

	root, types := in.Root(), []ast.Node{
		(*ast.File)(nil),
		(*ast.FuncDecl)(nil),
	}

	root.Inspect(types, func(i inspector.Cursor) bool {
		switch node := i.Node().(type) {
		case *ast.File:
			currentFile = astutil.NewCurrentFile(p.Fset, node)
			descend := r.behavior.Enabled(config.IncludeGenerated) || !currentFile.Generated()

			return descend

		case *ast.FuncDecl:
			if node.Body == nil || !currentFile.Valid() {
				return false
			}

			// Skip functions with nolint comment
			if node.Doc != nil && astutil.CommentHasNoLint(node.Doc.List[len(node.Doc.List)-1]) {
				return false
			}

			units = append(units, &unit{file: currentFile, decl: node})

			return false

		default:
			return false
		}
	})

	return units
}
