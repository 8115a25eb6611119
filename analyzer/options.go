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
	"log/slog"

	"fillmore-labs.com/joinscope/internal/config"
)

// Option configures specific behavior of a [New] joinscope analyzer.
type Option interface {
	apply(r *runOptions)
	LogAttr() slog.Attr
}

// Options is a list of [Option] values that itself satisfies the [Option] interface.
type Options []Option

// LogValue implements [slog.LogValuer].
func (o Options) LogValue() slog.Value {
	as := make([]slog.Attr, 0, len(o))
	as = appendOptions(as, o)

	return slog.GroupValue(as...)
}

func appendOptions(as []slog.Attr, o Options) []slog.Attr {
	for _, opt := range o {
		switch opt := opt.(type) {
		case nil:
			as = append(as, slog.String("nil", "<nil>"))

		case Options:
			as = appendOptions(as, opt)

		default:
			as = append(as, opt.LogAttr())
		}
	}

	return as
}

func (o Options) apply(r *runOptions) {
	for _, opt := range o {
		if opt == nil {
			continue
		}

		opt.apply(r)
	}
}

// LogAttr is for logging with [slog.Logger.LogAttrs].
func (o Options) LogAttr() slog.Attr {
	return slog.Any("options", o)
}

// WithGenerated is an [Option] to configure diagnostics in generated files.
func WithGenerated(generated bool) Option { return generatedOption{generated: generated} }

type generatedOption struct{ generated bool }

func (o generatedOption) apply(r *runOptions) {
	r.behavior.Set(config.IncludeGenerated, o.generated)
}

func (o generatedOption) LogAttr() slog.Attr {
	return slog.Bool("generated", o.generated)
}

// WithReportAccepted is an [Option] to also report accepted spawn sites with
// their assigned lifetime region.
func WithReportAccepted(accepted bool) Option { return acceptedOption{accepted: accepted} }

type acceptedOption struct{ accepted bool }

func (o acceptedOption) apply(r *runOptions) {
	r.behavior.Set(config.ReportAccepted, o.accepted)
}

func (o acceptedOption) LogAttr() slog.Attr {
	return slog.Bool("report-accepted", o.accepted)
}

// WithSpawners is an [Option] to recognize additional spawn functions, a
// comma-separated list of "pkg/path.Type.Method" specifications.
func WithSpawners(spawners string) Option { return spawnersOption{spawners: spawners} }

type spawnersOption struct{ spawners string }

func (o spawnersOption) apply(r *runOptions) {
	r.spawners = o.spawners
}

func (o spawnersOption) LogAttr() slog.Attr {
	return slog.String("spawners", o.spawners)
}

// WithJoiners is an [Option] to recognize additional join functions.
func WithJoiners(joiners string) Option { return joinersOption{joiners: joiners} }

type joinersOption struct{ joiners string }

func (o joinersOption) apply(r *runOptions) {
	r.joiners = o.joiners
}

func (o joinersOption) LogAttr() slog.Attr {
	return slog.String("joiners", o.joiners)
}

// WithDetachers is an [Option] to recognize functions that abandon a handle
// without waiting for its task.
func WithDetachers(detachers string) Option { return detachersOption{detachers: detachers} }

type detachersOption struct{ detachers string }

func (o detachersOption) apply(r *runOptions) {
	r.detachers = o.detachers
}

func (o detachersOption) LogAttr() slog.Attr {
	return slog.String("detachers", o.detachers)
}
