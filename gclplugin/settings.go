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

package gclplugin

import joinscope "fillmore-labs.com/joinscope/analyzer"

// Settings represents the configuration options for an instance of the [Plugin].
type Settings struct {
	// ReportAccepted also reports accepted spawn sites with their lifetime region.
	ReportAccepted *bool `json:"report-accepted,omitzero"`
	// Spawners lists additional spawn functions, comma-separated "pkg/path.Type.Method" specifications.
	Spawners *string `json:"spawners,omitzero"`
	// Joiners lists additional join functions.
	Joiners *string `json:"joiners,omitzero"`
	// Detachers lists functions abandoning a handle without a join.
	Detachers *string `json:"detachers,omitzero"`
}

// Options converts [Settings] into a list of [joinscope.Option] for the joinscope analyzer.
// It processes settings and applies them only when explicitly set (non-nil).
func (s Settings) Options() []joinscope.Option {
	var opts []joinscope.Option

	opts = appendOption(opts, s.ReportAccepted, joinscope.WithReportAccepted)
	opts = appendOption(opts, s.Spawners, joinscope.WithSpawners)
	opts = appendOption(opts, s.Joiners, joinscope.WithJoiners)
	opts = appendOption(opts, s.Detachers, joinscope.WithDetachers)

	return opts
}

// appendOption appends a non-nil setting to a [joinscope.Option] list.
func appendOption[T any](opts []joinscope.Option, value *T, constructor func(T) joinscope.Option) []joinscope.Option {
	if value == nil {
		return opts
	}

	return append(opts, constructor(*value))
}
