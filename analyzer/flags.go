// Copyright 2025 Oliver Eikemeier. All Rights Reserved.
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
	"flag"

	"fillmore-labs.com/joinscope/internal/config"
)

// registerFlags binds the [runOptions] values to command line flag values.
func registerFlags(flags *flag.FlagSet, r *runOptions) {
	flags.Var(behaviorValue(r, config.IncludeGenerated), "generated", "check generated files")
	flags.Var(behaviorValue(r, config.ReportAccepted), "report-accepted", "report accepted spawn sites with their lifetime region")

	flags.StringVar(&r.spawners, "spawners", r.spawners, "additional spawn functions (comma-separated pkg/path.Type.Method)")
	flags.StringVar(&r.joiners, "joiners", r.joiners, "additional join functions")
	flags.StringVar(&r.detachers, "detachers", r.detachers, "functions abandoning a handle without a join")
}

func behaviorValue(r *runOptions, flag config.Config) boolValue[config.Config, *config.BitMask[config.Config]] {
	return boolValue[config.Config, *config.BitMask[config.Config]]{
		flags: &r.behavior,
		value: flag,
	}
}
