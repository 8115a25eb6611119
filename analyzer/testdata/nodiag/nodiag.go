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

package nodiag

import "sync"

// Accepted sites stay silent without the report-accepted option.
func quiet(data []byte) {
	var wg sync.WaitGroup
	wg.Go(func() { data[0] = 1 })
	wg.Wait()
}

// A task borrowing nothing carries no obligation, joined or not.
func fireAndForget() {
	var wg sync.WaitGroup
	wg.Go(func() { println("done") })
}

func suppressed(data []byte) {
	var wg sync.WaitGroup
	wg.Go(func() { data[0] = 1 }) //nolint:joinscope the early return is barely reachable
	if data == nil {
		return
	}
	wg.Wait()
}
