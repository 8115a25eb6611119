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

package a

import "sync"

func earlyReturn(ok bool, data []byte) int {
	var wg sync.WaitGroup
	wg.Go(func() { data[0] = 1 }) // want `Task borrowing 'data' is not joined on every exit path \(js:pth\)`
	if ok {
		return 0 // exits without a join
	}
	wg.Wait()

	return 1
}

func callBetween(data []byte) {
	var wg sync.WaitGroup
	wg.Go(func() { data[0] = 1 }) // want `Task borrowing 'data' is not joined on every unwind path \(js:pth\)`
	process(data)                 // may panic past the join
	wg.Wait()
}

func explicitPanic(ok bool, data []int) {
	var wg sync.WaitGroup
	wg.Go(func() { data[0] = 1 }) // want `Task borrowing 'data' is not joined on every unwind path \(js:pth\)`
	if !ok {
		panic("not ok")
	}
	wg.Wait()
}

func joinOnlyInBranch(ok bool, data []int) {
	var wg sync.WaitGroup
	wg.Go(func() { data[0] = 1 }) // want `Task borrowing 'data' is not joined on every exit path \(js:pth\)`
	if ok {
		wg.Wait()
	}
}

func process(data []byte) {}
