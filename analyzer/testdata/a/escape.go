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

type registry struct {
	wg *sync.WaitGroup
}

func returned(data []int) *sync.WaitGroup {
	var wg sync.WaitGroup
	wg.Go(func() { data[0] = 1 }) // want `Handle of task borrowing 'data' escapes before any join \(js:esc\)`

	return &wg
}

func stored(data []byte) registry {
	var wg sync.WaitGroup
	wg.Go(func() { data[0] = 1 }) // want `Handle of task borrowing 'data' escapes before any join \(js:esc\)`

	r := registry{}
	r.wg = &wg
	wg.Wait()

	return r
}

func watched(data []byte) {
	var wg sync.WaitGroup
	wg.Go(func() { data[0] = 1 }) // want `Handle of task borrowing 'data' cannot be resolved to a join \(js:flw\)`
	watch(&wg)
	wg.Wait()
}

func inLoop(items []int) {
	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Go(func() { items[0] = 1 }) // want `Handle of task borrowing 'items' cannot be resolved to a join \(js:flw\)`
	}
	wg.Wait()
}

func watch(wg *sync.WaitGroup) {}
