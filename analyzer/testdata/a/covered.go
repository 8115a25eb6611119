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

func inlineJoin(data []byte) {
	var wg sync.WaitGroup
	wg.Go(func() { data[0] = 1 }) // want `Task borrowing 'data' is joined on every path \(js:ok\)`
	wg.Wait()
}

func branchJoin(ready bool, data []int) {
	var wg sync.WaitGroup
	wg.Go(func() { data[0] = 1 }) // want `Task borrowing 'data' is joined on every path \(js:ok\)`
	if ready {
		wg.Wait()
	} else {
		wg.Wait()
	}
}

func deferredJoin(data []string) {
	var wg sync.WaitGroup
	defer wg.Wait()

	wg.Go(func() { data[0] = "x" }) // want `Task borrowing 'data' is joined on every path \(js:ok\)`
	mayFail(data)
}

func twoSpawnsOneJoin(data []byte) {
	var wg sync.WaitGroup
	wg.Go(func() { data[0] = 1 }) // want `Task borrowing 'data' is joined on every path \(js:ok\)`
	wg.Go(func() { data[1] = 2 }) // want `Task borrowing 'data' is joined on every path \(js:ok\)`
	wg.Wait()
}

func lateDeferredJoin(data []byte) {
	var wg sync.WaitGroup
	wg.Go(func() { data[0] = 1 }) // want `Task borrowing 'data' is joined on every path \(js:ok\)`
	defer wg.Wait()
	process(data)
}

func multipleCaptures(a, b []int) {
	var wg sync.WaitGroup
	wg.Go(func() { a[0] = b[0] }) // want `Task borrowing 'a' and 'b' is joined on every path \(js:ok\)`
	wg.Wait()
}

func mayFail(data []string) {}
