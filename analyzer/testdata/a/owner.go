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

var sink int

func innerScope() {
	var wg sync.WaitGroup
	var result int
	{
		data := []int{1, 2, 3}
		wg.Go(func() { result = data[0] }) // want `Owner 'data' of borrowed data is invalidated before the task's join \(js:scp\)`
	}
	wg.Wait()
	sink = result
}

func reassignedOwner(data []byte) {
	var wg sync.WaitGroup
	buf := data
	wg.Go(func() { buf[0] = 1 }) // want `Owner 'buf' of borrowed data is invalidated before the task's join \(js:scp\)`
	buf = nil
	wg.Wait()
}

func reassignedAfterJoin(data []byte) {
	var wg sync.WaitGroup
	buf := data
	wg.Go(func() { buf[0] = 1 }) // want `Task borrowing 'buf' is joined on every path \(js:ok\)`
	wg.Wait()
	buf = nil
	_ = buf
}
