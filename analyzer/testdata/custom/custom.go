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

package custom

import "test/task"

func waited(data []byte) {
	h := task.Start(func() { data[0] = 1 })
	h.Wait()
}

func canceled(fast bool, data []byte) {
	h := task.Start(func() { data[0] = 1 }) // want `Task borrowing 'data' is not joined on every exit path \(js:pth\)`
	if fast {
		h.Cancel()

		return
	}
	h.Wait()
}

func leaked(data []byte) *task.Handle {
	h := task.Start(func() { data[0] = 1 }) // want `Handle of task borrowing 'data' escapes before any join \(js:esc\)`

	return h
}

func discarded(data []byte) {
	task.Start(func() { data[0] = 1 }) // want `Task borrowing 'data' is not joined on every exit path \(js:pth\)`
}

func moved(data []byte) {
	h := task.Start(func() { data[0] = 1 })
	h2 := h
	h2.Wait()
}

func shared(data []byte) {
	h := task.Start(func() { data[0] = 1 }) // want `Handle of task borrowing 'data' cannot be resolved to a join \(js:flw\)`
	monitor(h)
	h.Wait()
}

func monitor(h *task.Handle) {}
