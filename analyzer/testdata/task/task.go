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

// Package task is a minimal handle-based task API for analyzer tests.
package task

// Handle represents a running task.
type Handle struct {
	done chan struct{}
}

// Start runs fn concurrently and returns its handle.
func Start(fn func()) *Handle {
	h := &Handle{done: make(chan struct{})}

	go func() {
		defer close(h.done)
		fn()
	}()

	return h
}

// Wait blocks until the task has completed.
func (h *Handle) Wait() { <-h.done }

// Cancel abandons the task without waiting for it.
func (h *Handle) Cancel() {}
