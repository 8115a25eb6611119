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

// Package analyzer implements the joinscope static analysis pass.
//
// # Overview
//
// JoinScope examines every spawn site of a concurrent task that captures
// local variables and proves that every path from the spawn to function exit,
// unwinding included, passes a join of the task's handle before the captured
// data's owner can be invalidated. Accepted sites receive the minimal
// lifetime region their captures must stay valid for; everything else is
// rejected with a diagnostic naming the failing path or use.
//
// # Example
//
// Rejected:
//
//	func process(data []byte) error {
//	    var wg sync.WaitGroup
//	    wg.Go(func() { transform(data) })
//	    if err := validate(data); err != nil {
//	        return err // exits without wg.Wait
//	    }
//	    wg.Wait()
//	    return nil
//	}
//
// Accepted, since the deferred join covers early returns and unwinding:
//
//	func process(data []byte) error {
//	    var wg sync.WaitGroup
//	    defer wg.Wait()
//	    wg.Go(func() { transform(data) })
//	    if err := validate(data); err != nil {
//	        return err
//	    }
//	    return nil
//	}
//
// # Recognized Task APIs
//
// By default the analyzer understands [sync.WaitGroup.Go] with
// [sync.WaitGroup.Wait] and [golang.org/x/sync/errgroup.Group.Go] with
// [golang.org/x/sync/errgroup.Group.Wait]. Additional spawn, join and detach
// functions are configured with the -spawners, -joiners and -detachers flags
// or the corresponding [Option] values.
package analyzer
