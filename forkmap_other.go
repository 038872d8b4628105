// Copyright 2026 CouleeApps.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

//go:build !linux

package forkmap

import "errors"

// Run is only implemented on Linux, where the process can be duplicated with
// a plain clone(2). On all other platforms it fails with a
// *ChannelSetupError before anything has happened.
func Run[R any](computation func() (R, error)) (R, error) {
	var zero R
	return zero, &ChannelSetupError{
		Err: errors.New("process duplication not supported on this platform"),
	}
}
