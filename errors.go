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

package forkmap

import (
	"fmt"
	"syscall"
)

// ChannelSetupError reports that the fork/collect protocol could not even be
// set up: either the result pipe could not be created, or the child process
// could not be spawned. No child-side computation has run.
type ChannelSetupError struct {
	Err error // the underlying pipe/fork failure.
}

// Error returns a description of the failed channel or process setup.
func (e *ChannelSetupError) Error() string {
	return fmt.Sprintf("forkmap: cannot set up fork/collect: %s", e.Err.Error())
}

// Unwrap returns the underlying setup failure.
func (e *ChannelSetupError) Unwrap() error { return e.Err }

// ReadError reports that draining the result channel failed after the child
// had been spawned. The child has still been reaped.
type ReadError struct {
	Err error // the underlying read failure.
}

// Error returns a description of the failed channel read.
func (e *ReadError) Error() string {
	return fmt.Sprintf("forkmap: cannot read child outcome: %s", e.Err.Error())
}

// Unwrap returns the underlying read failure.
func (e *ReadError) Unwrap() error { return e.Err }

// ChildExitError reports a child process which terminated without completing
// the outcome protocol: it exited with a nonzero status, was killed by a
// signal, or spilled unexpected output on its stderr. Any outcome payload
// received from such a child is discarded, as a child that crashed before or
// while writing cannot be trusted to have produced a meaningful payload.
type ChildExitError struct {
	Code   int            // exit status of the child, or -1 if it never exited on its own.
	Signal syscall.Signal // signal that killed the child, or 0.
	Stderr string         // unexpected stderr output, if any.
	Err    error          // set only when waiting for the child itself failed.
}

// Error returns a description of how the child process went astray.
func (e *ChildExitError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("forkmap: cannot wait for child process: %s", e.Err.Error())
	case e.Signal != 0:
		return fmt.Sprintf("forkmap: child process killed by signal %d (%s)",
			int(e.Signal), e.Signal.String())
	case e.Stderr != "":
		return fmt.Sprintf("forkmap: child process failed with stderr output: %q", e.Stderr)
	}
	return fmt.Sprintf("forkmap: child process exited with status %d", e.Code)
}

// Unwrap returns the wait failure, if any.
func (e *ChildExitError) Unwrap() error { return e.Err }

// PayloadError reports that the bytes received from a cleanly exited child
// did not decode into a valid outcome.
type PayloadError struct {
	Err error // the underlying decoding failure.
}

// Error returns a description of the payload corruption.
func (e *PayloadError) Error() string {
	return fmt.Sprintf("forkmap: corrupted child outcome payload: %s", e.Err.Error())
}

// Unwrap returns the underlying decoding failure.
func (e *PayloadError) Unwrap() error { return e.Err }

// ComputationError reports that the computation itself failed inside the
// child. This is the one "expected" failure mode: the fork/collect protocol
// worked fine and faithfully transported the failure. Only the textual
// description of the original error survives the process boundary, not its
// concrete type.
type ComputationError struct {
	Description string // the child-side error text, verbatim.
}

// Error returns the child-side error description, unchanged.
func (e *ComputationError) Error() string { return e.Description }
