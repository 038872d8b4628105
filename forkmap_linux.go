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

//go:build linux

package forkmap

import (
	"golang.org/x/sys/unix"

	"github.com/CouleeApps/fork-map/internal/outcome"
)

// readChunkSize is the block size in which the parent drains the result
// pipe. Payloads larger than this simply take multiple reads.
const readChunkSize = 4096

// Run executes the computation in a forked copy of the current process and
// returns its outcome, blocking until the child process has fully
// terminated. The result type must round-trip through encoding/json; the
// computation may capture whatever state it likes through its closure, as
// that state is duplicated into the child by the fork, never transmitted.
//
// The child always exits with status 0 after running the computation,
// regardless of whether the computation succeeded: computation failures are
// carried inside the outcome payload and surface as *ComputationError. A
// child observed with any other exit status did not complete the protocol
// and yields *ChildExitError, with whatever payload it may have written
// discarded. See the package documentation for the thread-related
// preconditions a computation must honor.
func Run[R any](computation func() (R, error)) (R, error) {
	var zero R
	var p [2]int
	if err := unix.Pipe(p[:]); err != nil {
		return zero, &ChannelSetupError{Err: err}
	}
	restore := quiesceRuntime()
	pid, errno := forkProcess()
	if errno != 0 {
		restore()
		unix.Close(p[0])
		unix.Close(p[1])
		return zero, &ChannelSetupError{Err: errno}
	}
	if pid == 0 {
		// Child: run the computation, push the encoded outcome through the
		// pipe, then terminate for good. The quiesced runtime stays in
		// effect here, a single P and a parked collector being all the
		// child's remaining life needs. Control must never return to the
		// surrounding caller code, which only the parent may continue to
		// execute; exiting here also skips any deferred cleanup of the
		// inherited call stack, and deliberately so.
		unix.Close(p[0])
		value, err := computation()
		if payload, encErr := outcome.Encode(value, err); encErr == nil {
			writeAll(p[1], payload)
		}
		// An encode failure writes nothing; the parent will report the
		// empty payload as corrupted.
		unix.Close(p[1])
		unix.Exit(0)
	}
	// Parent: back to full throttle, and the write end belongs to the child
	// alone.
	restore()
	unix.Close(p[1])
	payload, readErr := drain(p[0])
	unix.Close(p[0])
	// Reap before reporting anything, whether the drain succeeded or not;
	// returning early here would leave a zombie behind.
	status, waitErr := reap(int(pid))
	if readErr != nil {
		return zero, &ReadError{Err: readErr}
	}
	if waitErr != nil {
		return zero, &ChildExitError{Code: -1, Err: waitErr}
	}
	if status.Signaled() {
		return zero, &ChildExitError{Code: -1, Signal: status.Signal()}
	}
	if status.ExitStatus() != 0 {
		return zero, &ChildExitError{Code: status.ExitStatus()}
	}
	env, err := outcome.Decode(payload)
	if err != nil {
		return zero, &PayloadError{Err: err}
	}
	if !env.OK {
		return zero, &ComputationError{Description: env.Error}
	}
	var value R
	if err := env.Unmarshal(&value); err != nil {
		return zero, &PayloadError{Err: err}
	}
	return value, nil
}

// writeAll pushes the whole payload into the pipe, in as many write calls as
// the pipe capacity demands. Write failures are swallowed: the child has no
// side channel left to report them on, and the parent will notice the
// truncated payload anyway.
func writeAll(fd int, payload []byte) {
	for len(payload) > 0 {
		n, err := unix.Write(fd, payload)
		if err == unix.EINTR {
			continue
		}
		if err != nil || n <= 0 {
			return
		}
		payload = payload[n:]
	}
}

// drain reads the pipe in fixed-size chunks until the child has closed its
// write end.
func drain(fd int) ([]byte, error) {
	var payload []byte
	chunk := make([]byte, readChunkSize)
	for {
		n, err := unix.Read(fd, chunk)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return nil, err
		}
		if n == 0 {
			// End of stream: every write end has been closed.
			return payload, nil
		}
		payload = append(payload, chunk[:n]...)
	}
}

// reap blocks until the child process has terminated and returns its wait
// status.
func reap(pid int) (unix.WaitStatus, error) {
	var status unix.WaitStatus
	for {
		if _, err := unix.Wait4(pid, &status, 0, nil); err != unix.EINTR {
			return status, err
		}
	}
}
