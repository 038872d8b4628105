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

package reexec

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"

	forkmap "github.com/CouleeApps/fork-map"
	"github.com/CouleeApps/fork-map/internal/outcome"
	"github.com/CouleeApps/fork-map/reexec/internal/testsupport"
)

// Breaks the vicious cycle of recursive imports which would otherwise raise
// its ugly head: reexec/testing needs to trigger RunAction while under test
// without importing us, so both packages meet in
// reexec/internal/testsupport instead.
func init() {
	testsupport.RunAction = RunAction
}

// magicEnvVar names the environment variable carrying the action a
// re-executed child is supposed to run. Its presence is what tells a child
// apart from the original parent process.
const magicEnvVar = "forkmap_reexec_action"

// outcomeFd is the file descriptor on which a re-executed child finds the
// write end of its outcome pipe: the first descriptor after stdin, stdout
// and stderr, as passed via ExtraFiles. Keeping the outcome off stdout
// leaves both standard output streams free for the action itself.
const outcomeFd = 3

// childGracePeriod is how long Fork waits for a child to terminate on its
// own after the outcome has been received, before killing it the hard way.
const childGracePeriod = time.Second

// reexecEnabled gates re-execution to applications which are reexec-aware by
// calling CheckAction() as early as possible in their main()s. Applications
// triggering a Fork without ever having called CheckAction() would spawn
// children that uselessly run the full application instead of one action, so
// we panic on them instead. Never in the mood to cause havoc by unexpected
// restarts.
var reexecEnabled = false

// For the sake of code coverage ;)
var osExit = os.Exit

// Action is a computation that can be run in a re-executed child process.
// Its result value must round-trip through encoding/json; a non-nil error
// travels back to the parent as text only.
type Action func() (interface{}, error)

// actions maps action names to the registered computations.
var actions = map[string]Action{}

// Register registers an Action under a name so that Fork(name, ...) can run
// it in a re-executed child. It panics when the name is already taken,
// regardless of whether by the same Action or a different one.
func Register(name string, action Action) {
	if _, ok := actions[name]; ok {
		panic(fmt.Sprintf(
			"forkmap/reexec: Register: action %q already registered", name))
	}
	actions[name] = action
}

// CheckAction checks if this process is a re-executed child which is
// supposed to run a single registered action, and if so, runs the action,
// ships its outcome, and exits; it then never returns. In the original
// (parent) process it returns immediately after arming Fork.
func CheckAction() {
	if RunAction() {
		osExit(0)
	}
}

// RunAction is the working half of CheckAction: in a re-executed child it
// runs the scheduled action, writes the encoded outcome to the outcome
// descriptor, and returns true. In the parent it only marks the application
// as reexec-aware and returns false. Test binaries get here through
// reexec/testing's M, which still needs to run an (empty) test set in the
// child afterwards and thus cannot use the exiting CheckAction.
func RunAction() (action bool) {
	actionname := os.Getenv(magicEnvVar)
	if actionname == "" {
		// Enable re-execution only for the original process of the
		// application, never for re-executed children.
		reexecEnabled = true
		return false
	}
	act, ok := actions[actionname]
	if !ok {
		panic(fmt.Sprintf(
			"forkmap/reexec: unregistered re-execution action %q", actionname))
	}
	out := os.NewFile(outcomeFd, "outcome")
	value, err := act()
	if payload, encErr := outcome.Encode(value, err); encErr == nil {
		_, _ = out.Write(payload)
	}
	// As in forkmap.Run, an encode failure ships no payload at all and the
	// parent reports the corruption.
	out.Close()
	return true
}

// Fork re-executes the application as a child process which runs only the
// named action, deserializes the action's result value into the element
// result points to (pass nil to discard it), and returns once the child has
// terminated. An action-level failure in the child surfaces as
// *forkmap.ComputationError, with the same taxonomy as forkmap.Run for all
// protocol-level failures.
func Fork(actionname string, result interface{}) error {
	return ForkEnv(actionname, nil, result)
}

// ForkEnv is Fork with additional environment variables passed to the
// re-executed child; this is the only way to hand inputs to an action, as
// closure state does not survive re-execution.
func ForkEnv(actionname string, envvars []string, result interface{}) error {
	// Safeguard against applications that forgot to arm re-execution by
	// calling CheckAction() early in their main(), and against actions
	// trying to re-execute from inside a re-executed child.
	if !reexecEnabled {
		if os.Getenv(magicEnvVar) == "" {
			panic("forkmap/reexec: Fork: application does not support " +
				"re-execution, call reexec.CheckAction() first thing in main()")
		}
		panic("forkmap/reexec: Fork: tried to re-execute from inside a " +
			"re-executed child process")
	}
	if _, ok := actions[actionname]; !ok {
		panic("forkmap/reexec: Fork: attempting to re-execute into " +
			"unregistered action \"" + actionname + "\"")
	}
	rd, wr, err := os.Pipe()
	if err != nil {
		return &forkmap.ChannelSetupError{Err: err}
	}
	// When under test, pass the necessary test parameters on to the child:
	// it will re-run the test binary, which must not run any tests but may
	// have to write its own coverage profile data file.
	child := exec.Command("/proc/self/exe", testsupport.TestingArgs()...)
	child.Env = append(os.Environ(), envvars...)
	child.Env = append(child.Env, magicEnvVar+"="+actionname)
	child.ExtraFiles = []*os.File{wr}
	var childerr bytes.Buffer
	child.Stderr = &childerr
	if err := child.Start(); err != nil {
		rd.Close()
		wr.Close()
		return &forkmap.ChannelSetupError{Err: err}
	}
	// Only the child may hold the write end now, or we would never see the
	// end of the outcome stream for children that crash without writing.
	wr.Close()
	defer rd.Close()
	// Decode the outcome as it flows in; keep any error for later, as the
	// child's fate takes precedence over decoder hiccups.
	env, decodeErr := outcome.DecodeFrom(rd)
	// Either the child terminates on its own within a short grace period
	// after shipping its outcome, or it gets killed the hard way. Reap it in
	// both cases.
	done := make(chan error, 1)
	go func() { done <- child.Wait() }()
	var waitErr error
	killed := false
	select {
	case waitErr = <-done:
	case <-time.After(childGracePeriod):
		killed = true
		_ = child.Process.Kill()
		<-done
	}
	// Any child stderr output takes precedence over everything else: when
	// the child panics, that is of more importance than whatever the
	// decoder stumbled over due to the child's problems.
	if hiccup := strings.TrimSpace(childerr.String()); hiccup != "" {
		return childExitError(waitErr, hiccup)
	}
	if waitErr != nil && !killed {
		return childExitError(waitErr, "")
	}
	if decodeErr != nil {
		return &forkmap.PayloadError{Err: decodeErr}
	}
	if !env.OK {
		return &forkmap.ComputationError{Description: env.Error}
	}
	if result != nil {
		if err := env.Unmarshal(result); err != nil {
			return &forkmap.PayloadError{Err: err}
		}
	}
	return nil
}

// childExitError maps a child's wait verdict and stderr output onto
// *forkmap.ChildExitError.
func childExitError(waitErr error, stderr string) *forkmap.ChildExitError {
	cee := &forkmap.ChildExitError{Stderr: stderr}
	var exitErr *exec.ExitError
	switch {
	case waitErr == nil:
	case errors.As(waitErr, &exitErr):
		if status, ok := exitErr.Sys().(syscall.WaitStatus); ok && status.Signaled() {
			cee.Code = -1
			cee.Signal = status.Signal()
		} else {
			cee.Code = exitErr.ExitCode()
		}
	default:
		cee.Code = -1
		cee.Err = waitErr
	}
	return cee
}
