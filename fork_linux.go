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
	"runtime"
	"runtime/debug"
	"syscall"
	_ "unsafe" // for go:linkname
)

// The runtime's fork hooks: they block signals and poison the forking
// goroutine's stack guard across the clone, so that nothing grows the stack
// between fork and exec. This package's child never execs, so it must undo
// the poisoning itself: runtimeAfterForkInChild only restores the signal
// state, and solely runtimeAfterFork resets the stack guard. A child that
// skips the latter aborts on its first stack growth.

//go:linkname runtimeBeforeFork syscall.runtime_BeforeFork
func runtimeBeforeFork()

//go:linkname runtimeAfterFork syscall.runtime_AfterFork
func runtimeAfterFork()

//go:linkname runtimeAfterForkInChild syscall.runtime_AfterForkInChild
func runtimeAfterForkInChild()

// forkProcess duplicates the current process, clone(2) with SIGCHLD being
// the portable-across-architectures spelling of fork(2). It returns the
// child's pid in the parent and 0 in the child; a nonzero errno means no
// child was created.
//
//go:norace
func forkProcess() (pid uintptr, errno syscall.Errno) {
	syscall.ForkLock.Lock()
	runtimeBeforeFork()
	pid, _, errno = syscall.RawSyscall(syscall.SYS_CLONE, uintptr(syscall.SIGCHLD), 0, 0)
	if errno != 0 || pid != 0 {
		// Parent, or failed clone.
		runtimeAfterFork()
		syscall.ForkLock.Unlock()
		return
	}
	// Child: restore the runtime to a workable single-threaded state, and
	// that includes the stack guard, as the child is about to run ordinary
	// Go code. The inherited ForkLock is still locked in our copy of
	// memory, so release it in case the computation wants to spawn
	// processes of its own.
	runtimeAfterForkInChild()
	runtimeAfterFork()
	syscall.ForkLock.Unlock()
	return
}

// quiesceRuntime winds the runtime down to a state fit for cloning without a
// subsequent exec: the calling goroutine wired to its thread and owning the
// only working P, with the garbage collector parked and any accumulated
// garbage already swept. The fork hooks above do not stop the world, so
// without this a sibling thread caught mid-schedule or mid-allocation would
// leave its runtime lock locked forever in the child's copy of memory,
// deadlocking the child as soon as its computation parks or allocates. The
// returned function puts the parent back the way it was; the child keeps
// the reduced runtime for its short remaining life.
func quiesceRuntime() (restore func()) {
	runtime.LockOSThread()
	prevGC := debug.SetGCPercent(-1)
	runtime.GC()
	prevProcs := runtime.GOMAXPROCS(1)
	return func() {
		runtime.GOMAXPROCS(prevProcs)
		debug.SetGCPercent(prevGC)
		runtime.UnlockOSThread()
	}
}
