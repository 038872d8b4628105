// Package forkmap runs a caller-supplied computation in a forked copy of the
// current process and synchronously returns the computation's outcome to the
// caller, once the child process has terminated. The child's address space is
// a copy-on-write duplicate of the parent's, so the computation may leak
// memory, trash process-global state, or drive libraries that can never be
// safely unwound: all of it is discarded when the child exits. Only the
// outcome (a value, or an error description) travels back to the parent,
// over a one-shot pipe protocol.
//
// # Code Usage
//
// Call Run with a computation returning a JSON-serializable value:
//
//	answer, err := forkmap.Run(func() (int, error) {
//	    // Leak memory, poke at global state ... nobody will ever know.
//	    return 21 * 2, nil
//	})
//
// Run blocks until the forked child has fully exited. A failure of the
// computation itself surfaces as *ComputationError with the child-side error
// text preserved; every other error type signals a fault of the
// fork/collect machinery instead.
//
// # Safety
//
// Run duplicates this process with a raw fork(2)-style clone. Of all the
// threads of the Go runtime only the forking one survives in the child. Run
// quiesces the runtime around the clone, parking the collector and the other
// working threads, so that the child inherits a scheduler and heap whose
// locks are free and can keep running ordinary Go code, timers and sleeps
// included; the child stays single-threaded at first, growing fresh threads
// of its own only if the computation demands them. The computation must
// still not depend on state owned by goroutines of the parent: those exist
// in the child only as frozen memory and will never run again, so waiting on
// a channel serviced by one of them blocks forever. This is a documented
// precondition, not something enforced at runtime. Computations that cannot
// live with these
// restrictions should use the reexec subpackage instead, which offers the
// same one-shot outcome protocol on top of a full re-execution of the
// process image, at the price of not carrying closure state across.
//
// Run is only available on Linux; on other platforms it fails with a
// *ChannelSetupError.
package forkmap
