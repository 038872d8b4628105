/*
Package reexec runs a named, pre-registered computation in a re-executed
copy of the current application and collects the computation's outcome in
the parent, using the same one-shot outcome protocol as forkmap.Run.

Where forkmap.Run duplicates the whole address space with a raw fork and is
therefore off-limits to applications that cannot tolerate losing all sibling
threads in the child, re-execution starts from a fresh process image: the Go
runtime in the child spins up normally, and only then the requested action
runs. The price is that no closure state crosses the boundary; anything an
action needs must travel through environment variables (see ForkEnv) or be
reachable from the new process image itself.

Applications must register their actions in an init function (so the
registration happens in the re-executed child, too) and call CheckAction
first thing in main:

	func init() {
	    reexec.Register("answer", func() (interface{}, error) {
	        return 21 * 2, nil
	    })
	}

	func main() {
	    reexec.CheckAction() // never returns in a re-executed child
	    var answer int
	    if err := reexec.Fork("answer", &answer); err != nil {
	        ...
	    }
	}

Test binaries must route CheckAction through this module's reexec/testing
package instead, so that re-executed children skip the test suite and their
coverage profile data ends up merged into the parent's profile.
*/
package reexec
