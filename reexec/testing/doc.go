/*
Package testing wires Go's testing machinery up with re-execution: a test
binary using reexec re-executes itself to run actions in child processes,
and without further measures each of these children would try to run the
full test suite again, while their coverage profile data would be lost.

Test binaries of applications (and packages) using reexec therefore must use
this package's M in their TestMain:

	func TestMain(m *testing.M) {
	    mm := &rxtest.M{M: m}
	    os.Exit(mm.Run())
	}

M runs a pending action first when this process is a re-executed child,
keeps Go testing's output chatter away from the child's stderr (which the
parent interprets as a failure indication), and merges the coverage profile
data files written by all re-executed children into the parent's coverage
profile after the test run.
*/
package testing
