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

package testsupport

import "fmt"

// RunAction is wired up to reexec.RunAction by the reexec package's init, so
// that reexec/testing can trigger a pending action while under test without
// importing reexec.
var RunAction func() (action bool)

// TestingEnabled is set to true while we are under testing; gathering
// coverage profile data might then be enabled.
var TestingEnabled = false

// CoverageOutputDir is the directory in which to create coverage profile
// files. When run from "go test", a test binary always runs in the source
// directory of the package under test; the "-test.outputdir" argument
// corresponding with this variable is how "go test" points it at the
// directory the go command itself runs in.
var CoverageOutputDir = ""

// CoverageProfile is the name of the coverage profile data file of this
// (parent) test process, corresponding with the "-test.coverprofile"
// argument; if empty, no coverage profile is to be written.
var CoverageProfile = ""

// CoverageProfiles lists the per-child coverage profile data file names
// handed out to re-executed child processes so far, to be merged into the
// parent's profile after the test run.
var CoverageProfiles = []string{}

// EnableTesting tells the reexec package that it is running under a test
// binary, together with the coverage-related parameters of the test run;
// reexec needs both when re-executing child processes, so the children write
// separate coverage profiles instead of fighting over the parent's.
func EnableTesting(outputdir, coverprofile string) {
	TestingEnabled = true
	CoverageOutputDir = outputdir
	CoverageProfile = coverprofile
}

// TestingArgs returns the additional command line arguments a re-executed
// child needs while under test: a fresh coverage profile file of its own (if
// coverage is gathered at all) and a test selector which matches nothing, as
// the child must not run the test suite a second time.
func TestingArgs() []string {
	testargs := []string{}
	if TestingEnabled {
		if CoverageProfile != "" {
			name := fmt.Sprintf("%s_%d", CoverageProfile, len(CoverageProfiles))
			CoverageProfiles = append(CoverageProfiles, name)
			testargs = append(testargs, "-test.coverprofile="+name)
			if CoverageOutputDir != "" {
				testargs = append(testargs, "-test.outputdir="+CoverageOutputDir)
			}
		}
		// Let's suppose for a moment that no sane developer will ever use
		// this name for one of her/his tests...
		testargs = append(testargs,
			"-test.run=matchesnotestwhatsoeverandneverwill")
	}
	return testargs
}
