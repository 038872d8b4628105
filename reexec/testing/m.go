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

package testing

import (
	"fmt"
	"os"
	"strings"
	gotesting "testing"

	"github.com/CouleeApps/fork-map/reexec/internal/testsupport"
)

// Testing-related CLI arguments picked up from os.Args, which are of
// relevance to coverage profile data handling.
var (
	outputDir    string // "-test.outputdir"
	coverProfile string // "-test.coverprofile"
)

// M is an "enhanced" version of Go's testing.M which additionally handles
// re-executed child processes and merges their coverage profile data into
// the parent's coverage profile file.
type M struct {
	*gotesting.M
}

// Run runs a pending re-execution action and/or the tests, and returns an
// exit code to pass to os.Exit.
func (m *M) Run() (exitcode int) {
	// If this process is a re-executed child, run the scheduled action
	// first: that is the code whose coverage data we are actually after.
	// The testsupport indirection is needed here, as importing reexec
	// directly would close an import cycle.
	reexeced := testsupport.RunAction()
	parseCoverageArgs(os.Args)
	if !reexeced {
		// An ordinary (parent) test run; arm reexec so it passes the
		// correct testing arguments on to any re-executed children.
		testsupport.EnableTesting(outputDir, coverProfile)
		exitcode = m.M.Run()
		// The children's and our own coverage profile data files have only
		// been written by the end of m.M.Run(), so only now can the merge
		// happen.
		if coverProfile != "" && exitcode == 0 {
			mergeAndReportCoverages(coverProfile, testsupport.CoverageProfiles)
			for _, childprofile := range testsupport.CoverageProfiles {
				_ = os.Remove(toOutputDir(childprofile))
			}
		}
		return
	}
	// A re-executed child: run the (empty, thanks to the -test.run
	// selector) test set anyway, as this is what makes the testing package
	// write this child's coverage profile data file. Keep the testing
	// chatter away from stderr, which the parent takes as a sign of child
	// failure.
	muffleTestingChatter(func() { exitcode = m.M.Run() })
	return
}

// parseCoverageArgs gathers the output directory and coverage profile file
// name from the test binary's CLI arguments.
func parseCoverageArgs(args []string) {
	for _, arg := range args {
		switch {
		case strings.HasPrefix(arg, "-test.outputdir="):
			outputDir = strings.SplitN(arg, "=", 2)[1]
		case strings.HasPrefix(arg, "-test.coverprofile="):
			coverProfile = strings.SplitN(arg, "=", 2)[1]
		case arg == "-args", arg == "--args":
			return
		}
	}
}

// toOutputDir returns the specified file name relocated, if required, to the
// test run's output directory.
func toOutputDir(path string) string {
	if outputDir == "" || os.IsPathSeparator(path[0]) {
		return path
	}
	return fmt.Sprintf("%s%c%s", outputDir, os.PathSeparator, path)
}
