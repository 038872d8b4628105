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
	"bufio"
	"fmt"
	"os"
	"strings"
)

// chatter lists the line prefixes of Go testing output that must not reach a
// re-executed child's stderr: the parent takes any stderr output as an
// indication of child failure, and these lines are no such thing.
var chatter = []string{
	"coverage:",
	"testing:",
	"PASS",
	"ok  ",
}

// muffleTestingChatter runs f and forwards f's stderr output to the real
// stderr, except for Go testing's status chatter, which gets dropped. Actual
// error output, such as panic messages, passes through unharmed so the
// parent still learns about a child gone wrong.
func muffleTestingChatter(f func()) {
	realStderr := os.Stderr
	// os.Stderr is a *os.File, so an in-memory io.Pipe() won't do here; it
	// has to be a real pipe.
	rd, wr, err := os.Pipe()
	if err != nil {
		panic("forkmap/reexec/testing: cannot create stderr filtering pipe: " +
			err.Error())
	}
	os.Stderr = wr
	done := make(chan struct{})
	go func() {
		defer close(done)
		scan := bufio.NewScanner(rd)
		scan.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	scanning:
		for scan.Scan() {
			line := scan.Text()
			for _, prefix := range chatter {
				if strings.HasPrefix(line, prefix) {
					continue scanning
				}
			}
			fmt.Fprintln(realStderr, line)
		}
	}()
	f()
	os.Stderr = realStderr
	wr.Close() // signals end-of-stream to the filter
	<-done
	rd.Close()
}
