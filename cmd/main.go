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

// A small demonstration of running deliberately leaky computations in
// disposable child processes, once via fork and once via re-execution.
package main

import (
	"fmt"
	"os"
	"strings"

	forkmap "github.com/CouleeApps/fork-map"
	"github.com/CouleeApps/fork-map/reexec"
)

// leak collects garbage that no child ever cleans up; the parent's copy must
// stay empty, no matter what the children do to theirs.
var leak []string

func init() {
	reexec.Register("shout", func() (interface{}, error) {
		leak = append(leak, strings.Repeat("AAAH", 1<<20))
		return fmt.Sprintf("shouted, now dragging %d leaks around", len(leak)), nil
	})
}

func main() {
	reexec.CheckAction() // never returns in a re-executed child.

	answer, err := forkmap.Run(func() (int, error) {
		leak = append(leak, strings.Repeat("x", 1<<24)) // 16MiB, gone with the child.
		return 21 * 2, nil
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Printf("forked computation says: %d\n", answer)

	var shouted string
	if err := reexec.Fork("shout", &shouted); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Printf("re-executed action says: %q\n", shouted)

	fmt.Printf("leaks the parent ended up with: %d\n", len(leak))
}
