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
	"io"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// captureStderr runs f and returns whatever f wrote to os.Stderr. Gomega
// dislikes being run off the spec goroutine, so the pipe draining happens on
// a side goroutine without any assertions of its own.
func captureStderr(f func()) (stderr string) {
	realStderr := os.Stderr
	rd, wr, err := os.Pipe()
	Expect(err).NotTo(HaveOccurred())
	os.Stderr = wr
	defer func() { os.Stderr = realStderr }()
	done := make(chan string)
	go func() {
		b, _ := io.ReadAll(rd)
		done <- string(b)
	}()
	f()
	wr.Close()
	stderr = <-done
	rd.Close()
	return
}

var _ = Describe("stderr muffling", func() {

	It("passes the capture harness self-test", func() {
		Expect(captureStderr(func() {
			fmt.Fprint(os.Stderr, "foo")
		})).To(Equal("foo"))
	})

	It("drops testing chatter but passes real trouble on", func() {
		out := captureStderr(func() {
			muffleTestingChatter(func() {
				fmt.Fprintln(os.Stderr, "coverage: 42.0% of statements")
				fmt.Fprintln(os.Stderr, "testing: warning: no tests to run")
				fmt.Fprintln(os.Stderr, "PASS")
				fmt.Fprintln(os.Stderr, "panic: all gophers are gone")
			})
		})
		Expect(out).To(Equal("panic: all gophers are gone\n"))
	})

	It("restores stderr afterwards", func() {
		before := os.Stderr
		_ = captureStderr(func() {
			inner := os.Stderr
			muffleTestingChatter(func() {})
			Expect(os.Stderr).To(BeIdenticalTo(inner))
		})
		Expect(os.Stderr).To(BeIdenticalTo(before))
	})

})
