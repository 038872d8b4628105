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
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("coverage profile data", func() {

	var tmpdir string

	BeforeEach(func() {
		tmpdir = GinkgoT().TempDir()
	})

	writeProfile := func(name, content string) string {
		path := filepath.Join(tmpdir, name)
		Expect(os.WriteFile(path, []byte(content), 0644)).To(Succeed())
		return path
	}

	It("parses a coverage profile data file", func() {
		p := newProfile()
		p.mergeFile(writeProfile("cov.out",
			"mode: atomic\n"+
				"example.com/m/f.go:1.2,3.4 5 6\n"+
				"example.com/m/f.go:7.8,9.10 11 0\n"))
		Expect(p.mode).To(Equal("atomic"))
		Expect(p.blocks).To(HaveKey("example.com/m/f.go"))
		Expect(p.blocks["example.com/m/f.go"]).To(HaveLen(2))
	})

	It("silently skips profiles that were never written", func() {
		p := newProfile()
		Expect(func() {
			p.mergeFile(filepath.Join(tmpdir, "nonexisting.out"))
		}).NotTo(Panic())
		Expect(p.blocks).To(BeEmpty())
	})

	It("panics on byte salad instead of a profile", func() {
		p := newProfile()
		Expect(func() {
			p.mergeFile(writeProfile("bad.out", "mode: atomic\nbyte salad\n"))
		}).To(Panic())
	})

	It("sums counts in count/atomic mode and ORs them in set mode", func() {
		p := newProfile()
		p.mergeFile(writeProfile("a.out", "mode: count\nf.go:1.1,2.2 3 4\n"))
		p.mergeFile(writeProfile("b.out", "mode: count\nf.go:1.1,2.2 3 5\n"))
		blk := p.blocks["f.go"][position{1, 1, 2, 2}]
		Expect(blk.counts).To(Equal(uint32(9)))

		p = newProfile()
		p.mergeFile(writeProfile("c.out", "mode: set\nf.go:1.1,2.2 3 1\n"))
		p.mergeFile(writeProfile("d.out", "mode: set\nf.go:1.1,2.2 3 1\n"))
		blk = p.blocks["f.go"][position{1, 1, 2, 2}]
		Expect(blk.counts).To(Equal(uint32(1)))
	})

	It("merges child profiles into the parent profile file", func() {
		defer func(od string) { outputDir = od }(outputDir)
		outputDir = tmpdir
		writeProfile("parent.out",
			"mode: count\nf.go:1.1,2.2 3 1\nf.go:5.1,6.2 2 0\n")
		writeProfile("parent.out_0",
			"mode: count\nf.go:1.1,2.2 3 2\ng.go:1.1,2.2 1 7\n")
		mergeAndReportCoverages("parent.out", []string{"parent.out_0"})
		merged, err := os.ReadFile(filepath.Join(tmpdir, "parent.out"))
		Expect(err).NotTo(HaveOccurred())
		Expect(string(merged)).To(Equal(
			"mode: count\n" +
				"f.go:1.1,2.2 3 3\n" +
				"f.go:5.1,6.2 2 0\n" +
				"g.go:1.1,2.2 1 7\n"))
	})

})
