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
	"regexp"
	"sort"
	"strconv"
)

// profile is the parsed form of a Go coverage profile data file: the
// coverage mode plus, per source file, the coverage counts keyed by code
// block position.
type profile struct {
	mode   string
	blocks map[string]map[position]*blockdata
}

// position locates a code block within its source file.
type position struct {
	startLine, startCol uint32
	endLine, endCol     uint32
}

// blockdata is the coverage gathered for a single code block.
type blockdata struct {
	stmts  uint32
	counts uint32
}

func newProfile() *profile {
	return &profile{blocks: map[string]map[position]*blockdata{}}
}

// modeRe matches the leading "mode:" line of a coverage profile data file.
var modeRe = regexp.MustCompile(`^mode: ([[:alpha:]]+)$`)

// lineRe matches the coverage block lines of a coverage profile data file,
// of the form "file:startline.startcol,endline.endcol numstmts count".
var lineRe = regexp.MustCompile(`^(.+):([0-9]+)\.([0-9]+),([0-9]+)\.([0-9]+) ([0-9]+) ([0-9]+)$`)

// mergeAndReportCoverages merges the per-child coverage profile data files
// written by re-executed children into the parent's coverage profile data
// file, rewriting the latter in place.
func mergeAndReportCoverages(coverprofile string, childprofiles []string) {
	sum := newProfile()
	sum.mergeFile(toOutputDir(coverprofile))
	for _, childprofile := range childprofiles {
		sum.mergeFile(toOutputDir(childprofile))
	}
	sum.write(toOutputDir(coverprofile))
}

// mergeFile reads the coverage profile data file at path and merges its
// block counts into this profile. A missing file is silently skipped, as a
// re-executed child might not have gotten around to writing its profile.
func (p *profile) mergeFile(path string) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return
		}
		panic(fmt.Sprintf(
			"forkmap/reexec/testing: cannot merge coverage profile %q: %s",
			path, err.Error()))
	}
	defer f.Close()
	scan := bufio.NewScanner(f)
	if !scan.Scan() {
		return
	}
	m := modeRe.FindStringSubmatch(scan.Text())
	if m == nil {
		panic(fmt.Sprintf(
			"forkmap/reexec/testing: %q: line %q does not match the expected mode: line format",
			path, scan.Text()))
	}
	if p.mode == "" {
		p.mode = m[1]
	} else if p.mode != m[1] {
		panic(fmt.Sprintf(
			"forkmap/reexec/testing: %q: coverage mode %q conflicts with mode %q",
			path, m[1], p.mode))
	}
	setmode := p.mode == "set"
	for scan.Scan() {
		line := scan.Text()
		m := lineRe.FindStringSubmatch(line)
		if m == nil {
			panic(fmt.Sprintf(
				"forkmap/reexec/testing: %q: line %q does not match the expected block line format",
				path, line))
		}
		source := p.blocks[m[1]]
		if source == nil {
			source = map[position]*blockdata{}
			p.blocks[m[1]] = source
		}
		pos := position{
			startLine: toUint32(m[2]), startCol: toUint32(m[3]),
			endLine: toUint32(m[4]), endCol: toUint32(m[5]),
		}
		counts := toUint32(m[7])
		if blk, ok := source[pos]; ok {
			if setmode {
				blk.counts |= counts
			} else {
				blk.counts += counts
			}
			continue
		}
		source[pos] = &blockdata{stmts: toUint32(m[6]), counts: counts}
	}
}

// write (re)writes a coverage profile data file from the merged profile,
// with the source files and their blocks in stable order.
func (p *profile) write(path string) {
	f, err := os.Create(path)
	if err != nil {
		panic(fmt.Sprintf(
			"forkmap/reexec/testing: cannot write merged coverage profile %q: %s",
			path, err.Error()))
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	defer w.Flush()
	fmt.Fprintf(w, "mode: %s\n", p.mode)
	sources := make([]string, 0, len(p.blocks))
	for source := range p.blocks {
		sources = append(sources, source)
	}
	sort.Strings(sources)
	for _, source := range sources {
		blocks := p.blocks[source]
		positions := make([]position, 0, len(blocks))
		for pos := range blocks {
			positions = append(positions, pos)
		}
		sort.Slice(positions, func(i, j int) bool {
			pi, pj := positions[i], positions[j]
			if pi.startLine != pj.startLine {
				return pi.startLine < pj.startLine
			}
			return pi.startCol < pj.startCol
		})
		for _, pos := range positions {
			blk := blocks[pos]
			fmt.Fprintf(w, "%s:%d.%d,%d.%d %d %d\n",
				source, pos.startLine, pos.startCol, pos.endLine, pos.endCol,
				blk.stmts, blk.counts)
		}
	}
}

// toUint32 parses a textual count, panicking on anything that is not a valid
// uint32, as coverage profile data is machine-written and not supposed to be
// off.
func toUint32(s string) uint32 {
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		panic(err.Error())
	}
	return uint32(v)
}
