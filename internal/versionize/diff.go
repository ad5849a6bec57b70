// Copyright 2025 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package versionize

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// diffContext is the number of unchanged lines shown around a change.
const diffContext = 3

// writeDiff writes a line diff of before and after to w, with additions in
// green and removals in red.
func writeDiff(w io.Writer, name, before, after string) {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	added := color.New(color.FgGreen)
	removed := color.New(color.FgRed)
	fmt.Fprintf(w, "--- %s\n+++ %s\n", name, name)
	for i, d := range diffs {
		text := splitLines(d.Text)
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			for _, line := range text {
				added.Fprintf(w, "+%s\n", line)
			}
		case diffmatchpatch.DiffDelete:
			for _, line := range text {
				removed.Fprintf(w, "-%s\n", line)
			}
		case diffmatchpatch.DiffEqual:
			writeContext(w, text, i > 0, i < len(diffs)-1)
		}
	}
}

// writeContext writes unchanged lines, keeping only diffContext lines next
// to the surrounding changes.
func writeContext(w io.Writer, lines []string, afterChange, beforeChange bool) {
	var head, tail []string
	if afterChange {
		head = lines[:min(diffContext, len(lines))]
		lines = lines[len(head):]
	}
	if beforeChange {
		tail = lines[max(0, len(lines)-diffContext):]
		lines = lines[:len(lines)-len(tail)]
	}
	for _, line := range head {
		fmt.Fprintf(w, " %s\n", line)
	}
	if len(lines) > 0 {
		fmt.Fprintln(w, "@@")
	}
	for _, line := range tail {
		fmt.Fprintf(w, " %s\n", line)
	}
}

func splitLines(s string) []string {
	return strings.Split(strings.TrimSuffix(s, "\n"), "\n")
}
