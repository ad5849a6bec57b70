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

// Package changelog renders release notes from classified commits and merges
// them into a markdown changelog document.
package changelog

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/julieqiu/versionize/internal/conventionalcommit"
	"github.com/julieqiu/versionize/internal/semver"
)

// Preamble is written at the top of a newly created changelog.
const Preamble = `# Change Log

All notable changes to this project will be documented in this file. See [Conventional Commits](https://conventionalcommits.org) for commit guidelines.

`

// LinkBuilder builds hyperlinks for a hosting provider. An empty string means
// no link is available.
type LinkBuilder interface {
	// VersionTagLink returns the URL of the release tag for v.
	VersionTagLink(v semver.Version) string
	// CommitLink returns the URL of c.
	CommitLink(c *conventionalcommit.Commit) string
}

type section struct {
	title string
	match func(c *conventionalcommit.Commit) bool
}

// sections are rendered in this order. The last one is only rendered when
// all commits are included.
var sections = []section{
	{title: "Bug Fixes", match: (*conventionalcommit.Commit).IsFix},
	{title: "Features", match: (*conventionalcommit.Commit).IsFeature},
	{title: "Breaking Changes", match: func(c *conventionalcommit.Commit) bool { return c.IsBreakingChange }},
	{title: "Other", match: isOther},
}

func isOther(c *conventionalcommit.Commit) bool {
	return !c.IsFix() && !c.IsFeature() && !c.IsBreakingChange
}

// VersionID returns the anchor id of v: its string form with dots replaced by
// underscores.
func VersionID(v semver.Version) string {
	return strings.ReplaceAll(v.String(), ".", "_")
}

// Compose renders the changelog block for a release. links may be nil.
func Compose(version semver.Version, t time.Time, links LinkBuilder, commits []*conventionalcommit.Commit, includeOther bool) string {
	if links == nil {
		links = noLinks{}
	}
	id := VersionID(version)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "<a name=\"%s\"></a>\n", id)

	title := version.String()
	if link := links.VersionTagLink(version); link != "" {
		title = fmt.Sprintf("[%s](%s)", version, link)
	}
	fmt.Fprintf(&buf, "## <a id=\"%s\"></a> %s (%d-%d-%d)\n\n", id, title, t.Year(), t.Month(), t.Day())

	for _, s := range sections {
		if s.title == "Other" && !includeOther {
			continue
		}
		var matched []*conventionalcommit.Commit
		for _, c := range commits {
			if s.match(c) {
				matched = append(matched, c)
			}
		}
		if len(matched) == 0 {
			continue
		}
		sort.SliceStable(matched, func(i, j int) bool {
			if matched[i].Scope != matched[j].Scope {
				return matched[i].Scope < matched[j].Scope
			}
			return matched[i].Subject < matched[j].Subject
		})

		fmt.Fprintf(&buf, "### <a id=\"%s-%s\"></a> %s\n\n", id, strings.ReplaceAll(s.title, " ", "_"), s.title)
		for _, c := range matched {
			buf.WriteString(bullet(c, links))
		}
		buf.WriteString("\n")
	}
	return buf.String()
}

func bullet(c *conventionalcommit.Commit, links LinkBuilder) string {
	var b strings.Builder
	b.WriteString("* ")
	if c.Scope != "" {
		fmt.Fprintf(&b, "**%s:** ", c.Scope)
	}
	b.WriteString(c.Subject)
	if link := links.CommitLink(c); link != "" {
		fmt.Fprintf(&b, " ([%s](%s))", c.ShortSHA(), link)
	}
	b.WriteString("\n")
	return b.String()
}

type noLinks struct{}

// VersionTagLink returns "".
func (noLinks) VersionTagLink(semver.Version) string { return "" }

// CommitLink returns "".
func (noLinks) CommitLink(*conventionalcommit.Commit) string { return "" }
