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

// Package conventionalcommit classifies commit messages written in the
// Conventional Commits format.
package conventionalcommit

import (
	"strings"
	"unicode"
)

// Kind is the release-relevant category of a commit type.
type Kind int

const (
	// KindOther is any type that is neither a feature nor a fix, including
	// unparseable headers.
	KindOther Kind = iota
	// KindFeature is the "feat" type.
	KindFeature
	// KindFix is the "fix" type.
	KindFix
)

// String returns the commit type token for the kind.
func (k Kind) String() string {
	switch k {
	case KindFeature:
		return "feat"
	case KindFix:
		return "fix"
	default:
		return "other"
	}
}

// Record is a raw commit as read from version control.
type Record struct {
	SHA     string
	Message string
}

// Note is a footer note, such as a BREAKING CHANGE description.
type Note struct {
	Title string
	Text  string
}

// Commit is a classified commit.
type Commit struct {
	SHA     string
	Type    string // lowercase type token, "other" for unparseable headers
	Kind    Kind
	Scope   string
	Subject string
	Body    string
	Notes   []*Note

	IsBreakingChange bool
}

// IsFeature reports whether the commit is a "feat" commit.
func (c *Commit) IsFeature() bool {
	return c.Kind == KindFeature
}

// IsFix reports whether the commit is a "fix" commit.
func (c *Commit) IsFix() bool {
	return c.Kind == KindFix
}

// ShortSHA returns the first seven characters of the hash.
func (c *Commit) ShortSHA() string {
	if len(c.SHA) > 7 {
		return c.SHA[:7]
	}
	return c.SHA
}

const otherType = "other"

// breakingKeywords are matched case-insensitively at the start of a
// trimmed body or footer line and must be followed by a colon.
var breakingKeywords = []string{
	"BREAKING CHANGES",
	"BREAKING CHANGE",
	"BREAKING-CHANGE",
}

// Parse classifies a raw commit message. It never fails: a header that does
// not follow the conventional format is classified as "other" with the
// whole header as subject.
func Parse(message, sha string) *Commit {
	headerLine, body, _ := strings.Cut(message, "\n")
	headerLine = strings.TrimRight(headerLine, "\r")

	c := &Commit{
		SHA:  sha,
		Body: strings.TrimSpace(body),
	}
	if h, ok := parseHeader(headerLine); ok {
		c.Type = strings.ToLower(h.typ)
		c.Scope = h.scope
		c.Subject = h.subject
		c.IsBreakingChange = h.breaking
	} else {
		c.Type = otherType
		c.Subject = headerLine
	}
	c.Kind = kindOf(c.Type)

	c.Notes = parseNotes(body)
	if len(c.Notes) > 0 {
		c.IsBreakingChange = true
	}
	return c
}

// ParseAll classifies records, preserving their order.
func ParseAll(records []Record) []*Commit {
	commits := make([]*Commit, 0, len(records))
	for _, r := range records {
		commits = append(commits, Parse(r.Message, r.SHA))
	}
	return commits
}

func kindOf(typ string) Kind {
	switch typ {
	case "feat":
		return KindFeature
	case "fix":
		return KindFix
	default:
		return KindOther
	}
}

// header holds the named parts of a conventional commit header:
//
//	type(scope)!: subject
type header struct {
	typ      string
	scope    string
	breaking bool
	subject  string
}

// parseHeader scans a header line. The type is a possibly empty run of word
// characters. The scope, when present, ends at the last ")" that is followed
// by the separator so that scopes may themselves contain parentheses.
func parseHeader(line string) (header, bool) {
	var h header

	end := len(line)
	for i, r := range line {
		if !isWordRune(r) {
			end = i
			break
		}
	}
	h.typ = line[:end]
	rest := line[end:]

	if strings.HasPrefix(rest, "(") {
		closing := -1
		for i := len(rest) - 1; i > 0; i-- {
			if rest[i] == ')' && hasSeparator(rest[i+1:]) {
				closing = i
				break
			}
		}
		if closing == -1 {
			return header{}, false
		}
		h.scope = rest[1:closing]
		rest = rest[closing+1:]
	}

	if strings.HasPrefix(rest, "!") {
		h.breaking = true
		rest = rest[1:]
	}
	if !strings.HasPrefix(rest, ": ") {
		return header{}, false
	}
	h.subject = strings.TrimRightFunc(rest[len(": "):], unicode.IsSpace)
	if h.subject == "" {
		return header{}, false
	}
	return h, true
}

func hasSeparator(s string) bool {
	return strings.HasPrefix(s, ": ") || strings.HasPrefix(s, "!: ")
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// parseNotes collects breaking change notes from the body and footer. A note
// continues on the following lines until a blank line.
func parseNotes(body string) []*Note {
	var (
		notes   []*Note
		current *Note
	)
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			current = nil
			continue
		}
		if title, text, ok := breakingNote(trimmed); ok {
			current = &Note{Title: title, Text: text}
			notes = append(notes, current)
			continue
		}
		if current != nil {
			current.Text = strings.TrimSpace(current.Text + "\n" + trimmed)
		}
	}
	return notes
}

func breakingNote(line string) (title, text string, ok bool) {
	for _, kw := range breakingKeywords {
		if len(line) <= len(kw) || !strings.EqualFold(line[:len(kw)], kw) {
			continue
		}
		if line[len(kw)] != ':' {
			continue
		}
		return kw, strings.TrimSpace(line[len(kw)+1:]), true
	}
	return "", "", false
}
