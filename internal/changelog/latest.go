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

package changelog

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/renderer/html"
)

// ErrNoRelease is returned by Latest when a document has no release block.
var ErrNoRelease = errors.New("changelog has no release")

// Latest returns the newest release block of document, from its anchor up
// to the next release anchor.
func Latest(document string) (string, error) {
	locs := anchorRegex.FindAllStringIndex(document, 2)
	if len(locs) == 0 {
		return "", ErrNoRelease
	}
	end := len(document)
	if len(locs) > 1 {
		end = locs[1][0]
	}
	return strings.TrimRight(document[locs[0][0]:end], " \t\r\n") + "\n", nil
}

// RenderHTML converts a markdown fragment to HTML, keeping the raw anchor
// tags.
func RenderHTML(markdown string) (string, error) {
	md := goldmark.New(goldmark.WithRendererOptions(html.WithUnsafe()))
	var buf bytes.Buffer
	if err := md.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	return buf.String(), nil
}
