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
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/julieqiu/versionize/internal/semver"
)

// ErrStaleWrite is matched by errors returned when the changelog already
// documents the version being written, or a newer one.
var ErrStaleWrite = errors.New("changelog already up-to-date")

// StaleWriteError reports that the newest release in a changelog is not older
// than the release being written.
type StaleWriteError struct {
	Recorded  semver.Version
	Requested semver.Version
}

// Error implements error.
func (e *StaleWriteError) Error() string {
	return fmt.Sprintf("%v: changelog documents %s, requested %s", ErrStaleWrite, e.Recorded, e.Requested)
}

// Is reports whether target is ErrStaleWrite.
func (e *StaleWriteError) Is(target error) bool {
	return target == ErrStaleWrite
}

var anchorRegex = regexp.MustCompile(`<a name="([^"]*)"></a>`)

// Merge merges a rendered block into an existing changelog document using
// Preamble for new documents. See MergeWithPreamble.
func Merge(existing *string, block string, version semver.Version) (string, error) {
	return MergeWithPreamble(existing, block, version, Preamble)
}

// MergeWithPreamble merges a rendered block for version into existing.
//
// A nil or blank document becomes preamble followed by block. Otherwise the
// block is inserted right before the first release anchor, or appended after a
// blank line when there is none. Existing content is never rewritten.
//
// If the first anchor names a version greater than or equal to version, a
// *StaleWriteError is returned and nothing should be written.
func MergeWithPreamble(existing *string, block string, version semver.Version, preamble string) (string, error) {
	if existing == nil || strings.TrimSpace(*existing) == "" {
		return preamble + block, nil
	}
	doc := *existing

	loc := anchorRegex.FindStringSubmatchIndex(doc)
	if loc == nil {
		return strings.TrimRight(doc, "\n") + "\n\n" + block, nil
	}

	id := doc[loc[2]:loc[3]]
	if recorded, err := semver.Parse(strings.ReplaceAll(id, "_", ".")); err == nil && recorded.Compare(version) >= 0 {
		return doc, &StaleWriteError{Recorded: recorded, Requested: version}
	}
	return doc[:loc[0]] + block + doc[loc[0]:], nil
}

// Read returns the contents of the changelog at path, or nil if it does not
// exist.
func Read(path string) (*string, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading changelog: %w", err)
	}
	s := string(data)
	return &s, nil
}

// Update merges block into the changelog file at path and writes the whole
// file back. It returns false without writing when the changelog already
// documents version or a newer release.
func Update(path, block string, version semver.Version, preamble string) (bool, error) {
	slog.Info("updating changelog", "path", path)

	existing, err := Read(path)
	if err != nil {
		return false, err
	}
	content, err := MergeWithPreamble(existing, block, version, preamble)
	if errors.Is(err, ErrStaleWrite) {
		slog.Info("changelog already up-to-date", "path", path, "version", version.String())
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return false, fmt.Errorf("creating directory for changelog: %w", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return false, fmt.Errorf("writing changelog: %w", err)
	}
	return true, nil
}
