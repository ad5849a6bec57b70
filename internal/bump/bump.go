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

// Package bump decides how a version changes given a set of classified
// commits.
package bump

import (
	"errors"
	"fmt"

	"github.com/julieqiu/versionize/internal/conventionalcommit"
	"github.com/julieqiu/versionize/internal/semver"
)

// Errors returned while computing the next version.
var (
	// ErrInsignificant is returned by NextVersion when no commit warrants a
	// release and insignificant commits are not ignored. The caller decides
	// what to release instead.
	ErrInsignificant = errors.New("no significant commits")

	// ErrEmptyLabel is returned by NextPrerelease for an empty label.
	ErrEmptyLabel = errors.New("pre-release label must not be empty")
)

// Level is the increment a release applies to a version.
type Level int

const (
	// None means no commit warrants a release.
	None Level = iota
	// Patch increments the patch version.
	Patch
	// Minor increments the minor version.
	Minor
	// Major increments the major version.
	Major
)

// String returns the lowercase name of the level.
func (l Level) String() string {
	switch l {
	case Patch:
		return "patch"
	case Minor:
		return "minor"
	case Major:
		return "major"
	default:
		return "none"
	}
}

// Decide returns the increment warranted by commits. Breaking changes win
// over features, which win over fixes.
func Decide(commits []*conventionalcommit.Commit) Level {
	var hasFeature, hasFix bool
	for _, c := range commits {
		if c.IsBreakingChange {
			return Major
		}
		hasFeature = hasFeature || c.IsFeature()
		hasFix = hasFix || c.IsFix()
	}
	switch {
	case hasFeature:
		return Minor
	case hasFix:
		return Patch
	default:
		return None
	}
}

// NextVersion applies level to current. Increments drop pre-release and
// build metadata.
//
// For None, current is returned unchanged. If ignoreInsignificant is false
// the error is ErrInsignificant so that the caller resolves the release
// explicitly.
func NextVersion(current semver.Version, level Level, ignoreInsignificant bool) (semver.Version, error) {
	switch level {
	case Major:
		return current.IncrementMajor(), nil
	case Minor:
		return current.IncrementMinor(), nil
	case Patch:
		return current.IncrementPatch(), nil
	case None:
		if ignoreInsignificant {
			return current, nil
		}
		return current, ErrInsignificant
	default:
		return current, fmt.Errorf("unknown level %d", level)
	}
}

// NextPrerelease returns the next "label.N" pre-release of current.
//
// When current is already a pre-release of label whose base covers level,
// only the number advances: 1.3.0-alpha.0 with Patch gives 1.3.0-alpha.1.
// Otherwise the base is incremented and numbering restarts at 0. None is
// treated as Patch.
func NextPrerelease(current semver.Version, level Level, label string) (semver.Version, error) {
	if label == "" {
		return current, ErrEmptyLabel
	}
	if l, n, ok := current.PrereleaseNumber(); ok && l == label && covers(current, level) {
		return current.WithPrerelease(label, n+1), nil
	}
	if current.IsPrerelease() && covers(current, level) {
		return current.WithPrerelease(label, 0), nil
	}
	if level == None {
		level = Patch
	}
	next, err := NextVersion(current, level, false)
	if err != nil {
		return current, err
	}
	return next.WithPrerelease(label, 0), nil
}

// NextRelease returns the release that follows current. A pre-release
// whose base already covers level graduates to that base, so
// 1.3.0-alpha.2 with Minor gives 1.3.0. Other versions are incremented as
// by NextVersion.
func NextRelease(current semver.Version, level Level) (semver.Version, error) {
	if current.IsPrerelease() && level != None && covers(current, level) {
		return current.Release(), nil
	}
	return NextVersion(current, level, false)
}

// covers reports whether the release part of a pre-release version already
// reflects an increment of level.
func covers(v semver.Version, level Level) bool {
	switch level {
	case Major:
		return v.Minor == 0 && v.Patch == 0
	case Minor:
		return v.Patch == 0
	default:
		return true
	}
}
