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

// Package semver provides a semantic version value type with parsing,
// precedence ordering and increments.
package semver

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/mod/semver"
)

// ErrInvalidVersion is returned when a string is not a MAJOR.MINOR.PATCH
// semantic version.
var ErrInvalidVersion = errors.New("invalid semantic version")

// Version is a semantic version. The zero value is 0.0.0.
type Version struct {
	Major      int
	Minor      int
	Patch      int
	Prerelease string // without the leading "-"
	Build      string // without the leading "+"
}

// Parse parses MAJOR.MINOR.PATCH[-PRERELEASE][+BUILD]. A leading "v" is
// accepted and dropped.
func Parse(s string) (Version, error) {
	var v Version
	rest := strings.TrimPrefix(strings.TrimSpace(s), "v")
	if rest == "" {
		return v, fmt.Errorf("%w: %q", ErrInvalidVersion, s)
	}
	// semver.IsValid accepts shorthand such as "v1.2"; the split below
	// rejects it.
	if !semver.IsValid("v" + rest) {
		return v, fmt.Errorf("%w: %q", ErrInvalidVersion, s)
	}
	if i := strings.IndexByte(rest, '+'); i != -1 {
		v.Build = rest[i+1:]
		rest = rest[:i]
	}
	if i := strings.IndexByte(rest, '-'); i != -1 {
		v.Prerelease = rest[i+1:]
		rest = rest[:i]
	}
	parts := strings.Split(rest, ".")
	if len(parts) != 3 {
		return Version{}, fmt.Errorf("%w: %q", ErrInvalidVersion, s)
	}
	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return Version{}, fmt.Errorf("%w: %q", ErrInvalidVersion, s)
		}
		nums[i] = n
	}
	v.Major, v.Minor, v.Patch = nums[0], nums[1], nums[2]
	return v, nil
}

// MustParse is like Parse but panics on error. It is intended for tests and
// package-level constants.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// String returns the version without a "v" prefix.
func (v Version) String() string {
	s := fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	if v.Prerelease != "" {
		s += "-" + v.Prerelease
	}
	if v.Build != "" {
		s += "+" + v.Build
	}
	return s
}

// Compare returns -1, 0 or +1 depending on whether v is lower than, equal
// to or greater than o in semver precedence. Build metadata is ignored.
func (v Version) Compare(o Version) int {
	return semver.Compare("v"+v.String(), "v"+o.String())
}

// LessThan reports whether v has lower precedence than o.
func (v Version) LessThan(o Version) bool {
	return v.Compare(o) < 0
}

// IsPrerelease reports whether v carries a pre-release identifier.
func (v Version) IsPrerelease() bool {
	return v.Prerelease != ""
}

// Release returns v without pre-release and build metadata.
func (v Version) Release() Version {
	return Version{Major: v.Major, Minor: v.Minor, Patch: v.Patch}
}

// IncrementMajor returns the next major version.
func (v Version) IncrementMajor() Version {
	return Version{Major: v.Major + 1}
}

// IncrementMinor returns the next minor version.
func (v Version) IncrementMinor() Version {
	return Version{Major: v.Major, Minor: v.Minor + 1}
}

// IncrementPatch returns the next patch version.
func (v Version) IncrementPatch() Version {
	return Version{Major: v.Major, Minor: v.Minor, Patch: v.Patch + 1}
}

// PrereleaseNumber splits a "label.N" pre-release into its label and
// number. ok is false when the pre-release does not have that shape.
func (v Version) PrereleaseNumber() (label string, n int, ok bool) {
	i := strings.LastIndexByte(v.Prerelease, '.')
	if i <= 0 {
		return "", 0, false
	}
	n, err := strconv.Atoi(v.Prerelease[i+1:])
	if err != nil || n < 0 {
		return "", 0, false
	}
	return v.Prerelease[:i], n, true
}

// WithPrerelease returns the release part of v with a "label.n" pre-release.
func (v Version) WithPrerelease(label string, n int) Version {
	r := v.Release()
	r.Prerelease = fmt.Sprintf("%s.%d", label, n)
	return r
}
