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

package bump

import (
	"errors"
	"testing"

	"github.com/julieqiu/versionize/internal/conventionalcommit"
	"github.com/julieqiu/versionize/internal/semver"
)

func commits(messages ...string) []*conventionalcommit.Commit {
	var out []*conventionalcommit.Commit
	for i, m := range messages {
		out = append(out, conventionalcommit.Parse(m, string(rune('a'+i))+"000000"))
	}
	return out
}

func TestDecide(t *testing.T) {
	for _, test := range []struct {
		name     string
		messages []string
		want     Level
	}{
		{
			name: "no commits",
			want: None,
		},
		{
			name:     "only chores",
			messages: []string{"chore: tidy", "docs: readme", "not conventional"},
			want:     None,
		},
		{
			name:     "fix",
			messages: []string{"chore: tidy", "fix: bug"},
			want:     Patch,
		},
		{
			name:     "feature and fix",
			messages: []string{"feat: thing", "fix: bug"},
			want:     Minor,
		},
		{
			name:     "breaking and feature",
			messages: []string{"feat!: thing", "feat: other"},
			want:     Major,
		},
		{
			name:     "breaking footer on a chore",
			messages: []string{"fix: bug", "chore: drop support\n\nBREAKING CHANGE: removed"},
			want:     Major,
		},
		{
			name:     "breaking last",
			messages: []string{"feat: a", "fix: b", "refactor(x)!: c"},
			want:     Major,
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			if got := Decide(commits(test.messages...)); got != test.want {
				t.Errorf("Decide() = %v, want %v", got, test.want)
			}
		})
	}
}

func TestNextVersion(t *testing.T) {
	for _, test := range []struct {
		name                string
		current             string
		level               Level
		ignoreInsignificant bool
		want                string
		wantErr             error
	}{
		{name: "major", current: "1.2.3", level: Major, want: "2.0.0"},
		{name: "minor", current: "1.2.3", level: Minor, want: "1.3.0"},
		{name: "patch", current: "1.2.3", level: Patch, want: "1.2.4"},
		{name: "none ignored", current: "1.2.3", level: None, ignoreInsignificant: true, want: "1.2.3"},
		{name: "none not ignored", current: "1.2.3", level: None, want: "1.2.3", wantErr: ErrInsignificant},
		{name: "drops prerelease", current: "1.2.3-rc.1+b.7", level: Patch, want: "1.2.4"},
		{name: "major from zero", current: "0.9.9", level: Major, want: "1.0.0"},
	} {
		t.Run(test.name, func(t *testing.T) {
			got, err := NextVersion(semver.MustParse(test.current), test.level, test.ignoreInsignificant)
			if !errors.Is(err, test.wantErr) {
				t.Fatalf("NextVersion() error = %v, want %v", err, test.wantErr)
			}
			if got.String() != test.want {
				t.Errorf("NextVersion() = %q, want %q", got, test.want)
			}
		})
	}
}

func TestNextVersion_Deterministic(t *testing.T) {
	current := semver.MustParse("3.1.4")
	first, _ := NextVersion(current, Minor, false)
	for range 5 {
		got, _ := NextVersion(current, Minor, false)
		if got != first {
			t.Fatalf("NextVersion() = %v, want %v", got, first)
		}
	}
}

func TestNextPrerelease(t *testing.T) {
	for _, test := range []struct {
		name    string
		current string
		level   Level
		label   string
		want    string
	}{
		{name: "start from release", current: "1.2.3", level: Minor, label: "alpha", want: "1.3.0-alpha.0"},
		{name: "advance number", current: "1.3.0-alpha.0", level: Patch, label: "alpha", want: "1.3.0-alpha.1"},
		{name: "minor already covered", current: "1.3.0-alpha.1", level: Minor, label: "alpha", want: "1.3.0-alpha.2"},
		{name: "major not covered", current: "1.3.0-alpha.1", level: Major, label: "alpha", want: "2.0.0-alpha.0"},
		{name: "none on release", current: "1.2.3", level: None, label: "rc", want: "1.2.4-rc.0"},
		{name: "switch label", current: "2.0.0-alpha.3", level: Minor, label: "beta", want: "2.0.0-beta.0"},
		{name: "switch label needs bump", current: "2.0.1-alpha.3", level: Minor, label: "beta", want: "2.1.0-beta.0"},
	} {
		t.Run(test.name, func(t *testing.T) {
			got, err := NextPrerelease(semver.MustParse(test.current), test.level, test.label)
			if err != nil {
				t.Fatal(err)
			}
			if got.String() != test.want {
				t.Errorf("NextPrerelease() = %q, want %q", got, test.want)
			}
		})
	}
}

func TestNextPrerelease_EmptyLabel(t *testing.T) {
	_, err := NextPrerelease(semver.MustParse("1.0.0"), Minor, "")
	if !errors.Is(err, ErrEmptyLabel) {
		t.Errorf("NextPrerelease() error = %v, want %v", err, ErrEmptyLabel)
	}
}

func TestNextRelease(t *testing.T) {
	for _, test := range []struct {
		name    string
		current string
		level   Level
		want    string
	}{
		{name: "release", current: "1.2.3", level: Minor, want: "1.3.0"},
		{name: "graduate minor", current: "1.3.0-alpha.2", level: Minor, want: "1.3.0"},
		{name: "graduate patch", current: "1.3.0-rc.0", level: Patch, want: "1.3.0"},
		{name: "major not covered", current: "1.3.0-alpha.2", level: Major, want: "2.0.0"},
		{name: "major covered", current: "2.0.0-beta.1", level: Major, want: "2.0.0"},
	} {
		t.Run(test.name, func(t *testing.T) {
			got, err := NextRelease(semver.MustParse(test.current), test.level)
			if err != nil {
				t.Fatal(err)
			}
			if got.String() != test.want {
				t.Errorf("NextRelease() = %q, want %q", got, test.want)
			}
		})
	}
}

func TestNextRelease_None(t *testing.T) {
	_, err := NextRelease(semver.MustParse("1.2.3-alpha.0"), None)
	if !errors.Is(err, ErrInsignificant) {
		t.Errorf("got error %v, want %v", err, ErrInsignificant)
	}
}

func TestLevel_String(t *testing.T) {
	for level, want := range map[Level]string{
		None:  "none",
		Patch: "patch",
		Minor: "minor",
		Major: "major",
	} {
		if got := level.String(); got != want {
			t.Errorf("String() = %q, want %q", got, want)
		}
	}
}
