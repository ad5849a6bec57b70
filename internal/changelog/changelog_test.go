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
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/julieqiu/versionize/internal/conventionalcommit"
	"github.com/julieqiu/versionize/internal/semver"
)

type fakeLinks struct {
	tag    bool
	commit bool
}

func (f fakeLinks) VersionTagLink(v semver.Version) string {
	if !f.tag {
		return ""
	}
	return "https://example.com/tag/v" + v.String()
}

func (f fakeLinks) CommitLink(c *conventionalcommit.Commit) string {
	if !f.commit {
		return ""
	}
	return "https://example.com/commit/" + c.SHA
}

var releaseTime = time.Date(2024, 3, 5, 23, 30, 0, 0, time.FixedZone("PST", -8*60*60))

func parse(sha, message string) *conventionalcommit.Commit {
	return conventionalcommit.Parse(message, sha)
}

func TestCompose(t *testing.T) {
	for _, test := range []struct {
		name         string
		version      string
		links        LinkBuilder
		commits      []*conventionalcommit.Commit
		includeOther bool
		want         string
	}{
		{
			name:    "fix with commit link",
			version: "1.2.0",
			links:   fakeLinks{commit: true},
			commits: []*conventionalcommit.Commit{
				parse("abcdef1234567890", "fix(api): handle null"),
			},
			want: `<a name="1_2_0"></a>
## <a id="1_2_0"></a> 1.2.0 (2024-3-5)

### <a id="1_2_0-Bug_Fixes"></a> Bug Fixes

* **api:** handle null ([abcdef1](https://example.com/commit/abcdef1234567890))

`,
		},
		{
			name:    "no links",
			version: "1.2.0",
			commits: []*conventionalcommit.Commit{
				parse("abcdef1234567890", "fix(api): handle null"),
			},
			want: `<a name="1_2_0"></a>
## <a id="1_2_0"></a> 1.2.0 (2024-3-5)

### <a id="1_2_0-Bug_Fixes"></a> Bug Fixes

* **api:** handle null

`,
		},
		{
			name:    "tag link",
			version: "2.0.0-rc.1",
			links:   fakeLinks{tag: true},
			commits: []*conventionalcommit.Commit{
				parse("1111111aaaa", "feat: thing"),
			},
			want: `<a name="2_0_0-rc_1"></a>
## <a id="2_0_0-rc_1"></a> [2.0.0-rc.1](https://example.com/tag/v2.0.0-rc.1) (2024-3-5)

### <a id="2_0_0-rc_1-Features"></a> Features

* thing

`,
		},
		{
			name:    "section order and sorting",
			version: "3.0.0",
			commits: []*conventionalcommit.Commit{
				parse("c1", "feat(b): x"),
				parse("c2", "feat(a): y"),
				parse("c3", "fix: zebra"),
				parse("c4", "fix: apple"),
				parse("c5", "refactor(core)!: rename"),
				parse("c6", "chore: tidy"),
				parse("c7", "feat: unscoped"),
			},
			want: `<a name="3_0_0"></a>
## <a id="3_0_0"></a> 3.0.0 (2024-3-5)

### <a id="3_0_0-Bug_Fixes"></a> Bug Fixes

* apple
* zebra

### <a id="3_0_0-Features"></a> Features

* unscoped
* **a:** y
* **b:** x

### <a id="3_0_0-Breaking_Changes"></a> Breaking Changes

* **core:** rename

`,
		},
		{
			name:    "other section when all commits are included",
			version: "0.2.0",
			commits: []*conventionalcommit.Commit{
				parse("c1", "feat!: new api"),
				parse("c2", "docs: readme"),
				parse("c3", "Merge pull request #4"),
			},
			includeOther: true,
			want: `<a name="0_2_0"></a>
## <a id="0_2_0"></a> 0.2.0 (2024-3-5)

### <a id="0_2_0-Features"></a> Features

* new api

### <a id="0_2_0-Breaking_Changes"></a> Breaking Changes

* new api

### <a id="0_2_0-Other"></a> Other

* Merge pull request #4
* readme

`,
		},
		{
			name:    "no commits",
			version: "0.0.1",
			want: `<a name="0_0_1"></a>
## <a id="0_0_1"></a> 0.0.1 (2024-3-5)

`,
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			got := Compose(semver.MustParse(test.version), releaseTime, test.links, test.commits, test.includeOther)
			if diff := cmp.Diff(test.want, got); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCompose_ScopeOrdering(t *testing.T) {
	commits := []*conventionalcommit.Commit{
		parse("c1", "fix(b): x"),
		parse("c2", "fix(a): y"),
	}
	got := Compose(semver.MustParse("1.0.1"), releaseTime, nil, commits, false)
	want := "* **a:** y\n* **b:** x\n"
	if !strings.Contains(got, want) {
		t.Errorf("Compose() = %q, want substring %q", got, want)
	}
}

func TestCompose_DoesNotReorderInput(t *testing.T) {
	commits := []*conventionalcommit.Commit{
		parse("c1", "fix(b): x"),
		parse("c2", "fix(a): y"),
	}
	Compose(semver.MustParse("1.0.1"), releaseTime, nil, commits, false)
	if commits[0].SHA != "c1" || commits[1].SHA != "c2" {
		t.Errorf("Compose() reordered its input")
	}
}

func TestVersionID(t *testing.T) {
	for _, test := range []struct {
		version string
		want    string
	}{
		{"1.2.0", "1_2_0"},
		{"1.0.0-alpha.1", "1_0_0-alpha_1"},
		{"1.0.0+build.5", "1_0_0+build_5"},
	} {
		if got := VersionID(semver.MustParse(test.version)); got != test.want {
			t.Errorf("VersionID(%q) = %q, want %q", test.version, got, test.want)
		}
	}
}
