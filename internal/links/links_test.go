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

package links

import (
	"testing"

	"github.com/julieqiu/versionize/internal/conventionalcommit"
	"github.com/julieqiu/versionize/internal/semver"
)

func TestFromRemote(t *testing.T) {
	commit := &conventionalcommit.Commit{SHA: "0123456789abcdef"}
	version := semver.MustParse("1.2.0")

	for _, test := range []struct {
		name       string
		remote     string
		wantCommit string
		wantTag    string
	}{
		{
			name:       "github https",
			remote:     "https://github.com/julieqiu/versionize.git",
			wantCommit: "https://github.com/julieqiu/versionize/commit/0123456789abcdef",
			wantTag:    "https://github.com/julieqiu/versionize/releases/tag/v1.2.0",
		},
		{
			name:       "github ssh",
			remote:     "git@github.com:julieqiu/versionize.git",
			wantCommit: "https://github.com/julieqiu/versionize/commit/0123456789abcdef",
			wantTag:    "https://github.com/julieqiu/versionize/releases/tag/v1.2.0",
		},
		{
			name:       "github ssh url",
			remote:     "ssh://git@github.com/julieqiu/versionize",
			wantCommit: "https://github.com/julieqiu/versionize/commit/0123456789abcdef",
			wantTag:    "https://github.com/julieqiu/versionize/releases/tag/v1.2.0",
		},
		{
			name:       "gitlab subgroup",
			remote:     "https://gitlab.com/group/sub/project.git",
			wantCommit: "https://gitlab.com/group/sub/project/-/commit/0123456789abcdef",
			wantTag:    "https://gitlab.com/group/sub/project/-/tags/v1.2.0",
		},
		{
			name:       "bitbucket",
			remote:     "git@bitbucket.org:team/repo.git",
			wantCommit: "https://bitbucket.org/team/repo/commits/0123456789abcdef",
			wantTag:    "https://bitbucket.org/team/repo/src/v1.2.0",
		},
		{
			name:       "azure https",
			remote:     "https://org@dev.azure.com/org/project/_git/repo",
			wantCommit: "https://dev.azure.com/org/project/_git/repo/commit/0123456789abcdef",
			wantTag:    "https://dev.azure.com/org/project/_git/repo?version=GTv1.2.0",
		},
		{
			name:       "azure ssh",
			remote:     "git@ssh.dev.azure.com:v3/org/project/repo",
			wantCommit: "https://dev.azure.com/org/project/_git/repo/commit/0123456789abcdef",
			wantTag:    "https://dev.azure.com/org/project/_git/repo?version=GTv1.2.0",
		},
		{
			name:   "unknown host",
			remote: "https://git.example.com/team/repo.git",
		},
		{
			name:   "empty",
			remote: "",
		},
		{
			name:   "local path",
			remote: "/srv/git/repo.git",
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			b := FromRemote(test.remote, nil)
			if got := b.CommitLink(commit); got != test.wantCommit {
				t.Errorf("CommitLink() = %q, want %q", got, test.wantCommit)
			}
			if got := b.VersionTagLink(version); got != test.wantTag {
				t.Errorf("VersionTagLink() = %q, want %q", got, test.wantTag)
			}
		})
	}
}

func TestFromRemote_TagNamer(t *testing.T) {
	b := FromRemote("https://github.com/o/r", func(v semver.Version) string {
		return "release-" + v.String()
	})
	want := "https://github.com/o/r/releases/tag/release-2.0.0"
	if got := b.VersionTagLink(semver.MustParse("2.0.0")); got != want {
		t.Errorf("VersionTagLink() = %q, want %q", got, want)
	}
}
