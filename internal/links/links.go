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

// Package links builds commit and release tag URLs for common git hosting
// providers.
package links

import (
	"net/url"
	"strings"

	"github.com/julieqiu/versionize/internal/changelog"
	"github.com/julieqiu/versionize/internal/conventionalcommit"
	"github.com/julieqiu/versionize/internal/semver"
)

// TagNamer renders the git tag name of a version.
type TagNamer func(v semver.Version) string

// Builder builds links for a repository hosted by a known provider.
type Builder struct {
	// Provider is the hosting provider name, e.g. "github".
	Provider string

	commitFormat string
	tagFormat    string
	tagName      TagNamer
}

// VersionTagLink returns the URL of the tag for v.
func (b *Builder) VersionTagLink(v semver.Version) string {
	return strings.ReplaceAll(b.tagFormat, "{tag}", b.tagName(v))
}

// CommitLink returns the URL of c.
func (b *Builder) CommitLink(c *conventionalcommit.Commit) string {
	return strings.ReplaceAll(b.commitFormat, "{sha}", c.SHA)
}

// None builds no links.
type None struct{}

// VersionTagLink returns "".
func (None) VersionTagLink(semver.Version) string { return "" }

// CommitLink returns "".
func (None) CommitLink(*conventionalcommit.Commit) string { return "" }

// FromRemote returns the link builder for a git remote URL. Remotes that are
// empty or hosted elsewhere get None.
func FromRemote(remote string, tagName TagNamer) changelog.LinkBuilder {
	host, path, ok := splitRemote(remote)
	if !ok {
		return None{}
	}
	if tagName == nil {
		tagName = func(v semver.Version) string { return "v" + v.String() }
	}
	parts := strings.Split(path, "/")

	switch {
	case host == "github.com" && len(parts) == 2:
		base := "https://github.com/" + path
		return &Builder{
			Provider:     "github",
			commitFormat: base + "/commit/{sha}",
			tagFormat:    base + "/releases/tag/{tag}",
			tagName:      tagName,
		}
	case host == "gitlab.com" && len(parts) >= 2:
		base := "https://gitlab.com/" + path
		return &Builder{
			Provider:     "gitlab",
			commitFormat: base + "/-/commit/{sha}",
			tagFormat:    base + "/-/tags/{tag}",
			tagName:      tagName,
		}
	case host == "bitbucket.org" && len(parts) == 2:
		base := "https://bitbucket.org/" + path
		return &Builder{
			Provider:     "bitbucket",
			commitFormat: base + "/commits/{sha}",
			tagFormat:    base + "/src/{tag}",
			tagName:      tagName,
		}
	case host == "dev.azure.com" || host == "ssh.dev.azure.com":
		org, project, repo, ok := azureParts(parts)
		if !ok {
			return None{}
		}
		base := "https://dev.azure.com/" + org + "/" + project + "/_git/" + repo
		return &Builder{
			Provider:     "azure",
			commitFormat: base + "/commit/{sha}",
			tagFormat:    base + "?version=GT{tag}",
			tagName:      tagName,
		}
	default:
		return None{}
	}
}

// splitRemote extracts the host and the repository path, without a trailing
// ".git", from an https, ssh:// or scp-style remote.
func splitRemote(remote string) (host, path string, ok bool) {
	remote = strings.TrimSpace(remote)
	if remote == "" {
		return "", "", false
	}
	if strings.Contains(remote, "://") {
		u, err := url.Parse(remote)
		if err != nil {
			return "", "", false
		}
		host, path = u.Hostname(), u.Path
	} else {
		// git@github.com:owner/repo.git
		at := strings.LastIndex(remote, "@")
		colon := strings.Index(remote, ":")
		if colon == -1 || colon < at {
			return "", "", false
		}
		host, path = remote[at+1:colon], remote[colon+1:]
	}
	path = strings.TrimSuffix(strings.Trim(path, "/"), ".git")
	if host == "" || path == "" {
		return "", "", false
	}
	return strings.ToLower(host), path, true
}

// azureParts handles both https paths (org/project/_git/repo) and ssh paths
// (v3/org/project/repo).
func azureParts(parts []string) (org, project, repo string, ok bool) {
	switch {
	case len(parts) == 4 && parts[2] == "_git":
		return parts[0], parts[1], parts[3], true
	case len(parts) == 4 && parts[0] == "v3":
		return parts[1], parts[2], parts[3], true
	default:
		return "", "", "", false
	}
}
