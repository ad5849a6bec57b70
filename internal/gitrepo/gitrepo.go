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

// Package gitrepo reads release history from a git repository and records
// new releases in it.
package gitrepo

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
	"github.com/julieqiu/versionize/internal/conventionalcommit"
	"github.com/julieqiu/versionize/internal/semver"
)

const (
	defaultName  = "versionize"
	defaultEmail = "versionize@localhost"
)

// Repository is a git repository opened from a working directory.
type Repository struct {
	repo *git.Repository
	root string
}

// Tag is a tag whose name carries a version.
type Tag struct {
	Name    string
	Version semver.Version
	// Commit is the hash of the tagged commit.
	Commit string
	// When is the tagger time of an annotated tag, or the commit time of a
	// lightweight one.
	When time.Time
}

// Open opens the repository containing dir.
func Open(dir string) (*Repository, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening repository at %s: %w", dir, err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("getting worktree: %w", err)
	}
	return &Repository{repo: repo, root: wt.Filesystem.Root()}, nil
}

// Root returns the top-level directory of the working tree.
func (r *Repository) Root() string {
	return r.root
}

// IsClean reports whether the working tree has no changes to tracked
// files. Untracked files are ignored.
func (r *Repository) IsClean() (bool, error) {
	wt, err := r.repo.Worktree()
	if err != nil {
		return false, fmt.Errorf("getting worktree: %w", err)
	}
	status, err := wt.Status()
	if err != nil {
		return false, fmt.Errorf("getting status: %w", err)
	}
	for path, s := range status {
		if s.Worktree == git.Untracked && s.Staging == git.Untracked {
			continue
		}
		if s.Worktree != git.Unmodified || s.Staging != git.Unmodified {
			slog.Debug("uncommitted change", "path", path)
			return false, nil
		}
	}
	return true, nil
}

// CommitsSince returns the commits reachable from HEAD but not from tag,
// newest first. An empty or unknown tag returns the whole history.
func (r *Repository) CommitsSince(tag string) ([]conventionalcommit.Record, error) {
	head, err := r.repo.Head()
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting HEAD reference: %w", err)
	}

	excluded := map[plumbing.Hash]bool{}
	if tag != "" {
		from, err := r.tagCommit(tag)
		switch {
		case errors.Is(err, git.ErrTagNotFound):
			slog.Info("tag not found, reading full history", "tag", tag)
		case err != nil:
			return nil, err
		default:
			if err := r.walk(from, func(c *object.Commit) error {
				excluded[c.Hash] = true
				return nil
			}); err != nil {
				return nil, err
			}
		}
	}

	var records []conventionalcommit.Record
	err = r.walk(head.Hash(), func(c *object.Commit) error {
		if excluded[c.Hash] {
			return nil
		}
		records = append(records, conventionalcommit.Record{
			SHA:     c.Hash.String(),
			Message: c.Message,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	slog.Debug("read commits", "since", tag, "count", len(records))
	return records, nil
}

func (r *Repository) walk(from plumbing.Hash, fn func(*object.Commit) error) error {
	iter, err := r.repo.Log(&git.LogOptions{
		From:  from,
		Order: git.LogOrderCommitterTime,
	})
	if err != nil {
		return fmt.Errorf("reading log from %s: %w", from, err)
	}
	defer iter.Close()
	if err := iter.ForEach(fn); err != nil && !errors.Is(err, storer.ErrStop) {
		return fmt.Errorf("reading log from %s: %w", from, err)
	}
	return nil
}

// tagCommit returns the hash of the commit a tag points to.
func (r *Repository) tagCommit(name string) (plumbing.Hash, error) {
	ref, err := r.repo.Tag(name)
	if err != nil {
		return plumbing.ZeroHash, err
	}
	obj, err := r.repo.TagObject(ref.Hash())
	switch {
	case errors.Is(err, plumbing.ErrObjectNotFound):
		return ref.Hash(), nil
	case err != nil:
		return plumbing.ZeroHash, fmt.Errorf("reading tag %s: %w", name, err)
	}
	c, err := obj.Commit()
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("reading tag %s: %w", name, err)
	}
	return c.Hash, nil
}

// LatestVersionTag returns the tag with the highest version among tags
// whose name format renders from their own version. It returns nil if no
// tag matches.
func (r *Repository) LatestVersionTag(format func(semver.Version) string) (*Tag, error) {
	iter, err := r.repo.Tags()
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}
	defer iter.Close()

	var latest *Tag
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		name := ref.Name().Short()
		i := strings.IndexAny(name, "0123456789")
		if i < 0 {
			return nil
		}
		v, err := semver.Parse(name[i:])
		if err != nil || format(v) != name {
			return nil
		}
		if latest != nil && !latest.Version.LessThan(v) {
			return nil
		}
		t, err := r.describeTag(ref, v)
		if err != nil {
			return err
		}
		latest = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return latest, nil
}

func (r *Repository) describeTag(ref *plumbing.Reference, v semver.Version) (*Tag, error) {
	t := &Tag{Name: ref.Name().Short(), Version: v}
	if obj, err := r.repo.TagObject(ref.Hash()); err == nil {
		c, err := obj.Commit()
		if err != nil {
			return nil, fmt.Errorf("reading tag %s: %w", t.Name, err)
		}
		t.Commit = c.Hash.String()
		t.When = obj.Tagger.When
		return t, nil
	}
	c, err := r.repo.CommitObject(ref.Hash())
	if err != nil {
		return nil, fmt.Errorf("reading tag %s: %w", t.Name, err)
	}
	t.Commit = c.Hash.String()
	t.When = c.Committer.When
	return t, nil
}

// TagExists reports whether a tag named name exists.
func (r *Repository) TagExists(name string) (bool, error) {
	_, err := r.repo.Tag(name)
	if errors.Is(err, git.ErrTagNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("looking up tag %s: %w", name, err)
	}
	return true, nil
}

// RemoteURL returns the first URL of the named remote, or "" if the remote
// does not exist.
func (r *Repository) RemoteURL(name string) (string, error) {
	remote, err := r.repo.Remote(name)
	if errors.Is(err, git.ErrRemoteNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("looking up remote %s: %w", name, err)
	}
	urls := remote.Config().URLs
	if len(urls) == 0 {
		return "", nil
	}
	return urls[0], nil
}

// Add stages paths. Absolute paths must be inside the working tree.
func (r *Repository) Add(paths ...string) error {
	wt, err := r.repo.Worktree()
	if err != nil {
		return fmt.Errorf("getting worktree: %w", err)
	}
	for _, p := range paths {
		if filepath.IsAbs(p) {
			rel, err := filepath.Rel(r.root, p)
			if err != nil {
				return fmt.Errorf("staging %s: %w", p, err)
			}
			p = rel
		}
		if _, err := wt.Add(filepath.ToSlash(p)); err != nil {
			return fmt.Errorf("staging %s: %w", p, err)
		}
	}
	return nil
}

// Commit records the staged changes and returns the new commit hash.
func (r *Repository) Commit(message string) (string, error) {
	wt, err := r.repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("getting worktree: %w", err)
	}
	hash, err := wt.Commit(message, &git.CommitOptions{Author: r.signature()})
	if err != nil {
		return "", fmt.Errorf("committing: %w", err)
	}
	slog.Info("created commit", "hash", hash.String(), "message", message)
	return hash.String(), nil
}

// CreateTag creates an annotated tag named name on the commit sha.
func (r *Repository) CreateTag(name, sha, message string) error {
	_, err := r.repo.CreateTag(name, plumbing.NewHash(sha), &git.CreateTagOptions{
		Tagger:  r.signature(),
		Message: message,
	})
	if err != nil {
		return fmt.Errorf("creating tag %s: %w", name, err)
	}
	slog.Info("created tag", "tag", name, "commit", sha)
	return nil
}

// signature returns the configured user, or a placeholder identity when
// git has none.
func (r *Repository) signature() *object.Signature {
	sig := &object.Signature{
		Name:  defaultName,
		Email: defaultEmail,
		When:  time.Now(),
	}
	cfg, err := r.repo.ConfigScoped(config.SystemScope)
	if err != nil {
		slog.Debug("reading git config", "error", err)
		return sig
	}
	if cfg.User.Name != "" && cfg.User.Email != "" {
		sig.Name = cfg.User.Name
		sig.Email = cfg.User.Email
	}
	return sig
}
