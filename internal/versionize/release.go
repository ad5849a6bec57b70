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

package versionize

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/julieqiu/versionize/internal/bump"
	"github.com/julieqiu/versionize/internal/changelog"
	"github.com/julieqiu/versionize/internal/config"
	"github.com/julieqiu/versionize/internal/conventionalcommit"
	"github.com/julieqiu/versionize/internal/gitrepo"
	"github.com/julieqiu/versionize/internal/links"
	"github.com/julieqiu/versionize/internal/manifest"
	"github.com/julieqiu/versionize/internal/semver"
	"github.com/urfave/cli/v3"
)

func releaseCommand() *cli.Command {
	return &cli.Command{
		Name:      "release",
		Usage:     "bump the version, update the changelog, commit and tag",
		UsageText: "versionize release [options]",
		Description: `Release the project in the working directory.

The current version is read from the project manifests (Cargo.toml,
pyproject.toml, package.json, *.csproj), or from the latest release tag
with --tag-only. Commits since the tag of the current version decide the
increment: breaking changes bump major, features minor, fixes patch.

Example:
  versionize release
  versionize release --dry-run
  versionize release --release-as 2.0.0
  versionize release --pre-release alpha`,
		Flags:  releaseFlags(false),
		Action: releaseAction,
	}
}

func releaseFlags(local bool) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "workdir",
			Aliases: []string{"w"},
			Usage:   "project directory",
			Value:   ".",
			Local:   local,
		},
		&cli.BoolFlag{
			Name:    "dry-run",
			Aliases: []string{"d"},
			Usage:   "print the changes without writing them",
			Local:   local,
		},
		&cli.BoolFlag{
			Name:  "skip-dirty",
			Usage: "allow uncommitted changes in the working tree",
			Local: local,
		},
		&cli.StringFlag{
			Name:    "release-as",
			Aliases: []string{"r"},
			Usage:   "release this version instead of the derived one",
			Local:   local,
		},
		&cli.BoolFlag{
			Name:    "ignore-insignificant-commits",
			Aliases: []string{"i"},
			Usage:   "do nothing when no commit is a fix, feature or breaking change",
			Local:   local,
		},
		&cli.BoolFlag{
			Name:  "exit-insignificant-commits",
			Usage: "fail when no commit is a fix, feature or breaking change",
			Local: local,
		},
		&cli.BoolFlag{
			Name:  "changelog-all",
			Usage: "list every commit in the changelog",
			Local: local,
		},
		&cli.BoolFlag{
			Name:  "skip-commit",
			Usage: "write the changes without committing or tagging",
			Local: local,
		},
		&cli.BoolFlag{
			Name:  "skip-tag",
			Usage: "commit the changes without tagging",
			Local: local,
		},
		&cli.BoolFlag{
			Name:  "tag-only",
			Usage: "read the current version from tags instead of manifests",
			Local: local,
		},
		&cli.StringFlag{
			Name:    "pre-release",
			Aliases: []string{"p"},
			Usage:   "release a pre-release with this label, e.g. alpha",
			Local:   local,
		},
		&cli.StringFlag{
			Name:  "commit-suffix",
			Usage: "suffix for the release commit message, e.g. [skip ci]",
			Local: local,
		},
	}
}

func releaseAction(ctx context.Context, cmd *cli.Command) error {
	workdir := cmd.String("workdir")
	cfg, err := loadConfig(workdir)
	if err != nil {
		return err
	}
	applyReleaseFlags(cmd, cfg)
	return runRelease(ctx, &releaseOptions{
		workdir:   workdir,
		dryRun:    cmd.Bool("dry-run"),
		releaseAs: cmd.String("release-as"),
		cfg:       cfg,
		out:       cmd.Root().Writer,
	})
}

// applyReleaseFlags overrides configuration values with the flags that were
// set on the command line.
func applyReleaseFlags(cmd *cli.Command, cfg *config.Config) {
	for name, field := range map[string]*bool{
		"skip-dirty":                   &cfg.SkipDirty,
		"ignore-insignificant-commits": &cfg.IgnoreInsignificantCommits,
		"exit-insignificant-commits":   &cfg.ExitInsignificantCommits,
		"changelog-all":                &cfg.Changelog.IncludeAll,
		"skip-commit":                  &cfg.SkipCommit,
		"skip-tag":                     &cfg.SkipTag,
		"tag-only":                     &cfg.TagOnly,
	} {
		if cmd.IsSet(name) {
			*field = cmd.Bool(name)
		}
	}
	for name, field := range map[string]*string{
		"pre-release":   &cfg.PreRelease,
		"commit-suffix": &cfg.CommitSuffix,
	} {
		if cmd.IsSet(name) {
			*field = cmd.String(name)
		}
	}
}

type releaseOptions struct {
	workdir   string
	dryRun    bool
	releaseAs string
	cfg       *config.Config
	out       io.Writer
	// now returns the release date. It defaults to time.Now.
	now func() time.Time
}

func runRelease(ctx context.Context, opts *releaseOptions) error {
	cfg := opts.cfg
	if opts.now == nil {
		opts.now = time.Now
	}
	success := color.New(color.FgGreen)

	repo, err := gitrepo.Open(opts.workdir)
	if err != nil {
		return err
	}
	if !cfg.SkipDirty {
		clean, err := repo.IsClean()
		if err != nil {
			return err
		}
		if !clean {
			return fmt.Errorf("%w in %s, commit them or use --skip-dirty", ErrDirtyRepository, repo.Root())
		}
	}

	tagName := tagNamer(cfg)
	current, projects, err := currentVersion(repo, opts.workdir, cfg.TagOnly, tagName)
	if err != nil {
		return err
	}

	records, err := repo.CommitsSince(tagName(current))
	if err != nil {
		return err
	}
	commits := conventionalcommit.ParseAll(records)
	slog.Info("read commits since last release", "version", current.String(), "count", len(commits))

	next, ok, err := nextVersion(current, commits, opts.releaseAs, cfg)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintf(opts.out, "Version was not affected by commits since the last release (%s), no-op\n", current)
		return nil
	}

	tag := tagName(next)
	if !cfg.SkipCommit && !cfg.SkipTag {
		exists, err := repo.TagExists(tag)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("%w: %s", ErrTagExists, tag)
		}
	}

	remote, err := repo.RemoteURL(cfg.Remote)
	if err != nil {
		return err
	}
	block := changelog.Compose(next, opts.now(), links.FromRemote(remote, tagName), commits, cfg.Changelog.IncludeAll)
	changelogPath := filepath.Join(opts.workdir, cfg.Changelog.Path)
	preamble := cfg.Changelog.Header
	if preamble == "" {
		preamble = changelog.Preamble
	}

	if opts.dryRun {
		return previewRelease(opts.out, changelogPath, block, preamble, current, next, projects)
	}

	var changed []string
	for _, p := range projects {
		if err := p.WriteVersion(next); err != nil {
			return err
		}
		changed = append(changed, p.Path())
	}
	if cfg.TagOnly {
		success.Fprintf(opts.out, "✓ Bumping version from %s to %s (tag only)\n", current, next)
	} else {
		success.Fprintf(opts.out, "✓ Bumped version from %s to %s in %d projects\n", current, next, len(projects))
	}

	written, err := changelog.Update(changelogPath, block, next, preamble)
	if err != nil {
		return err
	}
	if written {
		changed = append(changed, changelogPath)
		success.Fprintf(opts.out, "✓ Updated %s\n", cfg.Changelog.Path)
	} else {
		fmt.Fprintf(opts.out, "%s already up-to-date\n", cfg.Changelog.Path)
	}

	if cfg.SkipCommit {
		fmt.Fprintln(opts.out, "Skipped commit and tag")
		return nil
	}
	if len(changed) == 0 {
		fmt.Fprintln(opts.out, "Nothing to commit")
		return nil
	}
	if err := repo.Add(changed...); err != nil {
		return err
	}
	message, err := cfg.CommitMessageFor(next)
	if err != nil {
		return fmt.Errorf("rendering commit message: %w", err)
	}
	sha, err := repo.Commit(message)
	if err != nil {
		return err
	}
	success.Fprintf(opts.out, "✓ Committed %q\n", message)

	if cfg.SkipTag {
		return nil
	}
	if err := repo.CreateTag(tag, sha, tag); err != nil {
		return err
	}
	success.Fprintf(opts.out, "✓ Tagged release as %s\n", tag)
	return nil
}

// currentVersion returns the version to release from and, unless tagOnly is
// set, the projects that carry it.
func currentVersion(repo *gitrepo.Repository, workdir string, tagOnly bool, tagName links.TagNamer) (semver.Version, []manifest.Project, error) {
	if tagOnly {
		tag, err := repo.LatestVersionTag(tagName)
		if err != nil {
			return semver.Version{}, nil, err
		}
		if tag == nil {
			slog.Info("no release tag found, starting from 0.0.0")
			return semver.Version{}, nil, nil
		}
		return tag.Version, nil, nil
	}
	projects, err := manifest.Discover(workdir)
	if err != nil {
		return semver.Version{}, nil, err
	}
	current, err := manifest.Common(projects)
	if err != nil {
		return semver.Version{}, nil, err
	}
	return current, projects, nil
}

// nextVersion decides the version to release. ok is false when the release
// is skipped because no commit is significant.
func nextVersion(current semver.Version, commits []*conventionalcommit.Commit, releaseAs string, cfg *config.Config) (next semver.Version, ok bool, err error) {
	if releaseAs != "" {
		v, err := semver.Parse(releaseAs)
		if err != nil {
			return current, false, fmt.Errorf("invalid --release-as: %w", err)
		}
		if !current.LessThan(v) {
			return current, false, fmt.Errorf("%w: %s is not greater than %s", ErrVersionNotGreater, v, current)
		}
		return v, true, nil
	}

	level := bump.Decide(commits)
	next, err = bump.NextVersion(current, level, cfg.IgnoreInsignificantCommits)
	switch {
	case errors.Is(err, bump.ErrInsignificant):
		if cfg.ExitInsignificantCommits {
			return current, false, ErrNoSignificantCommits
		}
		slog.Info("no significant commits, releasing a patch", "version", current.String())
		level = bump.Patch
	case err != nil:
		return current, false, err
	case level == bump.None:
		return current, false, nil
	}

	if cfg.PreRelease != "" {
		next, err = bump.NextPrerelease(current, level, cfg.PreRelease)
	} else {
		next, err = bump.NextRelease(current, level)
	}
	if err != nil {
		return current, false, err
	}
	slog.Info("derived next version", "level", level.String(), "current", current.String(), "next", next.String())
	return next, true, nil
}

// previewRelease prints what a release would change without writing it.
func previewRelease(out io.Writer, changelogPath, block, preamble string, current, next semver.Version, projects []manifest.Project) error {
	fmt.Fprintf(out, "Would bump version from %s to %s\n", current, next)
	for _, p := range projects {
		fmt.Fprintf(out, "  %s\n", p.Path())
	}

	existing, err := changelog.Read(changelogPath)
	if err != nil {
		return err
	}
	merged, err := changelog.MergeWithPreamble(existing, block, next, preamble)
	if errors.Is(err, changelog.ErrStaleWrite) {
		fmt.Fprintf(out, "%s already up-to-date\n", changelogPath)
		return nil
	}
	if err != nil {
		return err
	}
	before := ""
	if existing != nil {
		before = *existing
	}
	writeDiff(out, changelogPath, before, merged)
	return nil
}

// tagNamer renders release tags with the configured tag format.
func tagNamer(cfg *config.Config) links.TagNamer {
	return func(v semver.Version) string {
		name, err := cfg.TagName(v)
		if err != nil {
			slog.Warn("invalid tag format, using the default", "format", cfg.TagFormat, "error", err)
			return "v" + v.String()
		}
		return name
	}
}
