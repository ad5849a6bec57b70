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

// Package manifest finds project manifests that carry a version and updates
// them on release.
package manifest

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/julieqiu/versionize/internal/semver"
)

// Sentinel errors for project discovery.
var (
	// ErrNoProjects is returned when no versioned manifest is found.
	ErrNoProjects = errors.New("no versionable projects found")

	// ErrVersionMismatch is returned when projects carry different versions.
	ErrVersionMismatch = errors.New("projects have different versions")
)

// skippedDirs are never searched for manifests.
var skippedDirs = []string{
	".git",
	"bin",
	"node_modules",
	"obj",
	"target",
	"vendor",
}

// Project is a manifest file that records a version.
type Project interface {
	// Path is the manifest file path.
	Path() string
	// Version is the version recorded in the manifest.
	Version() semver.Version
	// WriteVersion rewrites the manifest with v.
	WriteVersion(v semver.Version) error
}

// kind reads and rewrites the version of one manifest format.
type kind struct {
	name string
	// match reports whether a file name is a manifest of this kind.
	match func(name string) bool
	// read returns the version in data. ok is false if the manifest has
	// no version of its own.
	read func(data []byte) (version string, ok bool, err error)
	// rewrite returns data with the version replaced.
	rewrite func(data []byte, version string) ([]byte, error)
}

var kinds = []*kind{cargo, pyproject, packageJSON, msbuild}

type project struct {
	path    string
	kind    *kind
	version semver.Version
}

// Path returns the manifest file path.
func (p *project) Path() string {
	return p.path
}

// Version returns the version recorded in the manifest.
func (p *project) Version() semver.Version {
	return p.version
}

// WriteVersion rewrites the manifest with v.
func (p *project) WriteVersion(v semver.Version) error {
	slog.Info("updating version", "path", p.path, "old", p.version.String(), "new", v.String())
	data, err := os.ReadFile(p.path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", p.path, err)
	}
	updated, err := p.kind.rewrite(data, v.String())
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", p.path, err)
	}
	if err := os.WriteFile(p.path, updated, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", p.path, err)
	}
	p.version = v
	return nil
}

// Discover walks dir and returns every manifest that records a version.
func Discover(dir string) ([]Project, error) {
	var projects []Project
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && slices.Contains(skippedDirs, d.Name()) {
				return fs.SkipDir
			}
			return nil
		}
		for _, k := range kinds {
			if !k.match(d.Name()) {
				continue
			}
			p, err := load(path, k)
			if err != nil {
				return err
			}
			if p != nil {
				projects = append(projects, p)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("discovering projects: %w", err)
	}
	return projects, nil
}

func load(path string, k *kind) (*project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	raw, ok, err := k.read(data)
	if err != nil {
		return nil, fmt.Errorf("reading %s %s: %w", k.name, path, err)
	}
	if !ok {
		slog.Debug("skipping manifest without version", "path", path)
		return nil, nil
	}
	v, err := semver.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("reading %s %s: %w", k.name, path, err)
	}
	return &project{path: path, kind: k, version: v}, nil
}

// Common returns the version shared by all projects.
func Common(projects []Project) (semver.Version, error) {
	if len(projects) == 0 {
		return semver.Version{}, ErrNoProjects
	}
	want := projects[0].Version()
	var mismatched []string
	for _, p := range projects[1:] {
		if p.Version().String() != want.String() {
			mismatched = append(mismatched, fmt.Sprintf("%s (%s)", p.Path(), p.Version()))
		}
	}
	if len(mismatched) > 0 {
		return semver.Version{}, fmt.Errorf("%w: %s is %s but %s", ErrVersionMismatch,
			projects[0].Path(), want, strings.Join(mismatched, ", "))
	}
	return want, nil
}
