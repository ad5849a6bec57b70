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

// Package config reads and writes the .versionize.yaml project configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/cbroglie/mustache"
	"github.com/iancoleman/strcase"
	kyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"gopkg.in/yaml.v3"

	"github.com/julieqiu/versionize/internal/semver"
)

// FileName is the name of the configuration file in the working directory.
const FileName = ".versionize.yaml"

// envPrefix prefixes environment variables that override configuration,
// e.g. VERSIONIZE_SKIP_DIRTY or VERSIONIZE_CHANGELOG__PATH.
const envPrefix = "VERSIONIZE_"

var errMissingVersion = errors.New("template must reference {{version}}")

// Config represents the complete .versionize.yaml configuration file.
type Config struct {
	// Changelog contains changelog settings.
	Changelog Changelog `yaml:"changelog"`

	// TagFormat is the mustache template for release tags (e.g., 'v{{version}}').
	TagFormat string `yaml:"tag_format"`

	// CommitMessage is the mustache template for the release commit.
	// Supported variables: version, suffix.
	CommitMessage string `yaml:"commit_message"`

	// CommitSuffix is appended to the release commit message, e.g. "[skip ci]".
	CommitSuffix string `yaml:"commit_suffix,omitempty"`

	// Remote is the git remote used to build changelog links.
	Remote string `yaml:"remote"`

	// SkipDirty allows releasing from a worktree with uncommitted changes.
	SkipDirty bool `yaml:"skip_dirty,omitempty"`

	// SkipCommit leaves the release changes uncommitted.
	SkipCommit bool `yaml:"skip_commit,omitempty"`

	// SkipTag skips creating the release tag.
	SkipTag bool `yaml:"skip_tag,omitempty"`

	// TagOnly derives the current version from the latest release tag
	// instead of project manifests.
	TagOnly bool `yaml:"tag_only,omitempty"`

	// IgnoreInsignificantCommits leaves the version unchanged when no commit
	// is a fix, feature or breaking change.
	IgnoreInsignificantCommits bool `yaml:"ignore_insignificant_commits,omitempty"`

	// ExitInsignificantCommits fails the release when no commit is a fix,
	// feature or breaking change.
	ExitInsignificantCommits bool `yaml:"exit_insignificant_commits,omitempty"`

	// PreRelease is the pre-release label (e.g., "alpha") to release with.
	PreRelease string `yaml:"pre_release,omitempty"`
}

// Changelog contains changelog settings.
type Changelog struct {
	// Path is the changelog file, relative to the working directory.
	Path string `yaml:"path"`

	// Header replaces the default preamble of a new changelog.
	Header string `yaml:"header,omitempty"`

	// IncludeAll adds an "Other" section listing every remaining commit.
	IncludeAll bool `yaml:"include_all,omitempty"`
}

// defaults are loaded before the config file and the environment.
var defaults = map[string]any{
	"changelog.path": "CHANGELOG.md",
	"tag_format":     "v{{version}}",
	"commit_message": "chore(release): {{version}}{{#suffix}} {{suffix}}{{/suffix}}",
	"remote":         "origin",
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Changelog: Changelog{
			Path: defaults["changelog.path"].(string),
		},
		TagFormat:     defaults["tag_format"].(string),
		CommitMessage: defaults["commit_message"].(string),
		Remote:        defaults["remote"].(string),
	}
}

// Read loads the configuration from defaults, the file at path if it exists,
// and VERSIONIZE_ environment variables, in increasing priority.
func Read(path string) (*Config, error) {
	k := koanf.New(".")
	for key, value := range defaults {
		if err := k.Set(key, value); err != nil {
			return nil, fmt.Errorf("failed to set default %s: %w", key, err)
		}
	}

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), kyaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment config: %w", err)
	}

	var c Config
	if err := k.UnmarshalWithConf("", &c, koanf.UnmarshalConf{Tag: "yaml"}); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// envKey maps VERSIONIZE_CHANGELOG__INCLUDE_ALL to changelog.include_all.
func envKey(s string) string {
	parts := strings.Split(strings.TrimPrefix(s, envPrefix), "__")
	for i, p := range parts {
		parts[i] = strcase.ToSnake(p)
	}
	return strings.Join(parts, ".")
}

// Write writes the configuration to a file.
func (c *Config) Write(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	defer enc.Close()

	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	return nil
}

// Validate checks that required settings are present and templates parse.
func (c *Config) Validate() error {
	if c.Changelog.Path == "" {
		return fmt.Errorf("invalid config: changelog.path is empty")
	}
	for name, tmpl := range map[string]string{
		"tag_format":     c.TagFormat,
		"commit_message": c.CommitMessage,
	} {
		if _, err := mustache.ParseString(tmpl); err != nil {
			return fmt.Errorf("invalid config: %s: %w", name, err)
		}
		if !strings.Contains(tmpl, "version}}") {
			return fmt.Errorf("invalid config: %s: %w", name, errMissingVersion)
		}
	}
	return nil
}

// TagName renders the release tag for v.
func (c *Config) TagName(v semver.Version) (string, error) {
	return mustache.Render(c.TagFormat, map[string]string{"version": v.String()})
}

// CommitMessageFor renders the release commit message for v.
func (c *Config) CommitMessageFor(v semver.Version) (string, error) {
	return mustache.Render(c.CommitMessage, map[string]string{
		"version": v.String(),
		"suffix":  c.CommitSuffix,
	})
}
