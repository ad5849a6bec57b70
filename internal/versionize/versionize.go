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

// Package versionize implements the versionize command line tool, which
// derives the next release from conventional commits, updates project
// manifests and the changelog, and records the release in git.
package versionize

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/julieqiu/versionize/internal/config"
	"github.com/urfave/cli/v3"
)

// Sentinel errors for releases.
var (
	// ErrDirtyRepository is returned when the working tree has uncommitted
	// changes and dirty releases are not allowed.
	ErrDirtyRepository = errors.New("repository has uncommitted changes")

	// ErrNoSignificantCommits is returned when no commit warrants a release
	// and exit_insignificant_commits is set.
	ErrNoSignificantCommits = errors.New("no significant commits since the last release")

	// ErrVersionNotGreater is returned when --release-as is not greater than
	// the current version.
	ErrVersionNotGreater = errors.New("release version must be greater than the current version")

	// ErrTagExists is returned when the tag of the next version already
	// exists.
	ErrTagExists = errors.New("release tag already exists")

	errConfigAlreadyExists = errors.New(config.FileName + " already exists")
)

// Run executes the versionize command with the given arguments.
func Run(ctx context.Context, args []string) error {
	cmd := &cli.Command{
		Name:      "versionize",
		Usage:     "release projects from conventional commits",
		UsageText: "versionize [command] [options]",
		Description: `Without a command, versionize runs a release: it reads the current
version, derives the next one from the commits since the last release,
updates manifests and the changelog, then commits and tags the result.`,
		Version: Version(),
		Flags: append(releaseFlags(true), &cli.BoolFlag{
			Name:  "verbose",
			Usage: "log debug output",
		}),
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			if cmd.Bool("verbose") {
				slog.SetLogLoggerLevel(slog.LevelDebug)
			}
			return ctx, nil
		},
		Action: releaseAction,
		Commands: []*cli.Command{
			releaseCommand(),
			inspectCommand(),
			changelogCommand(),
			initCommand(),
			versionCommand(),
		},
	}

	return cmd.Run(ctx, args)
}

// workdirFlag is shared by every command that operates on a project.
func workdirFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "workdir",
		Aliases: []string{"w"},
		Usage:   "project directory",
		Value:   ".",
	}
}

// loadConfig reads the configuration of the project in workdir.
func loadConfig(workdir string) (*config.Config, error) {
	cfg, err := config.Read(filepath.Join(workdir, config.FileName))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// versionCommand prints the version information.
func versionCommand() *cli.Command {
	return &cli.Command{
		Name:      "version",
		Usage:     "print the version",
		UsageText: "versionize version",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			fmt.Fprintf(cmd.Root().Writer, "versionize version %s\n", Version())
			return nil
		},
	}
}

// initCommand writes a default configuration file.
func initCommand() *cli.Command {
	return &cli.Command{
		Name:      "init",
		Usage:     "create " + config.FileName + " with default settings",
		UsageText: "versionize init [--workdir <dir>]",
		Flags:     []cli.Flag{workdirFlag()},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runInit(cmd.String("workdir"), cmd.Root().Writer)
		},
	}
}

func runInit(workdir string, out io.Writer) error {
	path := filepath.Join(workdir, config.FileName)
	if _, err := os.Stat(path); err == nil {
		return errConfigAlreadyExists
	}

	if err := config.Default().Write(path); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	color.New(color.FgGreen).Fprintf(out, "✓ Created %s\n", path)
	return nil
}
