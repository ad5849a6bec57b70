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
	"fmt"
	"io"
	"path/filepath"

	"github.com/julieqiu/versionize/internal/changelog"
	"github.com/urfave/cli/v3"
)

func changelogCommand() *cli.Command {
	return &cli.Command{
		Name:      "changelog",
		Usage:     "print the newest changelog entry",
		UsageText: "versionize changelog [--workdir <dir>] [--html]",
		Description: `Print the changelog entry of the newest release, for use as release
notes.

Example:
  versionize changelog
  versionize changelog --html`,
		Flags: []cli.Flag{
			workdirFlag(),
			&cli.BoolFlag{
				Name:  "html",
				Usage: "render the entry as HTML",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			workdir := cmd.String("workdir")
			cfg, err := loadConfig(workdir)
			if err != nil {
				return err
			}
			return runChangelog(cmd.Root().Writer, filepath.Join(workdir, cfg.Changelog.Path), cmd.Bool("html"))
		},
	}
}

func runChangelog(out io.Writer, path string, html bool) error {
	doc, err := changelog.Read(path)
	if err != nil {
		return err
	}
	if doc == nil {
		return fmt.Errorf("%s: %w", path, changelog.ErrNoRelease)
	}
	entry, err := changelog.Latest(*doc)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if html {
		entry, err = changelog.RenderHTML(entry)
		if err != nil {
			return err
		}
	}
	fmt.Fprint(out, entry)
	return nil
}
