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
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/julieqiu/versionize/internal/bump"
	"github.com/julieqiu/versionize/internal/config"
	"github.com/julieqiu/versionize/internal/conventionalcommit"
	"github.com/julieqiu/versionize/internal/gitrepo"
	"github.com/urfave/cli/v3"
)

func inspectCommand() *cli.Command {
	return &cli.Command{
		Name:      "inspect",
		Usage:     "print the current version",
		UsageText: "versionize inspect [--workdir <dir>] [--commits]",
		Flags: []cli.Flag{
			workdirFlag(),
			&cli.BoolFlag{
				Name:  "commits",
				Usage: "list the commits since the last release and the version they lead to",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			workdir := cmd.String("workdir")
			cfg, err := loadConfig(workdir)
			if err != nil {
				return err
			}
			return runInspect(cmd.Root().Writer, workdir, cfg, cmd.Bool("commits"), time.Now())
		},
	}
}

func runInspect(out io.Writer, workdir string, cfg *config.Config, showCommits bool, now time.Time) error {
	repo, err := gitrepo.Open(workdir)
	if err != nil {
		return err
	}
	tagName := tagNamer(cfg)
	current, _, err := currentVersion(repo, workdir, cfg.TagOnly, tagName)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, current)

	tag, err := repo.LatestVersionTag(tagName)
	if err != nil {
		return err
	}
	if tag != nil {
		fmt.Fprintf(out, "Last release: %s, %s\n", tag.Name, humanize.RelTime(tag.When, now, "ago", "from now"))
	}

	if !showCommits {
		return nil
	}
	records, err := repo.CommitsSince(tagName(current))
	if err != nil {
		return err
	}
	commits := conventionalcommit.ParseAll(records)
	writeCommitTable(out, commits)

	level := bump.Decide(commits)
	next := current
	if level != bump.None {
		next, err = bump.NextRelease(current, level)
		if err != nil {
			return err
		}
	}
	fmt.Fprintf(out, "Increment: %s\nNext version: %s\n", level, next)
	return nil
}

func writeCommitTable(out io.Writer, commits []*conventionalcommit.Commit) {
	tbl := table.NewWriter()
	tbl.SetOutputMirror(out)
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"Commit", "Type", "Scope", "Subject", "Breaking"})
	for _, c := range commits {
		breaking := ""
		if c.IsBreakingChange {
			breaking = "yes"
		}
		tbl.AppendRow(table.Row{c.ShortSHA(), c.Type, c.Scope, c.Subject, breaking})
	}
	tbl.AppendFooter(table.Row{fmt.Sprintf("Total: %d commits", len(commits))})
	tbl.Render()
}
