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

// Command versionize releases a project from its conventional commits.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/julieqiu/versionize/internal/versionize"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := versionize.Run(ctx, os.Args); err != nil {
		stop()
		fmt.Fprintf(os.Stderr, "versionize: %v\n", err)
		os.Exit(1)
	}
}
