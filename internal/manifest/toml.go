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

package manifest

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

var (
	tomlTableRegex   = regexp.MustCompile(`^\s*\[([^\[\]]+)\]\s*(#.*)?$`)
	tomlVersionRegex = regexp.MustCompile(`^(\s*version\s*=\s*)["'][^"']*["'](.*)$`)
)

type cargoManifest struct {
	Package *struct {
		Name    string `toml:"name"`
		Version any    `toml:"version"`
	} `toml:"package"`
}

var cargo = &kind{
	name:  "Cargo.toml",
	match: func(name string) bool { return name == "Cargo.toml" },
	read: func(data []byte) (string, bool, error) {
		var m cargoManifest
		if err := toml.Unmarshal(data, &m); err != nil {
			return "", false, err
		}
		if m.Package == nil {
			return "", false, nil
		}
		// version.workspace = true decodes to a table.
		v, ok := m.Package.Version.(string)
		return v, ok, nil
	},
	rewrite: func(data []byte, version string) ([]byte, error) {
		return rewriteTOMLVersion(data, []string{"package"}, version)
	},
}

type pyprojectManifest struct {
	Project *struct {
		Version string `toml:"version"`
	} `toml:"project"`
	Tool struct {
		Poetry *struct {
			Version string `toml:"version"`
		} `toml:"poetry"`
	} `toml:"tool"`
}

var pyproject = &kind{
	name:  "pyproject.toml",
	match: func(name string) bool { return name == "pyproject.toml" },
	read: func(data []byte) (string, bool, error) {
		var m pyprojectManifest
		if err := toml.Unmarshal(data, &m); err != nil {
			return "", false, err
		}
		switch {
		case m.Project != nil && m.Project.Version != "":
			return m.Project.Version, true, nil
		case m.Tool.Poetry != nil && m.Tool.Poetry.Version != "":
			return m.Tool.Poetry.Version, true, nil
		}
		return "", false, nil
	},
	rewrite: func(data []byte, version string) ([]byte, error) {
		return rewriteTOMLVersion(data, []string{"project", "tool.poetry"}, version)
	},
}

// rewriteTOMLVersion replaces the version key of the first listed table
// that has one, leaving every other line untouched.
func rewriteTOMLVersion(data []byte, tables []string, version string) ([]byte, error) {
	lines := strings.Split(string(data), "\n")
	for _, table := range tables {
		current := ""
		for i, line := range lines {
			if m := tomlTableRegex.FindStringSubmatch(line); m != nil {
				current = strings.TrimSpace(m[1])
				continue
			}
			if current != table {
				continue
			}
			if m := tomlVersionRegex.FindStringSubmatch(line); m != nil {
				lines[i] = fmt.Sprintf(`%s"%s"%s`, m[1], version, m[2])
				return []byte(strings.Join(lines, "\n")), nil
			}
		}
	}
	return nil, fmt.Errorf("no version line found in [%s]", strings.Join(tables, "] or ["))
}
