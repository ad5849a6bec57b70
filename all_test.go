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
	"bytes"
	"go/ast"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"testing"

	"golang.org/x/mod/modfile"
	"golang.org/x/mod/semver"
)

const modulePath = "github.com/julieqiu/versionize"

// minGoVersion is the oldest Go release providing testing.T.Context and
// testing.T.Chdir.
const minGoVersion = "v1.24"

var skippedDirs = []string{".git", "_examples", "testdata"}

var headerRegex = regexp.MustCompile(`\A// Copyright 202\d Google LLC
//
// Licensed under the Apache License, Version 2\.0 \(the "License"\);
(?:// .*\n|//\n)*// limitations under the License\.\n\n[^\n]`)

// walkGoFiles calls fn for every Go source file in the module.
func walkGoFiles(t *testing.T, fn func(path string)) {
	t.Helper()
	err := filepath.WalkDir(".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if slices.Contains(skippedDirs, d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) == ".go" {
			fn(path)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestHeaders(t *testing.T) {
	walkGoFiles(t, func(path string) {
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if !headerRegex.Match(data) {
			t.Errorf("%s: missing license header or not followed by exactly one blank line", path)
		}
		if !bytes.Contains(data, []byte("\npackage ")) {
			t.Errorf("%s: no package clause", path)
		}
	})
}

func TestGoMod(t *testing.T) {
	data, err := os.ReadFile("go.mod")
	if err != nil {
		t.Fatal(err)
	}
	f, err := modfile.Parse("go.mod", data, nil)
	if err != nil {
		t.Fatal(err)
	}
	if f.Module == nil || f.Module.Mod.Path != modulePath {
		t.Errorf("module path = %v, want %q", f.Module, modulePath)
	}
	if f.Go == nil {
		t.Fatal("go.mod has no go directive")
	}
	if goVersion := "v" + f.Go.Version; semver.Compare(goVersion, minGoVersion) < 0 {
		t.Errorf("go directive %s is older than %s", f.Go.Version, minGoVersion)
	}
	if f.Toolchain != nil {
		toolchain := "v" + strings.TrimPrefix(f.Toolchain.Name, "go")
		if semver.Compare(toolchain, "v"+f.Go.Version) < 0 {
			t.Errorf("toolchain %s is older than go %s", f.Toolchain.Name, f.Go.Version)
		}
	}
}

func TestExportedSymbolsHaveDocs(t *testing.T) {
	packageHasComment := make(map[string]bool)
	walkGoFiles(t, func(path string) {
		if strings.HasSuffix(path, "_test.go") {
			return
		}
		file, err := parser.ParseFile(token.NewFileSet(), path, nil, parser.ParseComments)
		if err != nil {
			t.Errorf("failed to parse file %q: %v", path, err)
			return
		}
		pkg := filepath.Dir(path)
		packageHasComment[pkg] = packageHasComment[pkg] || file.Doc != nil

		for _, decl := range file.Decls {
			switch d := decl.(type) {
			case *ast.FuncDecl:
				if d.Recv == nil || exportedReceiver(d.Recv) {
					checkDoc(t, path, d.Name, d.Doc)
				}
			case *ast.GenDecl:
				for _, spec := range d.Specs {
					switch s := spec.(type) {
					case *ast.TypeSpec:
						checkDoc(t, path, s.Name, docOf(d, s.Doc))
					case *ast.ValueSpec:
						for _, name := range s.Names {
							checkDoc(t, path, name, docOf(d, s.Doc))
						}
					}
				}
			}
		}
	})
	for pkg, ok := range packageHasComment {
		if !ok {
			t.Errorf("package %s does not have a package comment", pkg)
		}
	}
}

// docOf returns the comment of a spec, falling back to the comment of the
// declaration group that holds it.
func docOf(gen *ast.GenDecl, doc *ast.CommentGroup) *ast.CommentGroup {
	if doc != nil {
		return doc
	}
	return gen.Doc
}

// exportedReceiver reports whether a method is declared on an exported type.
func exportedReceiver(recv *ast.FieldList) bool {
	typ := recv.List[0].Type
	if star, ok := typ.(*ast.StarExpr); ok {
		typ = star.X
	}
	if index, ok := typ.(*ast.IndexExpr); ok {
		typ = index.X
	}
	ident, ok := typ.(*ast.Ident)
	return ok && ident.IsExported()
}

func checkDoc(t *testing.T, path string, name *ast.Ident, doc *ast.CommentGroup) {
	t.Helper()
	if name.IsExported() && doc == nil {
		t.Errorf("%s: %q is missing doc comment", path, name.Name)
	}
}
