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
	"bytes"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"
)

var errNoVersionFound = errors.New("no version element found")

var packageJSON = &kind{
	name:  "package.json",
	match: func(name string) bool { return name == "package.json" },
	read: func(data []byte) (string, bool, error) {
		v, ok, err := findJSONVersion(data)
		if err != nil || !ok {
			return "", false, err
		}
		return v.value, v.value != "", nil
	},
	rewrite: func(data []byte, version string) ([]byte, error) {
		v, ok, err := findJSONVersion(data)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, errNoVersionFound
		}
		quoted, err := json.Marshal(version)
		if err != nil {
			return nil, err
		}
		return v.replace(data, quoted), nil
	},
}

var msbuild = &kind{
	name: "MSBuild project",
	match: func(name string) bool {
		return slices.Contains([]string{".csproj", ".fsproj", ".vbproj", ".props"}, filepath.Ext(name))
	},
	read: func(data []byte) (string, bool, error) {
		v, ok, err := findMSBuildVersion(data)
		if err != nil || !ok {
			return "", false, err
		}
		return v.value, true, nil
	},
	rewrite: func(data []byte, version string) ([]byte, error) {
		v, ok, err := findMSBuildVersion(data)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, errNoVersionFound
		}
		var escaped bytes.Buffer
		if err := xml.EscapeText(&escaped, []byte(version)); err != nil {
			return nil, err
		}
		return v.replace(data, escaped.Bytes()), nil
	},
}

// span is the byte range of a version value within a manifest.
type span struct {
	start, end int
	value      string
}

func (s span) replace(data, value []byte) []byte {
	b := make([]byte, 0, len(data)-(s.end-s.start)+len(value))
	b = append(b, data[:s.start]...)
	b = append(b, value...)
	return append(b, data[s.end:]...)
}

// findJSONVersion locates the "version" member of the top-level object.
// Members of nested objects are skipped. When the key repeats, the last
// occurrence wins, as it does for json.Unmarshal.
func findJSONVersion(data []byte) (span, bool, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return span{}, false, err
	}
	if tok != json.Delim('{') {
		return span{}, false, fmt.Errorf("expected object, got %v", tok)
	}
	var (
		found span
		ok    bool
	)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return span{}, false, err
		}
		key, _ := tok.(string)
		keyEnd := int(dec.InputOffset())
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return span{}, false, err
		}
		if key != "version" {
			continue
		}
		var value string
		if err := json.Unmarshal(raw, &value); err != nil {
			return span{}, false, fmt.Errorf("version must be a string: %w", err)
		}
		end := int(dec.InputOffset())
		start := keyEnd + bytes.IndexByte(data[keyEnd:end], ':') + 1
		start = end - len(bytes.TrimLeft(data[start:end], " \t\r\n"))
		found, ok = span{start: start, end: end, value: value}, true
	}
	return found, ok, nil
}

// findMSBuildVersion locates the first non-empty Version element that is a
// direct child of a PropertyGroup under the project root. Version elements
// elsewhere, such as PackageReference children, are skipped.
func findMSBuildVersion(data []byte) (span, bool, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	var (
		path  []string
		inner *span
		text  strings.Builder
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return span{}, false, nil
		}
		if err != nil {
			return span{}, false, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			path = append(path, t.Name.Local)
			if len(path) == 3 && path[1] == "PropertyGroup" && path[2] == "Version" {
				off := int(dec.InputOffset())
				inner = &span{start: off, end: off}
				text.Reset()
			}
		case xml.CharData:
			if inner != nil {
				text.Write(t)
				inner.end = int(dec.InputOffset())
			}
		case xml.EndElement:
			if inner != nil && len(path) == 3 {
				if v := strings.TrimSpace(text.String()); v != "" {
					inner.value = v
					return *inner, true, nil
				}
				inner = nil
			}
			path = path[:len(path)-1]
		}
	}
}
