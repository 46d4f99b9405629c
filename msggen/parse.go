// Copyright 2025 JC-Lab.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package msggen parses ROS message and service definition files and
// generates Go source for typed message descriptors. The md5sum and
// full-definition texts it computes are exactly the values the TCPROS
// connection header transports as type identity.
package msggen

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	logging "github.com/ipfs/go-log/v2"
	"github.com/pkg/errors"

	"github.com/robokit/rostcp/rospkg"
)

var log = logging.Logger("msggen")

var builtinTypes = map[string]bool{
	"bool": true, "byte": true, "char": true,
	"int8": true, "uint8": true, "int16": true, "uint16": true,
	"int32": true, "uint32": true, "int64": true, "uint64": true,
	"float32": true, "float64": true,
	"string": true, "time": true, "duration": true,
}

// Type is one resolved field type reference. Package is empty for
// builtins.
type Type struct {
	Package  string
	Name     string
	IsArray  bool
	ArrayLen int // 0 when the array is variable-length
}

// IsBuiltin reports whether the type is a ROS primitive.
func (t Type) IsBuiltin() bool { return t.Package == "" }

// Key returns the "package/Name" form used to look the type up.
func (t Type) Key() string { return t.Package + "/" + t.Name }

// String renders the type in definition-file spelling, array suffix
// included.
func (t Type) String() string {
	s := t.Name
	if !t.IsBuiltin() {
		s = t.Package + "/" + t.Name
	}
	if t.IsArray {
		if t.ArrayLen > 0 {
			return fmt.Sprintf("%s[%d]", s, t.ArrayLen)
		}
		return s + "[]"
	}
	return s
}

// Field is one "type name" entry of a message definition.
type Field struct {
	Type Type
	Name string
}

// Constant is one "type NAME=value" entry. Value is the raw text from
// the definition file.
type Constant struct {
	Type  string
	Name  string
	Value string
}

// Spec is one parsed message definition.
type Spec struct {
	Package   string
	Name      string
	Text      string // raw definition text, as read from the file
	Fields    []Field
	Constants []Constant
}

// TypeName returns the full "package/Name" message type name.
func (s *Spec) TypeName() string { return s.Package + "/" + s.Name }

// ParseMessage parses one .msg definition text belonging to pkg.
func ParseMessage(pkg, name, text string) (*Spec, error) {
	s := &Spec{Package: pkg, Name: name, Text: text}
	for i, line := range strings.Split(text, "\n") {
		if err := s.parseLine(line); err != nil {
			return nil, errors.Wrapf(err, "%s/%s line %d", pkg, name, i+1)
		}
	}
	return s, nil
}

// ParseMessageFile reads and parses one discovered .msg file. The
// message name is the file name without extension.
func ParseMessageFile(f rospkg.File) (*Spec, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	name := strings.TrimSuffix(filepath.Base(f.Path), ".msg")
	return ParseMessage(f.Package, name, string(data))
}

func (s *Spec) parseLine(line string) error {
	clean := line
	if i := strings.IndexByte(clean, '#'); i >= 0 {
		clean = clean[:i]
	}
	clean = strings.TrimSpace(clean)
	if clean == "" {
		return nil
	}

	if i := strings.IndexByte(clean, '='); i >= 0 {
		return s.parseConstant(line, clean, i)
	}

	parts := strings.Fields(clean)
	if len(parts) != 2 {
		return errors.Errorf("malformed field declaration %q", strings.TrimSpace(line))
	}
	typ, err := s.resolveType(parts[0])
	if err != nil {
		return err
	}
	s.Fields = append(s.Fields, Field{Type: typ, Name: parts[1]})
	return nil
}

func (s *Spec) parseConstant(raw, clean string, eq int) error {
	decl := strings.Fields(clean[:eq])
	if len(decl) != 2 {
		return errors.Errorf("malformed constant declaration %q", strings.TrimSpace(raw))
	}
	typeName, constName := decl[0], decl[1]
	if !builtinTypes[typeName] || typeName == "time" || typeName == "duration" {
		return errors.Errorf("constant %s has non-primitive type %s", constName, typeName)
	}

	var value string
	if typeName == "string" {
		// String constants take the whole rest of the line, '#' included.
		value = strings.TrimSpace(raw[strings.IndexByte(raw, '=')+1:])
	} else {
		value = strings.TrimSpace(clean[eq+1:])
	}

	s.Constants = append(s.Constants, Constant{Type: typeName, Name: constName, Value: value})
	return nil
}

func (s *Spec) resolveType(decl string) (Type, error) {
	var t Type
	base := decl

	if i := strings.IndexByte(decl, '['); i >= 0 {
		if !strings.HasSuffix(decl, "]") {
			return t, errors.Errorf("malformed array type %q", decl)
		}
		base = decl[:i]
		t.IsArray = true
		if inner := decl[i+1 : len(decl)-1]; inner != "" {
			n, err := strconv.Atoi(inner)
			if err != nil || n <= 0 {
				return t, errors.Errorf("malformed array length in %q", decl)
			}
			t.ArrayLen = n
		}
	}

	switch {
	case builtinTypes[base]:
		t.Name = base
	case base == "Header":
		// Bare Header is shorthand for std_msgs/Header.
		t.Package, t.Name = "std_msgs", "Header"
	case strings.Contains(base, "/"):
		pkg, name, _ := strings.Cut(base, "/")
		if pkg == "" || name == "" || strings.Contains(name, "/") {
			return t, errors.Errorf("malformed type reference %q", decl)
		}
		t.Package, t.Name = pkg, name
	default:
		// Unqualified references resolve to the defining package.
		t.Package, t.Name = s.Package, base
	}
	return t, nil
}

// ServiceSpec is one parsed .srv definition: two message specs split
// on the "---" line.
type ServiceSpec struct {
	Package  string
	Name     string
	Request  *Spec
	Response *Spec
}

// TypeName returns the full "package/Name" service type name.
func (s *ServiceSpec) TypeName() string { return s.Package + "/" + s.Name }

// ParseService parses one .srv definition text belonging to pkg.
func ParseService(pkg, name, text string) (*ServiceSpec, error) {
	reqText, respText, err := splitService(text)
	if err != nil {
		return nil, errors.Wrapf(err, "%s/%s", pkg, name)
	}
	req, err := ParseMessage(pkg, name+"Request", reqText)
	if err != nil {
		return nil, err
	}
	resp, err := ParseMessage(pkg, name+"Response", respText)
	if err != nil {
		return nil, err
	}
	return &ServiceSpec{Package: pkg, Name: name, Request: req, Response: resp}, nil
}

// ParseServiceFile reads and parses one discovered .srv file.
func ParseServiceFile(f rospkg.File) (*ServiceSpec, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	name := strings.TrimSuffix(filepath.Base(f.Path), ".srv")
	return ParseService(f.Package, name, string(data))
}

func splitService(text string) (req, resp string, err error) {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if strings.TrimSpace(line) == "---" {
			return strings.Join(lines[:i], "\n"), strings.Join(lines[i+1:], "\n"), nil
		}
	}
	return "", "", errors.New("missing --- separator")
}
