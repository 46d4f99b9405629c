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

package msggen

import (
	"bytes"
	"fmt"
	"go/format"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"text/template"

	"github.com/pkg/errors"

	"github.com/robokit/rostcp/rospkg"
)

var builtinGoTypes = map[string]string{
	"bool":     "bool",
	"byte":     "int8",
	"char":     "uint8",
	"int8":     "int8",
	"uint8":    "uint8",
	"int16":    "int16",
	"uint16":   "uint16",
	"int32":    "int32",
	"uint32":   "uint32",
	"int64":    "int64",
	"uint64":   "uint64",
	"float32":  "float32",
	"float64":  "float64",
	"string":   "string",
	"time":     "rosmsg.Time",
	"duration": "rosmsg.Duration",
}

type genConst struct {
	Name  string
	Value string
}

type genField struct {
	Name string
	Type string
}

type genMsg struct {
	GoName     string
	TypeName   string
	Md5        string
	Definition string
	Fields     []genField
	Consts     []genConst
}

type genSrv struct {
	GoName   string
	TypeName string
	Md5      string
}

type genModel struct {
	Package     string
	NeedsRosmsg bool
	Messages    []genMsg
	Services    []genSrv
}

// Generate parses the given definition files and writes one Go source
// file of typed message descriptors to dest. goPackage names the
// generated package; "" defaults to "msgs". Files with extensions the
// generator does not handle (.action) are logged and skipped.
func Generate(files []rospkg.File, dest, goPackage string) error {
	if goPackage == "" {
		goPackage = "msgs"
	}

	reg := NewRegistry()
	var msgs []*Spec
	var srvs []*ServiceSpec
	for _, f := range files {
		switch filepath.Ext(f.Path) {
		case ".msg":
			s, err := ParseMessageFile(f)
			if err != nil {
				return err
			}
			reg.Add(s)
			msgs = append(msgs, s)
		case ".srv":
			s, err := ParseServiceFile(f)
			if err != nil {
				return err
			}
			reg.Add(s.Request)
			reg.Add(s.Response)
			msgs = append(msgs, s.Request, s.Response)
			srvs = append(srvs, s)
		default:
			log.Warnf("skipping %s: unsupported definition type", f.Path)
		}
	}

	model := genModel{Package: goPackage}
	for _, s := range msgs {
		m, err := buildMsg(reg, s)
		if err != nil {
			return err
		}
		model.Messages = append(model.Messages, m)
		for _, f := range s.Fields {
			if f.Type.IsBuiltin() && (f.Type.Name == "time" || f.Type.Name == "duration") {
				model.NeedsRosmsg = true
			}
		}
	}
	for _, s := range srvs {
		sum, err := reg.ServiceMd5(s)
		if err != nil {
			return err
		}
		model.Services = append(model.Services, genSrv{
			GoName:   goName(s.Package, s.Name),
			TypeName: s.TypeName(),
			Md5:      sum,
		})
	}
	sort.Slice(model.Messages, func(i, j int) bool {
		return model.Messages[i].TypeName < model.Messages[j].TypeName
	})
	sort.Slice(model.Services, func(i, j int) bool {
		return model.Services[i].TypeName < model.Services[j].TypeName
	})

	var buf bytes.Buffer
	if err := genTemplate.Execute(&buf, model); err != nil {
		return errors.WithStack(err)
	}
	src, err := format.Source(buf.Bytes())
	if err != nil {
		return errors.Wrap(err, "format generated source")
	}
	if err := os.WriteFile(dest, src, 0o644); err != nil {
		return errors.WithStack(err)
	}
	log.Infof("generated %d message and %d service descriptors to %s",
		len(model.Messages), len(model.Services), dest)
	return nil
}

func buildMsg(reg *Registry, s *Spec) (genMsg, error) {
	sum, err := reg.Md5(s)
	if err != nil {
		return genMsg{}, err
	}
	def, err := reg.FullDefinition(s)
	if err != nil {
		return genMsg{}, err
	}

	m := genMsg{
		GoName:     goName(s.Package, s.Name),
		TypeName:   s.TypeName(),
		Md5:        sum,
		Definition: def,
	}
	for _, f := range s.Fields {
		m.Fields = append(m.Fields, genField{
			Name: exportName(f.Name),
			Type: goType(f.Type),
		})
	}
	for _, c := range s.Constants {
		m.Consts = append(m.Consts, genConst{
			Name:  m.GoName + exportName(strings.ToLower(c.Name)),
			Value: constValue(c),
		})
	}
	return m, nil
}

func goType(t Type) string {
	var base string
	if t.IsBuiltin() {
		base = builtinGoTypes[t.Name]
	} else {
		base = goName(t.Package, t.Name)
	}
	if t.IsArray {
		if t.ArrayLen > 0 {
			return fmt.Sprintf("[%d]%s", t.ArrayLen, base)
		}
		return "[]" + base
	}
	return base
}

func constValue(c Constant) string {
	switch c.Type {
	case "string":
		return strconv.Quote(c.Value)
	case "bool":
		if c.Value == "0" || strings.EqualFold(c.Value, "false") {
			return "false"
		}
		return "true"
	default:
		return c.Value
	}
}

// goName derives the exported Go type name, package-prefixed so that
// equally named messages from different packages cannot collide in the
// generated file.
func goName(pkg, name string) string {
	return exportName(pkg) + exportName(name)
}

func exportName(s string) string {
	parts := strings.Split(s, "_")
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, "")
}

var genTemplate = template.Must(template.New("msgs").Parse(`// Code generated by genmsg. DO NOT EDIT.

package {{.Package}}
{{if .NeedsRosmsg}}
import "github.com/robokit/rostcp/rosmsg"
{{end}}
{{- range .Messages}}
{{if .Consts}}
const (
{{- range .Consts}}
	{{.Name}} = {{.Value}}
{{- end}}
)
{{end}}
// {{.GoName}} mirrors the ROS message {{.TypeName}}.
type {{.GoName}} struct {
{{- range .Fields}}
	{{.Name}} {{.Type}}
{{- end}}
}

func ({{.GoName}}) TypeName() string { return {{printf "%q" .TypeName}} }

func ({{.GoName}}) MD5Sum() string { return {{printf "%q" .Md5}} }

func ({{.GoName}}) Definition() string { return {{printf "%q" .Definition}} }
{{- end}}
{{- range .Services}}

// {{.GoName}} identifies the ROS service {{.TypeName}}.
type {{.GoName}} struct{}

func ({{.GoName}}) TypeName() string { return {{printf "%q" .TypeName}} }

func ({{.GoName}}) MD5Sum() string { return {{printf "%q" .Md5}} }
{{- end}}
`))
