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
	"crypto/md5"
	"encoding/hex"
	"strings"

	"github.com/pkg/errors"
)

// Registry resolves type references between parsed specs and computes
// the identity values (md5sum, full definition text) derived from
// them.
type Registry struct {
	specs    map[string]*Spec
	md5s     map[string]string
	visiting map[string]bool
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		specs:    map[string]*Spec{},
		md5s:     map[string]string{},
		visiting: map[string]bool{},
	}
}

// Add registers a parsed message spec under its type name.
func (r *Registry) Add(s *Spec) {
	r.specs[s.TypeName()] = s
}

// Get looks up a registered spec by "package/Name".
func (r *Registry) Get(typeName string) (*Spec, bool) {
	s, ok := r.specs[typeName]
	return s, ok
}

// Md5 computes the message md5sum per the ROS rules: the md5 text is
// the constants ("type NAME=value") followed by the fields, where
// builtin fields keep their declaration spelling (array suffix
// included) and message-typed fields substitute the dependency's
// md5sum for the type and drop the array suffix.
func (r *Registry) Md5(s *Spec) (string, error) {
	key := s.TypeName()
	if sum, ok := r.md5s[key]; ok {
		return sum, nil
	}
	if r.visiting[key] {
		return "", errors.Errorf("cyclic message dependency through %s", key)
	}
	r.visiting[key] = true
	defer delete(r.visiting, key)

	text, err := r.md5Text(s)
	if err != nil {
		return "", err
	}
	sum := md5.Sum([]byte(text))
	out := hex.EncodeToString(sum[:])
	r.md5s[key] = out
	return out, nil
}

func (r *Registry) md5Text(s *Spec) (string, error) {
	var lines []string
	for _, c := range s.Constants {
		lines = append(lines, c.Type+" "+c.Name+"="+c.Value)
	}
	for _, f := range s.Fields {
		if f.Type.IsBuiltin() {
			lines = append(lines, f.Type.String()+" "+f.Name)
			continue
		}
		dep, ok := r.specs[f.Type.Key()]
		if !ok {
			return "", errors.Errorf("%s references unknown type %s", s.TypeName(), f.Type.Key())
		}
		depMd5, err := r.Md5(dep)
		if err != nil {
			return "", err
		}
		lines = append(lines, depMd5+" "+f.Name)
	}
	return strings.Join(lines, "\n"), nil
}

// ServiceMd5 computes the service md5sum: the md5 over the request md5
// text immediately followed by the response md5 text.
func (r *Registry) ServiceMd5(s *ServiceSpec) (string, error) {
	reqText, err := r.md5Text(s.Request)
	if err != nil {
		return "", err
	}
	respText, err := r.md5Text(s.Response)
	if err != nil {
		return "", err
	}
	sum := md5.Sum([]byte(reqText + respText))
	return hex.EncodeToString(sum[:]), nil
}

var definitionSeparator = strings.Repeat("=", 80)

// FullDefinition returns the definition text of s followed by one
// "MSG: package/Name" block per transitive dependency, in depth-first
// field order with duplicates dropped. This is the string transported
// in the message_definition header field.
func (r *Registry) FullDefinition(s *Spec) (string, error) {
	var b strings.Builder
	b.WriteString(s.Text)

	seen := map[string]bool{}
	var walk func(cur *Spec) error
	walk = func(cur *Spec) error {
		for _, f := range cur.Fields {
			if f.Type.IsBuiltin() || seen[f.Type.Key()] {
				continue
			}
			seen[f.Type.Key()] = true
			dep, ok := r.specs[f.Type.Key()]
			if !ok {
				return errors.Errorf("%s references unknown type %s", cur.TypeName(), f.Type.Key())
			}
			b.WriteString("\n")
			b.WriteString(definitionSeparator)
			b.WriteString("\nMSG: ")
			b.WriteString(f.Type.Key())
			b.WriteString("\n")
			b.WriteString(dep.Text)
			if err := walk(dep); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(s); err != nil {
		return "", err
	}
	return b.String(), nil
}
