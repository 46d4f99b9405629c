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
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robokit/rostcp/rospkg"
)

func writeDef(t *testing.T, dir, name, content string) rospkg.File {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	pkg := "std_msgs"
	if filepath.Ext(name) == ".srv" {
		pkg = "std_srvs"
	}
	return rospkg.File{Package: pkg, Path: path}
}

func TestGenerate(t *testing.T) {
	dir := t.TempDir()
	files := []rospkg.File{
		writeDef(t, dir, "String.msg", "string data\n"),
		writeDef(t, dir, "Header.msg", "uint32 seq\ntime stamp\nstring frame_id\n"),
		writeDef(t, dir, "SetBool.srv", "bool data\n---\nbool success\nstring message\n"),
	}

	dest := filepath.Join(dir, "msgs.gen.go")
	require.NoError(t, Generate(files, dest, "msgs"))

	src, err := os.ReadFile(dest)
	require.NoError(t, err)
	out := string(src)

	assert.Contains(t, out, "package msgs")
	assert.Contains(t, out, "type StdMsgsString struct")
	assert.Contains(t, out, `"992ce8a1687cec8c8bd883ec73ca41d1"`)
	assert.Contains(t, out, `"std_msgs/String"`)
	// time field pulls in the rosmsg runtime types.
	assert.Contains(t, out, "rosmsg.Time")
	assert.Contains(t, out, "type StdSrvsSetBoolRequest struct")
	assert.Contains(t, out, "type StdSrvsSetBool struct{}")
	assert.Contains(t, out, `"09fb03525b03e7ea1fd3992bafd87e16"`)

	// The output must be well-formed Go.
	_, err = parser.ParseFile(token.NewFileSet(), dest, src, 0)
	require.NoError(t, err)
}

func TestGenerateConstants(t *testing.T) {
	dir := t.TempDir()
	files := []rospkg.File{
		writeDef(t, dir, "Status.msg", "uint8 STATUS_OK=0\nstring NAME=base # note\nuint8 status\n"),
	}

	dest := filepath.Join(dir, "status.gen.go")
	require.NoError(t, Generate(files, dest, "msgs"))

	src, err := os.ReadFile(dest)
	require.NoError(t, err)
	out := string(src)

	// gofmt aligns the const block, so match with flexible spacing.
	assert.Regexp(t, `StdMsgsStatusStatusOk\s+= 0`, out)
	assert.Regexp(t, `StdMsgsStatusName\s+= "base # note"`, out)
}

func TestGenerateSkipsActionFiles(t *testing.T) {
	dir := t.TempDir()
	actionPath := filepath.Join(dir, "Move.action")
	require.NoError(t, os.WriteFile(actionPath, []byte("bool a\n---\nbool b\n---\nbool c\n"), 0o644))

	files := []rospkg.File{
		writeDef(t, dir, "String.msg", "string data\n"),
		{Package: "std_msgs", Path: actionPath},
	}

	dest := filepath.Join(dir, "msgs.gen.go")
	require.NoError(t, Generate(files, dest, ""))

	src, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Contains(t, string(src), "package msgs")
	assert.NotContains(t, string(src), "Move")
}

func TestGenerateUnknownDependencyFails(t *testing.T) {
	dir := t.TempDir()
	files := []rospkg.File{
		writeDef(t, dir, "Pose.msg", "geometry_msgs/Point position\n"),
	}

	err := Generate(files, filepath.Join(dir, "out.go"), "msgs")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "geometry_msgs/Point")
}
