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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, pkg, name, text string) *Spec {
	t.Helper()
	s, err := ParseMessage(pkg, name, text)
	require.NoError(t, err)
	return s
}

// Golden sums below are the published md5sums of the corresponding ROS
// message types, so any drift from the reference algorithm fails here.

func TestMd5Builtin(t *testing.T) {
	reg := NewRegistry()

	str := mustParse(t, "std_msgs", "String", "string data\n")
	sum, err := reg.Md5(str)
	require.NoError(t, err)
	assert.Equal(t, "992ce8a1687cec8c8bd883ec73ca41d1", sum)

	header := mustParse(t, "std_msgs", "Header", "uint32 seq\ntime stamp\nstring frame_id\n")
	sum, err = reg.Md5(header)
	require.NoError(t, err)
	assert.Equal(t, "2176decaecbce78abc3b96ef049fabed", sum)
}

func TestMd5Nested(t *testing.T) {
	reg := NewRegistry()
	point := mustParse(t, "geometry_msgs", "Point", "float64 x\nfloat64 y\nfloat64 z\n")
	quat := mustParse(t, "geometry_msgs", "Quaternion", "float64 x\nfloat64 y\nfloat64 z\nfloat64 w\n")
	pose := mustParse(t, "geometry_msgs", "Pose", "Point position\nQuaternion orientation\n")
	reg.Add(point)
	reg.Add(quat)
	reg.Add(pose)

	sum, err := reg.Md5(point)
	require.NoError(t, err)
	assert.Equal(t, "4a842b65f413084dc2b10fb484ea7f17", sum)

	// Nested fields substitute the dependency md5 for the type name.
	sum, err = reg.Md5(pose)
	require.NoError(t, err)
	assert.Equal(t, "e45d45a5a1ce597b249e23fb30fc871f", sum)
}

func TestMd5UnknownDependency(t *testing.T) {
	reg := NewRegistry()
	pose := mustParse(t, "geometry_msgs", "Pose", "Point position\nQuaternion orientation\n")
	reg.Add(pose)

	_, err := reg.Md5(pose)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "geometry_msgs/Point")
}

func TestMd5Cycle(t *testing.T) {
	reg := NewRegistry()
	a := mustParse(t, "demo", "A", "B b\n")
	b := mustParse(t, "demo", "B", "A a\n")
	reg.Add(a)
	reg.Add(b)

	_, err := reg.Md5(a)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cyclic")
}

func TestMd5TextConstantsFirst(t *testing.T) {
	reg := NewRegistry()
	s := mustParse(t, "demo", "Status", "uint8 status\nuint8 STATUS_OK=0\n")

	text, err := reg.md5Text(s)
	require.NoError(t, err)
	assert.Equal(t, "uint8 STATUS_OK=0\nuint8 status", text)
}

func TestServiceMd5(t *testing.T) {
	reg := NewRegistry()
	s, err := ParseService("std_srvs", "SetBool", "bool data\n---\nbool success\nstring message\n")
	require.NoError(t, err)

	sum, err := reg.ServiceMd5(s)
	require.NoError(t, err)
	assert.Equal(t, "09fb03525b03e7ea1fd3992bafd87e16", sum)
}

func TestFullDefinition(t *testing.T) {
	reg := NewRegistry()
	point := mustParse(t, "geometry_msgs", "Point", "float64 x\nfloat64 y\nfloat64 z\n")
	quat := mustParse(t, "geometry_msgs", "Quaternion", "float64 x\nfloat64 y\nfloat64 z\nfloat64 w\n")
	pose := mustParse(t, "geometry_msgs", "Pose", "Point position\nQuaternion orientation\n")
	reg.Add(point)
	reg.Add(quat)
	reg.Add(pose)

	def, err := reg.FullDefinition(pose)
	require.NoError(t, err)

	sep := strings.Repeat("=", 80)
	assert.True(t, strings.HasPrefix(def, "Point position\nQuaternion orientation\n"), def)
	assert.Contains(t, def, sep+"\nMSG: geometry_msgs/Point\n")
	assert.Contains(t, def, sep+"\nMSG: geometry_msgs/Quaternion\n")
	// Each dependency appears exactly once.
	assert.Equal(t, 2, strings.Count(def, "MSG: "))
}

func TestFullDefinitionBuiltinOnly(t *testing.T) {
	reg := NewRegistry()
	str := mustParse(t, "std_msgs", "String", "string data\n")

	def, err := reg.FullDefinition(str)
	require.NoError(t, err)
	assert.Equal(t, "string data\n", def)
}
