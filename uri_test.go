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

package rostcp

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseURI(t *testing.T) {
	host, port, err := ParseURI("rosrpc://robot.local:49152")
	require.NoError(t, err)
	assert.Equal(t, "robot.local", host)
	assert.Equal(t, 49152, port)

	host, port, err = ParseURI("rosrpc://10.0.0.7:38211/")
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.7", host)
	assert.Equal(t, 38211, port)
}

func TestParseURIBad(t *testing.T) {
	for _, uri := range []string{
		"http://robot.local:49152",
		"rosrpc://robot.local",
		"rosrpc://robot.local:notaport",
		"rosrpc://robot.local:0",
		"rosrpc://robot.local:70000",
	} {
		_, _, err := ParseURI(uri)
		require.Error(t, err, uri)
	}
}

func TestHostPort(t *testing.T) {
	assert.Equal(t, "robot.local:49152", HostPort("robot.local", 49152))
	assert.Equal(t, "[::1]:11311", HostPort("::1", 11311))
}

func TestAnonymousCallerID(t *testing.T) {
	a := AnonymousCallerID("rostopic")
	b := AnonymousCallerID("rostopic")

	assert.True(t, strings.HasPrefix(a, "/rostopic_"), a)
	assert.NotEqual(t, a, b)
	assert.NotContains(t, a, "-")

	assert.True(t, strings.HasPrefix(AnonymousCallerID("/node/"), "/node_"))
}
