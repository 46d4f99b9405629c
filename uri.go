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
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

const rosRPCScheme = "rosrpc://"

// ParseURI splits a rosrpc://host:port endpoint URI, the form in which
// the master advertises TCPROS endpoints.
func ParseURI(uri string) (host string, port int, err error) {
	rest, ok := strings.CutPrefix(uri, rosRPCScheme)
	if !ok {
		return "", 0, errors.Errorf("not a rosrpc URI: %s", uri)
	}
	host, portStr, err := net.SplitHostPort(strings.TrimSuffix(rest, "/"))
	if err != nil {
		return "", 0, errors.Wrapf(err, "bad rosrpc URI %s", uri)
	}
	port, err = strconv.Atoi(portStr)
	if err != nil || port <= 0 || port > 65535 {
		return "", 0, errors.Errorf("bad port in rosrpc URI %s", uri)
	}
	return host, port, nil
}

// URI renders a net.Addr as a rosrpc endpoint URI.
func URI(addr net.Addr) string {
	return rosRPCScheme + addr.String()
}

// HostPort renders the host:port form Dial expects.
func HostPort(host string, port int) string {
	return net.JoinHostPort(host, fmt.Sprint(port))
}
