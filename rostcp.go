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
	"context"
	"net"

	logging "github.com/ipfs/go-log/v2"
	"github.com/pkg/errors"

	"github.com/robokit/rostcp/tcpros"
)

var log = logging.Logger("rostcp")

// Dial opens a TCP connection to a publisher endpoint (host:port as
// handed out by the master) and performs the subscriber-side
// handshake. TCP_NODELAY is applied to the socket when the header
// requests it.
func Dial(ctx context.Context, addr string, header tcpros.ConnectionHeader, opts ...tcpros.Option) (*tcpros.Conn, error) {
	var d net.Dialer
	netConn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	if header.TCPNoDelay {
		setNoDelay(netConn)
	}

	// tcpros closes netConn itself on a failed handshake.
	return tcpros.ClientWithContext(ctx, netConn, header, opts...)
}

// Listener accepts subscriber connections for one published topic and
// performs the publisher-side handshake on each.
type Listener struct {
	header tcpros.ConnectionHeader
	opts   []tcpros.Option
	ln     net.Listener
}

// Listen starts a TCP listener on addr ("host:0" picks a free port)
// answering handshakes with header.
func Listen(addr string, header tcpros.ConnectionHeader, opts ...tcpros.Option) (*Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return &Listener{
		header: header,
		opts:   opts,
		ln:     ln,
	}, nil
}

// Accept blocks until a subscriber completes the handshake. Failed
// negotiations are logged and skipped; Accept returns an error only
// when the listener itself fails.
func (l *Listener) Accept() (*tcpros.Conn, error) {
	for {
		netConn, err := l.ln.Accept()
		if err != nil {
			return nil, err
		}
		conn, err := l.negotiate(context.Background(), netConn)
		if err != nil {
			log.Warnf("subscriber[%s] negotiation failed: %+v", netConn.RemoteAddr().String(), err)
			continue
		}
		return conn, nil
	}
}

func (l *Listener) negotiate(ctx context.Context, netConn net.Conn) (*tcpros.Conn, error) {
	conn, err := tcpros.ServerWithContext(ctx, netConn, l.header, l.opts...)
	if err != nil {
		return nil, err
	}
	if conn.RemoteHeader().TCPNoDelay {
		setNoDelay(netConn)
	}
	return conn, nil
}

func (l *Listener) Close() error {
	return l.ln.Close()
}

func (l *Listener) Addr() net.Addr {
	return l.ln.Addr()
}

func setNoDelay(conn net.Conn) {
	tc, ok := conn.(*net.TCPConn)
	if !ok {
		return
	}
	if err := tc.SetNoDelay(true); err != nil {
		log.Warnf("set TCP_NODELAY: %v", err)
	}
}
