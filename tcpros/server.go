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

package tcpros

import (
	"context"
	"net"

	"github.com/pkg/errors"
)

// Server performs the publisher-side handshake on parent: it reads the
// subscriber's header, optionally validates it, and replies with
// header. On failure parent is closed.
func Server(parent net.Conn, header ConnectionHeader, opts ...Option) (*Conn, error) {
	return ServerWithContext(context.Background(), parent, header, opts...)
}

// ServerWithContext is Server honoring the context deadline in
// addition to the configured handshake timeout.
func ServerWithContext(ctx context.Context, parent net.Conn, header ConnectionHeader, opts ...Option) (*Conn, error) {
	config := DefaultConfig()
	for _, opt := range opts {
		opt(config)
	}

	conn := &Conn{
		config: config,
		parent: parent,
		local:  header,
	}

	if err := conn.handshakeServer(ctx); err != nil {
		_ = parent.Close()
		return nil, err
	}
	return conn, nil
}

func (c *Conn) handshakeServer(ctx context.Context) error {
	restore, err := c.setHandshakeDeadline(ctx)
	if err != nil {
		return err
	}
	defer restore()

	remote, err := c.readHeaderFrame()
	if err != nil {
		return err
	}
	c.remote = remote

	if c.config.Validator != nil {
		if err := c.config.Validator(remote); err != nil {
			log.Warnf("subscriber %s rejected: %v", remote.CallerID, err)
			return errors.Wrap(ErrHandshakeRejected, err.Error())
		}
	}

	// tcp_nodelay is only meaningful toward a publisher, so the reply
	// never carries it.
	if _, err := c.parent.Write(c.local.Encode(false)); err != nil {
		return errors.Wrap(err, "send connection header")
	}
	return nil
}
