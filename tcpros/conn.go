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
	"encoding/binary"
	"io"
	"net"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// Conn is an established TCPROS connection: a net.Conn on which the
// connection headers have already been exchanged and which now carries
// length-prefixed message bodies. Conn does not interpret the bodies;
// message (de)serialization belongs to the caller.
type Conn struct {
	config *Config
	parent net.Conn

	local  ConnectionHeader
	remote ConnectionHeader

	readDeadline  time.Time
	writeDeadline time.Time

	closeOnce sync.Once
	mutex     sync.Mutex
}

// Client performs the subscriber-side handshake on parent: it sends
// header in the publisher direction and reads the publisher's reply.
// On failure parent is closed.
func Client(parent net.Conn, header ConnectionHeader, opts ...Option) (*Conn, error) {
	return ClientWithContext(context.Background(), parent, header, opts...)
}

// ClientWithContext is Client honoring the context deadline in
// addition to the configured handshake timeout.
func ClientWithContext(ctx context.Context, parent net.Conn, header ConnectionHeader, opts ...Option) (*Conn, error) {
	config := DefaultConfig()
	for _, opt := range opts {
		opt(config)
	}

	conn := &Conn{
		config: config,
		parent: parent,
		local:  header,
	}

	if err := conn.handshakeClient(ctx); err != nil {
		_ = parent.Close()
		return nil, err
	}
	return conn, nil
}

func (c *Conn) handshakeClient(ctx context.Context) error {
	restore, err := c.setHandshakeDeadline(ctx)
	if err != nil {
		return err
	}
	defer restore()

	if _, err := c.parent.Write(c.local.Encode(true)); err != nil {
		return errors.Wrap(err, "send connection header")
	}

	remote, err := c.readHeaderFrame()
	if err != nil {
		return err
	}
	c.remote = remote

	return c.checkCompatible(remote)
}

// checkCompatible compares the publisher's reply against what we asked
// for. "*" is the conventional wildcard used by introspection tools
// and matches anything; empty local fields are not checked either.
func (c *Conn) checkCompatible(remote ConnectionHeader) error {
	if c.local.TopicType != "" && c.local.TopicType != "*" &&
		remote.TopicType != "" && remote.TopicType != c.local.TopicType {
		return errors.Wrapf(ErrTypeMismatch, "want %s, publisher has %s",
			c.local.TopicType, remote.TopicType)
	}
	if c.local.Md5sum != "" && c.local.Md5sum != "*" &&
		remote.Md5sum != "" && remote.Md5sum != c.local.Md5sum {
		return errors.Wrapf(ErrMd5sumMismatch, "want %s, publisher has %s",
			c.local.Md5sum, remote.Md5sum)
	}
	return nil
}

// setHandshakeDeadline applies the tighter of the configured timeout
// and the context deadline to the parent conn. The returned func
// restores the unbounded deadline.
func (c *Conn) setHandshakeDeadline(ctx context.Context) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.WithStack(err)
	}

	var deadline time.Time
	if c.config.HandshakeTimeout > 0 {
		deadline = time.Now().Add(c.config.HandshakeTimeout)
	}
	if d, ok := ctx.Deadline(); ok && (deadline.IsZero() || d.Before(deadline)) {
		deadline = d
	}
	if deadline.IsZero() {
		return func() {}, nil
	}

	if err := c.parent.SetDeadline(deadline); err != nil {
		return nil, errors.WithStack(err)
	}
	return func() { _ = c.parent.SetDeadline(time.Time{}) }, nil
}

// readHeaderFrame reads one length-prefixed header block from the
// socket and decodes it. The peer's advertised length is capped before
// any allocation happens.
func (c *Conn) readHeaderFrame() (ConnectionHeader, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(c.parent, lenBuf[:]); err != nil {
		return ConnectionHeader{}, errors.Wrap(err, "read connection header length")
	}
	n := binary.LittleEndian.Uint32(lenBuf[:])
	if n > c.config.MaxHeaderLen {
		return ConnectionHeader{}, errors.Wrapf(ErrHeaderTooLarge, "%d bytes", n)
	}

	frame := make([]byte, 4+n)
	copy(frame, lenBuf[:])
	if _, err := io.ReadFull(c.parent, frame[4:]); err != nil {
		return ConnectionHeader{}, errors.Wrap(err, "read connection header")
	}
	return DecodeHeader(frame)
}

// LocalHeader returns the header this end sent.
func (c *Conn) LocalHeader() ConnectionHeader { return c.local }

// RemoteHeader returns the header the peer sent.
func (c *Conn) RemoteHeader() ConnectionHeader { return c.remote }

// ReadMessage reads one message body from the stream. The returned
// slice is owned by the caller.
func (c *Conn) ReadMessage() ([]byte, error) {
	c.mutex.Lock()
	deadline := c.readDeadline
	c.mutex.Unlock()

	if !deadline.IsZero() {
		if err := c.parent.SetReadDeadline(deadline); err != nil {
			return nil, errors.WithStack(err)
		}
		defer c.parent.SetReadDeadline(time.Time{})
	}

	var lenBuf [4]byte
	if _, err := io.ReadFull(c.parent, lenBuf[:]); err != nil {
		return nil, errors.Wrap(err, "read message length")
	}
	size := binary.LittleEndian.Uint32(lenBuf[:])
	if size > c.config.MaxMessageLen {
		return nil, errors.Wrapf(ErrMessageTooLarge, "%d bytes", size)
	}

	body := make([]byte, size)
	if _, err := io.ReadFull(c.parent, body); err != nil {
		return nil, errors.Wrap(err, "read message body")
	}
	return body, nil
}

// WriteMessage writes one message body, length prefix included, as a
// single Write on the parent conn.
func (c *Conn) WriteMessage(body []byte) error {
	c.mutex.Lock()
	deadline := c.writeDeadline
	c.mutex.Unlock()

	if !deadline.IsZero() {
		if err := c.parent.SetWriteDeadline(deadline); err != nil {
			return errors.WithStack(err)
		}
		defer c.parent.SetWriteDeadline(time.Time{})
	}

	frame := make([]byte, 4+len(body))
	binary.LittleEndian.PutUint32(frame, uint32(len(body)))
	copy(frame[4:], body)

	_, err := c.parent.Write(frame)
	return errors.Wrap(err, "write message")
}

func (c *Conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		err = c.parent.Close()
	})
	return err
}

func (c *Conn) LocalAddr() net.Addr { return c.parent.LocalAddr() }

func (c *Conn) RemoteAddr() net.Addr { return c.parent.RemoteAddr() }

func (c *Conn) SetDeadline(t time.Time) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.readDeadline = t
	c.writeDeadline = t
	return nil
}

func (c *Conn) SetReadDeadline(t time.Time) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.readDeadline = t
	return nil
}

func (c *Conn) SetWriteDeadline(t time.Time) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.writeDeadline = t
	return nil
}
