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

import "time"

// Config holds the tunables for one handshake and the streaming that
// follows it.
type Config struct {
	HandshakeTimeout time.Duration
	MaxHeaderLen     uint32
	MaxMessageLen    uint32

	// Validator, if set, is consulted by the server side before the
	// handshake reply is sent. Returning an error rejects the peer.
	Validator func(remote ConnectionHeader) error
}

// DefaultConfig returns the defaults used when no options are given.
func DefaultConfig() *Config {
	return &Config{
		HandshakeTimeout: 10 * time.Second,
		MaxHeaderLen:     1 << 20,
		MaxMessageLen:    1 << 28,
	}
}

// Option mutates a Config.
type Option func(*Config)

// WithHandshakeTimeout bounds the whole header exchange. Zero disables
// the timeout.
func WithHandshakeTimeout(d time.Duration) Option {
	return func(c *Config) {
		if d >= 0 {
			c.HandshakeTimeout = d
		}
	}
}

// WithMaxHeaderLen caps the peer's advertised header length.
func WithMaxHeaderLen(n uint32) Option {
	return func(c *Config) {
		if n > 0 {
			c.MaxHeaderLen = n
		}
	}
}

// WithMaxMessageLen caps the advertised length of streamed message
// bodies.
func WithMaxMessageLen(n uint32) Option {
	return func(c *Config) {
		if n > 0 {
			c.MaxMessageLen = n
		}
	}
}

// WithValidator installs a server-side check on the remote header.
func WithValidator(f func(remote ConnectionHeader) error) Option {
	return func(c *Config) {
		c.Validator = f
	}
}
