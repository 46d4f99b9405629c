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

import "github.com/pkg/errors"

var (
	// ErrHandshakeRejected is returned by the server side when the
	// configured validator refuses the remote header.
	ErrHandshakeRejected = errors.New("tcpros: handshake rejected")

	// ErrTypeMismatch is returned by the client side when the publisher
	// reports a topic type different from the one requested.
	ErrTypeMismatch = errors.New("tcpros: topic type mismatch")

	// ErrMd5sumMismatch is returned by the client side when the message
	// definition hashes disagree.
	ErrMd5sumMismatch = errors.New("tcpros: md5sum mismatch")

	// ErrHeaderTooLarge is returned when the peer advertises a header
	// longer than the configured maximum.
	ErrHeaderTooLarge = errors.New("tcpros: connection header too large")

	// ErrMessageTooLarge is returned when a streamed message frame
	// advertises a body longer than the configured maximum.
	ErrMessageTooLarge = errors.New("tcpros: message too large")
)
