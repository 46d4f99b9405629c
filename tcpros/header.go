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
	"bytes"
	"encoding/binary"
	"strings"
	"unicode/utf8"

	logging "github.com/ipfs/go-log/v2"
)

var log = logging.Logger("tcpros")

// ConnectionHeader is the handshake record exchanged once per TCPROS
// connection before message streaming begins. Field semantics follow
// wiki.ros.org/ROS/Connection%20Header.
//
// The zero value is a valid header: text fields default to "" and
// boolean fields to false, matching a wire header with those fields
// absent.
type ConnectionHeader struct {
	CallerID      string
	Latching      bool
	MsgDefinition string
	Md5sum        string
	Topic         string
	TopicType     string
	TCPNoDelay    bool
}

// FormatError reports a structurally invalid connection header: a
// length prefix that lies about the bytes available, or field text
// that is not valid UTF-8. It is always fatal to the decode call that
// produced it; the transport is expected to close the connection.
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string {
	return "tcpros: bad connection header: " + e.Reason
}

// HeaderDecoder decodes wire-format connection headers. Log receives
// diagnostics about unknown and malformed fields; tests may supply
// their own sink. The zero value uses the package logger.
type HeaderDecoder struct {
	Log logging.StandardLogger
}

// DecodeHeader decodes a connection header using the package logger
// for diagnostics.
func DecodeHeader(data []byte) (ConnectionHeader, error) {
	return HeaderDecoder{}.Decode(data)
}

// Decode parses the wire form of a connection header: a 4-byte
// little-endian total length followed by length-prefixed "name=value"
// fields. Unknown field names are logged and skipped. Any framing
// violation or invalid UTF-8 fails with a *FormatError; Decode never
// reads past len(data) no matter what the embedded lengths claim.
func (d HeaderDecoder) Decode(data []byte) (ConnectionHeader, error) {
	var h ConnectionHeader

	if len(data) < 4 {
		return h, &FormatError{Reason: "truncated total length"}
	}
	// Lengths are widened to uint64 so no subtraction below can wrap.
	remaining := uint64(binary.LittleEndian.Uint32(data))
	rest := data[4:]

	for remaining > 0 {
		if len(rest) < 4 {
			return ConnectionHeader{}, &FormatError{Reason: "truncated field length"}
		}
		fieldLen := uint64(binary.LittleEndian.Uint32(rest))
		rest = rest[4:]

		eq := bytes.IndexByte(rest, '=')
		if eq < 0 {
			return ConnectionHeader{}, &FormatError{Reason: "field without '=' separator"}
		}
		name := rest[:eq]

		// The declared field length covers name, '=' and value. A length
		// too short to cover even name+'=' means the framing lies.
		if fieldLen < uint64(eq)+1 {
			d.warnf("underflow in header bytes, nothing remaining after =")
			return ConnectionHeader{}, &FormatError{Reason: "field length leaves no room for value"}
		}
		valueLen := fieldLen - uint64(eq) - 1

		rest = rest[eq+1:]
		if valueLen > uint64(len(rest)) {
			return ConnectionHeader{}, &FormatError{Reason: "field value overruns buffer"}
		}
		value := rest[:valueLen]
		rest = rest[valueLen:]

		if !utf8.Valid(name) {
			d.warnf("header field name %s (lossy) is invalid UTF-8", lossy(name))
			return ConnectionHeader{}, &FormatError{Reason: "field name is not valid UTF-8"}
		}
		if !utf8.Valid(value) {
			d.warnf("header value %s (lossy) is invalid UTF-8", lossy(value))
			return ConnectionHeader{}, &FormatError{Reason: "field value is not valid UTF-8"}
		}

		d.apply(&h, string(name), string(value))

		consumed := 4 + uint64(eq) + 1 + valueLen
		if consumed > remaining {
			d.warnf("underflow in header bytes, too many bytes read")
			return ConnectionHeader{}, &FormatError{Reason: "field overruns advertised header length"}
		}
		remaining -= consumed
	}

	return h, nil
}

func (d HeaderDecoder) apply(h *ConnectionHeader, name, value string) {
	switch name {
	case "callerid":
		h.CallerID = value
	case "message_definition":
		h.MsgDefinition = value
	case "md5sum":
		h.Md5sum = value
	case "topic":
		h.Topic = value
	case "type":
		h.TopicType = value
	case "latching":
		h.Latching = value != "0"
	case "tcp_nodelay":
		h.TCPNoDelay = value != "0"
	default:
		d.warnf("unknown connection header field %q", name)
	}
}

func (d HeaderDecoder) warnf(format string, args ...interface{}) {
	if d.Log != nil {
		d.Log.Warnf(format, args...)
		return
	}
	log.Warnf(format, args...)
}

func lossy(b []byte) string {
	return strings.ToValidUTF8(string(b), "�")
}

// Encode renders the header in wire form. The emission order is fixed
// for compatibility with peer TCPROS implementations: callerid,
// latching, md5sum, message_definition, tcp_nodelay (only when the
// header is addressed to a publisher), topic, type. Booleans are
// written as "1"/"0". Encode cannot fail.
func (h ConnectionHeader) Encode(toPublisher bool) []byte {
	// Total length is not known up front; reserve the first 4 bytes and
	// patch them once every field has been written.
	buf := make([]byte, 4, 1024)

	buf = appendField(buf, "callerid", h.CallerID)
	buf = appendField(buf, "latching", encodeBool(h.Latching))
	buf = appendField(buf, "md5sum", h.Md5sum)
	buf = appendField(buf, "message_definition", h.MsgDefinition)
	if toPublisher {
		buf = appendField(buf, "tcp_nodelay", encodeBool(h.TCPNoDelay))
	}
	buf = appendField(buf, "topic", h.Topic)
	buf = appendField(buf, "type", h.TopicType)

	binary.LittleEndian.PutUint32(buf, uint32(len(buf)-4))
	return buf
}

func appendField(buf []byte, name, value string) []byte {
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(name)+1+len(value)))
	buf = append(buf, name...)
	buf = append(buf, '=')
	return append(buf, value...)
}

func encodeBool(v bool) string {
	if v {
		return "1"
	}
	return "0"
}
