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

// Package rosmsg holds the small runtime surface shared by generated
// message types.
package rosmsg

// Message is implemented by all generated message types. It exposes
// exactly the type identity a TCPROS connection header transports.
type Message interface {
	// TypeName returns the full ROS type name (e.g. "std_msgs/String").
	TypeName() string

	// MD5Sum returns the content hash of the message definition, as
	// carried in the md5sum header field.
	MD5Sum() string

	// Definition returns the full flattened definition text, as carried
	// in the message_definition header field.
	Definition() string
}

// Time is a ROS time value.
type Time struct {
	Sec  uint32
	Nsec uint32
}

// Duration is a ROS duration value.
type Duration struct {
	Sec  int32
	Nsec int32
}
