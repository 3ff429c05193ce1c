// Copyright 2024 bgcode Authors
//
//    Licensed under the Apache License, Version 2.0 (the "License");
//    you may not use this file except in compliance with the License.
//    You may obtain a copy of the License at
//
//        http://www.apache.org/licenses/LICENSE-2.0
//
//    Unless required by applicable law or agreed to in writing, software
//    distributed under the License is distributed on an "AS IS" BASIS,
//    WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//    See the License for the specific language governing permissions and
//    limitations under the License.
package core

// Metadata is the stream-level information every component that needs to
// know how many trailing checksum bytes to expect, or which format
// version produced a stream, consults.
type Metadata struct {
	Version      uint32
	ChecksumKind ChecksumKind
}

// RawInput is the minimal read capability: Read must fill buf entirely or
// fail, never returning a short read.
type RawInput interface {
	Read(buf []byte) error
}

// Input is a RawInput plus the capabilities the parse driver and handler
// pipeline need: skipping, end-of-stream detection and stream metadata.
type Input interface {
	RawInput
	Skip(n int64) error
	IsFinished() bool
	Metadata() Metadata
}

// RawOutput is the minimal write capability.
type RawOutput interface {
	Write(buf []byte) error
}

// Output is a RawOutput plus stream metadata.
type Output interface {
	RawOutput
	Metadata() Metadata
}

// DescribableError is implemented by streams that can produce a
// human-readable, non-normative description of their last failure (§6.2
// last_error_description).
type DescribableError interface {
	LastErrorDescription() string
}
