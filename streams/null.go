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
package streams

import (
	"github.com/gcodecontainer/bgcode/core"
)

// nullInput never has any bytes; every Read fails immediately. It exists
// so callers can construct a handler pipeline for validation purposes
// without a real source, matching the spec's null_input().
type nullInput struct{ meta core.Metadata }

// NullInput returns an Input that is always at end-of-stream.
func NullInput() core.Input { return nullInput{} }

func (nullInput) Read(buf []byte) error {
	if len(buf) == 0 {
		return nil
	}
	return core.NewResultError(core.ReadError, "streams: read past end of null input")
}
func (nullInput) Skip(n int64) error {
	if n == 0 {
		return nil
	}
	return core.NewResultError(core.ReadError, "streams: skip past end of null input")
}
func (nullInput) IsFinished() bool          { return true }
func (n nullInput) Metadata() core.Metadata { return n.meta }

// nullOutput discards every byte written to it; useful for checksum-only
// passes (mirrors ChecksumWriter's typical use with io.Discard in the
// teacher's artifact.Checksum type).
type nullOutput struct{ meta core.Metadata }

// NullOutput returns an Output that discards all writes.
func NullOutput(checksumKind core.ChecksumKind, version uint32) core.Output {
	return nullOutput{meta: core.Metadata{Version: version, ChecksumKind: checksumKind}}
}

func (nullOutput) Write(buf []byte) error    { return nil }
func (n nullOutput) Metadata() core.Metadata { return n.meta }
