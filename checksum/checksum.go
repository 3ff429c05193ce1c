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
// Package checksum wraps a core.Input so that the bytes of a single block
// are folded into a running checksum as they pass through, and the block's
// trailing checksum bytes are captured for comparison once the block is
// fully consumed.
package checksum

import (
	"github.com/pkg/errors"

	"github.com/gcodecontainer/bgcode/core"
)

// VerifyingInput decorates a parent core.Input for the lifetime of one
// block: payload bytes are forwarded and folded into a core.Checksum
// seeded from the block header, while the stream checksum kind's trailing
// bytes are forwarded and collected into an internal buffer for later
// comparison against the folded value.
type VerifyingInput struct {
	parent       core.Input
	checksumKind core.ChecksumKind
	running      core.Checksum

	payloadRemaining int64
	trailerRemaining int64
	trailer          []byte

	scratch []byte
}

// NewVerifyingInput constructs a checksum-verifying view over parent,
// scoped to one block described by header. scratch is a caller-owned
// buffer used internally by Skip; it must be at least one byte long.
func NewVerifyingInput(parent core.Input, checksumKind core.ChecksumKind, header core.BlockHeader, scratch []byte) *VerifyingInput {
	running := core.NewChecksum(checksumKind)
	running.UpdateFromBlockHeader(header)

	trailerSize := checksumKind.Size()
	return &VerifyingInput{
		parent:           parent,
		checksumKind:     checksumKind,
		running:          running,
		payloadRemaining: int64(header.PayloadSize()),
		trailerRemaining: int64(trailerSize),
		trailer:          make([]byte, 0, trailerSize),
		scratch:          scratch,
	}
}

// Read forwards buf from the parent stream, folding payload bytes into the
// running checksum and collecting trailer bytes, split at the payload /
// checksum-trailer boundary recorded at construction time.
func (v *VerifyingInput) Read(buf []byte) error {
	remaining := buf
	for len(remaining) > 0 {
		switch {
		case v.payloadRemaining > 0:
			n := v.payloadRemaining
			if int64(len(remaining)) < n {
				n = int64(len(remaining))
			}
			chunk := remaining[:n]
			if err := v.parent.Read(chunk); err != nil {
				return err
			}
			v.running.Append(chunk)
			v.payloadRemaining -= n
			remaining = remaining[n:]
		case v.trailerRemaining > 0:
			n := v.trailerRemaining
			if int64(len(remaining)) < n {
				n = int64(len(remaining))
			}
			chunk := remaining[:n]
			if err := v.parent.Read(chunk); err != nil {
				// A short read here means the stream ended partway
				// through the checksum trailer: under checksum
				// checking that is an InvalidChecksum, not a bare
				// ReadError, since the trailer can never be verified.
				return core.WrapResult(core.InvalidChecksum, err)
			}
			v.trailer = append(v.trailer, chunk...)
			v.trailerRemaining -= n
			remaining = remaining[n:]
		default:
			return core.NewResultError(core.ReadError, "checksum: read past end of block")
		}
	}
	return nil
}

// Skip advances n bytes exactly like Read, routing them through the
// scratch buffer so skipped bytes still participate in the checksum.
func (v *VerifyingInput) Skip(n int64) error {
	if len(v.scratch) == 0 {
		return core.NewResultError(core.UnknownError, "checksum: Skip requires a non-empty scratch buffer")
	}
	for n > 0 {
		chunk := int64(len(v.scratch))
		if chunk > n {
			chunk = n
		}
		if err := v.Read(v.scratch[:chunk]); err != nil {
			return err
		}
		n -= chunk
	}
	return nil
}

// IsFinished reports whether both the payload and the trailer have been
// fully consumed.
func (v *VerifyingInput) IsFinished() bool {
	return v.payloadRemaining == 0 && v.trailerRemaining == 0
}

// Metadata returns the parent stream's metadata.
func (v *VerifyingInput) Metadata() core.Metadata { return v.parent.Metadata() }

// IsChecksumCorrect compares the folded running checksum against the
// collected trailer bytes. It is only meaningful once IsFinished is true.
func (v *VerifyingInput) IsChecksumCorrect() bool {
	return v.running.Matches(v.trailer)
}

// CheckedRead reads len(buf) bytes of block content through v and, once
// the block has been fully consumed, verifies the checksum, returning an
// error carrying core.InvalidChecksum if it does not match.
func CheckedRead(v *VerifyingInput, buf []byte) error {
	if err := v.Read(buf); err != nil {
		return errors.WithStack(err)
	}
	if v.IsFinished() && !v.IsChecksumCorrect() {
		return core.NewResultError(core.InvalidChecksum, "checksum: block checksum does not match")
	}
	return nil
}
