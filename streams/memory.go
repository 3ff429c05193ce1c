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
	"bytes"
	"io"

	"github.com/pkg/errors"

	"github.com/gcodecontainer/bgcode/core"
)

// MemoryInput is a core.Input backed by an in-memory byte slice, used by
// tests and by callers that already hold the whole container in memory.
type MemoryInput struct {
	r        *bytes.Reader
	meta     core.Metadata
	finished bool
	lastErr  string
}

func NewMemoryInput(data []byte) *MemoryInput {
	return &MemoryInput{r: bytes.NewReader(data)}
}

func (s *MemoryInput) SetMetadata(m core.Metadata) { s.meta = m }
func (s *MemoryInput) Metadata() core.Metadata     { return s.meta }

func (s *MemoryInput) Read(buf []byte) error {
	if len(buf) == 0 {
		return nil
	}
	n, err := io.ReadFull(s.r, buf)
	if err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			s.finished = true
		}
		s.lastErr = err.Error()
		return core.WrapResult(core.ReadError, errors.Wrapf(err, "streams: read %d bytes (got %d)", len(buf), n))
	}
	return nil
}

// Skip discards n bytes by reading them rather than seeking, so skipping
// past a truncated final block is caught the same way FileInput.Skip
// catches it via bufio.Reader.Discard, instead of bytes.Reader.Seek's
// silent success past end-of-data.
func (s *MemoryInput) Skip(n int64) error {
	if n <= 0 {
		return nil
	}
	discarded, err := io.CopyN(io.Discard, s.r, n)
	if err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			s.finished = true
		}
		s.lastErr = err.Error()
		return core.WrapResult(core.ReadError, errors.Wrapf(err, "streams: skip %d bytes (discarded %d)", n, discarded))
	}
	return nil
}

func (s *MemoryInput) IsFinished() bool {
	return s.finished || s.r.Len() == 0
}

func (s *MemoryInput) LastErrorDescription() string { return s.lastErr }

// MemoryOutput is a core.Output backed by a growable in-memory buffer.
type MemoryOutput struct {
	buf  bytes.Buffer
	meta core.Metadata
}

func NewMemoryOutput(checksumKind core.ChecksumKind, version uint32) *MemoryOutput {
	return &MemoryOutput{meta: core.Metadata{Version: version, ChecksumKind: checksumKind}}
}

func (s *MemoryOutput) Metadata() core.Metadata { return s.meta }

func (s *MemoryOutput) Write(buf []byte) error {
	s.buf.Write(buf)
	return nil
}

// Bytes returns the accumulated output.
func (s *MemoryOutput) Bytes() []byte { return s.buf.Bytes() }
