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
	"bufio"
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/gcodecontainer/bgcode/core"
)

// FileInput is a core.Input backed by an *os.File, read sequentially
// through a buffered reader so IsFinished can be implemented with a
// non-destructive peek.
type FileInput struct {
	f        *os.File
	r        *bufio.Reader
	meta     core.Metadata
	lastErr  string
	finished bool
}

// OpenFileInput opens path for reading. The returned stream's Metadata is
// zero-valued until the caller fills it in with SetMetadata once the
// stream header has been parsed.
func OpenFileInput(path string) (*FileInput, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, core.WrapResult(core.ReadError, errors.Wrapf(err, "streams: open %s for reading", path))
	}
	return &FileInput{f: f, r: bufio.NewReaderSize(f, 64*1024)}, nil
}

// SetMetadata records the stream's declared version and checksum kind,
// read once from the stream header.
func (s *FileInput) SetMetadata(m core.Metadata) { s.meta = m }

func (s *FileInput) Metadata() core.Metadata { return s.meta }

func (s *FileInput) Read(buf []byte) error {
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

func (s *FileInput) Skip(n int64) error {
	if n <= 0 {
		return nil
	}
	discarded, err := s.r.Discard(int(n))
	if err != nil {
		s.lastErr = err.Error()
		return core.WrapResult(core.ReadError, errors.Wrapf(err, "streams: skip %d bytes (discarded %d)", n, discarded))
	}
	return nil
}

func (s *FileInput) IsFinished() bool {
	if s.finished {
		return true
	}
	if _, err := s.r.Peek(1); err != nil {
		s.finished = true
		return true
	}
	return false
}

func (s *FileInput) LastErrorDescription() string { return s.lastErr }

// Close releases the underlying file descriptor.
func (s *FileInput) Close() error { return s.f.Close() }

// FileOutput is a core.Output backed by an *os.File.
type FileOutput struct {
	f       *os.File
	w       *bufio.Writer
	meta    core.Metadata
	lastErr string
}

// OpenFileOutput creates (truncating) path for writing, declaring the
// stream's checksum kind and format version up front.
func OpenFileOutput(path string, checksumKind core.ChecksumKind, version uint32) (*FileOutput, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, core.WrapResult(core.WriteError, errors.Wrapf(err, "streams: open %s for writing", path))
	}
	return &FileOutput{
		f:    f,
		w:    bufio.NewWriterSize(f, 64*1024),
		meta: core.Metadata{Version: version, ChecksumKind: checksumKind},
	}, nil
}

func (s *FileOutput) Metadata() core.Metadata { return s.meta }

func (s *FileOutput) Write(buf []byte) error {
	if _, err := s.w.Write(buf); err != nil {
		s.lastErr = err.Error()
		return core.WrapResult(core.WriteError, errors.Wrap(err, "streams: write"))
	}
	return nil
}

func (s *FileOutput) LastErrorDescription() string { return s.lastErr }

// Close flushes the buffered writer and releases the underlying file
// descriptor.
func (s *FileOutput) Close() error {
	if err := s.w.Flush(); err != nil {
		return core.WrapResult(core.WriteError, errors.Wrap(err, "streams: flush on close"))
	}
	return s.f.Close()
}
