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
// Package compress implements the tagged decompressor variant named in
// the data model: one concrete decompressor per core.CompressionKind,
// sharing a uniform incremental Reset/Append/Finish contract so the parse
// driver and handler pipeline never need to know which codec a block used.
package compress

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/flate"
	"github.com/pkg/errors"

	"github.com/gcodecontainer/bgcode/core"
)

// Sink receives decompressed bytes as a decompressor produces them.
type Sink func(data []byte) error

// Decompressor is scoped to exactly one block: Reset installs a fresh
// decompression state sized around workbuf, Append feeds compressed bytes
// as they arrive from the stream (pushing decompressed output to sink zero
// or more times), and Finish feeds the final chunk of compressed bytes and
// flushes any remaining output through sink. Once Finish has been called
// (or an Append/Finish call fails, putting the instance into the terminal
// Failed state) the instance is spent; call Reset before reusing it for
// another block.
type Decompressor interface {
	Reset(workbuf []byte) error
	Append(sink Sink, source []byte) error
	Finish(sink Sink, final []byte) error
	ProcessedInputCount() int64
	ProcessedOutputCount() int64
}

// New returns the Decompressor for the given compression kind.
func New(kind core.CompressionKind) (Decompressor, error) {
	switch kind {
	case core.CompressionNone:
		return &identityDecompressor{}, nil
	case core.CompressionDeflate:
		return &deflateDecompressor{}, nil
	case core.CompressionHeatshrink11_4:
		return newHeatshrinkDecompressor(11, 4), nil
	case core.CompressionHeatshrink12_4:
		return newHeatshrinkDecompressor(12, 4), nil
	default:
		return nil, core.NewResultErrorf(core.InvalidCompressionType, "compress: unsupported compression kind %d", kind)
	}
}

type baseCounters struct {
	in, out int64
	failed  bool
}

func (c *baseCounters) ProcessedInputCount() int64  { return c.in }
func (c *baseCounters) ProcessedOutputCount() int64 { return c.out }

func (c *baseCounters) resetCounters() {
	c.in, c.out = 0, 0
	c.failed = false
}

// pushChunked calls sink with data split into workbuf-sized pieces (or
// whole, if workbuf is empty), tracking ProcessedOutputCount.
func (c *baseCounters) pushChunked(sink Sink, workbuf []byte, data []byte) error {
	chunkSize := len(workbuf)
	if chunkSize == 0 {
		chunkSize = len(data)
		if chunkSize == 0 {
			return nil
		}
	}
	for len(data) > 0 {
		n := chunkSize
		if n > len(data) {
			n = len(data)
		}
		if err := sink(data[:n]); err != nil {
			c.failed = true
			return core.WrapResult(core.DataUncompressionError, errors.Wrap(err, "compress: sink"))
		}
		c.out += int64(n)
		data = data[n:]
	}
	return nil
}

// identityDecompressor passes bytes through unchanged, for Compression=None
// blocks (so the rest of the pipeline can treat every block uniformly).
type identityDecompressor struct {
	baseCounters
	workbuf []byte
}

func (d *identityDecompressor) Reset(workbuf []byte) error {
	d.resetCounters()
	d.workbuf = workbuf
	return nil
}

func (d *identityDecompressor) Append(sink Sink, source []byte) error {
	if d.failed {
		return core.NewResultError(core.DataUncompressionError, "compress: identity: append after failure")
	}
	d.in += int64(len(source))
	return d.pushChunked(sink, d.workbuf, source)
}

func (d *identityDecompressor) Finish(sink Sink, final []byte) error {
	if d.failed {
		return core.NewResultError(core.DataUncompressionError, "compress: identity: finish after failure")
	}
	d.in += int64(len(final))
	return d.pushChunked(sink, d.workbuf, final)
}

// deflateDecompressor wraps klauspost/compress's drop-in replacement for
// the stdlib compress/flate reader. Compressed input is accumulated as it
// arrives and inflated in full once Finish supplies the last chunk; the
// decompressed output is then handed to sink in workbuf-sized pieces so
// callers still observe a bounded-memory push, even though deflate's
// symbol table requires the whole compressed block to be present.
type deflateDecompressor struct {
	baseCounters
	workbuf    []byte
	compressed bytes.Buffer
}

func (d *deflateDecompressor) Reset(workbuf []byte) error {
	d.resetCounters()
	d.workbuf = workbuf
	d.compressed.Reset()
	return nil
}

func (d *deflateDecompressor) Append(sink Sink, source []byte) error {
	if d.failed {
		return core.NewResultError(core.DataUncompressionError, "compress: deflate: append after failure")
	}
	d.in += int64(len(source))
	d.compressed.Write(source)
	return nil
}

func (d *deflateDecompressor) Finish(sink Sink, final []byte) error {
	if d.failed {
		return core.NewResultError(core.DataUncompressionError, "compress: deflate: finish after failure")
	}
	d.in += int64(len(final))
	d.compressed.Write(final)

	r := flate.NewReader(bytes.NewReader(d.compressed.Bytes()))
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		d.failed = true
		return core.WrapResult(core.DataUncompressionError, errors.Wrap(err, "compress: deflate inflate"))
	}
	return d.pushChunked(sink, d.workbuf, out)
}
