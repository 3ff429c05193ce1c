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
// Package writer implements the symmetric write-side counterpart to
// parse/handlers: BlockWriter streams a block header, its typed
// parameters, and payload bytes while accumulating a running checksum,
// emitting the trailing checksum bytes on finish. ChecksumWriter is the
// same accumulation logic exposed as a standalone decorator.
package writer

import (
	"github.com/pkg/errors"

	"github.com/gcodecontainer/bgcode/core"
)

// ChecksumWriter decorates a core.Output, folding every byte written
// through it into a running core.Checksum while forwarding the bytes
// unchanged — usable standalone by callers that want to compute a
// checksum while writing to any output stream.
type ChecksumWriter struct {
	out     core.Output
	running core.Checksum
}

// NewChecksumWriter wraps out, starting a fresh checksum of kind.
func NewChecksumWriter(out core.Output, kind core.ChecksumKind) *ChecksumWriter {
	return &ChecksumWriter{out: out, running: core.NewChecksum(kind)}
}

func (w *ChecksumWriter) Write(buf []byte) error {
	if err := w.out.Write(buf); err != nil {
		return errors.WithStack(err)
	}
	w.running.Append(buf)
	return nil
}

func (w *ChecksumWriter) Metadata() core.Metadata { return w.out.Metadata() }

// Checksum returns a copy of the running checksum; its Bytes method gives
// the current wire bytes.
func (w *ChecksumWriter) Checksum() core.Checksum { return w.running }

// Reset restarts the running checksum without touching the underlying
// output, for reuse across blocks.
func (w *ChecksumWriter) Reset(kind core.ChecksumKind) {
	w.running = core.NewChecksum(kind)
}

// BlockWriter wraps a core.Output and owns a running checksum scoped to
// the block currently being written; it is single-use per block:
// StartBlock, then any number of WriteData calls bounded by the block's
// declared sizes, then FinishBlock.
type BlockWriter struct {
	cw       *ChecksumWriter
	header   core.BlockHeader
	written  int64
	capacity int64
}

// NewBlockWriter constructs a BlockWriter over out, whose declared
// checksum kind (out.Metadata().ChecksumKind) governs the trailer emitted
// by FinishBlock.
func NewBlockWriter(out core.Output) *BlockWriter {
	return &BlockWriter{cw: NewChecksumWriter(out, out.Metadata().ChecksumKind)}
}

// ParamWriter is passed to StartBlock's writeParams callback so it can
// emit the block's typed parameter prelude through the same checksummed
// writer used for the header and payload.
type ParamWriter struct {
	bw *BlockWriter
}

// IntParam writes value as the low byteWidth bytes, little-endian.
func (p ParamWriter) IntParam(value uint64, byteWidth int) error {
	return core.WriteIntLE(p.bw.cw, value, byteWidth)
}

// StartBlock writes header, then invokes writeParams with a ParamWriter
// so the caller can emit the block's typed parameter prelude. Every byte
// written (header and parameters alike) is folded into the running
// checksum.
func (bw *BlockWriter) StartBlock(header core.BlockHeader, writeParams func(ParamWriter) error) error {
	bw.cw.Reset(bw.cw.Metadata().ChecksumKind)
	bw.header = header
	bw.written = 0
	dataSize := header.UncompressedSize
	if header.Compression != core.CompressionNone {
		dataSize = header.CompressedSize
	}
	bw.capacity = int64(dataSize)

	if err := core.WriteBlockHeader(bw.cw, header); err != nil {
		return errors.WithStack(err)
	}

	if writeParams != nil {
		if err := writeParams(ParamWriter{bw: bw}); err != nil {
			return errors.WithStack(err)
		}
	}
	return nil
}

// WriteData writes payload bytes, failing with core.WriteError if the
// write would exceed the block's declared payload size.
func (bw *BlockWriter) WriteData(data []byte) error {
	if bw.written+int64(len(data)) > bw.capacity {
		return core.NewResultErrorf(core.WriteError,
			"writer: block %s payload overflow: %d + %d exceeds %d",
			bw.header.Kind, bw.written, len(data), bw.capacity)
	}
	if err := bw.cw.Write(data); err != nil {
		return errors.WithStack(err)
	}
	bw.written += int64(len(data))
	return nil
}

// FinishBlock writes the trailing checksum bytes (if the stream declares
// a non-None checksum kind) and resets the writer's internal counters.
func (bw *BlockWriter) FinishBlock() error {
	checksumKind := bw.cw.Metadata().ChecksumKind
	if checksumKind != core.ChecksumNone {
		if err := bw.cw.out.Write(bw.cw.running.Bytes()); err != nil {
			return errors.WithStack(err)
		}
	}
	bw.written = 0
	bw.capacity = 0
	return nil
}
