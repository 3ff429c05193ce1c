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
// Package parse implements the parse driver: read successive block
// headers from a stream and delegate each block to a ParseHandler,
// skipping blocks no handler in the chain claims.
package parse

import (
	"github.com/pkg/errors"

	"github.com/gcodecontainer/bgcode/core"
)

// Status is returned by a BlockParseHandler to cooperatively request that
// the parse driver stop after the current block.
type Status int

const (
	OK Status = iota
	Stop
)

// HandleResult is the outcome of a ParseHandler's HandleBlock call.
type HandleResult struct {
	Handled bool
	Result  core.Result
}

// ParseHandler is middleware wrapped around the parse driver's block loop:
// outermost wraps innermost, each deciding whether it claims the current
// block or delegates further in.
type ParseHandler interface {
	HandleBlock(input core.Input, header core.BlockHeader) (HandleResult, error)
	CanContinue() bool
}

// BlockParseHandler is the event sink invoked by ParseBlock as it drives a
// single block end to end.
type BlockParseHandler interface {
	BlockStart(header core.BlockHeader) error
	IntParam(name string, value uint64, byteWidth int) error
	StringParam(name string, value string) error
	FloatParam(name string, value float64) error
	Payload(chunk []byte) error
	Checksum(chunk []byte) error
	PayloadChunkBuffer() []byte
	PayloadChunkSize() int
	Status() Status
}

const defaultChunkSize = 64

// Parse loops until end-of-stream or the handler refuses to continue.
func Parse(input core.Input, handler ParseHandler) error {
	for {
		if input.IsFinished() {
			return nil
		}

		// input.IsFinished() above already caught the legitimate
		// clean-EOF-at-block-boundary case; any error reaching here is a
		// short read partway through a header, which must surface as
		// ReadError rather than be mistaken for a second clean EOF.
		header, err := core.ReadBlockHeader(input)
		if err != nil {
			return errors.WithStack(err)
		}

		result, err := handler.HandleBlock(input, header)
		if err != nil {
			return errors.WithStack(err)
		}
		if result.Result != core.Success {
			return core.NewResultErrorf(result.Result, "parse: handler rejected block %s", header.Kind)
		}
		if !result.Handled {
			if err := SkipBlock(input, header); err != nil {
				return errors.WithStack(err)
			}
		}

		if !handler.CanContinue() {
			return nil
		}
	}
}

// ParseBlock drives a single block end to end: parameters, payload chunks,
// and (if the stream declares a checksum kind) the trailing checksum
// bytes, delivering each as an event on handler.
func ParseBlock(input core.Input, header core.BlockHeader, handler BlockParseHandler) error {
	if err := handler.BlockStart(header); err != nil {
		return errors.WithStack(err)
	}

	if err := readParams(input, header, handler); err != nil {
		return errors.WithStack(err)
	}

	if err := streamPayload(input, header, handler); err != nil {
		return errors.WithStack(err)
	}

	checksumKind := input.Metadata().ChecksumKind
	if checksumKind != core.ChecksumNone {
		trailer := make([]byte, checksumKind.Size())
		if err := input.Read(trailer); err != nil {
			return errors.WithStack(err)
		}
		if err := handler.Checksum(trailer); err != nil {
			return errors.WithStack(err)
		}
	}

	return nil
}

func readParams(input core.Input, header core.BlockHeader, handler BlockParseHandler) error {
	switch header.Kind {
	case core.Thumbnail:
		format, err := core.ReadIntLE(input, 2)
		if err != nil {
			return err
		}
		if err := handler.IntParam("format", format, 2); err != nil {
			return errors.WithStack(err)
		}
		width, err := core.ReadIntLE(input, 2)
		if err != nil {
			return err
		}
		if err := handler.IntParam("width", width, 2); err != nil {
			return errors.WithStack(err)
		}
		height, err := core.ReadIntLE(input, 2)
		if err != nil {
			return err
		}
		return handler.IntParam("height", height, 2)
	default:
		encoding, err := core.ReadIntLE(input, 2)
		if err != nil {
			return err
		}
		return handler.IntParam("encoding_type", encoding, 2)
	}
}

func streamPayload(input core.Input, header core.BlockHeader, handler BlockParseHandler) error {
	dataSize := header.UncompressedSize
	if header.Compression != core.CompressionNone {
		dataSize = header.CompressedSize
	}
	remaining := int64(dataSize)

	buf := handler.PayloadChunkBuffer()
	if len(buf) == 0 {
		size := handler.PayloadChunkSize()
		if size <= 0 {
			size = defaultChunkSize
		}
		buf = make([]byte, size)
	}

	for remaining > 0 {
		n := int64(len(buf))
		if n > remaining {
			n = remaining
		}
		chunk := buf[:n]
		if err := input.Read(chunk); err != nil {
			return errors.WithStack(err)
		}
		if err := handler.Payload(chunk); err != nil {
			return errors.WithStack(err)
		}
		remaining -= n
	}
	return nil
}

// SkipBlock advances input past the remainder of the current block
// (payload plus trailing checksum, if any), using input.Skip when the
// stream supports it cheaply — every core.Input implements Skip, so this
// always uses it rather than falling back to read-and-discard.
func SkipBlock(input core.Input, header core.BlockHeader) error {
	checksumKind := input.Metadata().ChecksumKind
	return input.Skip(int64(header.ContentSize(checksumKind)))
}

// FindBlock reads block headers, skipping blocks that don't match kind,
// until it finds one that does or reaches end-of-stream (core.BlockNotFound).
func FindBlock(input core.Input, kind core.BlockKind) (core.BlockHeader, error) {
	for {
		if input.IsFinished() {
			return core.BlockHeader{}, core.NewResultErrorf(core.BlockNotFound,
				"parse: no block of kind %s found before end of stream", kind)
		}
		header, err := core.ReadBlockHeader(input)
		if err != nil {
			return core.BlockHeader{}, errors.WithStack(err)
		}
		if header.Kind == kind {
			return header, nil
		}
		if err := SkipBlock(input, header); err != nil {
			return core.BlockHeader{}, errors.WithStack(err)
		}
	}
}
