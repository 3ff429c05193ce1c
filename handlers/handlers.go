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
// Package handlers implements the composable ParseHandler/BlockParseHandler
// middleware chain: order checking, checksum verification, the
// all-blocks adapter, the unpacking decorator, and the always-skip
// terminal handler. The canonical reader composition, outside to inside,
// is OrderChecking(ChecksumChecking(AllBlocks(Unpacking(application)))).
package handlers

import (
	"github.com/pkg/errors"

	"github.com/gcodecontainer/bgcode/checksum"
	"github.com/gcodecontainer/bgcode/compress"
	"github.com/gcodecontainer/bgcode/core"
	"github.com/gcodecontainer/bgcode/parse"
)

// SkipperParseHandler always claims the block and skips over it, leaving
// the content unread by anything further in.
type SkipperParseHandler struct{}

func (SkipperParseHandler) HandleBlock(input core.Input, header core.BlockHeader) (parse.HandleResult, error) {
	if err := parse.SkipBlock(input, header); err != nil {
		return parse.HandleResult{}, errors.WithStack(err)
	}
	return parse.HandleResult{Handled: true, Result: core.Success}, nil
}
func (SkipperParseHandler) CanContinue() bool { return true }

// OrderCheckingParseHandler wraps inner and rejects any block whose kind
// is not a legal successor of the previously observed block kind,
// per the ordering DFA.
type OrderCheckingParseHandler struct {
	inner    parse.ParseHandler
	previous core.BlockKind
}

// NewOrderCheckingParseHandler wraps inner with order enforcement.
func NewOrderCheckingParseHandler(inner parse.ParseHandler) *OrderCheckingParseHandler {
	return &OrderCheckingParseHandler{inner: inner, previous: core.NoPredecessor}
}

func (h *OrderCheckingParseHandler) HandleBlock(input core.Input, header core.BlockHeader) (parse.HandleResult, error) {
	if !core.AllowedSuccessor(h.previous, header.Kind) {
		return parse.HandleResult{Handled: false, Result: core.InvalidSequenceOfBlocks}, nil
	}
	h.previous = header.Kind
	return h.inner.HandleBlock(input, header)
}

func (h *OrderCheckingParseHandler) CanContinue() bool { return h.inner.CanContinue() }

// ChecksumCheckingParseHandler wraps input in a checksum-verifying adapter
// scoped to the current block before delegating to inner; it then
// verifies the computed checksum matches once the block is fully drained,
// regardless of whether inner claimed it.
type ChecksumCheckingParseHandler struct {
	inner   parse.ParseHandler
	scratch []byte
}

// NewChecksumCheckingParseHandler wraps inner with checksum verification.
// scratch must be at least 1 byte; it is reused across blocks.
func NewChecksumCheckingParseHandler(inner parse.ParseHandler, scratch []byte) *ChecksumCheckingParseHandler {
	return &ChecksumCheckingParseHandler{inner: inner, scratch: scratch}
}

func (h *ChecksumCheckingParseHandler) HandleBlock(input core.Input, header core.BlockHeader) (parse.HandleResult, error) {
	checksumKind := input.Metadata().ChecksumKind
	adapter := checksum.NewVerifyingInput(input, checksumKind, header, h.scratch)

	result, err := h.inner.HandleBlock(adapter, header)
	if err != nil {
		return parse.HandleResult{}, errors.WithStack(err)
	}
	if result.Result != core.Success {
		return result, nil
	}
	if !result.Handled {
		if err := parse.SkipBlock(adapter, header); err != nil {
			return parse.HandleResult{}, errors.WithStack(err)
		}
	}

	if !adapter.IsChecksumCorrect() {
		return parse.HandleResult{Handled: true, Result: core.InvalidChecksum}, nil
	}
	return parse.HandleResult{Handled: true, Result: core.Success}, nil
}

func (h *ChecksumCheckingParseHandler) CanContinue() bool { return h.inner.CanContinue() }

// AllBlocksParseHandler claims every block and drives it through
// parse.ParseBlock into blockHandler.
type AllBlocksParseHandler struct {
	blockHandler parse.BlockParseHandler
}

// NewAllBlocksParseHandler adapts blockHandler into a ParseHandler.
func NewAllBlocksParseHandler(blockHandler parse.BlockParseHandler) *AllBlocksParseHandler {
	return &AllBlocksParseHandler{blockHandler: blockHandler}
}

func (h *AllBlocksParseHandler) HandleBlock(input core.Input, header core.BlockHeader) (parse.HandleResult, error) {
	if err := parse.ParseBlock(input, header, h.blockHandler); err != nil {
		return parse.HandleResult{}, errors.WithStack(err)
	}
	return parse.HandleResult{Handled: true, Result: core.Success}, nil
}

func (h *AllBlocksParseHandler) CanContinue() bool {
	return h.blockHandler.Status() != parse.Stop
}

// UnpackingBlockParseHandler interposes between the parse driver's Payload
// calls and inner: on BlockStart it resets a decompressor sized for
// header.Compression using workbuf; each Payload call feeds the
// decompressor, which pushes uncompressed chunks on to inner.Payload. All
// other events pass through unchanged.
type UnpackingBlockParseHandler struct {
	inner   parse.BlockParseHandler
	workbuf []byte

	decompressor  compress.Decompressor
	header        core.BlockHeader
	remainingData int64
}

// NewUnpackingBlockParseHandler wraps inner, using workbuf as the
// decompressor's internal scratch space.
func NewUnpackingBlockParseHandler(inner parse.BlockParseHandler, workbuf []byte) *UnpackingBlockParseHandler {
	return &UnpackingBlockParseHandler{inner: inner, workbuf: workbuf}
}

func (h *UnpackingBlockParseHandler) BlockStart(header core.BlockHeader) error {
	h.header = header
	dataSize := header.UncompressedSize
	if header.Compression != core.CompressionNone {
		dataSize = header.CompressedSize
	}
	h.remainingData = int64(dataSize)

	d, err := compress.New(header.Compression)
	if err != nil {
		return errors.WithStack(err)
	}
	h.decompressor = d
	if err := h.decompressor.Reset(h.workbuf); err != nil {
		return errors.WithStack(err)
	}
	return h.inner.BlockStart(header)
}

func (h *UnpackingBlockParseHandler) IntParam(name string, value uint64, byteWidth int) error {
	return h.inner.IntParam(name, value, byteWidth)
}
func (h *UnpackingBlockParseHandler) StringParam(name string, value string) error {
	return h.inner.StringParam(name, value)
}
func (h *UnpackingBlockParseHandler) FloatParam(name string, value float64) error {
	return h.inner.FloatParam(name, value)
}

func (h *UnpackingBlockParseHandler) Payload(chunk []byte) error {
	h.remainingData -= int64(len(chunk))
	sink := func(data []byte) error { return h.inner.Payload(data) }
	if h.remainingData <= 0 {
		return h.decompressor.Finish(sink, chunk)
	}
	return h.decompressor.Append(sink, chunk)
}

func (h *UnpackingBlockParseHandler) Checksum(chunk []byte) error { return h.inner.Checksum(chunk) }
func (h *UnpackingBlockParseHandler) PayloadChunkBuffer() []byte  { return h.inner.PayloadChunkBuffer() }
func (h *UnpackingBlockParseHandler) PayloadChunkSize() int       { return h.inner.PayloadChunkSize() }
func (h *UnpackingBlockParseHandler) Status() parse.Status        { return h.inner.Status() }
