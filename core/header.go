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

import (
	"bytes"

	"github.com/pkg/errors"
)

// StreamHeader is the fixed-width prelude of every valid container.
type StreamHeader struct {
	Magic        [4]byte
	Version      uint32
	ChecksumKind ChecksumKind
}

// ReadStreamHeader reads and validates a StreamHeader. If maxVersion is
// non-nil, the stream's version must not exceed it.
func ReadStreamHeader(in RawInput, maxVersion *uint32) (StreamHeader, error) {
	var hdr StreamHeader

	magicBuf := make([]byte, 4)
	if err := in.Read(magicBuf); err != nil {
		return hdr, WrapResult(ReadError, errors.Wrap(err, "core: read magic"))
	}
	copy(hdr.Magic[:], magicBuf)
	if !bytes.Equal(hdr.Magic[:], Magic[:]) {
		return hdr, NewResultError(InvalidMagicNumber, "core: stream magic mismatch")
	}

	version, err := ReadIntLE(in, 4)
	if err != nil {
		return hdr, err
	}
	hdr.Version = uint32(version)
	if maxVersion != nil && hdr.Version > *maxVersion {
		return hdr, NewResultErrorf(InvalidVersionNumber,
			"core: stream version %d exceeds maximum %d", hdr.Version, *maxVersion)
	}

	kind, err := ReadIntLE(in, 2)
	if err != nil {
		return hdr, err
	}
	hdr.ChecksumKind = ChecksumKind(kind)
	if !hdr.ChecksumKind.Valid() {
		return hdr, NewResultErrorf(InvalidChecksumType,
			"core: invalid checksum kind %d", hdr.ChecksumKind)
	}

	return hdr, nil
}

// WriteStreamHeader validates and writes a StreamHeader.
func WriteStreamHeader(out RawOutput, hdr StreamHeader) error {
	if !bytes.Equal(hdr.Magic[:], Magic[:]) {
		return NewResultError(InvalidMagicNumber, "core: refusing to write invalid magic")
	}
	if hdr.Version > MaxFormatVersion {
		return NewResultErrorf(InvalidVersionNumber,
			"core: refusing to write unsupported version %d", hdr.Version)
	}
	if !hdr.ChecksumKind.Valid() {
		return NewResultErrorf(InvalidChecksumType,
			"core: refusing to write invalid checksum kind %d", hdr.ChecksumKind)
	}

	if err := out.Write(hdr.Magic[:]); err != nil {
		return WrapResult(WriteError, errors.Wrap(err, "core: write magic"))
	}
	if err := WriteIntLE(out, uint64(hdr.Version), 4); err != nil {
		return err
	}
	return WriteIntLE(out, uint64(hdr.ChecksumKind), 2)
}

// BlockHeader is the fixed-width prelude of every block.
type BlockHeader struct {
	Kind             BlockKind
	Compression      CompressionKind
	UncompressedSize uint32
	CompressedSize   uint32
}

// ReadBlockHeader reads and validates a BlockHeader. compressed_size is
// only present on the wire when Compression != CompressionNone; otherwise
// it is set equal to UncompressedSize.
func ReadBlockHeader(in RawInput) (BlockHeader, error) {
	var hdr BlockHeader

	kind, err := ReadIntLE(in, 2)
	if err != nil {
		return hdr, err
	}
	hdr.Kind = BlockKind(kind)
	if !hdr.Kind.Valid() {
		return hdr, NewResultErrorf(InvalidBlockType, "core: invalid block kind %d", hdr.Kind)
	}

	compression, err := ReadIntLE(in, 2)
	if err != nil {
		return hdr, err
	}
	hdr.Compression = CompressionKind(compression)
	if !hdr.Compression.Valid() {
		return hdr, NewResultErrorf(InvalidCompressionType,
			"core: invalid compression kind %d", hdr.Compression)
	}

	uncompressedSize, err := ReadIntLE(in, 4)
	if err != nil {
		return hdr, err
	}
	hdr.UncompressedSize = uint32(uncompressedSize)

	if hdr.Compression != CompressionNone {
		compressedSize, err := ReadIntLE(in, 4)
		if err != nil {
			return hdr, err
		}
		hdr.CompressedSize = uint32(compressedSize)
	} else {
		hdr.CompressedSize = hdr.UncompressedSize
	}

	return hdr, nil
}

// WriteBlockHeader validates and writes a BlockHeader, omitting
// compressed_size from the wire when Compression is CompressionNone.
func WriteBlockHeader(out RawOutput, hdr BlockHeader) error {
	if !hdr.Kind.Valid() {
		return NewResultErrorf(InvalidBlockType, "core: refusing to write invalid block kind %d", hdr.Kind)
	}
	if !hdr.Compression.Valid() {
		return NewResultErrorf(InvalidCompressionType,
			"core: refusing to write invalid compression kind %d", hdr.Compression)
	}

	if err := WriteIntLE(out, uint64(hdr.Kind), 2); err != nil {
		return err
	}
	if err := WriteIntLE(out, uint64(hdr.Compression), 2); err != nil {
		return err
	}
	if err := WriteIntLE(out, uint64(hdr.UncompressedSize), 4); err != nil {
		return err
	}
	if hdr.Compression != CompressionNone {
		if err := WriteIntLE(out, uint64(hdr.CompressedSize), 4); err != nil {
			return err
		}
	}
	return nil
}

// BlockParametersSize returns the fixed width, in bytes, of the typed
// parameter prelude for the given block kind.
func BlockParametersSize(kind BlockKind) int {
	if kind == Thumbnail {
		return 6
	}
	return 2
}

// ParametersSize returns BlockParametersSize(h.Kind).
func (h BlockHeader) ParametersSize() int { return BlockParametersSize(h.Kind) }

// PayloadSize returns the parameters size plus the on-wire data size
// (compressed_size if compressed, else uncompressed_size).
func (h BlockHeader) PayloadSize() int {
	dataSize := h.UncompressedSize
	if h.Compression != CompressionNone {
		dataSize = h.CompressedSize
	}
	return h.ParametersSize() + int(dataSize)
}

// ContentSize returns the payload size plus the checksum trailer size for
// the given stream checksum kind.
func (h BlockHeader) ContentSize(checksumKind ChecksumKind) int {
	return h.PayloadSize() + checksumKind.Size()
}

// BlockPayloadSize and BlockContentSize are free-function equivalents of
// the BlockHeader methods, matching the public API surface named in the
// spec.
func BlockPayloadSize(h BlockHeader) int                         { return h.PayloadSize() }
func BlockContentSize(ck ChecksumKind, h BlockHeader) int         { return h.ContentSize(ck) }
