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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memBuf is a tiny RawInput/RawOutput adapter over a bytes.Buffer used to
// exercise the header codec without pulling in the streams package.
type memBuf struct {
	bytes.Buffer
}

func (m *memBuf) Read(buf []byte) error {
	n, err := m.Buffer.Read(buf)
	if n == len(buf) {
		return nil
	}
	if err == nil {
		err = ErrShortRead
	}
	return err
}

func (m *memBuf) Write(buf []byte) error {
	_, err := m.Buffer.Write(buf)
	return err
}

func TestStreamHeaderRoundTrip(t *testing.T) {
	cases := []StreamHeader{
		{Magic: Magic, Version: 1, ChecksumKind: ChecksumNone},
		{Magic: Magic, Version: 1, ChecksumKind: ChecksumCRC32},
	}
	for _, want := range cases {
		buf := &memBuf{}
		require.NoError(t, WriteStreamHeader(buf, want))
		got, err := ReadStreamHeader(buf, nil)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestStreamHeaderMinimalEmptyContainerNoChecksum(t *testing.T) {
	raw := []byte{0x47, 0x43, 0x44, 0x45, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00}
	buf := &memBuf{}
	buf.Write(raw)
	hdr, err := ReadStreamHeader(buf, nil)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), hdr.Version)
	assert.Equal(t, ChecksumNone, hdr.ChecksumKind)
	assert.True(t, buf.Len() == 0)
}

func TestStreamHeaderMinimalEmptyContainerCRC32(t *testing.T) {
	raw := []byte{0x47, 0x43, 0x44, 0x45, 0x01, 0x00, 0x00, 0x00, 0x01, 0x00}
	buf := &memBuf{}
	buf.Write(raw)
	hdr, err := ReadStreamHeader(buf, nil)
	require.NoError(t, err)
	assert.Equal(t, ChecksumCRC32, hdr.ChecksumKind)
}

func TestStreamHeaderBadMagic(t *testing.T) {
	raw := []byte{0x47, 0x43, 0x44, 0x46, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00}
	buf := &memBuf{}
	buf.Write(raw)
	_, err := ReadStreamHeader(buf, nil)
	require.Error(t, err)
	assert.Equal(t, InvalidMagicNumber, CodeOf(err))
}

func TestStreamHeaderVersionCeiling(t *testing.T) {
	raw := []byte{0x47, 0x43, 0x44, 0x45, 0xFF, 0x00, 0x00, 0x00, 0x00, 0x00}
	buf := &memBuf{}
	buf.Write(raw)
	max := uint32(1)
	_, err := ReadStreamHeader(buf, &max)
	require.Error(t, err)
	assert.Equal(t, InvalidVersionNumber, CodeOf(err))
}

func TestBlockHeaderRoundTrip(t *testing.T) {
	cases := []BlockHeader{
		{Kind: Thumbnail, Compression: CompressionNone, UncompressedSize: 4, CompressedSize: 4},
		{Kind: GCode, Compression: CompressionDeflate, UncompressedSize: 100, CompressedSize: 40},
	}
	for _, want := range cases {
		buf := &memBuf{}
		require.NoError(t, WriteBlockHeader(buf, want))
		got, err := ReadBlockHeader(buf)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestBlockHeaderCompressionNoneHasNoWireCompressedSize(t *testing.T) {
	hdr := BlockHeader{Kind: GCode, Compression: CompressionNone, UncompressedSize: 10}
	buf := &memBuf{}
	require.NoError(t, WriteBlockHeader(buf, hdr))
	// kind(2) + compression(2) + uncompressed_size(4), no compressed_size
	assert.Equal(t, 8, buf.Len())
}

func TestBlockParametersAndSizes(t *testing.T) {
	assert.Equal(t, 2, BlockParametersSize(GCode))
	assert.Equal(t, 2, BlockParametersSize(FileMetadata))
	assert.Equal(t, 6, BlockParametersSize(Thumbnail))

	hdr := BlockHeader{Kind: Thumbnail, Compression: CompressionNone, UncompressedSize: 4, CompressedSize: 4}
	assert.Equal(t, 10, hdr.PayloadSize()) // 6 params + 4 data
	assert.Equal(t, 10, hdr.ContentSize(ChecksumNone))
	assert.Equal(t, 14, hdr.ContentSize(ChecksumCRC32))
}

func TestThumbnailScenario(t *testing.T) {
	// stream header + thumbnail block header + params + payload, uncompressed, no checksum
	var wire bytes.Buffer
	wire.Write([]byte{0x47, 0x43, 0x44, 0x45, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00})
	wire.Write([]byte{0x05, 0x00, 0x00, 0x00, 0x04, 0x00, 0x00, 0x00})
	wire.Write([]byte{0x00, 0x00, 0x01, 0x00, 0x01, 0x00})
	wire.Write([]byte{0xAA, 0xBB, 0xCC, 0xDD})

	buf := &memBuf{}
	buf.Write(wire.Bytes())

	sh, err := ReadStreamHeader(buf, nil)
	require.NoError(t, err)
	assert.Equal(t, ChecksumNone, sh.ChecksumKind)

	bh, err := ReadBlockHeader(buf)
	require.NoError(t, err)
	assert.Equal(t, Thumbnail, bh.Kind)
	assert.Equal(t, CompressionNone, bh.Compression)
	assert.Equal(t, uint32(4), bh.UncompressedSize)
	assert.Equal(t, uint32(4), bh.CompressedSize)

	format, err := ReadIntLE(buf, 2)
	require.NoError(t, err)
	width, err := ReadIntLE(buf, 2)
	require.NoError(t, err)
	height, err := ReadIntLE(buf, 2)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), format)
	assert.Equal(t, uint64(1), width)
	assert.Equal(t, uint64(1), height)

	payload := make([]byte, 4)
	require.NoError(t, buf.Read(payload))
	assert.Equal(t, []byte{0xAA, 0xBB, 0xCC, 0xDD}, payload)
}
