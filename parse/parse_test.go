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
package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gcodecontainer/bgcode/core"
	"github.com/gcodecontainer/bgcode/streams"
)

func writeBlock(t *testing.T, out *streams.MemoryOutput, header core.BlockHeader, params, data []byte, checksumKind core.ChecksumKind) {
	t.Helper()
	require.NoError(t, core.WriteBlockHeader(out, header))
	require.NoError(t, out.Write(params))
	require.NoError(t, out.Write(data))

	if checksumKind != core.ChecksumNone {
		running := core.NewChecksum(checksumKind)
		running.UpdateFromBlockHeader(header)
		running.Append(params)
		running.Append(data)
		require.NoError(t, out.Write(running.Bytes()))
	}
}

type recordingHandler struct {
	blocks []core.BlockKind
}

func (h *recordingHandler) HandleBlock(input core.Input, header core.BlockHeader) (HandleResult, error) {
	h.blocks = append(h.blocks, header.Kind)
	return HandleResult{Handled: false, Result: core.Success}, nil
}
func (h *recordingHandler) CanContinue() bool { return true }

func newMemInput(t *testing.T, data []byte, checksumKind core.ChecksumKind) *streams.MemoryInput {
	t.Helper()
	in := streams.NewMemoryInput(data)
	in.SetMetadata(core.Metadata{Version: 1, ChecksumKind: checksumKind})
	return in
}

func TestParseSkipsUnhandledBlocks(t *testing.T) {
	out := streams.NewMemoryOutput(core.ChecksumNone, 1)
	writeBlock(t, out, core.BlockHeader{Kind: core.FileMetadata, Compression: core.CompressionNone, UncompressedSize: 3},
		[]byte{0, 0}, []byte("abc"), core.ChecksumNone)
	writeBlock(t, out, core.BlockHeader{Kind: core.PrinterMetadata, Compression: core.CompressionNone, UncompressedSize: 2},
		[]byte{0, 0}, []byte("xy"), core.ChecksumNone)

	in := newMemInput(t, out.Bytes(), core.ChecksumNone)
	h := &recordingHandler{}
	require.NoError(t, Parse(in, h))
	assert.Equal(t, []core.BlockKind{core.FileMetadata, core.PrinterMetadata}, h.blocks)
	assert.True(t, in.IsFinished())
}

type captureBlockHandler struct {
	header   core.BlockHeader
	params   map[string]uint64
	payload  []byte
	checksum []byte
}

func newCaptureBlockHandler() *captureBlockHandler {
	return &captureBlockHandler{params: map[string]uint64{}}
}

func (c *captureBlockHandler) BlockStart(header core.BlockHeader) error {
	c.header = header
	return nil
}
func (c *captureBlockHandler) IntParam(name string, value uint64, byteWidth int) error {
	c.params[name] = value
	return nil
}
func (c *captureBlockHandler) StringParam(name string, value string) error { return nil }
func (c *captureBlockHandler) FloatParam(name string, value float64) error { return nil }
func (c *captureBlockHandler) Payload(chunk []byte) error {
	c.payload = append(c.payload, chunk...)
	return nil
}
func (c *captureBlockHandler) Checksum(chunk []byte) error {
	c.checksum = append([]byte{}, chunk...)
	return nil
}
func (c *captureBlockHandler) PayloadChunkBuffer() []byte { return nil }
func (c *captureBlockHandler) PayloadChunkSize() int      { return 0 }
func (c *captureBlockHandler) Status() Status             { return OK }

func TestParseBlockDeliversParamsPayloadAndChecksum(t *testing.T) {
	out := streams.NewMemoryOutput(core.ChecksumCRC32, 1)
	header := core.BlockHeader{Kind: core.GCode, Compression: core.CompressionNone, UncompressedSize: 5}
	writeBlock(t, out, header, []byte{0, 0}, []byte("G1 X0"), core.ChecksumCRC32)

	in := newMemInput(t, out.Bytes(), core.ChecksumCRC32)
	got, err := core.ReadBlockHeader(in)
	require.NoError(t, err)

	h := newCaptureBlockHandler()
	require.NoError(t, ParseBlock(in, got, h))
	assert.EqualValues(t, 0, h.params["encoding_type"])
	assert.Equal(t, "G1 X0", string(h.payload))
	assert.Len(t, h.checksum, 4)
}

func TestParseBlockThumbnailParams(t *testing.T) {
	out := streams.NewMemoryOutput(core.ChecksumNone, 1)
	header := core.BlockHeader{Kind: core.Thumbnail, Compression: core.CompressionNone, UncompressedSize: 3}
	params := []byte{0x00, 0x00, 0x40, 0x00, 0x40, 0x00} // format=0, width=64, height=64
	writeBlock(t, out, header, params, []byte{1, 2, 3}, core.ChecksumNone)

	in := newMemInput(t, out.Bytes(), core.ChecksumNone)
	got, err := core.ReadBlockHeader(in)
	require.NoError(t, err)

	h := newCaptureBlockHandler()
	require.NoError(t, ParseBlock(in, got, h))
	assert.EqualValues(t, 0, h.params["format"])
	assert.EqualValues(t, 64, h.params["width"])
	assert.EqualValues(t, 64, h.params["height"])
}

func TestSkipBlockAdvancesPastContent(t *testing.T) {
	out := streams.NewMemoryOutput(core.ChecksumCRC32, 1)
	header := core.BlockHeader{Kind: core.FileMetadata, Compression: core.CompressionNone, UncompressedSize: 4}
	writeBlock(t, out, header, []byte{0, 0}, []byte("data"), core.ChecksumCRC32)
	out.Write([]byte("TAIL"))

	in := newMemInput(t, out.Bytes(), core.ChecksumCRC32)
	got, err := core.ReadBlockHeader(in)
	require.NoError(t, err)
	require.NoError(t, SkipBlock(in, got))

	rest := make([]byte, 4)
	require.NoError(t, in.Read(rest))
	assert.Equal(t, "TAIL", string(rest))
}

func TestFindBlockSkipsOthers(t *testing.T) {
	out := streams.NewMemoryOutput(core.ChecksumNone, 1)
	writeBlock(t, out, core.BlockHeader{Kind: core.FileMetadata, Compression: core.CompressionNone, UncompressedSize: 1},
		[]byte{0, 0}, []byte("a"), core.ChecksumNone)
	writeBlock(t, out, core.BlockHeader{Kind: core.PrinterMetadata, Compression: core.CompressionNone, UncompressedSize: 1},
		[]byte{0, 0}, []byte("b"), core.ChecksumNone)

	in := newMemInput(t, out.Bytes(), core.ChecksumNone)
	header, err := FindBlock(in, core.PrinterMetadata)
	require.NoError(t, err)
	assert.Equal(t, core.PrinterMetadata, header.Kind)
}

func TestFindBlockNotFound(t *testing.T) {
	out := streams.NewMemoryOutput(core.ChecksumNone, 1)
	writeBlock(t, out, core.BlockHeader{Kind: core.FileMetadata, Compression: core.CompressionNone, UncompressedSize: 1},
		[]byte{0, 0}, []byte("a"), core.ChecksumNone)

	in := newMemInput(t, out.Bytes(), core.ChecksumNone)
	_, err := FindBlock(in, core.Thumbnail)
	require.Error(t, err)
	assert.Equal(t, core.BlockNotFound, core.CodeOf(err))
}
