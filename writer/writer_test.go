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
package writer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gcodecontainer/bgcode/core"
	"github.com/gcodecontainer/bgcode/parse"
	"github.com/gcodecontainer/bgcode/streams"
)

func TestBlockWriterRoundTripWithChecksum(t *testing.T) {
	out := streams.NewMemoryOutput(core.ChecksumCRC32, 1)
	bw := NewBlockWriter(out)

	header := core.BlockHeader{Kind: core.FileMetadata, Compression: core.CompressionNone, UncompressedSize: 5}
	require.NoError(t, bw.StartBlock(header, func(p ParamWriter) error {
		return p.IntParam(0, 2) // encoding_type = 0
	}))
	require.NoError(t, bw.WriteData([]byte("hello")))
	require.NoError(t, bw.FinishBlock())

	in := streams.NewMemoryInput(out.Bytes())
	in.SetMetadata(core.Metadata{Version: 1, ChecksumKind: core.ChecksumCRC32})

	gotHeader, err := core.ReadBlockHeader(in)
	require.NoError(t, err)
	assert.Equal(t, header.Kind, gotHeader.Kind)
	assert.EqualValues(t, 5, gotHeader.UncompressedSize)

	require.NoError(t, parse.SkipBlock(in, gotHeader))
	assert.True(t, in.IsFinished())
}

func TestBlockWriterProducesVerifiableChecksum(t *testing.T) {
	out := streams.NewMemoryOutput(core.ChecksumCRC32, 1)
	bw := NewBlockWriter(out)

	header := core.BlockHeader{Kind: core.GCode, Compression: core.CompressionNone, UncompressedSize: 11}
	require.NoError(t, bw.StartBlock(header, func(p ParamWriter) error {
		return p.IntParam(0, 2)
	}))
	require.NoError(t, bw.WriteData([]byte("G1 X0 Y0")))
	require.NoError(t, bw.WriteData([]byte(" G1")))
	require.NoError(t, bw.FinishBlock())

	raw := out.Bytes()

	expected := core.NewChecksum(core.ChecksumCRC32)
	expected.UpdateFromBlockHeader(header)
	expected.Append([]byte{0, 0})
	expected.Append([]byte("G1 X0 Y0 G1"))

	assert.True(t, expected.Matches(raw[len(raw)-4:]))
}

func TestWriteDataRejectsOverflow(t *testing.T) {
	out := streams.NewMemoryOutput(core.ChecksumNone, 1)
	bw := NewBlockWriter(out)

	header := core.BlockHeader{Kind: core.FileMetadata, Compression: core.CompressionNone, UncompressedSize: 3}
	require.NoError(t, bw.StartBlock(header, func(p ParamWriter) error {
		return p.IntParam(0, 2)
	}))
	require.NoError(t, bw.WriteData([]byte("abc")))
	err := bw.WriteData([]byte("x"))
	require.Error(t, err)
	assert.Equal(t, core.WriteError, core.CodeOf(err))
}

func TestChecksumWriterStandalone(t *testing.T) {
	out := streams.NewMemoryOutput(core.ChecksumCRC32, 1)
	cw := NewChecksumWriter(out, core.ChecksumCRC32)
	require.NoError(t, cw.Write([]byte("abc")))
	require.NoError(t, cw.Write([]byte("def")))

	expected := core.NewChecksum(core.ChecksumCRC32)
	expected.Append([]byte("abcdef"))
	assert.Equal(t, expected.Bytes(), cw.Checksum().Bytes())
	assert.Equal(t, "abcdef", string(out.Bytes()))
}
