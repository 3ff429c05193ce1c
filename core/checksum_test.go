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
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChecksumPartitionInvariance(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	data := make([]byte, 4096)
	r.Read(data)

	whole := NewChecksum(ChecksumCRC32)
	whole.Append(data)

	partitioned := NewChecksum(ChecksumCRC32)
	for len(data) > 0 {
		n := 1 + r.Intn(37)
		if n > len(data) {
			n = len(data)
		}
		partitioned.Append(data[:n])
		data = data[n:]
	}

	assert.Equal(t, whole.Bytes(), partitioned.Bytes())
}

func TestChecksumNoneIsNoOp(t *testing.T) {
	c := NewChecksum(ChecksumNone)
	c.Append([]byte{1, 2, 3})
	assert.Equal(t, 0, c.Size())
	assert.Nil(t, c.Bytes())
	assert.True(t, c.Matches(nil))
}

func TestChecksumMatchesDetectsTamper(t *testing.T) {
	c := NewChecksum(ChecksumCRC32)
	c.Append([]byte("hello world"))
	good := c.Bytes()
	assert.True(t, c.Matches(good))

	tampered := append([]byte(nil), good...)
	tampered[0] ^= 0xFF
	assert.False(t, c.Matches(tampered))
}

func TestChecksumUpdateFromBlockHeaderMatchesWireBytes(t *testing.T) {
	hdr := BlockHeader{Kind: GCode, Compression: CompressionDeflate, UncompressedSize: 12345, CompressedSize: 99}

	buf := &memBuf{}
	assert := assert.New(t)
	assert.NoError(WriteBlockHeader(buf, hdr))

	fromHeader := NewChecksum(ChecksumCRC32)
	fromHeader.UpdateFromBlockHeader(hdr)

	fromWire := NewChecksum(ChecksumCRC32)
	fromWire.Append(buf.Bytes())

	assert.Equal(fromWire.Bytes(), fromHeader.Bytes())
}
