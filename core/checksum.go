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
	"encoding/binary"
	"hash/crc32"
)

// Checksum is the running checksum accumulator for one block: a tiny
// fixed-capacity value type, never heap-allocated by the library, that
// folds in payload bytes as they stream through a reader or writer.
type Checksum struct {
	kind  ChecksumKind
	state uint32
}

// NewChecksum creates an empty accumulator for the given kind.
func NewChecksum(kind ChecksumKind) Checksum {
	return Checksum{kind: kind}
}

func (c Checksum) Kind() ChecksumKind { return c.kind }

// Size returns the number of trailing bytes this checksum's kind occupies
// on the wire.
func (c Checksum) Size() int { return c.kind.Size() }

// Append folds additional bytes into the running checksum. It is a no-op
// for ChecksumNone.
func (c *Checksum) Append(data []byte) {
	switch c.kind {
	case ChecksumCRC32:
		c.state = crc32.Update(c.state, crc32.IEEETable, data)
	default:
	}
}

// UpdateFromBlockHeader folds the wire-order block header fields into the
// checksum, byte-for-byte identical to how they are written on the wire.
func (c *Checksum) UpdateFromBlockHeader(h BlockHeader) {
	var buf [12]byte
	binary.LittleEndian.PutUint16(buf[0:2], uint16(h.Kind))
	binary.LittleEndian.PutUint16(buf[2:4], uint16(h.Compression))
	binary.LittleEndian.PutUint32(buf[4:8], h.UncompressedSize)
	n := 8
	if h.Compression != CompressionNone {
		binary.LittleEndian.PutUint32(buf[8:12], h.CompressedSize)
		n = 12
	}
	c.Append(buf[:n])
}

// Bytes returns the little-endian wire representation of the current
// checksum value (empty slice for ChecksumNone).
func (c Checksum) Bytes() []byte {
	size := c.Size()
	if size == 0 {
		return nil
	}
	buf := make([]byte, size)
	binary.LittleEndian.PutUint32(buf, c.state)
	return buf
}

// Matches compares the running checksum against a previously collected
// trailer buffer.
func (c Checksum) Matches(trailer []byte) bool {
	want := c.Bytes()
	if len(want) != len(trailer) {
		return false
	}
	for i := range want {
		if want[i] != trailer[i] {
			return false
		}
	}
	return true
}
