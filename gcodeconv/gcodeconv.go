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
// Package gcodeconv implements the declared-external ASCII<->binary
// G-code line conversion collaborator: converting a GCode block's payload
// between plain ASCII text and its GCodeEncoding-tagged wire
// representation (None, MeatPack, MeatPackComments). It sits above the
// core handler pipeline, consuming decoded payload bytes, not a new core
// event channel.
package gcodeconv

import (
	"bufio"
	"encoding/binary"
	"strings"

	"github.com/gcodecontainer/bgcode/core"
)

// meatPackTable holds the 15 characters most common in G-code text,
// packed two-per-byte as 4-bit codes; nibble value 0xF is reserved as an
// escape marking a literal byte that follows in the stream.
var meatPackTable = [15]byte{' ', 'G', 'X', 'Y', 'Z', 'E', '\n', '0', '1', '2', '3', '4', '5', '.', '-'}

const meatPackEscape = 0xF

var meatPackIndex = func() map[byte]byte {
	m := make(map[byte]byte, len(meatPackTable))
	for i, c := range meatPackTable {
		m[c] = byte(i)
	}
	return m
}()

// DecodeLines converts a GCode block's payload to plain ASCII text,
// according to encoding.
func DecodeLines(encoding core.GCodeEncoding, payload []byte) (string, error) {
	switch encoding {
	case core.GCodeEncodingNone:
		return string(payload), nil
	case core.GCodeEncodingMeatPack, core.GCodeEncodingMeatPackComments:
		out, err := meatPackUnpack(payload)
		if err != nil {
			return "", err
		}
		return string(out), nil
	default:
		return "", core.NewResultErrorf(core.InvalidGCodeEncodingType, "gcodeconv: unsupported gcode encoding %d", encoding)
	}
}

// EncodeLines converts ASCII G-code text into a GCode block payload
// encoded the way encoding declares. MeatPackComments additionally strips
// `;`-prefixed trailing comments from each line before packing.
func EncodeLines(encoding core.GCodeEncoding, text string) ([]byte, error) {
	switch encoding {
	case core.GCodeEncodingNone:
		return []byte(text), nil
	case core.GCodeEncodingMeatPack:
		return meatPackPack([]byte(text)), nil
	case core.GCodeEncodingMeatPackComments:
		return meatPackPack([]byte(stripComments(text))), nil
	default:
		return nil, core.NewResultErrorf(core.InvalidGCodeEncodingType, "gcodeconv: unsupported gcode encoding %d", encoding)
	}
}

func stripComments(text string) string {
	var b strings.Builder
	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	first := true
	for scanner.Scan() {
		line := scanner.Text()
		if idx := strings.IndexByte(line, ';'); idx >= 0 {
			line = strings.TrimRight(line[:idx], " \t")
		}
		if !first {
			b.WriteByte('\n')
		}
		b.WriteString(line)
		first = false
	}
	return b.String()
}

// meatPackPack packs src two characters per output byte, prefixed with a
// 4-byte little-endian original length so the unpacker can stop exactly
// at the source boundary regardless of parity.
func meatPackPack(src []byte) []byte {
	out := make([]byte, 4, 4+len(src))
	binary.LittleEndian.PutUint32(out, uint32(len(src)))

	for i := 0; i < len(src); i += 2 {
		c1 := src[i]
		nib1, literal1 := packNibble(c1)

		var nib2 byte
		var c2 byte
		var literal2 bool
		havePair := i+1 < len(src)
		if havePair {
			c2 = src[i+1]
			nib2, literal2 = packNibble(c2)
		} else {
			nib2 = 0 // filler; the length prefix tells the unpacker to ignore it
		}

		out = append(out, nib1<<4|nib2)
		if literal1 {
			out = append(out, c1)
		}
		if havePair && literal2 {
			out = append(out, c2)
		}
	}
	return out
}

func packNibble(c byte) (nibble byte, literal bool) {
	if n, ok := meatPackIndex[c]; ok {
		return n, false
	}
	return meatPackEscape, true
}

func meatPackUnpack(data []byte) ([]byte, error) {
	if len(data) < 4 {
		return nil, core.NewResultError(core.GCodeDecodingError, "gcodeconv: meatpack stream shorter than its length prefix")
	}
	n := binary.LittleEndian.Uint32(data)
	out := make([]byte, 0, n)
	pos := 4

	for uint32(len(out)) < n {
		if pos >= len(data) {
			return nil, core.NewResultError(core.GCodeDecodingError, "gcodeconv: meatpack stream truncated")
		}
		packed := data[pos]
		pos++
		nib1 := packed >> 4
		nib2 := packed & 0x0F

		c1, newPos, err := unpackNibble(data, pos, nib1)
		if err != nil {
			return nil, err
		}
		pos = newPos
		out = append(out, c1)
		if uint32(len(out)) == n {
			break
		}

		c2, newPos, err := unpackNibble(data, pos, nib2)
		if err != nil {
			return nil, err
		}
		pos = newPos
		out = append(out, c2)
	}
	return out[:n], nil
}

func unpackNibble(data []byte, pos int, nibble byte) (byte, int, error) {
	if nibble == meatPackEscape {
		if pos >= len(data) {
			return 0, pos, core.NewResultError(core.GCodeDecodingError, "gcodeconv: meatpack escape missing literal byte")
		}
		return data[pos], pos + 1, nil
	}
	if int(nibble) >= len(meatPackTable) {
		return 0, pos, core.NewResultErrorf(core.GCodeDecodingError, "gcodeconv: invalid meatpack nibble %d", nibble)
	}
	return meatPackTable[nibble], pos, nil
}
