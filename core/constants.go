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

// Magic is the 4-byte ASCII marker every stream starts with.
var Magic = [4]byte{'G', 'C', 'D', 'E'}

// MaxFormatVersion is the highest stream format version this library
// writes. ReadStreamHeader enforces a version ceiling only when the caller
// passes one; with a nil maxVersion any version is accepted.
const MaxFormatVersion uint32 = 1

// ChecksumKind identifies the per-block trailer checksum algorithm.
type ChecksumKind uint16

const (
	ChecksumNone ChecksumKind = 0
	ChecksumCRC32 ChecksumKind = 1
)

// Size returns the number of trailing bytes a block's checksum occupies.
func (k ChecksumKind) Size() int {
	switch k {
	case ChecksumCRC32:
		return 4
	default:
		return 0
	}
}

func (k ChecksumKind) Valid() bool {
	return k == ChecksumNone || k == ChecksumCRC32
}

// BlockKind identifies the kind of a block on the wire.
type BlockKind uint16

const (
	FileMetadata BlockKind = iota
	GCode
	SlicerMetadata
	PrinterMetadata
	PrintMetadata
	Thumbnail
)

func (k BlockKind) Valid() bool {
	return k <= Thumbnail
}

func (k BlockKind) String() string {
	switch k {
	case FileMetadata:
		return "FileMetadata"
	case GCode:
		return "GCode"
	case SlicerMetadata:
		return "SlicerMetadata"
	case PrinterMetadata:
		return "PrinterMetadata"
	case PrintMetadata:
		return "PrintMetadata"
	case Thumbnail:
		return "Thumbnail"
	default:
		return "Unknown"
	}
}

// CompressionKind identifies the codec applied to a block's payload.
type CompressionKind uint16

const (
	CompressionNone CompressionKind = iota
	CompressionDeflate
	CompressionHeatshrink11_4
	CompressionHeatshrink12_4
)

func (k CompressionKind) Valid() bool {
	return k <= CompressionHeatshrink12_4
}

func (k CompressionKind) String() string {
	switch k {
	case CompressionNone:
		return "None"
	case CompressionDeflate:
		return "Deflate"
	case CompressionHeatshrink11_4:
		return "Heatshrink_11_4"
	case CompressionHeatshrink12_4:
		return "Heatshrink_12_4"
	default:
		return "Unknown"
	}
}

// MetadataEncoding identifies the text encoding of a metadata block's
// payload.
type MetadataEncoding uint16

const (
	MetadataEncodingIni MetadataEncoding = 0
)

func (e MetadataEncoding) Valid() bool { return e == MetadataEncodingIni }

// GCodeEncoding identifies how a GCode block's payload bytes encode G-code
// text.
type GCodeEncoding uint16

const (
	GCodeEncodingNone GCodeEncoding = iota
	GCodeEncodingMeatPack
	GCodeEncodingMeatPackComments
)

func (e GCodeEncoding) Valid() bool { return e <= GCodeEncodingMeatPackComments }

// ThumbnailFormat identifies the image codec of a Thumbnail block's
// payload.
type ThumbnailFormat uint16

const (
	ThumbnailPng ThumbnailFormat = iota
	ThumbnailJpg
	ThumbnailQoi
)

func (f ThumbnailFormat) Valid() bool { return f <= ThumbnailQoi }

// blockSuccessors encodes the ordering DFA from the data model: the set of
// block kinds that may legally follow a given predecessor. A nil/absent
// predecessor (no block read yet) uses NoPredecessor as the map key.
const NoPredecessor BlockKind = 0xFFFF

var blockSuccessors = map[BlockKind]map[BlockKind]bool{
	NoPredecessor: {
		FileMetadata:    true,
		PrinterMetadata: true,
	},
	FileMetadata: {
		PrinterMetadata: true,
	},
	PrinterMetadata: {
		Thumbnail:     true,
		PrintMetadata: true,
	},
	Thumbnail: {
		Thumbnail:     true,
		PrintMetadata: true,
	},
	PrintMetadata: {
		SlicerMetadata: true,
	},
	SlicerMetadata: {
		GCode: true,
	},
	GCode: {
		GCode: true,
	},
}

// AllowedSuccessor reports whether next may legally follow prev on the
// wire. Pass NoPredecessor for prev to check the allowed first blocks of a
// stream.
func AllowedSuccessor(prev, next BlockKind) bool {
	successors, ok := blockSuccessors[prev]
	if !ok {
		return false
	}
	return successors[next]
}
