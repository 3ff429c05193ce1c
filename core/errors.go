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
// Package core implements the little-endian wire layout shared by every
// bgcode component: the stable result codes, the magic/version/enum
// tables, the stream and block header codec, the checksum engine, and the
// byte-stream capability interfaces that the rest of the packages build on.
package core

import (
	stderrors "errors"

	"github.com/pkg/errors"
)

// Result is the stable, numeric result code carried alongside every error
// this module returns. The numeric values and their order are part of the
// public contract.
type Result int

const (
	Success Result = iota
	ReadError
	WriteError
	InvalidMagicNumber
	InvalidVersionNumber
	InvalidChecksumType
	InvalidBlockType
	InvalidCompressionType
	InvalidMetadataEncodingType
	InvalidGCodeEncodingType
	DataCompressionError
	DataUncompressionError
	MetadataEncodingError
	MetadataDecodingError
	GCodeEncodingError
	GCodeDecodingError
	BlockNotFound
	InvalidChecksum
	InvalidThumbnailFormat
	InvalidThumbnailWidth
	InvalidThumbnailHeight
	InvalidThumbnailDataSize
	InvalidBinaryGCodeFile
	InvalidAsciiGCodeFile
	InvalidSequenceOfBlocks
	InvalidBuffer
	AlreadyBinarized
	MissingPrinterMetadata
	MissingPrintMetadata
	MissingSlicerMetadata
	OutOfMemory
	UnknownError
)

var resultDescriptions = [...]string{
	Success:                     "success",
	ReadError:                   "error reading from stream",
	WriteError:                  "error writing to stream",
	InvalidMagicNumber:          "invalid magic number",
	InvalidVersionNumber:        "invalid version number",
	InvalidChecksumType:         "invalid checksum type",
	InvalidBlockType:            "invalid block type",
	InvalidCompressionType:      "invalid compression type",
	InvalidMetadataEncodingType: "invalid metadata encoding type",
	InvalidGCodeEncodingType:    "invalid gcode encoding type",
	DataCompressionError:        "error compressing data",
	DataUncompressionError:      "error uncompressing data",
	MetadataEncodingError:       "error encoding metadata",
	MetadataDecodingError:       "error decoding metadata",
	GCodeEncodingError:          "error encoding gcode",
	GCodeDecodingError:          "error decoding gcode",
	BlockNotFound:               "block not found",
	InvalidChecksum:             "invalid checksum",
	InvalidThumbnailFormat:      "invalid thumbnail format",
	InvalidThumbnailWidth:       "invalid thumbnail width",
	InvalidThumbnailHeight:      "invalid thumbnail height",
	InvalidThumbnailDataSize:    "invalid thumbnail data size",
	InvalidBinaryGCodeFile:      "invalid binary gcode file",
	InvalidAsciiGCodeFile:       "invalid ascii gcode file",
	InvalidSequenceOfBlocks:     "invalid sequence of blocks",
	InvalidBuffer:               "invalid buffer",
	AlreadyBinarized:            "file already binarized",
	MissingPrinterMetadata:      "missing printer metadata block",
	MissingPrintMetadata:        "missing print metadata block",
	MissingSlicerMetadata:       "missing slicer metadata block",
	OutOfMemory:                 "out of memory",
	UnknownError:                "unknown error",
}

// TranslateResult returns the human-readable, non-normative description of
// a Result code.
func TranslateResult(r Result) string {
	if r < 0 || int(r) >= len(resultDescriptions) {
		return resultDescriptions[UnknownError]
	}
	return resultDescriptions[r]
}

// resultError pairs a stable Result code with a wrapped, causally-chained
// error message.
type resultError struct {
	code Result
	err  error
}

func (e *resultError) Error() string { return e.err.Error() }
func (e *resultError) Unwrap() error { return e.err }

// WrapResult attaches a Result code to err. Returns nil if err is nil.
func WrapResult(code Result, err error) error {
	if err == nil {
		return nil
	}
	return &resultError{code: code, err: err}
}

// NewResultError builds a new error carrying the given Result code.
func NewResultError(code Result, msg string) error {
	return &resultError{code: code, err: errors.New(msg)}
}

// NewResultErrorf is like NewResultError with fmt-style formatting.
func NewResultErrorf(code Result, format string, args ...interface{}) error {
	return &resultError{code: code, err: errors.Errorf(format, args...)}
}

// CodeOf extracts the Result code carried by err, or UnknownError if err
// does not carry one (and Success if err is nil).
func CodeOf(err error) Result {
	if err == nil {
		return Success
	}
	var re *resultError
	if stderrors.As(err, &re) {
		return re.code
	}
	return UnknownError
}

// Is reports whether err carries the given Result code.
func Is(err error, code Result) bool {
	return CodeOf(err) == code
}
