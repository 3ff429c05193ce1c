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
	"github.com/pkg/errors"
)

// ErrShortRead is returned by RawInput implementations that ran out of
// data before filling the requested buffer.
var ErrShortRead = errors.New("core: short read")

// ReadIntLE reads width bytes (width <= 8) from in and zero-extends them
// into a uint64, little-endian.
func ReadIntLE(in RawInput, width int) (uint64, error) {
	if width <= 0 || width > 8 {
		return 0, NewResultErrorf(InvalidBuffer, "core: invalid int width %d", width)
	}
	buf := make([]byte, width)
	if err := in.Read(buf); err != nil {
		return 0, WrapResult(ReadError, errors.Wrap(err, "core: read int"))
	}
	var v uint64
	for i := width - 1; i >= 0; i-- {
		v = (v << 8) | uint64(buf[i])
	}
	return v, nil
}

// WriteIntLE writes the low width bytes of value, little-endian, to out.
func WriteIntLE(out RawOutput, value uint64, width int) error {
	if width <= 0 || width > 8 {
		return NewResultErrorf(InvalidBuffer, "core: invalid int width %d", width)
	}
	buf := make([]byte, width)
	for i := 0; i < width; i++ {
		buf[i] = byte(value)
		value >>= 8
	}
	if err := out.Write(buf); err != nil {
		return WrapResult(WriteError, errors.Wrap(err, "core: write int"))
	}
	return nil
}
