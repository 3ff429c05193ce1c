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
// Package streams provides the concrete byte-stream and allocator
// implementations that sit outside the core wire codec: file-backed and
// in-memory streams, a null stream used for dry-run validation, and the
// two built-in allocators named in the spec's concurrency and resource
// model.
package streams

import (
	"github.com/gcodecontainer/bgcode/core"
)

// Allocator is a pluggable allocation handle for byte buffers. The
// reader, handler and bgcode packages do not use it: they allocate their
// scratch and work buffers with make.
type Allocator interface {
	Allocate(size int) ([]byte, error)
}

// defaultAllocator delegates to the Go runtime allocator.
type defaultAllocator struct{}

func (defaultAllocator) Allocate(size int) ([]byte, error) {
	return make([]byte, size), nil
}

// DefaultAllocator returns the host-delegating allocator.
func DefaultAllocator() Allocator { return defaultAllocator{} }

// staticAllocator is a monotonic bump allocator backed by a caller-owned
// buffer. Deallocation is a no-op; the caller is responsible for
// outliving every allocation handed out.
type staticAllocator struct {
	buf []byte
	off int
}

// StaticAllocator wraps buf as a bump allocator.
func StaticAllocator(buf []byte) Allocator {
	return &staticAllocator{buf: buf}
}

func (s *staticAllocator) Allocate(size int) ([]byte, error) {
	if size < 0 || s.off+size > len(s.buf) {
		return nil, core.NewResultErrorf(core.OutOfMemory,
			"streams: static allocator exhausted (requested %d, %d remaining)",
			size, len(s.buf)-s.off)
	}
	b := s.buf[s.off : s.off+size : s.off+size]
	s.off += size
	return b, nil
}
