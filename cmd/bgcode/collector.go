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
package main

import (
	"github.com/gcodecontainer/bgcode/core"
	"github.com/gcodecontainer/bgcode/parse"
)

// blockRecord is one fully-drained block: its header kind, the typed
// parameters the parse driver delivered, and its (already decompressed,
// courtesy of the reader package's Unpacking layer) payload bytes.
type blockRecord struct {
	kind    core.BlockKind
	params  map[string]uint64
	payload []byte
}

// collector is the application-level parse.BlockParseHandler the CLI
// commands drive reader.Read with: it buffers each block in full rather
// than streaming it onward, and keeps every block's record, so the whole
// decoded container is held in memory once parsing completes.
type collector struct {
	records []blockRecord
	current blockRecord
	started bool
	buf     []byte
}

func newCollector() *collector {
	return &collector{buf: make([]byte, 64*1024)}
}

func (c *collector) flush() {
	if !c.started {
		return
	}
	c.records = append(c.records, c.current)
	c.current = blockRecord{}
	c.started = false
}

func (c *collector) BlockStart(header core.BlockHeader) error {
	c.flush()
	c.current = blockRecord{kind: header.Kind, params: map[string]uint64{}}
	c.started = true
	return nil
}

func (c *collector) IntParam(name string, value uint64, byteWidth int) error {
	c.current.params[name] = value
	return nil
}

func (c *collector) StringParam(name string, value string) error { return nil }
func (c *collector) FloatParam(name string, value float64) error { return nil }

func (c *collector) Payload(chunk []byte) error {
	c.current.payload = append(c.current.payload, chunk...)
	return nil
}

// Checksum flushes the just-completed block. Streams declaring
// ChecksumNone never call this, so Flush must also be called once after
// the parse driver returns to collect the final block.
func (c *collector) Checksum(chunk []byte) error {
	c.flush()
	return nil
}

func (c *collector) PayloadChunkBuffer() []byte { return c.buf }
func (c *collector) PayloadChunkSize() int      { return len(c.buf) }
func (c *collector) Status() parse.Status       { return parse.OK }

// Flush collects the last block when the stream's checksum kind is None,
// in which case Checksum is never invoked. Safe to call unconditionally
// after parsing completes.
func (c *collector) Flush() { c.flush() }
