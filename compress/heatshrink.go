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
package compress

import (
	"bytes"

	"github.com/gcodecontainer/bgcode/core"
)

// Heatshrink has no Go implementation anywhere in the retrieved example
// corpus (it is a narrow, LZSS-derived codec specific to embedded firmware
// and the slicer ecosystem this format comes from), so this is a from
// scratch port of the bit-packed token stream described in
// original_source's binarize_impl.hpp: a tag bit selects either an 8-bit
// literal or a (window, lookahead) back-reference pair, with no entropy
// coding stage. windowBits/lookaheadBits parameterize the two profiles the
// format declares (11,4) and (12,4).
type heatshrinkDecompressor struct {
	baseCounters
	windowBits, lookaheadBits uint
	workbuf                   []byte
	compressed                bytes.Buffer
}

func newHeatshrinkDecompressor(windowBits, lookaheadBits uint) *heatshrinkDecompressor {
	return &heatshrinkDecompressor{windowBits: windowBits, lookaheadBits: lookaheadBits}
}

func (d *heatshrinkDecompressor) Reset(workbuf []byte) error {
	d.resetCounters()
	d.workbuf = workbuf
	d.compressed.Reset()
	return nil
}

func (d *heatshrinkDecompressor) Append(sink Sink, source []byte) error {
	if d.failed {
		return core.NewResultError(core.DataUncompressionError, "compress: heatshrink: append after failure")
	}
	d.in += int64(len(source))
	d.compressed.Write(source)
	return nil
}

func (d *heatshrinkDecompressor) Finish(sink Sink, final []byte) error {
	if d.failed {
		return core.NewResultError(core.DataUncompressionError, "compress: heatshrink: finish after failure")
	}
	d.in += int64(len(final))
	d.compressed.Write(final)

	out, err := heatshrinkDecode(d.compressed.Bytes(), d.windowBits, d.lookaheadBits)
	if err != nil {
		d.failed = true
		return err
	}
	return d.pushChunked(sink, d.workbuf, out)
}

// bitReader reads individual bits MSB-first from a byte slice, matching
// the wire order the original encoder packs tokens in.
type bitReader struct {
	data []byte
	pos  int // bit position
}

func (r *bitReader) readBits(n uint) (uint32, bool) {
	var v uint32
	for i := uint(0); i < n; i++ {
		byteIdx := r.pos / 8
		if byteIdx >= len(r.data) {
			return 0, false
		}
		bitIdx := 7 - uint(r.pos%8)
		bit := (r.data[byteIdx] >> bitIdx) & 1
		v = (v << 1) | uint32(bit)
		r.pos++
	}
	return v, true
}

// heatshrinkDecode inflates a heatshrink token stream produced with the
// given window/lookahead parameterization. Token grammar:
//
//	tag=1 literal:   1, <8-bit byte>
//	tag=0 backref:   0, <windowBits-bit (offset-1)>, <lookaheadBits-bit (length-1)>
//
// The stream ends when the bit reader runs out of whole tokens.
func heatshrinkDecode(compressed []byte, windowBits, lookaheadBits uint) ([]byte, error) {
	br := &bitReader{data: compressed}
	var out []byte

	for {
		tag, ok := br.readBits(1)
		if !ok {
			break
		}
		if tag == 1 {
			lit, ok := br.readBits(8)
			if !ok {
				return nil, core.NewResultError(core.DataUncompressionError, "compress: heatshrink: truncated literal token")
			}
			out = append(out, byte(lit))
			continue
		}

		// A tag=0 bit this close to the end of the stream is ambiguous: it
		// may be a real back-reference, or it may be a zero bit from the
		// final byte's padding. Treat running out of bits here as end of
		// stream rather than corruption; only a truncated literal (tag=1,
		// which zero padding can never produce) is a real decode error.
		offsetMinus1, ok := br.readBits(windowBits)
		if !ok {
			break
		}
		lengthMinus1, ok := br.readBits(lookaheadBits)
		if !ok {
			break
		}

		offset := int(offsetMinus1) + 1
		length := int(lengthMinus1) + 1
		if offset > len(out) {
			return nil, core.NewResultErrorf(core.DataUncompressionError,
				"compress: heatshrink: backreference offset %d exceeds output length %d", offset, len(out))
		}
		start := len(out) - offset
		for i := 0; i < length; i++ {
			out = append(out, out[start+i])
		}
	}
	return out, nil
}

// heatshrinkEncode is the encoder counterpart, used by tests to produce
// fixtures: a straightforward greedy longest-match LZSS search over the
// window, no lazy matching.
func heatshrinkEncode(src []byte, windowBits, lookaheadBits uint) []byte {
	maxOffset := 1 << windowBits
	maxLength := 1 << lookaheadBits

	var bw bitWriter
	i := 0
	for i < len(src) {
		bestLen, bestOff := 0, 0
		lo := i - maxOffset
		if lo < 0 {
			lo = 0
		}
		for start := lo; start < i; start++ {
			l := 0
			for l < maxLength && i+l < len(src) && src[start+l] == src[i+l] {
				l++
			}
			if l > bestLen {
				bestLen, bestOff = l, i-start
			}
		}
		// A back-reference costs 1+windowBits+lookaheadBits bits (16 or 17
		// here) against 9 for a literal, so a match of length 1 is dearer
		// than a literal while length 2 is already cheaper than two
		// literals; only take matches of length 2 or more.
		if bestLen >= 2 {
			bw.writeBits(0, 1)
			bw.writeBits(uint32(bestOff-1), windowBits)
			bw.writeBits(uint32(bestLen-1), lookaheadBits)
			i += bestLen
		} else {
			bw.writeBits(1, 1)
			bw.writeBits(uint32(src[i]), 8)
			i++
		}
	}
	return bw.bytes()
}

type bitWriter struct {
	buf      []byte
	bitCount uint
	cur      byte
}

func (w *bitWriter) writeBits(v uint32, n uint) {
	for i := int(n) - 1; i >= 0; i-- {
		bit := byte((v >> uint(i)) & 1)
		w.cur = (w.cur << 1) | bit
		w.bitCount++
		if w.bitCount == 8 {
			w.buf = append(w.buf, w.cur)
			w.cur = 0
			w.bitCount = 0
		}
	}
}

func (w *bitWriter) bytes() []byte {
	if w.bitCount > 0 {
		w.cur <<= (8 - w.bitCount)
		w.buf = append(w.buf, w.cur)
		w.cur = 0
		w.bitCount = 0
	}
	return w.buf
}
