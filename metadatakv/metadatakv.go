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
// Package metadatakv implements the declared-external INI-encoding
// metadata key/value reader: a syntax-only parser over a decompressed
// FileMetadata/SlicerMetadata/PrinterMetadata/PrintMetadata block's
// payload. It validates no schema beyond the encoding-type tag, matching
// the Non-goal that rules out metadata schema validation.
package metadatakv

import (
	"bufio"
	"strings"

	"github.com/pkg/errors"

	"github.com/gcodecontainer/bgcode/core"
)

// Entry is one key/value pair in declaration order, as found in the INI
// payload; order is preserved because some producers rely on it for
// human-readable diffs even though this library treats keys as unordered.
type Entry struct {
	Key   string
	Value string
}

// KV is a parsed metadata block: an ordered list of entries plus a
// lookup index built over the same slice.
type KV struct {
	Entries []Entry
	index   map[string]string
}

// Get returns the value for key and whether it was present.
func (kv *KV) Get(key string) (string, bool) {
	v, ok := kv.index[key]
	return v, ok
}

// Parse decodes an `encoding: Ini` metadata payload: one `key = value`
// pair per line, blank lines and `;`/`#`-prefixed comment lines ignored,
// surrounding whitespace trimmed from both key and value.
func Parse(encoding core.MetadataEncoding, payload []byte) (*KV, error) {
	if encoding != core.MetadataEncodingIni {
		return nil, core.NewResultErrorf(core.InvalidMetadataEncodingType,
			"metadatakv: unsupported metadata encoding %d", encoding)
	}

	kv := &KV{index: map[string]string{}}
	scanner := bufio.NewScanner(strings.NewReader(string(payload)))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, ";") || strings.HasPrefix(line, "#") {
			continue
		}
		eq := strings.IndexByte(line, '=')
		if eq < 0 {
			return nil, core.NewResultErrorf(core.MetadataDecodingError,
				"metadatakv: line %d missing '=' separator: %q", lineNo, line)
		}
		key := strings.TrimSpace(line[:eq])
		value := strings.TrimSpace(line[eq+1:])
		if key == "" {
			return nil, core.NewResultErrorf(core.MetadataDecodingError, "metadatakv: line %d has empty key", lineNo)
		}
		kv.Entries = append(kv.Entries, Entry{Key: key, Value: value})
		kv.index[key] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, core.WrapResult(core.MetadataDecodingError, errors.Wrap(err, "metadatakv: scan payload"))
	}
	return kv, nil
}

// Encode serializes entries back into `encoding: Ini` wire bytes, one
// `key = value` line per entry, in the given order.
func Encode(entries []Entry) []byte {
	var b strings.Builder
	for _, e := range entries {
		b.WriteString(e.Key)
		b.WriteString(" = ")
		b.WriteString(e.Value)
		b.WriteByte('\n')
	}
	return []byte(b.String())
}
