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
package metadatakv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gcodecontainer/bgcode/core"
)

func TestParseBasicEntries(t *testing.T) {
	payload := []byte("; comment\nprinter_model = MK4\nnozzle_diameter = 0.4\n\n# another comment\nbed_shape = 0x0,250x0,250x210,0x210\n")
	kv, err := Parse(core.MetadataEncodingIni, payload)
	require.NoError(t, err)
	require.Len(t, kv.Entries, 3)

	v, ok := kv.Get("printer_model")
	require.True(t, ok)
	assert.Equal(t, "MK4", v)

	v, ok = kv.Get("nozzle_diameter")
	require.True(t, ok)
	assert.Equal(t, "0.4", v)

	_, ok = kv.Get("missing_key")
	assert.False(t, ok)
}

func TestParseRejectsMissingSeparator(t *testing.T) {
	_, err := Parse(core.MetadataEncodingIni, []byte("not_a_kv_line\n"))
	require.Error(t, err)
	assert.Equal(t, core.MetadataDecodingError, core.CodeOf(err))
}

func TestParseRejectsEmptyKey(t *testing.T) {
	_, err := Parse(core.MetadataEncodingIni, []byte(" = value\n"))
	require.Error(t, err)
	assert.Equal(t, core.MetadataDecodingError, core.CodeOf(err))
}

func TestParseRejectsUnsupportedEncoding(t *testing.T) {
	_, err := Parse(core.MetadataEncoding(7), []byte("k = v\n"))
	require.Error(t, err)
	assert.Equal(t, core.InvalidMetadataEncodingType, core.CodeOf(err))
}

func TestEncodeRoundTrip(t *testing.T) {
	entries := []Entry{{Key: "a", Value: "1"}, {Key: "b", Value: "2"}}
	encoded := Encode(entries)

	kv, err := Parse(core.MetadataEncodingIni, encoded)
	require.NoError(t, err)
	assert.Equal(t, entries, kv.Entries)
}
