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
// Package conf implements the library's JSON-decodable configuration,
// loaded the way the teacher's common/conf package loads mender.conf: an
// optional JSON file overlaying built-in defaults, with missing files
// treated as "use the defaults" rather than an error.
package conf

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"

	"github.com/gcodecontainer/bgcode/core"
	"github.com/gcodecontainer/bgcode/internal/log"
)

var confLog = log.ModuleLogger("conf")

// Config holds the tunables the reader/writer convenience wrappers and
// the cmd/bgcode CLI apply by default: scratch-buffer sizes for checksum
// verification and decompression work, the version ceiling a reader
// enforces unless overridden, and the checksum kind a writer uses when
// the caller doesn't specify one.
type Config struct {
	// ChecksumScratchSize sizes the checksum-verifying input adapter's
	// scratch buffer (used by its Skip implementation).
	ChecksumScratchSize int `json:",omitempty"`

	// DecompressWorkbufSize sizes the decompressor's work buffer passed
	// to Reset.
	DecompressWorkbufSize int `json:",omitempty"`

	// MaxAcceptedVersion is the version ceiling passed to
	// core.ReadStreamHeader; readers reject streams declaring a higher
	// version.
	MaxAcceptedVersion uint32 `json:",omitempty"`

	// DefaultWriterChecksumKind is the checksum kind new containers are
	// written with when the caller doesn't request a specific one.
	DefaultWriterChecksumKind core.ChecksumKind `json:",omitempty"`
}

// NewConfig returns the built-in defaults: 4KiB scratch and work buffers,
// a version ceiling matching core.MaxFormatVersion, and CRC32 checksums
// on write.
func NewConfig() *Config {
	return &Config{
		ChecksumScratchSize:       4096,
		DecompressWorkbufSize:     4096,
		MaxAcceptedVersion:        core.MaxFormatVersion,
		DefaultWriterChecksumKind: core.ChecksumCRC32,
	}
}

// LoadConfig overlays a JSON configuration file's values onto cfg's
// existing defaults. A missing file is not an error — the caller ends up
// with the defaults cfg already held going in.
func LoadConfig(configFile string, cfg *Config) error {
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		confLog.Debugf("configuration file does not exist: %s, using defaults", configFile)
		return nil
	}

	data, err := os.ReadFile(configFile)
	if err != nil {
		return errors.Wrapf(err, "conf: read %s", configFile)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return errors.Wrapf(err, "conf: parse %s", configFile)
	}

	confLog.Infof("loaded configuration file: %s", configFile)
	return cfg.checkDefaults()
}

// checkDefaults fills in zero-valued fields a JSON file left unset, so a
// config file that only overrides one setting doesn't zero the rest.
func (c *Config) checkDefaults() error {
	defaults := NewConfig()
	if c.ChecksumScratchSize <= 0 {
		c.ChecksumScratchSize = defaults.ChecksumScratchSize
	}
	if c.DecompressWorkbufSize <= 0 {
		c.DecompressWorkbufSize = defaults.DecompressWorkbufSize
	}
	if c.MaxAcceptedVersion == 0 {
		c.MaxAcceptedVersion = defaults.MaxAcceptedVersion
	}
	if !c.DefaultWriterChecksumKind.Valid() {
		return core.NewResultErrorf(core.InvalidChecksumType,
			"conf: invalid default_writer_checksum_kind %d", c.DefaultWriterChecksumKind)
	}
	return nil
}
