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
// Package reader is the package-level convenience wrapper the CLI and
// other application code use instead of hand-assembling the handler
// pipeline: it opens a file stream, reads and validates the stream
// header, and composes the canonical reader chain — OrderChecking wraps
// ChecksumChecking wraps AllBlocks wraps Unpacking wraps the caller's
// application BlockParseHandler — the way mender-artifact's areader
// package wraps artifact.Reader around a raw handler chain.
package reader

import (
	"github.com/pkg/errors"

	"github.com/gcodecontainer/bgcode/core"
	"github.com/gcodecontainer/bgcode/handlers"
	"github.com/gcodecontainer/bgcode/internal/conf"
	"github.com/gcodecontainer/bgcode/internal/log"
	"github.com/gcodecontainer/bgcode/parse"
	"github.com/gcodecontainer/bgcode/streams"
)

var readerLog = log.ModuleLogger("reader")

// Options configures the buffers and validation strictness of Read. A
// zero-valued Options is not usable directly; use NewOptions to start
// from internal/conf's defaults.
type Options struct {
	ChecksumScratchSize   int
	DecompressWorkbufSize int
	MaxAcceptedVersion    uint32
	CheckOrder            bool
}

// NewOptions builds Options from cfg, with order checking enabled — the
// strict default a compliant reader should use.
func NewOptions(cfg *conf.Config) Options {
	return Options{
		ChecksumScratchSize:   cfg.ChecksumScratchSize,
		DecompressWorkbufSize: cfg.DecompressWorkbufSize,
		MaxAcceptedVersion:    cfg.MaxAcceptedVersion,
		CheckOrder:            true,
	}
}

// OpenFile opens path and reads its stream header, returning a stream
// positioned at the first block header and ready for Read.
func OpenFile(path string, opts Options) (*streams.FileInput, core.StreamHeader, error) {
	in, err := streams.OpenFileInput(path)
	if err != nil {
		return nil, core.StreamHeader{}, errors.WithStack(err)
	}

	maxVersion := opts.MaxAcceptedVersion
	header, err := core.ReadStreamHeader(in, &maxVersion)
	if err != nil {
		in.Close()
		return nil, core.StreamHeader{}, errors.WithStack(err)
	}
	in.SetMetadata(core.Metadata{Version: header.Version, ChecksumKind: header.ChecksumKind})

	readerLog.Debugf("opened %s: version=%d checksum=%v", path, header.Version, header.ChecksumKind)
	return in, header, nil
}

// Read drives input's blocks through the canonical handler pipeline into
// app, the caller's application-level event sink.
func Read(input core.Input, opts Options, app parse.BlockParseHandler) error {
	unpacking := handlers.NewUnpackingBlockParseHandler(app, make([]byte, opts.DecompressWorkbufSize))
	allBlocks := handlers.NewAllBlocksParseHandler(unpacking)
	checksumChecking := handlers.NewChecksumCheckingParseHandler(allBlocks, make([]byte, opts.ChecksumScratchSize))

	var top parse.ParseHandler = checksumChecking
	if opts.CheckOrder {
		top = handlers.NewOrderCheckingParseHandler(top)
	}

	if err := parse.Parse(input, top); err != nil {
		readerLog.WithError(err).Warn("parse failed")
		return errors.WithStack(err)
	}
	readerLog.Debug("parse completed")
	return nil
}
