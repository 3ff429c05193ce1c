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
// Package bgcode is the module root: it exposes Validate, the
// supplemented whole-file integrity check the original implementation's
// is_valid_binary_gcode provided, built from the same handler pipeline
// the reader package composes for full parsing.
package bgcode

import (
	"github.com/pkg/errors"

	"github.com/gcodecontainer/bgcode/core"
	"github.com/gcodecontainer/bgcode/handlers"
	"github.com/gcodecontainer/bgcode/internal/log"
	"github.com/gcodecontainer/bgcode/parse"
)

var validateLog = log.ModuleLogger("bgcode")

// Validate reads input's stream header and walks every block header,
// verifying checksums (and, if checkOrder is set, the block ordering
// DFA) without surfacing any block's content to the caller. It is the
// cheap whole-file integrity check: no decompression, no parameter or
// payload decoding, just header and checksum plumbing.
func Validate(input core.Input, checkOrder bool) error {
	streamHeader, err := core.ReadStreamHeader(input, nil)
	if err != nil {
		return errors.WithStack(err)
	}

	if fi, ok := input.(interface{ SetMetadata(core.Metadata) }); ok {
		fi.SetMetadata(core.Metadata{Version: streamHeader.Version, ChecksumKind: streamHeader.ChecksumKind})
	}

	var top parse.ParseHandler = handlers.SkipperParseHandler{}
	top = handlers.NewChecksumCheckingParseHandler(top, make([]byte, 4096))
	if checkOrder {
		top = handlers.NewOrderCheckingParseHandler(top)
	}

	if err := parse.Parse(input, top); err != nil {
		validateLog.WithError(err).Warn("validation failed")
		return errors.WithStack(err)
	}
	validateLog.Debug("stream validated")
	return nil
}
