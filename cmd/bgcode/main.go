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
// Command bgcode inspects and builds binary G-code containers: info
// prints a block-by-block summary, cat decodes and prints GCode block
// text, extract-thumbnail pulls one embedded image out to a file, and
// pack wraps a plain G-code file into a minimal container.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/gcodecontainer/bgcode/core"
	"github.com/gcodecontainer/bgcode/gcodeconv"
	"github.com/gcodecontainer/bgcode/internal/conf"
	"github.com/gcodecontainer/bgcode/internal/log"
	"github.com/gcodecontainer/bgcode/metadatakv"
	"github.com/gcodecontainer/bgcode/reader"
	"github.com/gcodecontainer/bgcode/streams"
	"github.com/gcodecontainer/bgcode/writer"
)

func main() {
	app := &cli.App{
		Name:  "bgcode",
		Usage: "inspect and build binary G-code containers",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "set logging `level` (debug, info, warning, error)",
				Value: "warning",
			},
		},
		Before: func(ctx *cli.Context) error {
			level, err := logrus.ParseLevel(ctx.String("log-level"))
			if err != nil {
				return errors.Wrap(err, "bgcode: parse log-level")
			}
			log.SetLevel(level)
			return nil
		},
		Commands: []*cli.Command{
			infoCommand,
			catCommand,
			extractThumbnailCommand,
			packCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func readAllBlocks(path string) (*collector, core.StreamHeader, error) {
	opts := reader.NewOptions(conf.NewConfig())
	in, header, err := reader.OpenFile(path, opts)
	if err != nil {
		return nil, core.StreamHeader{}, errors.WithStack(err)
	}
	defer in.Close()

	c := newCollector()
	if err := reader.Read(in, opts, c); err != nil {
		return nil, core.StreamHeader{}, errors.WithStack(err)
	}
	c.Flush()
	return c, header, nil
}

var infoCommand = &cli.Command{
	Name:      "info",
	Usage:     "print a block-by-block summary of a container",
	ArgsUsage: "<file.bgcode>",
	Action: func(ctx *cli.Context) error {
		path := ctx.Args().First()
		if path == "" {
			return cli.Exit("bgcode: info requires a file argument", 1)
		}
		c, header, err := readAllBlocks(path)
		if err != nil {
			return err
		}

		fmt.Printf("version %d, checksum %v, %d blocks\n", header.Version, header.ChecksumKind, len(c.records))
		thumbIdx := 0
		for _, rec := range c.records {
			fmt.Printf("- %s: %d bytes", rec.kind, len(rec.payload))
			switch rec.kind {
			case core.Thumbnail:
				fmt.Printf(" (format=%d width=%d height=%d, index=%d)",
					rec.params["format"], rec.params["width"], rec.params["height"], thumbIdx)
				thumbIdx++
			case core.GCode:
				fmt.Printf(" (encoding=%d)", rec.params["encoding_type"])
			default:
				if kv, err := metadatakv.Parse(core.MetadataEncoding(rec.params["encoding_type"]), rec.payload); err == nil {
					fmt.Printf(" (%d entries)", len(kv.Entries))
				}
			}
			fmt.Println()
		}
		return nil
	},
}

var catCommand = &cli.Command{
	Name:      "cat",
	Usage:     "decode and print every GCode block's text to stdout",
	ArgsUsage: "<file.bgcode>",
	Action: func(ctx *cli.Context) error {
		path := ctx.Args().First()
		if path == "" {
			return cli.Exit("bgcode: cat requires a file argument", 1)
		}
		c, _, err := readAllBlocks(path)
		if err != nil {
			return err
		}

		for _, rec := range c.records {
			if rec.kind != core.GCode {
				continue
			}
			text, err := gcodeconv.DecodeLines(core.GCodeEncoding(rec.params["encoding_type"]), rec.payload)
			if err != nil {
				return errors.WithStack(err)
			}
			fmt.Print(text)
		}
		return nil
	},
}

var extractThumbnailCommand = &cli.Command{
	Name:      "extract-thumbnail",
	Usage:     "write one embedded thumbnail's image bytes to a file",
	ArgsUsage: "<file.bgcode>",
	Flags: []cli.Flag{
		&cli.IntFlag{Name: "index", Usage: "`N`th thumbnail block, 0-based", Value: 0},
		&cli.StringFlag{Name: "out", Usage: "output image `PATH`", Required: true},
	},
	Action: func(ctx *cli.Context) error {
		path := ctx.Args().First()
		if path == "" {
			return cli.Exit("bgcode: extract-thumbnail requires a file argument", 1)
		}
		index := ctx.Int("index")
		outPath := ctx.String("out")

		c, _, err := readAllBlocks(path)
		if err != nil {
			return err
		}

		seen := 0
		for _, rec := range c.records {
			if rec.kind != core.Thumbnail {
				continue
			}
			if seen != index {
				seen++
				continue
			}
			return writeFileAtomic(outPath, rec.payload)
		}
		return core.NewResultErrorf(core.BlockNotFound, "bgcode: no thumbnail at index %d", index)
	},
}

// writeFileAtomic writes data to a uuid-named temporary file in the same
// directory as path, then renames it into place, so a reader never
// observes a partially-written thumbnail.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp := filepath.Join(dir, "."+uuid.NewString()+".tmp")
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errors.Wrapf(err, "bgcode: write temporary file for %s", path)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return errors.Wrapf(err, "bgcode: rename temporary file into %s", path)
	}
	return nil
}

var packCommand = &cli.Command{
	Name:      "pack",
	Usage:     "wrap a plain G-code file into a minimal container",
	ArgsUsage: "<gcode-file>",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "out", Usage: "output container `PATH`", Required: true},
	},
	Action: func(ctx *cli.Context) error {
		gcodePath := ctx.Args().First()
		if gcodePath == "" {
			return cli.Exit("bgcode: pack requires a gcode file argument", 1)
		}
		outPath := ctx.String("out")

		text, err := os.ReadFile(gcodePath)
		if err != nil {
			return errors.Wrapf(err, "bgcode: read %s", gcodePath)
		}

		cfg := conf.NewConfig()
		out, err := streams.OpenFileOutput(outPath, cfg.DefaultWriterChecksumKind, core.MaxFormatVersion)
		if err != nil {
			return errors.WithStack(err)
		}
		defer out.Close()

		if err := core.WriteStreamHeader(out, core.StreamHeader{
			Magic:        core.Magic,
			Version:      core.MaxFormatVersion,
			ChecksumKind: cfg.DefaultWriterChecksumKind,
		}); err != nil {
			return errors.WithStack(err)
		}

		bw := writer.NewBlockWriter(out)
		for _, kind := range []core.BlockKind{core.FileMetadata, core.PrinterMetadata, core.PrintMetadata, core.SlicerMetadata} {
			if err := writeEmptyMetadataBlock(bw, kind); err != nil {
				return err
			}
		}
		if err := writeGCodeBlock(bw, text); err != nil {
			return err
		}

		log.ModuleLogger("cmd/bgcode").Infof("packed %s into %s", gcodePath, outPath)
		return nil
	},
}

func writeEmptyMetadataBlock(bw *writer.BlockWriter, kind core.BlockKind) error {
	header := core.BlockHeader{Kind: kind, Compression: core.CompressionNone}
	err := bw.StartBlock(header, func(p writer.ParamWriter) error {
		return p.IntParam(uint64(core.MetadataEncodingIni), 2)
	})
	if err != nil {
		return errors.WithStack(err)
	}
	return errors.WithStack(bw.FinishBlock())
}

func writeGCodeBlock(bw *writer.BlockWriter, text []byte) error {
	header := core.BlockHeader{
		Kind:             core.GCode,
		Compression:      core.CompressionNone,
		UncompressedSize: uint32(len(text)),
	}
	err := bw.StartBlock(header, func(p writer.ParamWriter) error {
		return p.IntParam(uint64(core.GCodeEncodingNone), 2)
	})
	if err != nil {
		return errors.WithStack(err)
	}
	if err := bw.WriteData(text); err != nil {
		return errors.WithStack(err)
	}
	return errors.WithStack(bw.FinishBlock())
}
