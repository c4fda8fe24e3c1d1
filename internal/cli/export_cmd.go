// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// export_cmd.go - Export command implementation for chatvault.
//
// Command: export
// Aliases: archive
//
// Examples:
//   chatvault export                       Interactive conversation picker
//   chatvault export <chat-guid>           Incremental export of one chat
//   chatvault export <chat-guid> --full    Full re-export, ignore watermark
//   chatvault export --batch 5             Export the 5 most recent chats
//   chatvault export --format md           Markdown instead of CSV
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/jeranaias/chatvault/internal/archive"
)

// HandleExport runs one export, a batch export, or the interactive picker.
func HandleExport(args []string) error {
	parser := NewArgParser(args)

	app, err := newApp(parser)
	if err != nil {
		return err
	}
	defer app.Close()

	format := parser.Flag("format")
	if format == "" {
		format, _ = app.Meta.UIDefault("format")
	}
	if format == "" {
		format = "csv"
	}
	incremental := !parser.BoolFlag("full")

	if n := parser.IntFlag("batch", 0); n > 0 {
		return exportBatch(app, parser, n, format, incremental)
	}

	chatGUID := parser.Positional(0)
	if chatGUID == "" {
		chatGUID, err = pickChat(app)
		if err != nil {
			return err
		}
		if chatGUID == "" {
			return nil
		}
	}

	return exportOne(app, parser, chatGUID, format, incremental)
}

// exportOne archives a single conversation and prints its outcome.
func exportOne(app *App, parser *ArgParser, chatGUID, format string, incremental bool) error {
	archiver := newArchiver(app, parser)

	archiver.Progress = func(done, total int) {
		fmt.Fprintf(os.Stderr, "\r  %d/%d messages", done, total)
		if done == total {
			fmt.Fprintln(os.Stderr)
		}
	}

	sum, err := archiver.Archive(context.Background(), chatGUID, format, incremental)
	if err != nil {
		return err
	}
	if sum.UpToDate {
		fmt.Printf("Up to date: %s\n", chatGUID)
		return nil
	}
	fmt.Printf("Exported %d messages -> %s\n", sum.RecordCount, sum.OutputFile)

	// Remember the chosen format for the next run.
	app.Meta.SetUIDefault("format", format)
	if err := app.Meta.Save(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: metadata save failed: %v\n", err)
	}
	return nil
}

// exportBatch archives the n most recent conversations. A failure on one
// conversation is reported and the batch continues.
func exportBatch(app *App, parser *ArgParser, n int, format string, incremental bool) error {
	chats, err := app.Store.RecentChats(n, listFilter(parser))
	if err != nil {
		return err
	}
	if len(chats) == 0 {
		fmt.Println("No conversations found.")
		return nil
	}

	archiver := newArchiver(app, parser)
	var failed int
	for i, chat := range chats {
		fmt.Printf("[%d/%d] %s\n", i+1, len(chats), chatLabel(app, chat))

		sum, err := archiver.Archive(context.Background(), chat.GUID, format, incremental)
		switch {
		case err != nil:
			failed++
			fmt.Fprintf(os.Stderr, "  failed: %v\n", err)
		case sum.UpToDate:
			fmt.Println("  up to date")
		default:
			fmt.Printf("  %d messages -> %s\n", sum.RecordCount, sum.OutputFile)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d conversations failed", failed, len(chats))
	}
	return nil
}

// newArchiver wires an Archiver from the app context and command flags.
func newArchiver(app *App, parser *ArgParser) *archive.Archiver {
	cfg := app.Config

	outputDir := cfg.OutputDir
	if dir := parser.Flag("output"); dir != "" {
		outputDir = dir
	}

	return &archive.Archiver{
		Source:               app.Store,
		Resolver:             app.Resolver,
		Meta:                 app.Meta,
		OutputDir:            outputDir,
		Workers:              cfg.Workers,
		OCR:                  archive.Helper{Bin: cfg.OCR.Bin, SHA256: cfg.OCR.SHA256},
		Transcribe:           archive.Helper{Bin: cfg.Transcribe.Bin, SHA256: cfg.Transcribe.SHA256},
		HelperTimeout:        cfg.HelperTimeout(),
		TimestampedFilenames: cfg.TimestampedFilenames || parser.BoolFlag("timestamped"),
	}
}
