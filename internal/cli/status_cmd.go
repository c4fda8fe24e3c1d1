// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// status_cmd.go - Status command implementation for chatvault.
//
// Command: status
// Aliases: s
//
// Status Sections:
//   Source:   chat.db path and reachability
//   Metadata: cache entries, watermark count, store path
//   Helpers:  OCR/transcription binaries and their trust-gate result
package cli

import (
	"fmt"

	"github.com/jeranaias/chatvault/internal/archive"
	"github.com/jeranaias/chatvault/internal/metadata"
	"github.com/jeranaias/chatvault/internal/util"
)

// HandleStatus prints source, metadata, and helper status.
func HandleStatus(args []string) error {
	parser := NewArgParser(args)

	cfg, err := loadConfig(parser)
	if err != nil {
		return err
	}

	fmt.Println("Source")
	fmt.Printf("  database:  %s\n", cfg.DBPath)
	fmt.Printf("  readable:  %v\n", util.FileExists(cfg.DBPath))
	if cfg.WorkDBPath != "" {
		fmt.Printf("  work copy: %s (readable: %v)\n", cfg.WorkDBPath, util.FileExists(cfg.WorkDBPath))
	}

	// Metadata is read without opening the source database.
	meta := metadata.Open(cfg.MetadataPath)
	fmt.Println("Metadata")
	fmt.Printf("  store:      %s\n", cfg.MetadataPath)
	fmt.Printf("  cache:      %d enrichment entries\n", meta.CacheLen())
	fmt.Printf("  watermarks: %d conversations\n", len(meta.Watermarks()))

	fmt.Println("Helpers")
	printHelperStatus("ocr", cfg.OCR.Bin, cfg.OCR.SHA256)
	printHelperStatus("transcribe", cfg.Transcribe.Bin, cfg.Transcribe.SHA256)

	fmt.Println("Output")
	fmt.Printf("  directory: %s\n", cfg.OutputDir)
	fmt.Printf("  workers:   %d\n", cfg.Workers)
	return nil
}

// printHelperStatus reports one helper's configuration and trust result.
func printHelperStatus(name, bin, hash string) {
	if bin == "" {
		fmt.Printf("  %-11s not configured\n", name+":")
		return
	}
	state := "UNTRUSTED (hash mismatch or unreadable)"
	if archive.VerifyBinary(bin, hash) {
		state = "trusted"
	}
	fmt.Printf("  %-11s %s (%s)\n", name+":", bin, state)
}
