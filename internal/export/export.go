// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export serializes archived conversations to portable files.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// =============================================================================
// RECORD TYPES
// =============================================================================

// Record is one exported message row. Derived from source data, never
// persisted beyond the output file.
type Record struct {
	Timestamp    string `json:"timestamp"`
	Sender       string `json:"sender"`
	SenderHandle string `json:"sender_handle"`
	Text         string `json:"text"`
	// Attachments holds relative output paths joined with " | ".
	Attachments  string `json:"attachments"`
	GUID         string `json:"guid"`
	Service      string `json:"service"`
	IsFromMe     bool   `json:"is_from_me"`
	ReactionType string `json:"reaction_type"`
}

// Conversation is a named, chronologically ordered record list ready for
// serialization.
type Conversation struct {
	// Name is the human-readable conversation name (unsanitized).
	Name    string
	Records []Record
}

// =============================================================================
// EXPORT INTERFACE
// =============================================================================

// Exporter defines the interface for conversation exporters.
type Exporter interface {
	// Export serializes a conversation to the target format.
	Export(conv *Conversation) ([]byte, error)

	// FileExtension returns the appropriate file extension (e.g., ".csv").
	FileExtension() string

	// MimeType returns the MIME type for the exported format.
	MimeType() string
}

// ForFormat returns the exporter for a format name ("csv", "json", "md").
func ForFormat(format string) (Exporter, error) {
	switch strings.ToLower(format) {
	case "csv":
		return &CSVExporter{}, nil
	case "json":
		return &JSONExporter{}, nil
	case "md", "markdown":
		return &MarkdownExporter{}, nil
	default:
		return nil, fmt.Errorf("unsupported export format: %q", format)
	}
}

// =============================================================================
// EXPORT OPTIONS
// =============================================================================

// Options configures export output.
type Options struct {
	// OutputDir is the directory where the file will be written.
	OutputDir string

	// TimestampedName appends an export timestamp to the filename so repeated
	// runs never overwrite earlier exports.
	TimestampedName bool
}

// =============================================================================
// FILE OUTPUT
// =============================================================================

// ToFile serializes a conversation and writes it under opts.OutputDir.
// Returns the output file path.
func ToFile(conv *Conversation, exporter Exporter, opts *Options) (string, error) {
	if opts == nil {
		opts = &Options{OutputDir: "."}
	}

	content, err := exporter.Export(conv)
	if err != nil {
		return "", fmt.Errorf("export failed: %w", err)
	}

	name := "chat_export"
	if opts.TimestampedName {
		name += "_" + time.Now().Format("20060102_150405")
	}
	name += exporter.FileExtension()

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	outputPath := filepath.Join(opts.OutputDir, name)
	if err := os.WriteFile(outputPath, content, 0644); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return outputPath, nil
}
