// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
)

// =============================================================================
// CSV EXPORTER
// =============================================================================

// csvHeader is the fixed output column order.
var csvHeader = []string{
	"timestamp", "sender", "text", "attachments", "guid",
	"service", "reaction_type", "sender_handle", "is_from_me",
}

// CSVExporter exports conversations to CSV format.
type CSVExporter struct{}

// Export converts a conversation to CSV with a fixed header row.
func (e *CSVExporter) Export(conv *Conversation) ([]byte, error) {
	if conv == nil {
		return nil, fmt.Errorf("conversation is nil")
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for _, r := range conv.Records {
		row := []string{
			r.Timestamp,
			r.Sender,
			r.Text,
			r.Attachments,
			r.GUID,
			r.Service,
			r.ReactionType,
			r.SenderHandle,
			strconv.FormatBool(r.IsFromMe),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// FileExtension returns the file extension for CSV.
func (e *CSVExporter) FileExtension() string {
	return ".csv"
}

// MimeType returns the MIME type for CSV.
func (e *CSVExporter) MimeType() string {
	return "text/csv"
}
