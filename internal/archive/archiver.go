// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package archive

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/jeranaias/chatvault/internal/contacts"
	"github.com/jeranaias/chatvault/internal/export"
	"github.com/jeranaias/chatvault/internal/metadata"
	"github.com/jeranaias/chatvault/internal/msgstore"
)

// =============================================================================
// ERRORS
// =============================================================================

// ErrSerialization indicates the output file could not be written. The
// watermark is never advanced past a failed write.
var ErrSerialization = errors.New("export serialization failed")

// =============================================================================
// COLLABORATOR INTERFACES
// =============================================================================

// MessageSource is the read-only message-store collaborator. All reads
// happen once, up front, on the coordinating goroutine.
type MessageSource interface {
	ChatInfo(chatGUID string) (*msgstore.ChatInfo, error)
	Messages(chatGUID string, sinceTS int64) ([]msgstore.Message, error)
}

// ProgressFunc receives coarse progress updates during record composition.
// Purely observational; it must not block for long and cannot affect the
// outcome of the export.
type ProgressFunc func(done, total int)

// =============================================================================
// ARCHIVER
// =============================================================================

// defaultWorkers is the attachment pool size. Attachment tasks are I/O- and
// subprocess-bound, so a small fixed pool independent of message count is
// enough.
const defaultWorkers = 8

// Archiver coordinates one conversation export end to end.
type Archiver struct {
	Source   MessageSource
	Resolver contacts.Resolver
	Meta     *metadata.Store

	// OutputDir is the export root; each conversation gets a subfolder.
	OutputDir string
	// Workers bounds the attachment pool; 0 selects the default.
	Workers int

	OCR           Helper
	Transcribe    Helper
	HelperTimeout time.Duration

	// TimestampedFilenames appends an export timestamp to output filenames.
	TimestampedFilenames bool

	// Progress, when set, is invoked at a bounded rate during composition.
	Progress ProgressFunc

	Logger *slog.Logger
}

// Summary reports the outcome of one archive invocation.
type Summary struct {
	// RunID correlates log lines of one invocation.
	RunID string
	// OutputFile is the written export path; empty when up to date.
	OutputFile string
	// RecordCount is the number of exported records.
	RecordCount int
	// UpToDate is true when an incremental run found nothing new.
	UpToDate bool
}

// Archive exports one conversation. Incremental runs start just past the
// stored watermark; a stale or absent watermark degrades to a full export.
// Per-attachment failures never abort the export; only an unavailable source
// or a failed output write do.
func (a *Archiver) Archive(ctx context.Context, chatGUID, format string, incremental bool) (*Summary, error) {
	exporter, err := export.ForFormat(format)
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	logger := a.logger().With("run_id", runID, "chat", chatGUID, "format", format)

	// Resolve the starting timestamp. The +1 excludes the boundary message
	// that the previous run already exported.
	var startTS int64
	if incremental {
		if wm, ok := a.Meta.Watermark(chatGUID); ok {
			startTS = wm.TS + 1
		}
	}

	msgs, err := a.Source.Messages(chatGUID, startTS)
	if err != nil {
		return nil, err
	}
	if len(msgs) == 0 {
		logger.Info("nothing to export", "since", startTS, "incremental", incremental)
		return &Summary{RunID: runID, UpToDate: incremental}, nil
	}

	folderName := a.folderName(chatGUID, logger)
	destDir := filepath.Join(a.OutputDir, SanitizeFolderName(folderName))

	results := a.processAttachments(ctx, msgs, destDir)
	records := a.compose(msgs, results)

	conv := &export.Conversation{Name: folderName, Records: records}
	outPath, err := export.ToFile(conv, exporter, &export.Options{
		OutputDir:       destDir,
		TimestampedName: a.TimestampedFilenames,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerialization, err)
	}

	// Advance the watermark only after the output is safely on disk.
	last := msgs[len(msgs)-1]
	a.Meta.SetWatermark(chatGUID, metadata.Watermark{
		TS:  last.Date,
		ISO: msgstore.FormatTimestamp(last.Date),
	})
	if err := a.Meta.Save(); err != nil {
		// The export itself succeeded; losing the watermark only costs the
		// next run a re-export.
		logger.Warn("metadata save failed", "error", err)
	}

	logger.Info("export complete", "records", len(records), "output", outPath)
	return &Summary{RunID: runID, OutputFile: outPath, RecordCount: len(records)}, nil
}

// =============================================================================
// PIPELINE STAGES
// =============================================================================

// folderName determines the destination folder name from the chat's display
// name or its resolved participants. A failed lookup degrades to the default
// name rather than aborting the export.
func (a *Archiver) folderName(chatGUID string, logger *slog.Logger) string {
	info, err := a.Source.ChatInfo(chatGUID)
	if err != nil {
		logger.Warn("chat info lookup failed", "error", err)
		return "Unknown_Chat"
	}
	if info.DisplayName != "" {
		return info.DisplayName
	}

	var names []string
	for _, h := range info.Participants {
		names = append(names, a.Resolver.Resolve(h))
	}
	if joined := strings.Join(names, ", "); joined != "" {
		return joined
	}
	return "Unknown_Chat"
}

// processAttachments fans every (message, attachment) pair out to a bounded
// worker pool and joins the results keyed by owning message. Completion
// order is irrelevant; the join map is only read after the pool drains.
func (a *Archiver) processAttachments(ctx context.Context, msgs []msgstore.Message, destDir string) map[int64][]Result {
	processor := &Processor{
		DestRoot:   destDir,
		Cache:      a.Meta,
		OCR:        a.OCR,
		Transcribe: a.Transcribe,
		Timeout:    a.HelperTimeout,
	}

	workers := a.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}

	var (
		sem     = make(chan struct{}, workers)
		wg      sync.WaitGroup
		mu      sync.Mutex
		results = map[int64][]Result{}
	)

	for _, msg := range msgs {
		tsISO := msgstore.FormatTimestamp(msg.Date)
		for _, att := range msg.Attachments {
			wg.Add(1)
			go func(rowID int64, att msgstore.Attachment, tsISO string) {
				defer wg.Done()
				sem <- struct{}{}
				defer func() { <-sem }()

				res := processor.Process(ctx, rowID, att, tsISO)

				mu.Lock()
				results[rowID] = append(results[rowID], res)
				mu.Unlock()
			}(msg.RowID, att, tsISO)
		}
	}
	wg.Wait()
	return results
}

// compose builds the final record list in strict chronological order,
// independent of attachment completion order.
func (a *Archiver) compose(msgs []msgstore.Message, results map[int64][]Result) []export.Record {
	// Progress is observational; cap its rate so a chatty callback cannot
	// slow composition down.
	limiter := rate.NewLimiter(rate.Every(100*time.Millisecond), 1)

	records := make([]export.Record, 0, len(msgs))
	total := len(msgs)
	for i, msg := range msgs {
		if a.Progress != nil && (i == total-1 || limiter.Allow()) {
			a.Progress(i+1, total)
		}

		var relPaths []string
		var extras strings.Builder
		for _, res := range results[msg.RowID] {
			if res.RelPath != "" {
				relPaths = append(relPaths, res.RelPath)
			}
			extras.WriteString(res.Enrichment)
		}

		sender := "Me"
		if !msg.IsFromMe {
			sender = a.Resolver.Resolve(msg.HandleID)
		}

		records = append(records, export.Record{
			Timestamp:    msgstore.FormatTimestamp(msg.Date),
			Sender:       sender,
			SenderHandle: msg.HandleID,
			Text:         strings.TrimSpace(msg.Text + extras.String()),
			Attachments:  strings.Join(relPaths, " | "),
			GUID:         msg.GUID,
			Service:      msg.Service,
			IsFromMe:     msg.IsFromMe,
			ReactionType: ReactionLabel(msg.ReactionCode),
		})
	}
	return records
}

// logger returns the configured logger or the process default.
func (a *Archiver) logger() *slog.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return slog.Default()
}
