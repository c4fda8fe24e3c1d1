// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package archive

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/jeranaias/chatvault/internal/metadata"
	"github.com/jeranaias/chatvault/internal/msgstore"
	"github.com/jeranaias/chatvault/internal/util"
)

// =============================================================================
// BUCKETS
// =============================================================================

// Bucket is the media subfolder an attachment is filed under.
type Bucket string

const (
	BucketPhotos Bucket = "Photos"
	BucketVideos Bucket = "Videos"
	BucketAudio  Bucket = "Audio"
	BucketFiles  Bucket = "Files"
)

// ClassifyMIME buckets an attachment by MIME-type substring.
func ClassifyMIME(mime string) Bucket {
	mime = strings.ToLower(mime)
	switch {
	case strings.Contains(mime, "image"):
		return BucketPhotos
	case strings.Contains(mime, "video"):
		return BucketVideos
	case strings.Contains(mime, "audio"):
		return BucketAudio
	default:
		return BucketFiles
	}
}

// =============================================================================
// OUTCOMES
// =============================================================================

// Outcome names which path an attachment took through processing, including
// recovered degradations. Recorded so callers and tests can tell *which*
// degradation occurred, not merely that nothing crashed.
type Outcome int

const (
	// OutcomeOK: copied, with or without fresh enrichment.
	OutcomeOK Outcome = iota
	// OutcomeCacheHit: copied; enrichment reused from the cache.
	OutcomeCacheHit
	// OutcomeMissingSource: source file absent; inline marker emitted.
	OutcomeMissingSource
	// OutcomeHelperSkipped: helper configured but failed the trust gate.
	OutcomeHelperSkipped
	// OutcomeHelperFailed: helper ran and errored or timed out.
	OutcomeHelperFailed
	// OutcomeCopyFailed: copy to destination failed; path omitted.
	OutcomeCopyFailed
)

// String returns the outcome name for logs.
func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeCacheHit:
		return "cache_hit"
	case OutcomeMissingSource:
		return "missing_source"
	case OutcomeHelperSkipped:
		return "helper_skipped"
	case OutcomeHelperFailed:
		return "helper_failed"
	case OutcomeCopyFailed:
		return "copy_failed"
	default:
		return "unknown"
	}
}

// Result is the output of processing one attachment.
type Result struct {
	// RowID is the owning message's row identifier.
	RowID int64
	// RelPath is the copied file's path relative to the conversation folder;
	// empty when the source was missing or the copy failed.
	RelPath string
	// Enrichment is OCR/transcription text (or a missing-file marker) to
	// append to the owning message's body.
	Enrichment string
	// Outcome records which processing path was taken.
	Outcome Outcome
}

// =============================================================================
// PROCESSOR
// =============================================================================

// Helper is an optional external enrichment tool with its pinned hash.
type Helper struct {
	Bin    string
	SHA256 string
}

// HelperRunner invokes a helper binary on a file and returns its stdout.
// Injected so tests can count invocations without real subprocesses.
type HelperRunner func(ctx context.Context, bin, path string) (string, error)

// Processor transforms one attachment: consults the enrichment cache, runs
// trusted helpers, and copies the file into the conversation's media tree.
// A Processor is safe for concurrent use; its only shared mutable state is
// the mutex-guarded metadata store.
type Processor struct {
	// DestRoot is the conversation output folder.
	DestRoot string
	// Cache is the shared enrichment cache.
	Cache *metadata.Store
	// OCR and Transcribe are the optional helper tools.
	OCR        Helper
	Transcribe Helper
	// Timeout bounds one helper invocation.
	Timeout time.Duration
	// Run invokes helpers; nil selects the real subprocess runner.
	Run HelperRunner

	// Trust is established once per pipeline invocation; the binaries are
	// not expected to change mid-run.
	verifyOnce        sync.Once
	ocrTrusted        bool
	transcribeTrusted bool
}

// verifyHelpers runs the trust gate over both helper binaries.
func (p *Processor) verifyHelpers() {
	p.verifyOnce.Do(func() {
		p.ocrTrusted = p.OCR.Bin != "" && VerifyBinary(p.OCR.Bin, p.OCR.SHA256)
		p.transcribeTrusted = p.Transcribe.Bin != "" && VerifyBinary(p.Transcribe.Bin, p.Transcribe.SHA256)
	})
}

// Process handles one attachment owned by the message identified by rowID.
// tsISO is the owning message's formatted timestamp, used for chronological
// destination naming. Process never returns an error: every failure mode
// degrades into the Result per the pipeline's failure semantics.
func (p *Processor) Process(ctx context.Context, rowID int64, att msgstore.Attachment, tsISO string) Result {
	res := Result{RowID: rowID}

	if !util.FileExists(att.Path) {
		res.Enrichment = fmt.Sprintf(" [Missing Attachment: %s]", filepath.Base(att.Path))
		res.Outcome = OutcomeMissingSource
		return res
	}

	p.verifyHelpers()

	fp, fpOK := Fingerprint(att.Path)
	bucket := ClassifyMIME(att.MIME)
	newName := fileStamp(tsISO) + "_" + sanitizeBaseName(filepath.Base(att.Path))
	dest := filepath.Join(p.DestRoot, "Media", string(bucket), newName)

	if cached, ok := p.Cache.CacheGet(fp); fpOK && ok {
		res.Enrichment = cached
		res.Outcome = OutcomeCacheHit
	} else {
		switch bucket {
		case BucketPhotos:
			res.Enrichment, res.Outcome = p.enrich(ctx, p.OCR, p.ocrTrusted, att.Path, newName, "OCR")
		case BucketAudio:
			res.Enrichment, res.Outcome = p.enrich(ctx, p.Transcribe, p.transcribeTrusted, att.Path, newName, "Transcription")
		}

		// Cache writes go through the guarded store; only fresh, non-empty
		// enrichment is worth remembering.
		if fpOK && res.Enrichment != "" {
			p.Cache.CachePut(fp, res.Enrichment)
		}
	}

	if err := util.CopyFile(att.Path, dest); err != nil {
		// Enrichment gathered so far still surfaces in the record.
		res.Outcome = OutcomeCopyFailed
		return res
	}
	res.RelPath = filepath.Join("Media", string(bucket), newName)
	return res
}

// enrich runs one helper over the source file. kind is the label used both
// for the inline marker and the sidecar directory ("OCR", "Transcription").
func (p *Processor) enrich(ctx context.Context, h Helper, trusted bool, srcPath, newName, kind string) (string, Outcome) {
	if h.Bin == "" {
		return "", OutcomeOK
	}
	if !trusted {
		return "", OutcomeHelperSkipped
	}

	timeout := p.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	run := p.Run
	if run == nil {
		run = runHelper
	}
	out, err := run(ctx, h.Bin, srcPath)
	if err != nil {
		return "", OutcomeHelperFailed
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", OutcomeOK
	}

	p.writeSidecar(kind, newName, out)
	return fmt.Sprintf("\n[%s: %s]", kind, out), OutcomeOK
}

// writeSidecar stores raw helper output next to the media tree, named after
// the copied file. Best effort: the inline enrichment is the primary record.
func (p *Processor) writeSidecar(kind, newName, text string) {
	dir := filepath.Join(p.DestRoot, "Media", sidecarDir(kind))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return
	}
	os.WriteFile(filepath.Join(dir, newName+".txt"), []byte(text), 0644)
}

// sidecarDir maps a helper kind to its sidecar directory name.
func sidecarDir(kind string) string {
	if kind == "Transcription" {
		return "Transcriptions"
	}
	return kind
}

// runHelper is the real subprocess runner: one file-path argument, text on
// stdout, exit zero. Anything else means no enrichment.
func runHelper(ctx context.Context, bin, path string) (string, error) {
	out, err := exec.CommandContext(ctx, bin, path).Output()
	if err != nil {
		return "", err
	}
	return string(out), nil
}
