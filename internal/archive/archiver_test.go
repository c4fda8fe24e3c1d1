// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package archive

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jeranaias/chatvault/internal/contacts"
	"github.com/jeranaias/chatvault/internal/export"
	"github.com/jeranaias/chatvault/internal/metadata"
	"github.com/jeranaias/chatvault/internal/msgstore"
)

// =============================================================================
// FAKES
// =============================================================================

// fakeSource serves a fixed conversation, filtering like the real store:
// messages at or after sinceTS, in ascending date order.
type fakeSource struct {
	info *msgstore.ChatInfo
	msgs []msgstore.Message
	err  error
}

func (f *fakeSource) ChatInfo(chatGUID string) (*msgstore.ChatInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.info, nil
}

func (f *fakeSource) Messages(chatGUID string, sinceTS int64) ([]msgstore.Message, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []msgstore.Message
	for _, m := range f.msgs {
		if m.Date >= sinceTS {
			out = append(out, m)
		}
	}
	return out, nil
}

// appleTS builds a raw store timestamp from seconds past the Apple epoch.
func appleTS(secs int64) int64 { return secs * 1e9 }

func testArchiver(t *testing.T, src MessageSource) (*Archiver, *metadata.Store, string) {
	t.Helper()
	outDir := t.TempDir()
	meta := metadata.Open(filepath.Join(t.TempDir(), "metadata.json"))
	return &Archiver{
		Source:    src,
		Resolver:  contacts.NewMapResolver(map[string]string{"+15551230001": "Alice"}),
		Meta:      meta,
		OutputDir: outDir,
		Workers:   2,
	}, meta, outDir
}

func threeMessageSource(t *testing.T) *fakeSource {
	t.Helper()
	attPath := filepath.Join(t.TempDir(), "IMG_1001.heic")
	if err := os.WriteFile(attPath, []byte("pixels"), 0644); err != nil {
		t.Fatal(err)
	}
	return &fakeSource{
		info: &msgstore.ChatInfo{GUID: "chat-guid-1", DisplayName: "Family Chat"},
		msgs: []msgstore.Message{
			{RowID: 1, GUID: "g-1", Date: appleTS(100), IsFromMe: false, HandleID: "+15551230001", Service: "iMessage", Text: "look at this"},
			{RowID: 2, GUID: "g-2", Date: appleTS(200), IsFromMe: true, Service: "iMessage", Text: "nice",
				Attachments: []msgstore.Attachment{{Path: attPath, MIME: "image/heic"}}},
			{RowID: 3, GUID: "g-3", Date: appleTS(300), IsFromMe: false, HandleID: "+15551230001", Service: "iMessage", ReactionCode: 2000},
		},
	}
}

// =============================================================================
// EXPORT TESTS
// =============================================================================

func TestArchive_CSVEndToEnd(t *testing.T) {
	src := threeMessageSource(t)
	a, meta, outDir := testArchiver(t, src)

	sum, err := a.Archive(context.Background(), "chat-guid-1", "csv", false)
	if err != nil {
		t.Fatalf("Archive failed: %v", err)
	}
	if sum.RecordCount != 3 {
		t.Errorf("RecordCount = %d, want 3", sum.RecordCount)
	}
	if sum.UpToDate {
		t.Error("full export reported UpToDate")
	}

	wantPath := filepath.Join(outDir, "Family Chat", "chat_export.csv")
	if sum.OutputFile != wantPath {
		t.Errorf("OutputFile = %q, want %q", sum.OutputFile, wantPath)
	}

	f, err := os.Open(sum.OutputFile)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 4 {
		t.Fatalf("rows = %d, want header + 3", len(rows))
	}

	// Row 1: inbound, resolved sender, text intact.
	if rows[1][1] != "Alice" || rows[1][2] != "look at this" {
		t.Errorf("row 1 = %v", rows[1])
	}
	// Row 2: outbound, attachment path recorded, no enrichment without a
	// helper configured.
	if rows[2][1] != "Me" || rows[2][2] != "nice" {
		t.Errorf("row 2 = %v", rows[2])
	}
	if !strings.Contains(rows[2][3], filepath.Join("Media", "Photos")) {
		t.Errorf("row 2 attachments = %q", rows[2][3])
	}
	// Row 3: reaction label resolved.
	if rows[3][6] != "Loved" {
		t.Errorf("row 3 reaction = %q, want Loved", rows[3][6])
	}

	// Copied media exists under the conversation folder.
	entries, err := os.ReadDir(filepath.Join(outDir, "Family Chat", "Media", "Photos"))
	if err != nil || len(entries) != 1 {
		t.Errorf("Media/Photos entries = %v, err = %v", entries, err)
	}

	// Watermark advanced to the newest exported message.
	wm, ok := meta.Watermark("chat-guid-1")
	if !ok || wm.TS != appleTS(300) {
		t.Errorf("watermark = %+v, ok = %v; want TS %d", wm, ok, appleTS(300))
	}
}

func TestArchive_IncrementalUpToDate(t *testing.T) {
	src := threeMessageSource(t)
	a, meta, _ := testArchiver(t, src)

	if _, err := a.Archive(context.Background(), "chat-guid-1", "csv", false); err != nil {
		t.Fatalf("full export failed: %v", err)
	}
	before, _ := meta.Watermark("chat-guid-1")

	sum, err := a.Archive(context.Background(), "chat-guid-1", "csv", true)
	if err != nil {
		t.Fatalf("incremental export failed: %v", err)
	}
	if !sum.UpToDate {
		t.Error("incremental run with no new messages should report UpToDate")
	}
	if sum.RecordCount != 0 || sum.OutputFile != "" {
		t.Errorf("Summary = %+v, want no records and no file", sum)
	}

	after, _ := meta.Watermark("chat-guid-1")
	if after != before {
		t.Errorf("watermark moved: %+v -> %+v", before, after)
	}
}

func TestArchive_IncrementalExportsOnlyNew(t *testing.T) {
	src := threeMessageSource(t)
	a, _, _ := testArchiver(t, src)

	if _, err := a.Archive(context.Background(), "chat-guid-1", "json", false); err != nil {
		t.Fatal(err)
	}

	src.msgs = append(src.msgs, msgstore.Message{
		RowID: 4, GUID: "g-4", Date: appleTS(400), IsFromMe: true, Service: "iMessage", Text: "one more",
	})

	sum, err := a.Archive(context.Background(), "chat-guid-1", "json", true)
	if err != nil {
		t.Fatal(err)
	}
	if sum.RecordCount != 1 {
		t.Fatalf("RecordCount = %d, want only the new message", sum.RecordCount)
	}

	data, err := os.ReadFile(sum.OutputFile)
	if err != nil {
		t.Fatal(err)
	}
	var records []export.Record
	if err := json.Unmarshal(data, &records); err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 || records[0].GUID != "g-4" {
		t.Errorf("records = %+v, want just g-4", records)
	}
}

func TestArchive_UnknownFormat(t *testing.T) {
	a, _, _ := testArchiver(t, threeMessageSource(t))
	if _, err := a.Archive(context.Background(), "chat-guid-1", "xml", false); err == nil {
		t.Error("unknown format should fail before touching the source")
	}
}

func TestArchive_SourceError(t *testing.T) {
	wantErr := errors.New("database is locked")
	a, _, _ := testArchiver(t, &fakeSource{err: wantErr})

	if _, err := a.Archive(context.Background(), "chat-guid-1", "csv", false); !errors.Is(err, wantErr) {
		t.Errorf("err = %v, want wrapped source error", err)
	}
}

func TestArchive_SerializationFailure(t *testing.T) {
	src := threeMessageSource(t)
	a, meta, _ := testArchiver(t, src)

	// A regular file where the output tree should go forces the write to fail.
	blocked := filepath.Join(t.TempDir(), "out")
	if err := os.WriteFile(blocked, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	a.OutputDir = blocked

	_, err := a.Archive(context.Background(), "chat-guid-1", "csv", false)
	if !errors.Is(err, ErrSerialization) {
		t.Fatalf("err = %v, want ErrSerialization", err)
	}

	// The watermark must not move past a failed write.
	if _, ok := meta.Watermark("chat-guid-1"); ok {
		t.Error("watermark advanced despite failed serialization")
	}
}

// =============================================================================
// NAMING TESTS
// =============================================================================

func TestArchive_FolderFromParticipants(t *testing.T) {
	src := threeMessageSource(t)
	src.info = &msgstore.ChatInfo{GUID: "chat-guid-1", Participants: []string{"+15551230001"}}
	a, _, outDir := testArchiver(t, src)

	sum, err := a.Archive(context.Background(), "chat-guid-1", "md", false)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Dir(sum.OutputFile) != filepath.Join(outDir, "Alice") {
		t.Errorf("output dir = %q, want resolved participant name", filepath.Dir(sum.OutputFile))
	}
}

func TestArchive_FolderFallback(t *testing.T) {
	src := threeMessageSource(t)
	src.info = &msgstore.ChatInfo{GUID: "chat-guid-1"}
	a, _, outDir := testArchiver(t, src)

	sum, err := a.Archive(context.Background(), "chat-guid-1", "md", false)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Dir(sum.OutputFile) != filepath.Join(outDir, "Unknown_Chat") {
		t.Errorf("output dir = %q, want Unknown_Chat fallback", filepath.Dir(sum.OutputFile))
	}
}

// =============================================================================
// PROGRESS TESTS
// =============================================================================

func TestArchive_ProgressReachesTotal(t *testing.T) {
	src := threeMessageSource(t)
	a, _, _ := testArchiver(t, src)

	var lastDone, lastTotal int
	a.Progress = func(done, total int) { lastDone, lastTotal = done, total }

	if _, err := a.Archive(context.Background(), "chat-guid-1", "csv", false); err != nil {
		t.Fatal(err)
	}
	if lastDone != 3 || lastTotal != 3 {
		t.Errorf("final progress = %d/%d, want 3/3", lastDone, lastTotal)
	}
}
