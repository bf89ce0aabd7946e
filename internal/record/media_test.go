package record

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lompack/lompack/internal/home"
	"github.com/lompack/lompack/internal/scorm"
)

func testHome(t *testing.T) *home.Dir {
	t.Helper()
	dir, err := home.New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := dir.EnsureExists(); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestAttachMedia(t *testing.T) {
	store := testStore(t)
	homeDir := testHome(t)
	ctx := context.Background()

	rec, err := store.CreateRecord(ctx, "Attach target", "")
	if err != nil {
		t.Fatal(err)
	}

	m, err := AttachMedia(ctx, store, homeDir, AttachRequest{
		RecordID: rec.ID,
		FileType: "image",
		Filename: "facade.JPG",
		Caption:  "West facade",
		Content:  strings.NewReader("jpeg-bytes"),
	})
	if err != nil {
		t.Fatalf("AttachMedia() error: %v", err)
	}

	if m.Size != int64(len("jpeg-bytes")) {
		t.Errorf("Size = %d", m.Size)
	}
	if m.Filename != "facade.JPG" {
		t.Errorf("Filename = %q", m.Filename)
	}
	if filepath.Ext(m.Path) != ".jpg" {
		t.Errorf("stored path %q should carry the lowercased extension", m.Path)
	}

	data, err := os.ReadFile(filepath.Join(homeDir.Path(), m.Path))
	if err != nil {
		t.Fatalf("stored file unreadable: %v", err)
	}
	if string(data) != "jpeg-bytes" {
		t.Errorf("stored content = %q", data)
	}

	rows, err := store.ListMedia(ctx, rec.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0].ID != m.ID {
		t.Errorf("media row not persisted: %v", rows)
	}
}

func TestAttachMediaRejectsUnknownRecord(t *testing.T) {
	store := testStore(t)
	homeDir := testHome(t)

	_, err := AttachMedia(context.Background(), store, homeDir, AttachRequest{
		RecordID: "missing",
		FileType: "image",
		Filename: "x.png",
		Content:  strings.NewReader("x"),
	})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestAttachMediaValidatesExtension(t *testing.T) {
	store := testStore(t)
	homeDir := testHome(t)
	ctx := context.Background()

	rec, err := store.CreateRecord(ctx, "Extension checks", "")
	if err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		fileType string
		filename string
		ok       bool
	}{
		{"image", "a.png", true},
		{"image", "a.webp", true},
		{"image", "a.mp3", false},
		{"audio", "a.mp3", true},
		{"audio", "a.wav", true},
		{"audio", "a.ogg", false},
		{"video", "a.mp4", true},
		{"video", "a.webm", true},
		{"video", "a.avi", false},
		{"document", "a.txt", true},
		{"document", "a.html", true},
		{"document", "a.docx", false},
		{"painting", "a.png", false},
		{"image", "noextension", false},
	}

	for _, tc := range cases {
		t.Run(tc.fileType+"/"+tc.filename, func(t *testing.T) {
			_, err := AttachMedia(ctx, store, homeDir, AttachRequest{
				RecordID: rec.ID,
				FileType: tc.fileType,
				Filename: tc.filename,
				Content:  strings.NewReader("content"),
			})
			if tc.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tc.ok && err == nil {
				t.Error("expected rejection")
			}
		})
	}
}

func TestAttachMediaRejectsBrokenPDF(t *testing.T) {
	store := testStore(t)
	homeDir := testHome(t)
	ctx := context.Background()

	rec, err := store.CreateRecord(ctx, "PDF checks", "")
	if err != nil {
		t.Fatal(err)
	}

	_, err = AttachMedia(ctx, store, homeDir, AttachRequest{
		RecordID: rec.ID,
		FileType: "document",
		Filename: "broken.pdf",
		Content:  strings.NewReader("this is not a pdf"),
	})
	if err == nil {
		t.Fatal("expected error for malformed PDF")
	}

	// the rejected upload must not leave a row or a file behind
	rows, err := store.ListMedia(ctx, rec.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 0 {
		t.Errorf("media rows = %d, want 0", len(rows))
	}
	entries, err := os.ReadDir(homeDir.MediaDir(rec.ID))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("leftover files: %v", entries)
	}
}

func TestMediaLabel(t *testing.T) {
	m := &Media{Filename: "scan.png", AltText: "Scanned page", Caption: "Page one"}
	if got := m.Label(); got != "Page one" {
		t.Errorf("Label() = %q, want caption", got)
	}
	m.Caption = ""
	if got := m.Label(); got != "Scanned page" {
		t.Errorf("Label() = %q, want alt text", got)
	}
	m.AltText = ""
	if got := m.Label(); got != "scan.png" {
		t.Errorf("Label() = %q, want filename", got)
	}
}

func TestExportHandles(t *testing.T) {
	store := testStore(t)
	homeDir := testHome(t)
	ctx := context.Background()

	rec, err := store.CreateRecord(ctx, "Export source", "")
	if err != nil {
		t.Fatal(err)
	}

	attached, err := AttachMedia(ctx, store, homeDir, AttachRequest{
		RecordID: rec.ID,
		FileType: "audio",
		Filename: "narration.mp3",
		Caption:  "Audio guide",
		Content:  strings.NewReader("mp3-bytes"),
	})
	if err != nil {
		t.Fatal(err)
	}

	handles, err := ExportHandles(ctx, store, homeDir, rec.ID)
	if err != nil {
		t.Fatalf("ExportHandles() error: %v", err)
	}
	if len(handles) != 1 {
		t.Fatalf("got %d handles, want 1", len(handles))
	}

	h := handles[0]
	if h.ID != attached.ID || h.Kind != scorm.KindAudio || h.Label != "Audio guide" {
		t.Errorf("handle = %+v", h)
	}

	rc, err := h.Open()
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "mp3-bytes" {
		t.Errorf("content = %q", data)
	}
}

func TestExportHandlesMissingFile(t *testing.T) {
	store := testStore(t)
	homeDir := testHome(t)
	ctx := context.Background()

	rec, err := store.CreateRecord(ctx, "Missing file", "")
	if err != nil {
		t.Fatal(err)
	}
	m, err := AttachMedia(ctx, store, homeDir, AttachRequest{
		RecordID: rec.ID,
		FileType: "image",
		Filename: "gone.png",
		Content:  strings.NewReader("x"),
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(filepath.Join(homeDir.Path(), m.Path)); err != nil {
		t.Fatal(err)
	}

	handles, err := ExportHandles(ctx, store, homeDir, rec.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(handles) != 1 {
		t.Fatalf("got %d handles, want 1", len(handles))
	}
	if _, err := handles[0].Open(); err == nil {
		t.Error("expected open error for a removed file")
	}
}
