package record

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/lompack/lompack/internal/home"
	"github.com/lompack/lompack/internal/scorm"
)

// extensionsByType restricts uploads to extensions matching the declared
// category.
var extensionsByType = map[string]map[string]bool{
	"image":    {".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true},
	"audio":    {".mp3": true, ".wav": true},
	"video":    {".mp4": true, ".webm": true},
	"document": {".pdf": true, ".txt": true, ".html": true},
}

// AttachRequest contains the parameters for attaching one media file.
type AttachRequest struct {
	RecordID string
	FileType string // image|audio|video|document
	Filename string // original upload name, supplies the extension
	Caption  string
	AltText  string
	Content  io.Reader
}

// AttachMedia stores the uploaded bytes under the home media directory,
// validates PDFs with pdfcpu, and inserts the media row.
func AttachMedia(ctx context.Context, store *Store, homeDir *home.Dir, req AttachRequest) (*Media, error) {
	if _, err := store.GetRecord(ctx, req.RecordID); err != nil {
		return nil, err
	}
	if !scorm.ValidKind(req.FileType) {
		return nil, fmt.Errorf("invalid file_type %q", req.FileType)
	}

	ext := strings.ToLower(filepath.Ext(req.Filename))
	if !extensionsByType[req.FileType][ext] {
		return nil, fmt.Errorf("extension %q is not allowed for file type %q", ext, req.FileType)
	}

	if err := homeDir.EnsureMediaDir(req.RecordID); err != nil {
		return nil, fmt.Errorf("failed to create media directory: %w", err)
	}

	id := uuid.New().String()
	storedName := id + ext
	dstPath := homeDir.MediaPath(req.RecordID, storedName)

	dst, err := os.Create(dstPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create media file: %w", err)
	}
	size, err := io.Copy(dst, req.Content)
	if closeErr := dst.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(dstPath)
		return nil, fmt.Errorf("failed to store media file: %w", err)
	}

	pageCount := 0
	if ext == ".pdf" {
		pageCount, err = pdfPageCount(dstPath)
		if err != nil {
			os.Remove(dstPath)
			return nil, fmt.Errorf("invalid PDF: %w", err)
		}
	}

	m := &Media{
		ID:        id,
		RecordID:  req.RecordID,
		FileType:  req.FileType,
		Filename:  filepath.Base(req.Filename),
		Caption:   req.Caption,
		AltText:   req.AltText,
		Path:      filepath.Join(home.MediaDirName, req.RecordID, storedName),
		Size:      size,
		PageCount: pageCount,
		CreatedAt: time.Now().UTC(),
	}
	if err := store.InsertMedia(ctx, m); err != nil {
		os.Remove(dstPath)
		return nil, err
	}
	return m, nil
}

func pdfPageCount(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return api.PageCount(f, nil)
}

// Label returns the display text for a media file: caption, alt text, or the
// original filename, in that order.
func (m *Media) Label() string {
	if m.Caption != "" {
		return m.Caption
	}
	if m.AltText != "" {
		return m.AltText
	}
	return m.Filename
}

// ExportHandles converts a record's media rows into the handles the SCORM
// builder consumes. Each handle opens the stored file lazily; a file that has
// gone missing on disk surfaces as an open error and the builder drops it
// from the package.
func ExportHandles(ctx context.Context, store *Store, homeDir *home.Dir, recordID string) ([]scorm.MediaHandle, error) {
	media, err := store.ListMedia(ctx, recordID)
	if err != nil {
		return nil, err
	}

	handles := make([]scorm.MediaHandle, 0, len(media))
	for _, m := range media {
		path := filepath.Join(homeDir.Path(), m.Path)
		handles = append(handles, scorm.MediaHandle{
			ID:       m.ID,
			Kind:     scorm.Kind(m.FileType),
			Filename: m.Filename,
			Label:    m.Label(),
			Open: func() (io.ReadCloser, error) {
				return os.Open(path)
			},
		})
	}
	return handles, nil
}
