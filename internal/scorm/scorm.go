// Package scorm builds SCORM 1.2 package interchange files (ZIP) from a
// content record's title, description, LOM metadata tree, and attached media.
package scorm

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"
)

const (
	// DefaultSpoolThreshold is how many bytes the archive buffer holds in
	// memory before spilling to a temporary file.
	DefaultSpoolThreshold = 50 * 1024 * 1024

	// copyChunkSize is the buffer size used when streaming media bytes
	// into the archive.
	copyChunkSize = 1024 * 1024

	fallbackTitle = "Heritage Item"
	fallbackSlug  = "heritage-item"
)

// Fixed paths inside every package.
const (
	manifestPath = "imsmanifest.xml"
	indexPath    = "index.html"
	runtimePath  = "scorm.js"
	lomJSONPath  = "metadata/lom.json"
	lomXMLPath   = "metadata/lom.xml"
)

// Package is a built SCORM archive. It reads the ZIP bytes from a spooled
// buffer; Close releases the buffer (and any temp file backing it).
type Package struct {
	Filename string
	Size     int64
	rc       io.ReadCloser
}

func (p *Package) Read(b []byte) (int, error) { return p.rc.Read(b) }

func (p *Package) Close() error { return p.rc.Close() }

// Builder creates SCORM 1.2 packages.
type Builder struct {
	// Logger receives warnings about media dropped from the package.
	// Defaults to slog.Default().
	Logger *slog.Logger

	// SpoolThreshold overrides DefaultSpoolThreshold when positive.
	SpoolThreshold int64

	// now is overridable for deterministic viewer output in tests.
	now func() time.Time
}

// NewBuilder creates a Builder with default settings.
func NewBuilder(logger *slog.Logger) *Builder {
	return &Builder{Logger: logger}
}

func (b *Builder) logger() *slog.Logger {
	if b.Logger != nil {
		return b.Logger
	}
	return slog.Default()
}

func (b *Builder) timestamp() time.Time {
	if b.now != nil {
		return b.now()
	}
	return time.Now()
}

func (b *Builder) spoolThreshold() int64 {
	if b.SpoolThreshold > 0 {
		return b.SpoolThreshold
	}
	return DefaultSpoolThreshold
}

// Build assembles the package for one record. The metadata tree is never
// mutated. A build either returns a complete archive or an error and no
// artifact; unreadable media streams are dropped from the package rather
// than failing the build.
func (b *Builder) Build(title, description string, metadata map[string]any, media []MediaHandle) (*Package, error) {
	if title == "" {
		title = fallbackTitle
	}
	base := Slugify(title, fallbackSlug)
	filename := base + "-scorm12.zip"

	if metadata == nil {
		metadata = map[string]any{}
	}
	lomCompact, err := json.Marshal(metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize metadata: %w", err)
	}
	lomIndented, err := json.MarshalIndent(metadata, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to serialize metadata: %w", err)
	}
	lomXML, err := buildLOMXML(metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to build LOM XML: %w", err)
	}

	sp := newSpool(b.spoolThreshold())
	pkg, err := b.assemble(sp, base, title, description, lomCompact, lomIndented, lomXML, media)
	if err != nil {
		sp.Cleanup()
		return nil, err
	}
	pkg.Filename = filename
	return pkg, nil
}

// assemble writes every archive entry. Media is streamed first so the
// surviving asset list is known before the viewer and manifest are
// generated; this keeps the manifest's file list equal to the archive's
// actual contents even when a source stream turns out to be unreadable.
func (b *Builder) assemble(sp *spool, base, title, description string, lomCompact, lomIndented, lomXML []byte, media []MediaHandle) (*Package, error) {
	zw := zip.NewWriter(sp)

	assets, err := b.writeAssets(zw, media)
	if err != nil {
		zw.Close()
		return nil, err
	}

	entries := []struct {
		path string
		data []byte
	}{
		{runtimePath, []byte(runtimeScript)},
		{lomJSONPath, lomIndented},
		{lomXMLPath, lomXML},
		{indexPath, []byte(buildIndexHTML(title, description, string(lomCompact), assets, b.timestamp()))},
	}
	for _, e := range entries {
		if err := writeEntry(zw, e.path, e.data); err != nil {
			zw.Close()
			return nil, err
		}
	}

	hrefs := []string{indexPath, runtimePath, lomJSONPath, lomXMLPath}
	for _, a := range assets {
		hrefs = append(hrefs, a.Href)
	}
	manifest, err := buildManifest("MANIFEST-"+base, title, hrefs)
	if err != nil {
		zw.Close()
		return nil, err
	}
	if err := writeEntry(zw, manifestPath, manifest); err != nil {
		zw.Close()
		return nil, err
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize archive: %w", err)
	}

	rc, err := sp.Reader()
	if err != nil {
		return nil, fmt.Errorf("failed to rewind archive buffer: %w", err)
	}
	return &Package{Size: sp.Size(), rc: rc}, nil
}

// writeAssets streams each collected asset into the archive and returns the
// assets that actually made it in. A source stream that cannot be opened is
// logged and dropped.
func (b *Builder) writeAssets(zw *zip.Writer, media []MediaHandle) ([]Asset, error) {
	collected := collectAssets(media)
	assets := make([]Asset, 0, len(collected))
	buf := make([]byte, copyChunkSize)

	for _, c := range collected {
		src, err := c.open()
		if err != nil {
			b.logger().Warn("dropping media with unreadable source", "href", c.Href, "error", err)
			continue
		}
		if err := copyEntry(zw, c.Href, src, buf); err != nil {
			src.Close()
			return nil, fmt.Errorf("failed to write asset %s: %w", c.Href, err)
		}
		src.Close()
		assets = append(assets, c.Asset)
	}
	return assets, nil
}

func writeEntry(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", name, err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}

// copyEntry streams src into a new archive entry in fixed-size chunks so the
// media file is never held in memory whole.
func copyEntry(zw *zip.Writer, name string, src io.Reader, buf []byte) error {
	w, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", name, err)
	}
	if _, err := io.CopyBuffer(w, src, buf); err != nil {
		return fmt.Errorf("failed to copy into %s: %w", name, err)
	}
	return nil
}
