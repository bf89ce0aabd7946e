package scorm

import (
	"bytes"
	"io"
	"strings"
	"testing"
)

func staticHandle(id string, kind Kind, filename, label, content string) MediaHandle {
	return MediaHandle{
		ID:       id,
		Kind:     kind,
		Filename: filename,
		Label:    label,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader([]byte(content))), nil
		},
	}
}

func TestCollectAssets(t *testing.T) {
	t.Run("builds hrefs from kind id and extension", func(t *testing.T) {
		assets := collectAssets([]MediaHandle{
			staticHandle("abc", KindImage, "facade.JPG", "Facade", "img"),
		})
		if len(assets) != 1 {
			t.Fatalf("expected 1 asset, got %d", len(assets))
		}
		if assets[0].Href != "assets/image/abc.jpg" {
			t.Errorf("unexpected href %q", assets[0].Href)
		}
		if assets[0].Label != "Facade" {
			t.Errorf("unexpected label %q", assets[0].Label)
		}
		if assets[0].Kind != KindImage {
			t.Errorf("unexpected kind %q", assets[0].Kind)
		}
	})

	t.Run("duplicate identifier bundles once under first category", func(t *testing.T) {
		assets := collectAssets([]MediaHandle{
			staticHandle("dup", KindDocument, "plan.pdf", "Plan", "doc"),
			staticHandle("dup", KindImage, "plan.png", "Plan", "img"),
		})
		if len(assets) != 1 {
			t.Fatalf("expected 1 asset, got %d", len(assets))
		}
		// Image wins regardless of input order: categories are processed
		// image, audio, video, document.
		if assets[0].Kind != KindImage {
			t.Errorf("expected image to win, got %q", assets[0].Kind)
		}
	})

	t.Run("skips handles without a byte source", func(t *testing.T) {
		noContent := MediaHandle{ID: "x", Kind: KindAudio, Filename: "a.mp3"}
		assets := collectAssets([]MediaHandle{noContent})
		if len(assets) != 0 {
			t.Fatalf("expected 0 assets, got %d", len(assets))
		}
	})

	t.Run("skips handles without an identifier", func(t *testing.T) {
		assets := collectAssets([]MediaHandle{
			staticHandle("", KindImage, "x.png", "", "img"),
		})
		if len(assets) != 0 {
			t.Fatalf("expected 0 assets, got %d", len(assets))
		}
	})

	t.Run("label falls back to filename and is truncated", func(t *testing.T) {
		long := strings.Repeat("x", 300)
		assets := collectAssets([]MediaHandle{
			staticHandle("a", KindImage, "tower.png", "", "img"),
			staticHandle("b", KindImage, "other.png", long, "img"),
		})
		if assets[0].Label != "tower.png" {
			t.Errorf("expected filename fallback, got %q", assets[0].Label)
		}
		if len(assets[1].Label) != maxLabelLen {
			t.Errorf("expected label truncated to %d, got %d", maxLabelLen, len(assets[1].Label))
		}
	})

	t.Run("stable category then input order", func(t *testing.T) {
		assets := collectAssets([]MediaHandle{
			staticHandle("d1", KindDocument, "d1.pdf", "", "x"),
			staticHandle("i2", KindImage, "i2.png", "", "x"),
			staticHandle("a1", KindAudio, "a1.mp3", "", "x"),
			staticHandle("i1", KindImage, "i1.png", "", "x"),
		})
		var hrefs []string
		for _, a := range assets {
			hrefs = append(hrefs, a.Href)
		}
		expected := []string{
			"assets/image/i2.png",
			"assets/image/i1.png",
			"assets/audio/a1.mp3",
			"assets/document/d1.pdf",
		}
		for i := range expected {
			if hrefs[i] != expected[i] {
				t.Fatalf("order mismatch at %d: got %v", i, hrefs)
			}
		}
	})
}

func TestValidKind(t *testing.T) {
	for _, k := range []string{"image", "audio", "video", "document"} {
		if !ValidKind(k) {
			t.Errorf("expected %q to be valid", k)
		}
	}
	for _, k := range []string{"", "asset", "Image", "pdf"} {
		if ValidKind(k) {
			t.Errorf("expected %q to be invalid", k)
		}
	}
}
