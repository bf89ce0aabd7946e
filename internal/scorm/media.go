package scorm

import (
	"io"
	"path"
	"strings"
)

// Kind classifies a piece of attached media.
type Kind string

const (
	KindImage    Kind = "image"
	KindAudio    Kind = "audio"
	KindVideo    Kind = "video"
	KindDocument Kind = "document"
)

// kindOrder is the category processing order. It decides which category
// "wins" when the same identifier is attached under more than one.
var kindOrder = []Kind{KindImage, KindAudio, KindVideo, KindDocument}

// Kinds returns all media categories in processing order.
func Kinds() []Kind {
	return kindOrder
}

// ValidKind reports whether s names a media category.
func ValidKind(s string) bool {
	switch Kind(s) {
	case KindImage, KindAudio, KindVideo, KindDocument:
		return true
	}
	return false
}

// MediaHandle references one piece of attached media. Open produces a fresh
// byte stream for the underlying content; a nil Open means the handle has no
// usable content and it is excluded from the package.
type MediaHandle struct {
	ID       string
	Kind     Kind
	Filename string
	Label    string
	Open     func() (io.ReadCloser, error)
}

// Asset is one bundled media file, addressed by a relative path inside the
// package. Assets are immutable once collected.
type Asset struct {
	Href  string
	Label string
	Kind  Kind
}

// collectedAsset pairs an Asset with its source stream accessor.
type collectedAsset struct {
	Asset
	open func() (io.ReadCloser, error)
}

const maxLabelLen = 200

// collectAssets deduplicates and classifies media handles into a stable,
// collision-free asset list. Handles are processed in category order
// image, audio, video, document, preserving input order within a category,
// so a duplicate identifier lands under its first category. Handles without
// a byte-stream accessor are skipped.
func collectAssets(media []MediaHandle) []collectedAsset {
	seen := make(map[string]bool, len(media))
	var out []collectedAsset

	for _, kind := range kindOrder {
		for _, m := range media {
			if m.Kind != kind {
				continue
			}
			if m.Open == nil || m.ID == "" {
				continue
			}
			if seen[m.ID] {
				continue
			}
			seen[m.ID] = true

			ext := strings.ToLower(path.Ext(m.Filename))
			label := m.Label
			if label == "" {
				label = path.Base(m.Filename)
			}
			if len(label) > maxLabelLen {
				label = label[:maxLabelLen]
			}

			out = append(out, collectedAsset{
				Asset: Asset{
					Href:  path.Join("assets", string(kind), m.ID+ext),
					Label: label,
					Kind:  kind,
				},
				open: m.Open,
			})
		}
	}
	return out
}
