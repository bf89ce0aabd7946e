// Package record manages heritage content records and their attached media:
// the material the SCORM exporter packages up.
package record

import "time"

// Record statuses. The exporter accepts any status; the workflow around it
// decides what is exportable.
const (
	StatusDraft     = "draft"
	StatusReview    = "review"
	StatusPublished = "published"
)

// Record is one heritage content record.
type Record struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Status      string         `json:"status"`
	LOM         map[string]any `json:"lom,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// Media is one file attached to a record.
type Media struct {
	ID        string    `json:"id"`
	RecordID  string    `json:"record_id"`
	FileType  string    `json:"file_type"` // image|audio|video|document
	Filename  string    `json:"filename"`  // original upload name
	Caption   string    `json:"caption,omitempty"`
	AltText   string    `json:"alt_text,omitempty"`
	Path      string    `json:"path"` // relative to the home directory
	Size      int64     `json:"size"`
	PageCount int       `json:"page_count,omitempty"` // PDF documents only
	CreatedAt time.Time `json:"created_at"`
}

// ValidStatus reports whether s is a known record status.
func ValidStatus(s string) bool {
	switch s {
	case StatusDraft, StatusReview, StatusPublished:
		return true
	}
	return false
}
