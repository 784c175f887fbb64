package db

import (
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Build represents one site build record
type Build struct {
	ID          uuid.UUID  `json:"id"`
	BasePath    string     `json:"base_path"`
	Status      string     `json:"status"`
	Built       int        `json:"built"`
	Failed      int        `json:"failed"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Page represents a rendered artifact stored for a build
type Page struct {
	BuildID     uuid.UUID `json:"build_id"`
	Path        string    `json:"path"`
	ContentType string    `json:"content_type"`
	Content     []byte    `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}

// Build status values
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusPartial   = "partial"
	StatusFailed    = "failed"
)

// DefaultListLimit caps ListBuilds when no limit is given
const DefaultListLimit = 50

// Content types for stored pages
const (
	ContentTypeHTML   = "text/html; charset=utf-8"
	ContentTypePDF    = "application/pdf"
	ContentTypeOctets = "application/octet-stream"
)

// ContentTypeFor picks a content type from the artifact path extension
func ContentTypeFor(p string) string {
	switch strings.ToLower(path.Ext(p)) {
	case ".html", ".htm":
		return ContentTypeHTML
	case ".pdf":
		return ContentTypePDF
	default:
		return ContentTypeOctets
	}
}

// StatusFor derives the final build status from its counters
func StatusFor(built, failed int) string {
	switch {
	case failed == 0:
		return StatusCompleted
	case built == 0:
		return StatusFailed
	default:
		return StatusPartial
	}
}
