package ingest

import (
	"errors"
	"path/filepath"
	"strings"
	"time"
)

// Doc represents a document after text extraction
type Doc struct {
	Name        string
	Format      string // lowercase extension without the dot
	Text        string
	ExtractedAt time.Time
}

// NewDoc builds a Doc and derives its format from the name.
func NewDoc(name, text string) Doc {
	return Doc{
		Name:        name,
		Format:      FormatOf(name),
		Text:        text,
		ExtractedAt: time.Now().UTC(),
	}
}

// FormatOf returns the lowercase extension of name without the leading dot.
func FormatOf(name string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
}

// Validate checks if the document has required fields. Blank text is valid:
// it analyzes to an empty result.
func (d *Doc) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return errors.New("doc name is required")
	}

	if d.ExtractedAt.IsZero() {
		return errors.New("doc extraction time is required")
	}

	return nil
}
