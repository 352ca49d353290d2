package extract

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/cognicore/textsuite/pkg/textsuite/ingest"
	"github.com/cognicore/textsuite/pkg/textsuite/internalerr"
)

// DefaultMaxBytes bounds the size of an upload.
const DefaultMaxBytes int64 = 20 << 20

// Formats lists the supported lowercase extensions.
var Formats = []string{"pdf", "txt", "docx", "html", "htm"}

// Extractor turns an uploaded document into plain text.
type Extractor struct {
	// MaxBytes is the largest accepted document; 0 means DefaultMaxBytes.
	MaxBytes int64
	// Formats restricts the accepted extensions; nil accepts all of Formats.
	Formats []string
}

// New returns an extractor with default limits.
func New() *Extractor {
	return &Extractor{MaxBytes: DefaultMaxBytes}
}

// Supported reports whether name has an accepted extension.
func (e *Extractor) Supported(name string) bool {
	format := ingest.FormatOf(name)
	if format == "" {
		return false
	}
	allowed := e.Formats
	if allowed == nil {
		allowed = Formats
	}
	for _, f := range allowed {
		if f == format {
			return true
		}
	}
	return false
}

// Extract reads r and returns its plain text, dispatching on the extension
// of name. Unknown extensions fail with ErrUnsupportedFormat; unreadable
// content fails with ErrExtractionFailed.
func (e *Extractor) Extract(ctx context.Context, name string, r io.Reader) (text string, err error) {
	if !e.Supported(name) {
		return "", fmt.Errorf("%q: %w", name, internalerr.ErrUnsupportedFormat)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	limit := e.MaxBytes
	if limit <= 0 {
		limit = DefaultMaxBytes
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return "", fmt.Errorf("read %q: %v: %w", name, err, internalerr.ErrExtractionFailed)
	}
	if int64(len(data)) > limit {
		return "", fmt.Errorf("%q exceeds %d bytes: %w", name, limit, internalerr.ErrExtractionFailed)
	}

	// The PDF and zip decoders can panic on hostile input.
	defer func() {
		if p := recover(); p != nil {
			text = ""
			err = fmt.Errorf("decode %q: %v: %w", name, p, internalerr.ErrExtractionFailed)
		}
	}()

	switch ingest.FormatOf(name) {
	case "txt":
		text, err = plainText(data)
	case "pdf":
		text, err = pdfText(data)
	case "docx":
		text, err = docxText(data)
	case "html", "htm":
		text, err = htmlText(bytes.NewReader(data))
	}
	if err != nil {
		return "", fmt.Errorf("decode %q: %v: %w", name, err, internalerr.ErrExtractionFailed)
	}
	return strings.TrimSpace(text), nil
}

func plainText(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if !utf8.Valid(data) {
		return "", fmt.Errorf("text is not valid UTF-8")
	}
	return string(data), nil
}
