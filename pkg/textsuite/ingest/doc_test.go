package ingest

import (
	"testing"
	"time"
)

func TestNewDoc(t *testing.T) {
	doc := NewDoc("Report.PDF", "Some content here")

	if doc.Format != "pdf" {
		t.Errorf("Expected format pdf, got %q", doc.Format)
	}
	if doc.ExtractedAt.IsZero() {
		t.Error("ExtractedAt should be set")
	}
	if err := doc.Validate(); err != nil {
		t.Errorf("Valid doc should pass validation, got %v", err)
	}
}

func TestDocValidate(t *testing.T) {
	tests := []struct {
		name    string
		doc     Doc
		wantErr bool
	}{
		{"valid", Doc{Name: "a.txt", Text: "x", ExtractedAt: time.Now()}, false},
		{"blank text is fine", Doc{Name: "a.txt", ExtractedAt: time.Now()}, false},
		{"missing name", Doc{Text: "x", ExtractedAt: time.Now()}, true},
		{"missing time", Doc{Name: "a.txt", Text: "x"}, true},
	}

	for _, tt := range tests {
		err := tt.doc.Validate()
		if (err != nil) != tt.wantErr {
			t.Errorf("%s: Validate() error = %v, wantErr %v", tt.name, err, tt.wantErr)
		}
	}
}

func TestFormatOf(t *testing.T) {
	cases := map[string]string{
		"notes.txt":      "txt",
		"Paper.DOCX":     "docx",
		"dir/page.html":  "html",
		"no-extension":   "",
		"archive.tar.gz": "gz",
	}
	for in, want := range cases {
		if got := FormatOf(in); got != want {
			t.Errorf("FormatOf(%q) = %q, want %q", in, got, want)
		}
	}
}
