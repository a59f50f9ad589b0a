package loader

import (
	"errors"
	"strings"
	"testing"
)

func TestLoadPlainText(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		data        string
	}{
		{name: "plain", contentType: "text/plain", data: "hello world"},
		{name: "markdown", contentType: "text/markdown", data: "# Title\n\nBody."},
		{name: "csv", contentType: "text/csv", data: "a,b\n1,2"},
		{name: "charset parameter ignored", contentType: "text/plain; charset=utf-8", data: "hello"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Load([]byte(tt.data), tt.contentType, "")
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if got != tt.data {
				t.Errorf("Load() = %q, want %q", got, tt.data)
			}
		})
	}
}

func TestLoadHTMLExtractsText(t *testing.T) {
	html := `<html><head><title>t</title></head><body><article><p>First paragraph of the article body with enough text to matter.</p><p>Second paragraph continues the thought.</p></article></body></html>`

	got, err := Load([]byte(html), "text/html", "https://example.com/post")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if strings.Contains(got, "<p>") {
		t.Errorf("extracted text still contains markup: %q", got)
	}
	if !strings.Contains(got, "First paragraph") {
		t.Errorf("extracted text lost article content: %q", got)
	}
}

func TestLoadUnsupportedType(t *testing.T) {
	_, err := Load([]byte{0x25, 0x50, 0x44, 0x46}, "application/pdf", "")
	if !errors.Is(err, ErrUnsupportedType) {
		t.Errorf("Load() error = %v, want ErrUnsupportedType", err)
	}
}
