// Package loader turns raw document bytes into plain text based on a MIME
// type hint.
package loader

import (
	"fmt"
	"mime"
	"net/url"
	"strings"

	"codeberg.org/readeck/go-readability/v2"
)

// Loader extracts plain text from one document format.
type Loader interface {
	// Load converts the raw bytes into plain text. source carries the
	// document origin (URL or object key) for formats that need it.
	Load(data []byte, source string) (string, error)
}

// ErrUnsupportedType is wrapped into the error returned for MIME types no
// loader handles.
var ErrUnsupportedType = fmt.Errorf("unsupported content type")

type textLoader struct{}

func (textLoader) Load(data []byte, source string) (string, error) {
	return string(data), nil
}

type htmlLoader struct{}

func (htmlLoader) Load(data []byte, source string) (string, error) {
	var base *url.URL
	if source != "" {
		if parsed, err := url.Parse(source); err == nil && parsed.Scheme != "" {
			base = parsed
		}
	}

	article, err := readability.FromReader(strings.NewReader(string(data)), base)
	if err != nil {
		return "", fmt.Errorf("failed to parse html: %w", err)
	}

	var builder strings.Builder
	if err := article.RenderText(&builder); err != nil {
		return "", fmt.Errorf("failed to render article text: %w", err)
	}
	return builder.String(), nil
}

var loadersByType = map[string]Loader{
	"text/plain":    textLoader{},
	"text/markdown": textLoader{},
	"text/csv":      textLoader{},
	"text/html":     htmlLoader{},
}

// ForType returns the loader for a MIME type. Parameters like charset are
// ignored.
func ForType(contentType string) (Loader, error) {
	mediaType := contentType
	if parsed, _, err := mime.ParseMediaType(contentType); err == nil {
		mediaType = parsed
	}
	mediaType = strings.ToLower(strings.TrimSpace(mediaType))

	l, ok := loadersByType[mediaType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, contentType)
	}
	return l, nil
}

// Load extracts plain text from data using the loader registered for
// contentType.
func Load(data []byte, contentType string, source string) (string, error) {
	l, err := ForType(contentType)
	if err != nil {
		return "", err
	}
	return l.Load(data, source)
}
