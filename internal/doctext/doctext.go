// Package doctext defines the document-to-text provider contract. The
// extraction pipeline treats provider output as ordinary input text; PDF
// and OCR providers live outside this repository and plug in through the
// Provider interface.
package doctext

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// Typed provider failures. Callers distinguish unsupported formats from
// extraction failures to give actionable guidance.
var (
	ErrUnsupportedType    = errors.New("unsupported file type")
	ErrNoExtractableText  = errors.New("no extractable text found")
	ErrProcessingFailed   = errors.New("document processing failed")
)

// Provider extracts plain text from an uploaded document.
type Provider interface {
	// ExtractText returns the document's plain text or fails with one of
	// the typed errors above.
	ExtractText(ctx context.Context, contentType string, r io.Reader) (string, error)
	// Supports reports whether the provider handles the content type.
	Supports(contentType string) bool
}

// PlainText handles text/plain uploads directly. Anything else is some
// other provider's job.
type PlainText struct {
	// MaxBytes bounds how much of the document is read; zero means the
	// default of 1 MiB.
	MaxBytes int64
}

const defaultMaxBytes = 1 << 20

// Supports reports whether the content type is plain text.
func (p PlainText) Supports(contentType string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(contentType)), "text/plain")
}

// ExtractText reads the document as UTF-8 text.
func (p PlainText) ExtractText(ctx context.Context, contentType string, r io.Reader) (string, error) {
	if !p.Supports(contentType) {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, contentType)
	}
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrProcessingFailed, err)
	}

	limit := p.MaxBytes
	if limit <= 0 {
		limit = defaultMaxBytes
	}

	data, err := io.ReadAll(io.LimitReader(r, limit))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrProcessingFailed, err)
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: document is not valid UTF-8 text", ErrNoExtractableText)
	}

	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", ErrNoExtractableText
	}
	return text, nil
}
