package extract

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

// TextExtractor turns the raw bytes of one file format into plain text.
type TextExtractor interface {
	Extract(ctx context.Context, data []byte) (string, error)
}

// AcceptedExtensions lists the upload types clients should offer.
var AcceptedExtensions = []string{".txt", ".md", ".rtf", ".pdf", ".docx"}

// Registry picks an extractor by file extension. Unknown extensions fall back to plain text.
type Registry struct {
	byExt    map[string]TextExtractor
	fallback TextExtractor
}

// NewRegistry returns the default registry: PDF and DOCX parsers, everything else verbatim.
func NewRegistry() *Registry {
	r := &Registry{
		byExt:    map[string]TextExtractor{},
		fallback: PlainExtractor{},
	}
	r.Register(".pdf", PDFExtractor{})
	r.Register(".docx", DOCXExtractor{})
	return r
}

// Register binds an extractor to an extension such as ".pdf".
func (r *Registry) Register(ext string, e TextExtractor) {
	r.byExt[normalizeExt(ext)] = e
}

// For returns the extractor responsible for fileName.
func (r *Registry) For(fileName string) TextExtractor {
	if e, ok := r.byExt[normalizeExt(filepath.Ext(fileName))]; ok {
		return e
	}
	return r.fallback
}

// ExtractFile extracts text from data according to fileName's extension.
func (r *Registry) ExtractFile(ctx context.Context, fileName string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	text, err := r.For(fileName).Extract(ctx, data)
	if err != nil {
		return "", fmt.Errorf("extract %s: %w", filepath.Ext(fileName), err)
	}
	return text, nil
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

// PlainExtractor returns the bytes unchanged.
type PlainExtractor struct{}

func (PlainExtractor) Extract(ctx context.Context, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return string(data), nil
}
