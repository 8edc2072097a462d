package export

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"jobtailor/internal/shared/metrics"
	"jobtailor/internal/shared/telemetry"
)

// Format is a download format.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatWord Format = "doc"
)

// File name stems for the tailored assets.
const (
	StemCV          = "Tailored_CV"
	StemCoverLetter = "Cover_Letter"
)

var ErrUnknownFormat = errors.New("unknown export format")

// ParseFormat maps a query value to a Format. Empty means PDF.
func ParseFormat(raw string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "pdf":
		return FormatPDF, nil
	case "doc", "word", "docx":
		return FormatWord, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, raw)
	}
}

// Paragraph is one block of a rendered document.
type Paragraph struct {
	Text   string
	Header bool
}

// Document is the renderer-neutral input of an export.
type Document struct {
	Title      string
	Paragraphs []Paragraph
}

// DocumentRenderer turns a Document into file bytes.
type DocumentRenderer interface {
	Render(ctx context.Context, doc Document) ([]byte, error)
	ContentType() string
	Extension() string
}

// File is a rendered download.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Engine renders text blocks into downloadable files.
type Engine struct {
	PDF  DocumentRenderer
	Word DocumentRenderer
}

// NewEngine returns an engine using pdf for PDF output and the Word HTML shell
// for .doc output.
func NewEngine(pdf DocumentRenderer) *Engine {
	if pdf == nil {
		pdf = NewFPDFRenderer()
	}
	return &Engine{PDF: pdf, Word: WordRenderer{}}
}

// Export renders text as stem.<ext> in the requested format.
func (e *Engine) Export(ctx context.Context, text, stem string, format Format) (File, error) {
	var (
		renderer DocumentRenderer
		doc      Document
	)
	switch format {
	case FormatPDF:
		renderer, doc = e.PDF, PDFDocument(stem, text)
	case FormatWord:
		renderer, doc = e.Word, WordDocument(stem, text)
	default:
		return File{}, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if renderer == nil {
		return File{}, fmt.Errorf("no renderer for %s", format)
	}

	data, err := renderer.Render(ctx, doc)
	if err != nil {
		telemetry.Error("export.failed", map[string]any{"stem": stem, "format": string(format), "error": err.Error()})
		return File{}, fmt.Errorf("render %s: %w", format, err)
	}
	metrics.Export(string(format))
	telemetry.Info("export.rendered", map[string]any{"stem": stem, "format": string(format), "bytes": len(data)})
	return File{
		Name:        stem + "." + renderer.Extension(),
		ContentType: renderer.ContentType(),
		Data:        data,
	}, nil
}
