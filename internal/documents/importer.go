package documents

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"jobtailor/internal/extract"
	"jobtailor/internal/shared/metrics"
	"jobtailor/internal/shared/storage/object"
	"jobtailor/internal/shared/telemetry"
)

// MaxUploadBytes caps a single résumé upload.
const MaxUploadBytes = 10 << 20 // 10MB

// Importer turns an uploaded file into a ResumeDocument.
type Importer struct {
	Extractors *extract.Registry
	// Store archives the original upload when set.
	Store object.ObjectStore
}

// NewImporter constructs an Importer with the default extractors.
func NewImporter(store object.ObjectStore) *Importer {
	return &Importer{Extractors: extract.NewRegistry(), Store: store}
}

// Import reads the file, extracts its text and archives the raw bytes for owner.
// The returned content is the extracted text as-is; only emptiness is judged on trimmed text.
func (i *Importer) Import(ctx context.Context, owner, fileName string, r io.Reader) (ResumeDocument, error) {
	doc, err := i.importFile(ctx, owner, fileName, r)
	metrics.Import(err)
	return doc, err
}

func (i *Importer) importFile(ctx context.Context, owner, fileName string, r io.Reader) (ResumeDocument, error) {
	if strings.TrimSpace(fileName) == "" {
		return ResumeDocument{}, &ImportError{FileName: fileName, Err: errors.New("file name is required")}
	}

	data, err := io.ReadAll(io.LimitReader(r, MaxUploadBytes+1))
	if err != nil {
		return ResumeDocument{}, &ImportError{FileName: fileName, Err: fmt.Errorf("read upload: %w", err)}
	}
	if len(data) > MaxUploadBytes {
		return ResumeDocument{}, &ImportError{FileName: fileName, Err: ErrTooLarge}
	}

	registry := i.Extractors
	if registry == nil {
		registry = extract.NewRegistry()
	}
	text, err := registry.ExtractFile(ctx, fileName, data)
	if err != nil {
		return ResumeDocument{}, &ImportError{FileName: fileName, Err: err}
	}
	if strings.TrimSpace(text) == "" {
		return ResumeDocument{}, &ImportError{FileName: fileName, Err: ErrNoText}
	}

	doc := ResumeDocument{Content: text, FileName: fileName}
	if i.Store != nil {
		key, size, mimeType, err := i.Store.Save(ctx, owner, fileName, bytes.NewReader(data))
		if err != nil {
			telemetry.Error("documents.archive_failed", map[string]any{
				"session_id": owner,
				"file_name":  fileName,
				"error":      err.Error(),
			})
		} else {
			doc.SourceKey = key
			telemetry.Info("documents.archived", map[string]any{
				"session_id": owner,
				"file_name":  fileName,
				"size_bytes": size,
				"mime_type":  mimeType,
			})
		}
	}
	return doc, nil
}
