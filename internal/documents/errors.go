package documents

import (
	"errors"
	"fmt"
)

var (
	// ErrNoText is returned when a file yields only whitespace.
	ErrNoText = errors.New("could not extract any text from the file")
	// ErrTooLarge is returned for uploads above MaxUploadBytes.
	ErrTooLarge = errors.New("file is too large")
)

// ImportError reports a failed résumé import. The previous résumé stays in place.
type ImportError struct {
	FileName string
	Err      error
}

func (e *ImportError) Error() string {
	return fmt.Sprintf("import %s: %v", e.FileName, e.Err)
}

func (e *ImportError) Unwrap() error { return e.Err }

// Reason is the user-facing description of the failure.
func (e *ImportError) Reason() string {
	if errors.Is(e.Err, ErrNoText) {
		return "Could not extract any text from the file."
	}
	return e.Err.Error()
}

// ValidationError wraps field validation failures.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string { return "invalid job posting: " + e.Err.Error() }

func (e *ValidationError) Unwrap() error { return e.Err }
