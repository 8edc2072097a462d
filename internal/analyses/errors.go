package analyses

import "errors"

// ErrEmptyResponse is returned when the model answers with no text.
var ErrEmptyResponse = errors.New("empty response from AI analysis model")

// AnalysisError is any failure to obtain a usable analysis.
type AnalysisError struct {
	Err error
}

func (e *AnalysisError) Error() string { return e.Err.Error() }

func (e *AnalysisError) Unwrap() error { return e.Err }
