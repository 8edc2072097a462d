package documents

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// ResumeDocument is the applicant's CV as plain text.
type ResumeDocument struct {
	Content  string `json:"content"`
	FileName string `json:"fileName"`
	// SourceKey points at the archived original upload, when one was kept.
	SourceKey string `json:"sourceKey,omitempty"`
}

// Empty reports whether the document carries no usable text.
func (d *ResumeDocument) Empty() bool {
	return d == nil || strings.TrimSpace(d.Content) == ""
}

// JobPosting is the pasted job description plus optional role details.
type JobPosting struct {
	Text    string `json:"text" validate:"max=100000"`
	Role    string `json:"role,omitempty" validate:"max=200"`
	Company string `json:"company,omitempty" validate:"max=200"`
}

// Blank reports whether the posting has no description text.
func (j *JobPosting) Blank() bool {
	return j == nil || strings.TrimSpace(j.Text) == ""
}

var validate = validator.New()

// Validate checks field limits on the posting.
func (j JobPosting) Validate() error {
	if err := validate.Struct(j); err != nil {
		return &ValidationError{Err: err}
	}
	return nil
}
