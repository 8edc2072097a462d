package wizard

import (
	"errors"
	"fmt"
	"strings"

	"jobtailor/internal/export"
	"jobtailor/internal/outreach"
)

// Asset names accepted by the export endpoint.
const (
	AssetCV          = "cv"
	AssetCoverLetter = "cover-letter"
)

var ErrUnknownAsset = errors.New("unknown asset")

// Asset returns the text and file stem of a tailored document.
func (c *Controller) Asset(name string) (text, stem string, err error) {
	s := c.Snapshot()
	if s.Tailored == nil {
		return "", "", ErrNoResult
	}
	switch strings.ToLower(name) {
	case AssetCV:
		return s.Tailored.CV, export.StemCV, nil
	case AssetCoverLetter:
		return s.Tailored.CoverLetter, export.StemCoverLetter, nil
	default:
		return "", "", fmt.Errorf("%w: %q", ErrUnknownAsset, name)
	}
}

// EmailBody returns the outreach email verbatim.
func (c *Controller) EmailBody() (string, error) {
	s := c.Snapshot()
	if s.Tailored == nil {
		return "", ErrNoResult
	}
	return s.Tailored.EmailBody, nil
}

// MailtoURL builds the mail client hand-off for the outreach email. An empty
// subject falls back to the role-based default.
func (c *Controller) MailtoURL(to, subject string) (string, error) {
	s := c.Snapshot()
	if s.Tailored == nil {
		return "", ErrNoResult
	}
	if strings.TrimSpace(subject) == "" {
		subject = outreach.DefaultSubject(trimmedRole(s))
	}
	return outreach.MailtoURL(to, subject, s.Tailored.EmailBody)
}
