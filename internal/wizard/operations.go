package wizard

import (
	"context"
	"errors"
	"io"

	"jobtailor/internal/documents"
)

// Banner prefixes shown to the user.
const (
	importFailedPrefix    = "Failed to read file: "
	analysisFailedPrefix  = "Failed to analyze documents: "
	tailoringFailedPrefix = "Failed to generate tailored documents: "
)

// ImportResume replaces the résumé with the text of the uploaded file. On
// failure the previous résumé stays and the error banner is set.
func (c *Controller) ImportResume(ctx context.Context, fileName string, r io.Reader) error {
	c.mu.Lock()
	if c.state.Step != StepUploadCV {
		defer c.mu.Unlock()
		return invalidTransition("import", c.state.Step)
	}
	if c.state.busy() {
		c.mu.Unlock()
		return ErrBusy
	}
	c.state.Loading = true
	c.state.Error = ""
	c.mu.Unlock()

	doc, err := c.deps.Importer.Import(context.WithoutCancel(ctx), c.id, fileName, r)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Loading = false
	if err != nil {
		c.state.Error = importFailedPrefix + importReason(err)
		return err
	}
	c.state.Resume = &doc
	c.persistResume(ctx, &doc)
	return nil
}

func importReason(err error) string {
	var ie *documents.ImportError
	if errors.As(err, &ie) {
		return ie.Reason()
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return "Unknown error"
}

// Analyze scores the résumé against the job posting and moves to the
// analysis step. On failure the step is unchanged and the banner is set.
func (c *Controller) Analyze(ctx context.Context) error {
	c.mu.Lock()
	if c.state.Step != StepJobDetails && c.state.Step != StepAnalysis {
		defer c.mu.Unlock()
		return invalidTransition("analyze", c.state.Step)
	}
	if c.state.busy() {
		c.mu.Unlock()
		return ErrBusy
	}
	if c.state.Resume.Empty() {
		c.mu.Unlock()
		return precondition("résumé required")
	}
	if c.state.Job.Blank() {
		c.mu.Unlock()
		return precondition("job description required")
	}
	resumeText, jobText := c.state.Resume.Content, c.state.Job.Text
	c.state.Loading = true
	c.state.Error = ""
	c.mu.Unlock()

	res, err := c.deps.Analyzer.Analyze(context.WithoutCancel(ctx), resumeText, jobText)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Loading = false
	if err != nil {
		c.state.Error = analysisFailedPrefix + err.Error()
		return err
	}
	c.state.Analysis = &res
	c.setStep(StepAnalysis)
	return nil
}

// tailor runs the single tailoring call. The caller has already set Loading
// and cleared the banner; mu must not be held.
func (c *Controller) tailor(ctx context.Context, resumeText, jobText string) error {
	bundle, err := c.deps.Tailorer.Tailor(context.WithoutCancel(ctx), resumeText, jobText)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Loading = false
	if err != nil {
		c.state.Error = tailoringFailedPrefix + err.Error()
		return err
	}
	c.state.Tailored = &bundle
	c.setStep(StepTailoring)
	return nil
}
