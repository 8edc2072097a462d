package wizard

import (
	"context"
	"strings"

	"jobtailor/internal/documents"
	"jobtailor/internal/editor"
)

// OpenEditor starts editing a scratch copy of the résumé text.
func (c *Controller) OpenEditor() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Step != StepAnalysis {
		return invalidTransition("open editor", c.state.Step)
	}
	if c.state.Editing {
		return nil
	}
	if c.state.Resume == nil {
		return precondition("résumé required")
	}
	c.state.Editing = true
	c.state.Draft = c.state.Resume.Content
	c.state.Selection = editor.Selection{}
	return nil
}

// SetDraft replaces the scratch text. A nil selection keeps the current one,
// clamped to the new text.
func (c *Controller) SetDraft(text string, sel *editor.Selection) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.state.Editing {
		return precondition("editor is not open")
	}
	n := len([]rune(text))
	next := c.state.Selection
	if sel != nil {
		if sel.Start < 0 || sel.End < sel.Start || sel.End > n {
			return editor.ErrInvalidSelection
		}
		next = *sel
	}
	if next.End > n {
		next.End = n
	}
	if next.Start > next.End {
		next.Start = next.End
	}
	c.state.Draft = text
	c.state.Selection = next
	return nil
}

// Format applies a formatting action to the selected part of the draft and
// selects the inserted text.
func (c *Controller) Format(kind editor.Kind, sel editor.Selection) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.state.Editing {
		return precondition("editor is not open")
	}
	text, next, err := editor.Apply(c.state.Draft, sel, kind)
	if err != nil {
		return err
	}
	c.state.Draft = text
	c.state.Selection = next
	return nil
}

// CancelEdit discards the draft. Résumé and analysis are untouched.
func (c *Controller) CancelEdit() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.state.Editing {
		return precondition("editor is not open")
	}
	c.state.Editing = false
	c.state.Draft = ""
	c.state.Selection = editor.Selection{}
	return nil
}

// SaveEdit re-analyses the draft. On success the résumé content and the
// analysis are replaced together and the editor closes; on failure both stay
// and the editor remains open.
func (c *Controller) SaveEdit(ctx context.Context) error {
	c.mu.Lock()
	if !c.state.Editing {
		c.mu.Unlock()
		return precondition("editor is not open")
	}
	if c.state.busy() {
		c.mu.Unlock()
		return ErrBusy
	}
	if strings.TrimSpace(c.state.Draft) == "" {
		c.mu.Unlock()
		return precondition("draft is empty")
	}
	if c.state.Job.Blank() {
		c.mu.Unlock()
		return precondition("job description required")
	}
	draft, jobText := c.state.Draft, c.state.Job.Text
	c.state.Loading = true
	c.state.Error = ""
	c.mu.Unlock()

	res, err := c.deps.Analyzer.Analyze(context.WithoutCancel(ctx), draft, jobText)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Loading = false
	if err != nil {
		c.state.Error = analysisFailedPrefix + err.Error()
		return err
	}
	c.state.Analysis = &res
	if c.state.Resume != nil {
		doc := documents.ResumeDocument{
			Content:   draft,
			FileName:  c.state.Resume.FileName,
			SourceKey: c.state.Resume.SourceKey,
		}
		c.state.Resume = &doc
		c.persistResume(ctx, &doc)
	}
	c.state.Editing = false
	c.state.Draft = ""
	c.state.Selection = editor.Selection{}
	c.setStep(StepAnalysis)
	return nil
}
