package wizard

import (
	"context"
	"io"
	"sync"
	"time"

	"jobtailor/internal/analyses"
	"jobtailor/internal/documents"
	"jobtailor/internal/editor"
	"jobtailor/internal/shared/telemetry"
	"jobtailor/internal/tailoring"
)

// DefaultPaymentDelay is how long the simulated charge takes.
const DefaultPaymentDelay = 2000 * time.Millisecond

// Importer turns an upload into a résumé.
type Importer interface {
	Import(ctx context.Context, owner, fileName string, r io.Reader) (documents.ResumeDocument, error)
}

// Analyzer scores a résumé against a job description.
type Analyzer interface {
	Analyze(ctx context.Context, resumeText, jobText string) (analyses.Result, error)
}

// Tailorer generates the tailored application bundle.
type Tailorer interface {
	Tailor(ctx context.Context, resumeText, jobText string) (tailoring.Bundle, error)
}

// Persister mirrors the two durable documents. *persist.Session implements it.
type Persister interface {
	LoadResume(ctx context.Context) *documents.ResumeDocument
	SaveResume(ctx context.Context, doc *documents.ResumeDocument) error
	LoadJob(ctx context.Context) *documents.JobPosting
	SaveJob(ctx context.Context, job *documents.JobPosting) error
}

// Deps are the collaborators of a Controller.
type Deps struct {
	Importer     Importer
	Analyzer     Analyzer
	Tailorer     Tailorer
	PaymentDelay time.Duration
	// Sleep waits out the payment delay. Defaults to time.Sleep.
	Sleep func(time.Duration)
}

// State is the complete wizard state of one session. Documents and results
// are replaced wholesale, never mutated in place.
type State struct {
	Step              Step
	Resume            *documents.ResumeDocument
	Job               *documents.JobPosting
	Analysis          *analyses.Result
	Tailored          *tailoring.Bundle
	Loading           bool
	ProcessingPayment bool
	PaymentModalOpen  bool
	Editing           bool
	Draft             string
	Selection         editor.Selection
	Error             string
}

func (s *State) busy() bool { return s.Loading || s.ProcessingPayment }

// Controller owns the state of one session. All mutation goes through its
// methods; long operations drop the lock while they wait and hold the busy
// flag instead.
type Controller struct {
	mu        sync.Mutex
	id        string
	state     State
	deps      Deps
	persister Persister
}

// NewController restores the persisted documents and starts on landing.
func NewController(ctx context.Context, id string, p Persister, deps Deps) *Controller {
	if deps.PaymentDelay <= 0 {
		deps.PaymentDelay = DefaultPaymentDelay
	}
	if deps.Sleep == nil {
		deps.Sleep = time.Sleep
	}
	c := &Controller{id: id, deps: deps, persister: p}
	c.state.Step = StepLanding
	if p != nil {
		c.state.Resume = p.LoadResume(ctx)
		c.state.Job = p.LoadJob(ctx)
	}
	return c
}

// ID returns the session id.
func (c *Controller) ID() string { return c.id }

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// setStep must be called with mu held.
func (c *Controller) setStep(to Step) {
	from := c.state.Step
	c.state.Step = to
	if from != to {
		telemetry.Info("wizard.transition", map[string]any{
			"session_id": c.id,
			"from":       string(from),
			"to":         string(to),
		})
	}
}

// Start leaves the landing page for the upload step.
func (c *Controller) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Step != StepLanding {
		return invalidTransition("start", c.state.Step)
	}
	c.setStep(StepUploadCV)
	return nil
}

// Home returns to landing from anywhere. Persisted documents are kept.
func (c *Controller) Home() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setStep(StepLanding)
}

// ContinueToJob moves to the job step once a résumé is present.
func (c *Controller) ContinueToJob() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Step != StepUploadCV {
		return invalidTransition("continue", c.state.Step)
	}
	if c.state.Loading {
		return ErrBusy
	}
	if c.state.Resume.Empty() {
		return precondition("résumé required")
	}
	c.setStep(StepJobDetails)
	return nil
}

// BackToUpload returns from the job step to the upload step.
func (c *Controller) BackToUpload() error {
	return c.move("back", StepJobDetails, StepUploadCV)
}

// ModifyJob returns from the analysis to the job step.
func (c *Controller) ModifyJob() error {
	return c.move("modify", StepAnalysis, StepJobDetails)
}

// BackToAnalysis returns from the tailored assets to the analysis.
func (c *Controller) BackToAnalysis() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Step != StepTailoring {
		return invalidTransition("back", c.state.Step)
	}
	if c.state.Analysis == nil {
		return precondition("analysis required")
	}
	c.setStep(StepAnalysis)
	return nil
}

// ContinueToOutreach moves from the tailored assets to outreach.
func (c *Controller) ContinueToOutreach() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Step != StepTailoring {
		return invalidTransition("outreach", c.state.Step)
	}
	if c.state.Tailored == nil {
		return precondition("tailored documents required")
	}
	c.setStep(StepOutreach)
	return nil
}

// BackToTailoring returns from outreach to the tailored assets.
func (c *Controller) BackToTailoring() error {
	return c.move("back", StepOutreach, StepTailoring)
}

func (c *Controller) move(action string, from, to Step) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Step != from {
		return invalidTransition(action, c.state.Step)
	}
	c.setStep(to)
	return nil
}

// SetJob replaces the job posting and mirrors it to the store.
func (c *Controller) SetJob(ctx context.Context, job documents.JobPosting) error {
	if err := job.Validate(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Step != StepJobDetails {
		return invalidTransition("set job", c.state.Step)
	}
	c.state.Job = &job
	c.persistJob(ctx, &job)
	return nil
}

// ClearResume removes the résumé and its store entry.
func (c *Controller) ClearResume(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Step != StepUploadCV {
		return invalidTransition("clear résumé", c.state.Step)
	}
	if c.state.busy() {
		return ErrBusy
	}
	c.state.Resume = nil
	c.persistResume(ctx, nil)
	return nil
}

// persistResume and persistJob must be called with mu held. The store is a
// mirror: write failures are logged and the in-memory value stays.
func (c *Controller) persistResume(ctx context.Context, doc *documents.ResumeDocument) {
	if c.persister == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	if err := c.persister.SaveResume(ctx, doc); err != nil {
		telemetry.Error("wizard.persist_failed", map[string]any{"session_id": c.id, "entity": "resume", "error": err.Error()})
	}
}

func (c *Controller) persistJob(ctx context.Context, job *documents.JobPosting) {
	if c.persister == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	if err := c.persister.SaveJob(ctx, job); err != nil {
		telemetry.Error("wizard.persist_failed", map[string]any{"session_id": c.id, "entity": "job", "error": err.Error()})
	}
}
