package wizard

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"jobtailor/internal/analyses"
	"jobtailor/internal/documents"
	"jobtailor/internal/editor"
	"jobtailor/internal/persist"
	"jobtailor/internal/tailoring"
)

type fakeAnalyzer struct {
	mu      sync.Mutex
	calls   int
	inputs  []string
	result  analyses.Result
	err     error
	started chan struct{}
	gate    chan struct{}
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, resumeText, jobText string) (analyses.Result, error) {
	f.mu.Lock()
	f.calls++
	f.inputs = append(f.inputs, resumeText)
	f.mu.Unlock()
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.gate != nil {
		<-f.gate
	}
	if f.err != nil {
		return analyses.Result{}, &analyses.AnalysisError{Err: f.err}
	}
	return f.result, nil
}

func (f *fakeAnalyzer) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeTailorer struct {
	mu     sync.Mutex
	calls  int
	bundle tailoring.Bundle
	err    error
}

func (f *fakeTailorer) Tailor(ctx context.Context, resumeText, jobText string) (tailoring.Bundle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return tailoring.Bundle{}, &tailoring.TailoringError{Err: f.err}
	}
	return f.bundle, nil
}

func (f *fakeTailorer) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type gatedSleep struct {
	entered chan time.Duration
	release chan struct{}
}

func newGatedSleep() *gatedSleep {
	return &gatedSleep{entered: make(chan time.Duration, 1), release: make(chan struct{})}
}

func (g *gatedSleep) sleep(d time.Duration) {
	g.entered <- d
	<-g.release
}

var sampleResult = analyses.Result{
	Score:           62,
	MissingKeywords: []string{"Go"},
	Strengths:       []string{"engineer"},
	Suggestions:     []string{"Add Go experience"},
}

var sampleBundle = tailoring.Bundle{CV: "# Jane\n\nGo engineer", CoverLetter: "Dear team", EmailBody: "Hello recruiter"}

var validCard = PaymentDetails{CardholderName: "Jane Doe", CardNumber: "4242 4242 4242 4242", Expiry: "12/30", CVC: "123"}

type harness struct {
	ctrl     *Controller
	session  *persist.Session
	analyzer *fakeAnalyzer
	tailorer *fakeTailorer
}

func newHarness(t *testing.T, sleep func(time.Duration)) *harness {
	t.Helper()
	if sleep == nil {
		sleep = func(time.Duration) {}
	}
	h := &harness{
		session:  persist.NewStore(persist.NewMemoryBackend()).Session("s1"),
		analyzer: &fakeAnalyzer{result: sampleResult},
		tailorer: &fakeTailorer{bundle: sampleBundle},
	}
	h.ctrl = NewController(context.Background(), "s1", h.session, Deps{
		Importer: documents.NewImporter(nil),
		Analyzer: h.analyzer,
		Tailorer: h.tailorer,
		Sleep:    sleep,
	})
	return h
}

// toJobDetails uploads a résumé and enters a job description.
func (h *harness) toJobDetails(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	if err := h.ctrl.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := h.ctrl.ImportResume(ctx, "cv.txt", strings.NewReader("Experienced engineer with Python skills")); err != nil {
		t.Fatalf("import: %v", err)
	}
	if err := h.ctrl.ContinueToJob(); err != nil {
		t.Fatalf("continue: %v", err)
	}
	if err := h.ctrl.SetJob(ctx, documents.JobPosting{Text: "Looking for a Go engineer", Role: "Go Engineer"}); err != nil {
		t.Fatalf("set job: %v", err)
	}
}

func (h *harness) toAnalysis(t *testing.T) {
	t.Helper()
	h.toJobDetails(t)
	if err := h.ctrl.Analyze(context.Background()); err != nil {
		t.Fatalf("analyze: %v", err)
	}
}

func TestContinueBlockedWithoutResume(t *testing.T) {
	h := newHarness(t, nil)
	if err := h.ctrl.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := h.ctrl.ContinueToJob(); !errors.Is(err, ErrPrecondition) {
		t.Fatalf("expected ErrPrecondition, got %v", err)
	}
	if got := h.ctrl.Snapshot().Step; got != StepUploadCV {
		t.Fatalf("expected to stay on upload, got %s", got)
	}

	if err := h.ctrl.ImportResume(context.Background(), "cv.md", strings.NewReader("# Jane")); err != nil {
		t.Fatalf("import: %v", err)
	}
	if !h.ctrl.View().Upload.CanContinue {
		t.Fatalf("expected continue to be available after import")
	}
	if err := h.ctrl.ContinueToJob(); err != nil {
		t.Fatalf("continue: %v", err)
	}
}

func TestEndToEndAnalysis(t *testing.T) {
	h := newHarness(t, nil)
	h.toAnalysis(t)

	v := h.ctrl.View()
	if v.Step != StepAnalysis || v.Analysis == nil {
		t.Fatalf("expected analysis view, got %+v", v)
	}
	if v.Analysis.Result.Score != 62 {
		t.Fatalf("expected score 62, got %v", v.Analysis.Result.Score)
	}
	if v.StepIndex != 2 {
		t.Fatalf("expected step index 2, got %d", v.StepIndex)
	}
	if h.analyzer.inputs[0] != "Experienced engineer with Python skills" {
		t.Fatalf("unexpected analyzed text %q", h.analyzer.inputs[0])
	}
}

func TestImportWhitespaceKeepsPreviousResume(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	_ = h.ctrl.Start()
	if err := h.ctrl.ImportResume(ctx, "cv.txt", strings.NewReader("Original CV")); err != nil {
		t.Fatalf("import: %v", err)
	}

	err := h.ctrl.ImportResume(ctx, "blank.txt", strings.NewReader(" \n\t "))
	var ie *documents.ImportError
	if !errors.As(err, &ie) {
		t.Fatalf("expected ImportError, got %v", err)
	}
	s := h.ctrl.Snapshot()
	if s.Resume == nil || s.Resume.Content != "Original CV" {
		t.Fatalf("expected previous resume to stay, got %+v", s.Resume)
	}
	if s.Error != "Failed to read file: Could not extract any text from the file." {
		t.Fatalf("unexpected banner %q", s.Error)
	}
	if stored := h.session.LoadResume(ctx); stored == nil || stored.Content != "Original CV" {
		t.Fatalf("expected stored resume unchanged, got %+v", stored)
	}

	if err := h.ctrl.ImportResume(ctx, "cv2.txt", strings.NewReader("New CV")); err != nil {
		t.Fatalf("import: %v", err)
	}
	if h.ctrl.Snapshot().Error != "" {
		t.Fatalf("expected banner cleared by next attempt")
	}
}

func TestAnalyzeFailureStaysOnJobDetails(t *testing.T) {
	h := newHarness(t, nil)
	h.toJobDetails(t)
	h.analyzer.err = errors.New("empty response from AI analysis model")

	err := h.ctrl.Analyze(context.Background())
	var ae *analyses.AnalysisError
	if !errors.As(err, &ae) {
		t.Fatalf("expected AnalysisError, got %v", err)
	}
	s := h.ctrl.Snapshot()
	if s.Step != StepJobDetails || s.Analysis != nil || s.Loading {
		t.Fatalf("unexpected state after failure: %+v", s)
	}
	if s.Error != "Failed to analyze documents: empty response from AI analysis model" {
		t.Fatalf("unexpected banner %q", s.Error)
	}
}

func TestAnalyzeRequiresJobText(t *testing.T) {
	h := newHarness(t, nil)
	h.toJobDetails(t)
	if err := h.ctrl.SetJob(context.Background(), documents.JobPosting{Text: "   "}); err != nil {
		t.Fatalf("set job: %v", err)
	}
	if err := h.ctrl.Analyze(context.Background()); !errors.Is(err, ErrPrecondition) {
		t.Fatalf("expected ErrPrecondition, got %v", err)
	}
	if h.analyzer.callCount() != 0 {
		t.Fatalf("analyzer must not be called")
	}
	if h.ctrl.View().Job.CanAnalyze {
		t.Fatalf("expected analyze to be unavailable")
	}
}

func TestAnalyzeSingleFlight(t *testing.T) {
	h := newHarness(t, nil)
	h.toJobDetails(t)
	h.analyzer.started = make(chan struct{}, 1)
	h.analyzer.gate = make(chan struct{})

	done := make(chan error, 1)
	go func() { done <- h.ctrl.Analyze(context.Background()) }()
	<-h.analyzer.started

	if err := h.ctrl.Analyze(context.Background()); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}
	if !h.ctrl.View().Loading {
		t.Fatalf("expected loading view while in flight")
	}
	close(h.analyzer.gate)
	if err := <-done; err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if h.analyzer.callCount() != 1 {
		t.Fatalf("expected one analysis call, got %d", h.analyzer.callCount())
	}
}

func TestStaleAnalysisOverwritesState(t *testing.T) {
	h := newHarness(t, nil)
	h.toJobDetails(t)
	h.analyzer.started = make(chan struct{}, 1)
	h.analyzer.gate = make(chan struct{})

	done := make(chan error, 1)
	go func() { done <- h.ctrl.Analyze(context.Background()) }()
	<-h.analyzer.started

	h.ctrl.Home()
	if got := h.ctrl.Snapshot().Step; got != StepLanding {
		t.Fatalf("expected landing, got %s", got)
	}
	close(h.analyzer.gate)
	if err := <-done; err != nil {
		t.Fatalf("analyze: %v", err)
	}
	s := h.ctrl.Snapshot()
	if s.Step != StepAnalysis || s.Analysis == nil {
		t.Fatalf("expected late result to land on analysis, got %+v", s)
	}
}

func TestAnalyzeSurvivesCanceledRequestContext(t *testing.T) {
	h := newHarness(t, nil)
	h.toJobDetails(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := h.ctrl.Analyze(ctx); err != nil {
		t.Fatalf("analyze: %v", err)
	}
}

func TestImportPersistsWithCanceledRequestContext(t *testing.T) {
	h := newHarness(t, nil)
	if err := h.ctrl.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := h.ctrl.ImportResume(ctx, "cv.txt", strings.NewReader("Go engineer, ten years")); err != nil {
		t.Fatalf("import: %v", err)
	}
	stored := h.session.LoadResume(context.Background())
	if stored == nil || stored.Content != "Go engineer, ten years" || stored.FileName != "cv.txt" {
		t.Fatalf("expected imported resume persisted, got %+v", stored)
	}

	if err := h.ctrl.ContinueToJob(); err != nil {
		t.Fatalf("continue: %v", err)
	}
	if err := h.ctrl.SetJob(ctx, documents.JobPosting{Text: "Looking for a Go engineer"}); err != nil {
		t.Fatalf("set job: %v", err)
	}
	if job := h.session.LoadJob(context.Background()); job == nil || job.Text != "Looking for a Go engineer" {
		t.Fatalf("expected job persisted, got %+v", job)
	}
}

func TestEditorSavePersistsWithCanceledRequestContext(t *testing.T) {
	h := newHarness(t, nil)
	h.toAnalysis(t)
	if err := h.ctrl.OpenEditor(); err != nil {
		t.Fatalf("open editor: %v", err)
	}
	if err := h.ctrl.SetDraft("Rewritten for Go", nil); err != nil {
		t.Fatalf("set draft: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := h.ctrl.SaveEdit(ctx); err != nil {
		t.Fatalf("save: %v", err)
	}
	if stored := h.session.LoadResume(context.Background()); stored == nil || stored.Content != "Rewritten for Go" {
		t.Fatalf("expected edited resume persisted, got %+v", stored)
	}
}

func TestPaymentFiresTailoringOnce(t *testing.T) {
	sleeper := newGatedSleep()
	h := newHarness(t, sleeper.sleep)
	h.toAnalysis(t)

	if err := h.ctrl.OpenPayment(); err != nil {
		t.Fatalf("open payment: %v", err)
	}
	done := make(chan error, 1)
	go func() { done <- h.ctrl.SubmitPayment(context.Background(), validCard) }()

	if d := <-sleeper.entered; d != DefaultPaymentDelay {
		t.Fatalf("expected %s delay, got %s", DefaultPaymentDelay, d)
	}
	if err := h.ctrl.SubmitPayment(context.Background(), validCard); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy for second submit, got %v", err)
	}
	if err := h.ctrl.ClosePayment(); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected close to be refused while processing, got %v", err)
	}
	if v := h.ctrl.View(); v.Payment == nil || !v.Payment.Processing {
		t.Fatalf("expected processing payment view, got %+v", v.Payment)
	}
	if h.tailorer.callCount() != 0 {
		t.Fatalf("tailoring must wait for the delay")
	}

	close(sleeper.release)
	if err := <-done; err != nil {
		t.Fatalf("submit: %v", err)
	}
	if h.tailorer.callCount() != 1 {
		t.Fatalf("expected exactly one tailoring call, got %d", h.tailorer.callCount())
	}
	s := h.ctrl.Snapshot()
	if s.PaymentModalOpen || s.ProcessingPayment || s.Loading {
		t.Fatalf("expected modal closed and idle, got %+v", s)
	}
	if s.Step != StepTailoring || s.Tailored == nil {
		t.Fatalf("expected tailoring step with bundle, got %+v", s)
	}
}

func TestPaymentRequiresCardFields(t *testing.T) {
	h := newHarness(t, nil)
	h.toAnalysis(t)
	_ = h.ctrl.OpenPayment()

	card := validCard
	card.CVC = "  "
	if err := h.ctrl.SubmitPayment(context.Background(), card); err == nil {
		t.Fatalf("expected validation error")
	}
	s := h.ctrl.Snapshot()
	if s.ProcessingPayment || !s.PaymentModalOpen {
		t.Fatalf("expected modal open and idle, got %+v", s)
	}
	if h.tailorer.callCount() != 0 {
		t.Fatalf("tailoring must not run")
	}
}

func TestPaymentNeedsOpenModal(t *testing.T) {
	h := newHarness(t, nil)
	h.toAnalysis(t)
	if err := h.ctrl.SubmitPayment(context.Background(), validCard); !errors.Is(err, ErrPrecondition) {
		t.Fatalf("expected ErrPrecondition, got %v", err)
	}
}

func TestTailoringFailureStaysOnAnalysis(t *testing.T) {
	h := newHarness(t, nil)
	h.toAnalysis(t)
	h.tailorer.err = errors.New("quota exceeded")
	_ = h.ctrl.OpenPayment()

	err := h.ctrl.SubmitPayment(context.Background(), validCard)
	var te *tailoring.TailoringError
	if !errors.As(err, &te) {
		t.Fatalf("expected TailoringError, got %v", err)
	}
	s := h.ctrl.Snapshot()
	if s.Step != StepAnalysis || s.Tailored != nil {
		t.Fatalf("expected to stay on analysis, got %+v", s)
	}
	if s.Error != "Failed to generate tailored documents: quota exceeded" {
		t.Fatalf("unexpected banner %q", s.Error)
	}
}

func TestTailoringNavigation(t *testing.T) {
	h := newHarness(t, nil)
	h.toAnalysis(t)
	_ = h.ctrl.OpenPayment()
	if err := h.ctrl.SubmitPayment(context.Background(), validCard); err != nil {
		t.Fatalf("submit: %v", err)
	}

	if err := h.ctrl.ContinueToOutreach(); err != nil {
		t.Fatalf("outreach: %v", err)
	}
	v := h.ctrl.View()
	if v.Outreach == nil || v.Outreach.Subject != "Application for Go Engineer" || v.Outreach.EmailBody != "Hello recruiter" {
		t.Fatalf("unexpected outreach view %+v", v.Outreach)
	}
	if err := h.ctrl.BackToTailoring(); err != nil {
		t.Fatalf("back to tailoring: %v", err)
	}
	if err := h.ctrl.BackToAnalysis(); err != nil {
		t.Fatalf("back to analysis: %v", err)
	}
	if err := h.ctrl.ModifyJob(); err != nil {
		t.Fatalf("modify: %v", err)
	}
	if err := h.ctrl.BackToTailoring(); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	h.ctrl.Home()
	if got := h.ctrl.Snapshot(); got.Step != StepLanding || got.Resume == nil || got.Job == nil {
		t.Fatalf("home must keep documents, got %+v", got)
	}
}

func TestEditorSaveReplacesResumeAndAnalysis(t *testing.T) {
	h := newHarness(t, nil)
	h.toAnalysis(t)
	ctx := context.Background()

	if err := h.ctrl.OpenEditor(); err != nil {
		t.Fatalf("open editor: %v", err)
	}
	if err := h.ctrl.Format(editor.Bold, editor.Selection{Start: 0, End: 11}); err != nil {
		t.Fatalf("format: %v", err)
	}
	s := h.ctrl.Snapshot()
	if s.Draft != "**Experienced** engineer with Python skills" {
		t.Fatalf("unexpected draft %q", s.Draft)
	}
	if s.Selection != (editor.Selection{Start: 0, End: 15}) {
		t.Fatalf("unexpected selection %+v", s.Selection)
	}
	if err := h.ctrl.OpenPayment(); !errors.Is(err, ErrPrecondition) {
		t.Fatalf("expected payment to be unavailable while editing, got %v", err)
	}

	h.analyzer.result = analyses.Result{Score: 80}
	if err := h.ctrl.SaveEdit(ctx); err != nil {
		t.Fatalf("save: %v", err)
	}
	s = h.ctrl.Snapshot()
	if s.Editing || s.Analysis.Score != 80 {
		t.Fatalf("expected editor closed with new analysis, got %+v", s)
	}
	if s.Resume.Content != "**Experienced** engineer with Python skills" || s.Resume.FileName != "cv.txt" {
		t.Fatalf("unexpected resume %+v", s.Resume)
	}
	if stored := h.session.LoadResume(ctx); stored == nil || stored.Content != s.Resume.Content {
		t.Fatalf("expected edited resume persisted, got %+v", stored)
	}
}

func TestEditorSaveFailureKeepsEverything(t *testing.T) {
	h := newHarness(t, nil)
	h.toAnalysis(t)
	_ = h.ctrl.OpenEditor()
	_ = h.ctrl.SetDraft("Rewritten", nil)
	h.analyzer.err = errors.New("upstream down")

	if err := h.ctrl.SaveEdit(context.Background()); err == nil {
		t.Fatalf("expected save to fail")
	}
	s := h.ctrl.Snapshot()
	if !s.Editing || s.Draft != "Rewritten" {
		t.Fatalf("expected editor to stay open, got %+v", s)
	}
	if s.Resume.Content != "Experienced engineer with Python skills" || s.Analysis.Score != 62 {
		t.Fatalf("expected resume and analysis untouched, got %+v %+v", s.Resume, s.Analysis)
	}
}

func TestEditorCancel(t *testing.T) {
	h := newHarness(t, nil)
	h.toAnalysis(t)
	_ = h.ctrl.OpenEditor()
	_ = h.ctrl.SetDraft("scratch", nil)
	if err := h.ctrl.CancelEdit(); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	s := h.ctrl.Snapshot()
	if s.Editing || s.Draft != "" || s.Resume.Content != "Experienced engineer with Python skills" {
		t.Fatalf("unexpected state after cancel %+v", s)
	}
	if h.analyzer.callCount() != 1 {
		t.Fatalf("cancel must not analyze")
	}
}

func TestRenderNeverShowsResultsWithoutData(t *testing.T) {
	for _, step := range []Step{StepAnalysis, StepTailoring, StepOutreach} {
		v := Render(State{Step: step})
		if v.Analysis != nil || v.Tailoring != nil || v.Outreach != nil {
			t.Fatalf("step %s rendered results without data", step)
		}
	}
	if v := Render(State{Step: StepLanding}); v.Landing == nil || v.StepIndex != -1 {
		t.Fatalf("unexpected landing view %+v", v)
	}
}

func TestMailtoAndAssets(t *testing.T) {
	h := newHarness(t, nil)
	if _, _, err := h.ctrl.Asset(AssetCV); !errors.Is(err, ErrNoResult) {
		t.Fatalf("expected ErrNoResult, got %v", err)
	}
	h.toAnalysis(t)
	_ = h.ctrl.OpenPayment()
	if err := h.ctrl.SubmitPayment(context.Background(), validCard); err != nil {
		t.Fatalf("submit: %v", err)
	}

	text, stem, err := h.ctrl.Asset(AssetCoverLetter)
	if err != nil || text != "Dear team" || stem != "Cover_Letter" {
		t.Fatalf("unexpected asset %q %q %v", text, stem, err)
	}
	url, err := h.ctrl.MailtoURL("", "")
	if err != nil {
		t.Fatalf("mailto: %v", err)
	}
	if url != "mailto:?subject=Application%20for%20Go%20Engineer&body=Hello%20recruiter" {
		t.Fatalf("unexpected url %q", url)
	}
}
