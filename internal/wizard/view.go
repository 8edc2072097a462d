package wizard

import (
	"strings"

	"jobtailor/internal/analyses"
	"jobtailor/internal/documents"
	"jobtailor/internal/editor"
	"jobtailor/internal/extract"
	"jobtailor/internal/outreach"
)

// View is what a client renders. Exactly one of the step arms is set, and a
// results arm is only set when its data exists.
type View struct {
	Step      Step       `json:"step"`
	StepIndex int        `json:"stepIndex"`
	Steps     []StepInfo `json:"steps"`
	Loading   bool       `json:"loading"`
	Error     string     `json:"error,omitempty"`

	Landing   *LandingView   `json:"landing,omitempty"`
	Upload    *UploadView    `json:"upload,omitempty"`
	Job       *JobView       `json:"job,omitempty"`
	Analysis  *AnalysisView  `json:"analysis,omitempty"`
	Tailoring *TailoringView `json:"tailoring,omitempty"`
	Outreach  *OutreachView  `json:"outreach,omitempty"`

	Payment *PaymentView `json:"payment,omitempty"`
}

type LandingView struct {
	HasSavedResume bool `json:"hasSavedResume"`
	HasSavedJob    bool `json:"hasSavedJob"`
}

type UploadView struct {
	FileName    string   `json:"fileName,omitempty"`
	Accept      []string `json:"accept"`
	CanContinue bool     `json:"canContinue"`
}

type JobView struct {
	Job        documents.JobPosting `json:"job"`
	CanAnalyze bool                 `json:"canAnalyze"`
}

type AnalysisView struct {
	Result    analyses.Result   `json:"result"`
	Editing   bool              `json:"editing"`
	Draft     string            `json:"draft,omitempty"`
	Selection *editor.Selection `json:"selection,omitempty"`
	CanPay    bool              `json:"canPay"`
}

type TailoringView struct {
	CV          string `json:"cv"`
	CoverLetter string `json:"coverLetter"`
}

type OutreachView struct {
	Subject   string `json:"subject"`
	EmailBody string `json:"emailBody"`
}

type PaymentView struct {
	Price      string `json:"price"`
	Processing bool   `json:"processing"`
}

// View renders the current state.
func (c *Controller) View() View {
	return Render(c.Snapshot())
}

// Render maps a state onto its single view arm.
func Render(s State) View {
	v := View{
		Step:      s.Step,
		StepIndex: s.Step.Index(),
		Steps:     progress,
		Loading:   s.busy(),
		Error:     s.Error,
	}

	switch s.Step {
	case StepLanding:
		v.Landing = &LandingView{
			HasSavedResume: !s.Resume.Empty(),
			HasSavedJob:    !s.Job.Blank(),
		}
	case StepUploadCV:
		u := &UploadView{
			Accept:      extract.AcceptedExtensions,
			CanContinue: !s.Resume.Empty() && !s.Loading,
		}
		if s.Resume != nil {
			u.FileName = s.Resume.FileName
		}
		v.Upload = u
	case StepJobDetails:
		j := &JobView{CanAnalyze: !s.Job.Blank() && !s.Resume.Empty() && !s.busy()}
		if s.Job != nil {
			j.Job = *s.Job
		}
		v.Job = j
	case StepAnalysis:
		if s.Analysis != nil {
			a := &AnalysisView{
				Result:  *s.Analysis,
				Editing: s.Editing,
				CanPay:  !s.busy() && !s.Editing,
			}
			if s.Editing {
				a.Draft = s.Draft
				sel := s.Selection
				a.Selection = &sel
			}
			v.Analysis = a
		}
	case StepTailoring:
		if s.Tailored != nil {
			v.Tailoring = &TailoringView{CV: s.Tailored.CV, CoverLetter: s.Tailored.CoverLetter}
		}
	case StepOutreach:
		if s.Tailored != nil {
			v.Outreach = &OutreachView{
				Subject:   outreach.DefaultSubject(trimmedRole(s)),
				EmailBody: s.Tailored.EmailBody,
			}
		}
	}

	if s.PaymentModalOpen {
		v.Payment = &PaymentView{Price: Price, Processing: s.ProcessingPayment}
	}
	return v
}

// trimmedRole is the job role used for outreach defaults.
func trimmedRole(s State) string {
	if s.Job == nil {
		return ""
	}
	return strings.TrimSpace(s.Job.Role)
}
