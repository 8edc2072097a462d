package wizard

// Step is a wizard stage.
type Step string

const (
	StepLanding    Step = "landing"
	StepUploadCV   Step = "upload_cv"
	StepJobDetails Step = "job_details"
	StepAnalysis   Step = "analysis"
	StepTailoring  Step = "tailoring"
	StepOutreach   Step = "outreach"
)

// StepInfo describes one entry of the progress indicator.
type StepInfo struct {
	ID    Step   `json:"id"`
	Label string `json:"label"`
}

// progress lists the steps shown in the indicator, in order. Landing is not one of them.
var progress = []StepInfo{
	{ID: StepUploadCV, Label: "Upload CV"},
	{ID: StepJobDetails, Label: "Job Description"},
	{ID: StepAnalysis, Label: "ATS Analysis"},
	{ID: StepTailoring, Label: "Tailored Assets"},
	{ID: StepOutreach, Label: "Send Outreach"},
}

// Index returns the position of s in the progress indicator, or -1 for landing.
func (s Step) Index() int {
	for i, info := range progress {
		if info.ID == s {
			return i
		}
	}
	return -1
}
