package analyses

// Result is an ATS compatibility assessment of a résumé against a job posting.
type Result struct {
	Score           float64  `json:"score"`
	MissingKeywords []string `json:"missingKeywords"`
	Strengths       []string `json:"strengths"`
	Suggestions     []string `json:"suggestions"`
}

func (r *Result) normalize() {
	switch {
	case r.Score < 0:
		r.Score = 0
	case r.Score > 100:
		r.Score = 100
	}
	if r.MissingKeywords == nil {
		r.MissingKeywords = []string{}
	}
	if r.Strengths == nil {
		r.Strengths = []string{}
	}
	if r.Suggestions == nil {
		r.Suggestions = []string{}
	}
}
