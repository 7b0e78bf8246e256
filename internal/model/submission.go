package model

// SubmitSurveyRequest is the payload of a completed survey form.
// The option tags are registered by the validator package from the catalog.
type SubmitSurveyRequest struct {
	Name         string    `json:"name" binding:"max=200"`
	Organization string    `json:"organization" binding:"max=200"`
	Industry     string    `json:"industry" binding:"required,industry"`
	JobLevel     string    `json:"job_level" binding:"required,job_level"`
	Revenue      string    `json:"revenue" binding:"required,revenue_band"`
	ProblemAreas []string  `json:"problem_areas" binding:"omitempty,dive,problem_area"`
	Answers      AnswerSet `json:"answers" binding:"required"`
}

// SurveyResult is returned for a scored submission and never stored.
type SurveyResult struct {
	Name            string  `json:"name"`
	Organization    string  `json:"organization"`
	RawScore        float64 `json:"raw_score"`
	MaxScore        float64 `json:"max_score"`
	NormalizedScore float64 `json:"normalized_score"`
	ScoreText       string  `json:"score_text"`
	Tier            int     `json:"tier"`
	Recommendation  string  `json:"recommendation"`
}
