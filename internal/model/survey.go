package model

// MaxChoiceWeight is the weight of the best choice of every question.
const MaxChoiceWeight = 15

// ChoicesPerQuestion is the fixed number of choices offered by each question.
const ChoicesPerQuestion = 4

// Choice is one selectable answer of a survey question.
type Choice struct {
	Label       string `json:"label"`
	Description string `json:"description"`
	Weight      int    `json:"weight"`
}

// Question is a fixed survey question with its multiplier and choices.
type Question struct {
	ID      string   `json:"id"`
	Prompt  string   `json:"prompt"`
	Weight  float64  `json:"weight"`
	Choices []Choice `json:"choices"`
}

// Choice looks up a choice by its label.
func (q *Question) Choice(label string) (Choice, bool) {
	for _, ch := range q.Choices {
		if ch.Label == label {
			return ch, true
		}
	}
	return Choice{}, false
}

// AnswerSet maps a question ID to the selected choice label.
type AnswerSet map[string]string

// Score is the outcome of scoring one AnswerSet.
type Score struct {
	Raw        float64
	Max        float64
	Normalized float64
}

// Recommendation is the text band selected for a normalized score.
type Recommendation struct {
	Tier int    `json:"tier"`
	Text string `json:"text"`
}

// ChoiceView is a choice as shown to respondents; the weight stays server side.
type ChoiceView struct {
	Label       string `json:"label"`
	Description string `json:"description"`
}

// QuestionView is a question as shown to respondents.
type QuestionView struct {
	ID      string       `json:"id"`
	Prompt  string       `json:"prompt"`
	Choices []ChoiceView `json:"choices"`
}

// SurveyView is the public form of the catalog.
type SurveyView struct {
	Questions    []QuestionView `json:"questions"`
	Industries   []string       `json:"industries"`
	JobLevels    []string       `json:"job_levels"`
	RevenueBands []string       `json:"revenue_bands"`
	ProblemAreas []string       `json:"problem_areas"`
}
