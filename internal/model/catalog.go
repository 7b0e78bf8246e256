package model

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

//go:embed catalog.json
var catalogJSON []byte

// ErrCatalogInvariant is returned when the question tables are malformed.
var ErrCatalogInvariant = errors.New("survey catalog invariant violated")

// questionWeights are the only multipliers a question may carry.
var questionWeights = map[float64]struct{}{
	1.0: {},
	1.2: {},
	1.3: {},
	1.5: {},
}

// Catalog holds the fixed survey tables. It is immutable once loaded.
type Catalog struct {
	Questions    []Question `json:"questions"`
	Industries   []string   `json:"industries"`
	JobLevels    []string   `json:"job_levels"`
	RevenueBands []string   `json:"revenue_bands"`
	ProblemAreas []string   `json:"problem_areas"`

	byID map[string]int
}

// LoadCatalog parses and validates the embedded survey tables.
func LoadCatalog() (*Catalog, error) {
	return ParseCatalog(catalogJSON)
}

// ParseCatalog decodes a catalog document and checks its invariants.
func ParseCatalog(raw []byte) (*Catalog, error) {
	var c Catalog
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Question returns the question with the given ID.
func (c *Catalog) Question(id string) (*Question, bool) {
	i, ok := c.byID[id]
	if !ok {
		return nil, false
	}
	return &c.Questions[i], true
}

// MaxScore is the raw score of an AnswerSet picking every best choice.
func (c *Catalog) MaxScore() float64 {
	var total float64
	for _, q := range c.Questions {
		total += q.Weight * MaxChoiceWeight
	}
	return total
}

// View strips the scoring weights for display.
func (c *Catalog) View() *SurveyView {
	questions := make([]QuestionView, len(c.Questions))
	for i, q := range c.Questions {
		choices := make([]ChoiceView, len(q.Choices))
		for j, ch := range q.Choices {
			choices[j] = ChoiceView{Label: ch.Label, Description: ch.Description}
		}
		questions[i] = QuestionView{ID: q.ID, Prompt: q.Prompt, Choices: choices}
	}

	return &SurveyView{
		Questions:    questions,
		Industries:   c.Industries,
		JobLevels:    c.JobLevels,
		RevenueBands: c.RevenueBands,
		ProblemAreas: c.ProblemAreas,
	}
}

// validate enforces that every question carries one of questionWeights and
// offers choices weighted exactly {0, 5, 10, 15}; normalization against
// MaxScore relies on it.
func (c *Catalog) validate() error {
	if len(c.Questions) == 0 {
		return fmt.Errorf("%w: no questions", ErrCatalogInvariant)
	}

	c.byID = make(map[string]int, len(c.Questions))
	for i, q := range c.Questions {
		if q.ID == "" {
			return fmt.Errorf("%w: question %d has no id", ErrCatalogInvariant, i)
		}
		if _, dup := c.byID[q.ID]; dup {
			return fmt.Errorf("%w: duplicate question %s", ErrCatalogInvariant, q.ID)
		}
		if _, ok := questionWeights[q.Weight]; !ok {
			return fmt.Errorf("%w: question %s has weight %v", ErrCatalogInvariant, q.ID, q.Weight)
		}
		if len(q.Choices) != ChoicesPerQuestion {
			return fmt.Errorf("%w: question %s has %d choices", ErrCatalogInvariant, q.ID, len(q.Choices))
		}

		weights := make([]int, 0, ChoicesPerQuestion)
		labels := make(map[string]struct{}, ChoicesPerQuestion)
		for _, ch := range q.Choices {
			if _, dup := labels[ch.Label]; dup || ch.Label == "" {
				return fmt.Errorf("%w: question %s has invalid label %q", ErrCatalogInvariant, q.ID, ch.Label)
			}
			labels[ch.Label] = struct{}{}
			weights = append(weights, ch.Weight)
		}
		sort.Ints(weights)
		for j, w := range weights {
			if w != j*MaxChoiceWeight/(ChoicesPerQuestion-1) {
				return fmt.Errorf("%w: question %s choice weights %v are not {0,5,10,15}", ErrCatalogInvariant, q.ID, weights)
			}
		}

		c.byID[q.ID] = i
	}

	for name, opts := range map[string][]string{
		"industries":    c.Industries,
		"job_levels":    c.JobLevels,
		"revenue_bands": c.RevenueBands,
		"problem_areas": c.ProblemAreas,
	} {
		if len(opts) == 0 {
			return fmt.Errorf("%w: %s is empty", ErrCatalogInvariant, name)
		}
	}

	return nil
}
