package service

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/rs/zerolog"
	"github.com/stemsi/aiready-backend/internal/model"
)

// ErrInvalidAnswerSet is returned when an AnswerSet misses a question or
// holds a label that the question does not offer.
var ErrInvalidAnswerSet = errors.New("invalid answer set")

// recommendationTiers is ordered by descending lower bound; the lower bound
// is inclusive and the last tier catches everything else.
var recommendationTiers = []struct {
	min  float64
	text string
}{
	{80, "Congratulations! Your organization is well-prepared for AI adoption. Continue to invest in AI initiatives and explore advanced applications."},
	{60, "Your organization has made good progress in AI readiness. Consider addressing specific areas of improvement and expanding AI implementation."},
	{40, "There is room for improvement in your organization's AI readiness. Focus on enhancing data accessibility, aligning AI initiatives with goals, and investing in AI expertise."},
	{math.Inf(-1), "Your organization may need significant improvements in AI readiness. Prioritize strategic planning, address data quality issues, and invest in building a skilled AI team."},
}

// Recommend maps a normalized score to its recommendation tier (1 is best).
func Recommend(normalized float64) model.Recommendation {
	for i, tier := range recommendationTiers {
		if normalized >= tier.min {
			return model.Recommendation{Tier: i + 1, Text: tier.text}
		}
	}
	// NaN compares false against every bound.
	last := len(recommendationTiers)
	return model.Recommendation{Tier: last, Text: recommendationTiers[last-1].text}
}

// FormatScoreLine renders the headline shown to the respondent.
func FormatScoreLine(name string, normalized float64) string {
	return fmt.Sprintf("%s, your AI readiness score is: %.2f/100", name, normalized)
}

// ScoringService scores completed surveys against the fixed catalog.
type ScoringService struct {
	catalog *model.Catalog
	log     zerolog.Logger
}

// NewScoringService creates a new ScoringService.
func NewScoringService(catalog *model.Catalog, log zerolog.Logger) *ScoringService {
	return &ScoringService{
		catalog: catalog,
		log:     log.With().Str("component", "scoring_service").Logger(),
	}
}

// Score computes the weighted raw score and its 0–100 normalization.
// It has no side effects.
func (s *ScoringService) Score(answers model.AnswerSet) (model.Score, error) {
	if err := s.validate(answers); err != nil {
		return model.Score{}, err
	}

	var raw float64
	for i := range s.catalog.Questions {
		q := &s.catalog.Questions[i]
		ch, _ := q.Choice(answers[q.ID])
		raw += q.Weight * float64(ch.Weight)
	}

	maxScore := s.catalog.MaxScore()
	return model.Score{
		Raw:        raw,
		Max:        maxScore,
		Normalized: 100 * raw / maxScore,
	}, nil
}

// Evaluate scores a submission and selects its recommendation.
func (s *ScoringService) Evaluate(req *model.SubmitSurveyRequest) (*model.SurveyResult, error) {
	score, err := s.Score(req.Answers)
	if err != nil {
		return nil, err
	}

	rec := Recommend(score.Normalized)

	s.log.Debug().
		Float64("normalized_score", score.Normalized).
		Int("tier", rec.Tier).
		Str("industry", req.Industry).
		Int("problem_areas", len(req.ProblemAreas)).
		Msg("survey scored")

	return &model.SurveyResult{
		Name:            req.Name,
		Organization:    req.Organization,
		RawScore:        score.Raw,
		MaxScore:        score.Max,
		NormalizedScore: math.Round(score.Normalized*100) / 100,
		ScoreText:       FormatScoreLine(req.Name, score.Normalized),
		Tier:            rec.Tier,
		Recommendation:  rec.Text,
	}, nil
}

// validate requires exactly one valid label for every catalog question.
func (s *ScoringService) validate(answers model.AnswerSet) error {
	for i := range s.catalog.Questions {
		q := &s.catalog.Questions[i]
		label, ok := answers[q.ID]
		if !ok {
			return fmt.Errorf("%w: %s is unanswered", ErrInvalidAnswerSet, q.ID)
		}
		if _, ok := q.Choice(label); !ok {
			return fmt.Errorf("%w: %q is not a choice of %s", ErrInvalidAnswerSet, label, q.ID)
		}
	}

	if len(answers) != len(s.catalog.Questions) {
		unknown := make([]string, 0, len(answers))
		for id := range answers {
			if _, ok := s.catalog.Question(id); !ok {
				unknown = append(unknown, id)
			}
		}
		sort.Strings(unknown)
		return fmt.Errorf("%w: unknown questions %v", ErrInvalidAnswerSet, unknown)
	}

	return nil
}
