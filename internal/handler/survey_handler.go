package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/aiready-backend/internal/model"
	"github.com/stemsi/aiready-backend/internal/response"
	"github.com/stemsi/aiready-backend/internal/service"
	"github.com/stemsi/aiready-backend/internal/validator"
)

// SurveyHandler serves the questionnaire and scores submissions.
type SurveyHandler struct {
	view           *model.SurveyView
	scoringService *service.ScoringService
}

// NewSurveyHandler creates a new SurveyHandler.
func NewSurveyHandler(catalog *model.Catalog, scoringService *service.ScoringService) *SurveyHandler {
	return &SurveyHandler{view: catalog.View(), scoringService: scoringService}
}

// GetSurvey godoc
// GET /api/v1/survey
// Returns the questions, their choices and the demographic option lists.
// Scoring weights are not exposed.
func (h *SurveyHandler) GetSurvey(c *gin.Context) {
	response.Success(c, http.StatusOK, h.view)
}

// Submit godoc
// POST /api/v1/survey/submissions
// Scores a completed survey. Nothing is persisted.
func (h *SurveyHandler) Submit(c *gin.Context) {
	var req model.SubmitSurveyRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, err := h.scoringService.Evaluate(&req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidAnswerSet) {
			response.FailWithFields(c, http.StatusBadRequest, response.ErrInvalidAnswerSet, map[string]string{
				"answers": err.Error(),
			})
			return
		}
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg("score survey")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, result)
}
