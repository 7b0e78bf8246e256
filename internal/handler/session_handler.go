package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/aiready-backend/internal/middleware"
	"github.com/stemsi/aiready-backend/internal/model"
	"github.com/stemsi/aiready-backend/internal/response"
	"github.com/stemsi/aiready-backend/internal/service"
	"github.com/stemsi/aiready-backend/internal/validator"
)

// SessionHandler handles session and password gate endpoints.
type SessionHandler struct {
	sessionService *service.SessionService
	gateService    *service.GateService
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessionService *service.SessionService, gateService *service.GateService) *SessionHandler {
	return &SessionHandler{
		sessionService: sessionService,
		gateService:    gateService,
	}
}

// OpenSession godoc
// POST /api/v1/sessions
// Starts an anonymous session in the unset gate state and returns its token.
func (h *SessionHandler) OpenSession(c *gin.Context) {
	opened, err := h.sessionService.Open(c.Request.Context())
	if err != nil {
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg("open session")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, opened)
}

// GetState godoc
// GET /api/v1/sessions/me
// Returns the gate state of the current session.
func (h *SessionHandler) GetState(c *gin.Context) {
	state, err := h.gateService.State(c.Request.Context(), middleware.GetSessionID(c))
	if err != nil {
		h.failGate(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"state": state})
}

// Unlock godoc
// POST /api/v1/sessions/me/unlock
// Compares the submitted password with the survey secret. A mismatch is
// answered with 401 and the rejected state so the client can retry.
func (h *SessionHandler) Unlock(c *gin.Context) {
	var req model.UnlockRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	state, err := h.gateService.Unlock(c.Request.Context(), middleware.GetSessionID(c), req.Password)
	if err != nil {
		if errors.Is(err, service.ErrIncorrectSecret) {
			response.FailWithData(c, http.StatusUnauthorized, response.ErrIncorrectSecret, gin.H{"state": state})
			return
		}
		h.failGate(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"state": state})
}

func (h *SessionHandler) failGate(c *gin.Context, err error) {
	if errors.Is(err, service.ErrSessionNotFound) {
		response.Fail(c, http.StatusUnauthorized, response.ErrSessionExpired)
		return
	}
	zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg("gate lookup")
	response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
}
