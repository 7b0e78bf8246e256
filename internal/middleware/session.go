package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/aiready-backend/internal/model"
	"github.com/stemsi/aiready-backend/internal/response"
	"github.com/stemsi/aiready-backend/internal/service"
)

const (
	// ContextKeySessionID is the Gin context key for the caller's session ID.
	ContextKeySessionID = "session_id"
	// ContextKeyGateState is the Gin context key for the gate state loaded by RequireAccess.
	ContextKeyGateState = "gate_state"
)

// RequireSession validates the bearer session token and stores the session ID
// in the Gin context.
func RequireSession(sessionService *service.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := bearerToken(c)
		if tokenStr == "" {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		claims, err := sessionService.ValidateToken(tokenStr)
		if err != nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenInvalid)
			return
		}

		c.Set(ContextKeySessionID, claims.SessionID)
		c.Next()
	}
}

// RequireAccess rejects sessions that have not passed the password gate.
// Must run after RequireSession.
func RequireAccess(gateService *service.GateService) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := GetSessionID(c)
		if sessionID == "" {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		state, err := gateService.State(c.Request.Context(), sessionID)
		if err != nil {
			if errors.Is(err, service.ErrSessionNotFound) {
				response.AbortFail(c, http.StatusUnauthorized, response.ErrSessionExpired)
				return
			}
			zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg("load gate state")
			response.AbortFail(c, http.StatusInternalServerError, response.ErrInternal)
			return
		}

		if state != model.GateAccepted {
			response.AbortFailWithData(c, http.StatusForbidden, response.ErrAccessLocked, gin.H{"state": state})
			return
		}

		c.Set(ContextKeyGateState, state)
		c.Next()
	}
}

// GetSessionID retrieves the session ID set by RequireSession.
func GetSessionID(c *gin.Context) string {
	return c.GetString(ContextKeySessionID)
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}
