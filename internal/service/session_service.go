package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stemsi/aiready-backend/internal/config"
	"github.com/stemsi/aiready-backend/internal/model"
	"github.com/stemsi/aiready-backend/internal/repository"
)

// Claims identifies a survey session. The gate state itself lives in the
// session repository, not in the token.
type Claims struct {
	jwt.RegisteredClaims
	SessionID string `json:"sid"`
}

// OpenedSession is returned when a new session is created.
type OpenedSession struct {
	Token     string          `json:"token"`
	SessionID string          `json:"session_id"`
	State     model.GateState `json:"state"`
	ExpiresAt time.Time       `json:"expires_at"`
}

// SessionService issues and validates session tokens.
type SessionService struct {
	cfg      *config.Config
	sessions repository.SessionRepository
	now      func() time.Time
}

// NewSessionService creates a new SessionService.
func NewSessionService(cfg *config.Config, sessions repository.SessionRepository) *SessionService {
	return &SessionService{cfg: cfg, sessions: sessions, now: time.Now}
}

// Open registers a fresh session in the unset gate state and signs a token for it.
func (s *SessionService) Open(ctx context.Context) (*OpenedSession, error) {
	sessionID := uuid.New().String()
	now := s.now()
	expiresAt := now.Add(s.cfg.SessionTTL)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   sessionID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		SessionID: sessionID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.SessionSigningKey))
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	if err := s.sessions.Create(ctx, sessionID, model.GateUnset, s.cfg.SessionTTL); err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}

	return &OpenedSession{
		Token:     signed,
		SessionID: sessionID,
		State:     model.GateUnset,
		ExpiresAt: expiresAt,
	}, nil
}

// ValidateToken parses and validates a session token, returning the claims.
func (s *SessionService) ValidateToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.SessionSigningKey), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.SessionID == "" {
		return nil, errors.New("invalid token claims")
	}

	return claims, nil
}
