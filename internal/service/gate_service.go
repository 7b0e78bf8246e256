package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/stemsi/aiready-backend/internal/config"
	"github.com/stemsi/aiready-backend/internal/model"
	"github.com/stemsi/aiready-backend/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

// Gate errors.
var (
	ErrIncorrectSecret  = errors.New("incorrect password")
	ErrSessionNotFound  = repository.ErrSessionNotFound
	ErrSecretNotDefined = errors.New("no survey secret configured")
)

// Authorize reports whether submitted is byte-for-byte equal to stored.
// The comparison time does not depend on where the inputs differ.
func Authorize(submitted, stored string) bool {
	return subtle.ConstantTimeCompare([]byte(submitted), []byte(stored)) == 1
}

// SecretVerifier checks a submitted password against the provisioned secret.
type SecretVerifier interface {
	Verify(submitted string) bool
}

type plainSecret string

func (s plainSecret) Verify(submitted string) bool {
	return Authorize(submitted, string(s))
}

type bcryptSecret []byte

func (s bcryptSecret) Verify(submitted string) bool {
	return bcrypt.CompareHashAndPassword(s, []byte(submitted)) == nil
}

// NewSecretVerifier builds the verifier for the configured secret. A bcrypt
// hash wins over a plaintext secret when both are set.
func NewSecretVerifier(cfg *config.Config) (SecretVerifier, error) {
	switch {
	case cfg.SurveySecretHash != "":
		if _, err := bcrypt.Cost([]byte(cfg.SurveySecretHash)); err != nil {
			return nil, fmt.Errorf("parse SURVEY_SECRET_HASH: %w", err)
		}
		return bcryptSecret(cfg.SurveySecretHash), nil
	case cfg.SurveySecret != "":
		return plainSecret(cfg.SurveySecret), nil
	default:
		return nil, ErrSecretNotDefined
	}
}

// GateService tracks whether each session has passed the password gate.
// States move unset -> rejected (repeatable) -> accepted; accepted is final.
type GateService struct {
	sessions repository.SessionRepository
	secret   SecretVerifier
	log      zerolog.Logger
}

// NewGateService creates a new GateService.
func NewGateService(sessions repository.SessionRepository, secret SecretVerifier, log zerolog.Logger) *GateService {
	return &GateService{
		sessions: sessions,
		secret:   secret,
		log:      log.With().Str("component", "gate_service").Logger(),
	}
}

// State returns the gate state of a session.
func (s *GateService) State(ctx context.Context, sessionID string) (model.GateState, error) {
	state, err := s.sessions.GetState(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return "", ErrSessionNotFound
		}
		return "", fmt.Errorf("gate state: %w", err)
	}
	return state, nil
}

// Unlock checks a submitted password for a session. On mismatch it records
// the rejection and returns ErrIncorrectSecret; the password itself is never
// stored or logged.
func (s *GateService) Unlock(ctx context.Context, sessionID, password string) (model.GateState, error) {
	state, err := s.State(ctx, sessionID)
	if err != nil {
		return "", err
	}
	if state == model.GateAccepted {
		return state, nil
	}

	next := model.GateRejected
	if s.secret.Verify(password) {
		next = model.GateAccepted
	}

	if err := s.sessions.SetState(ctx, sessionID, next); err != nil {
		switch {
		case errors.Is(err, repository.ErrSessionAccepted):
			// A concurrent unlock got there first.
			return model.GateAccepted, nil
		case errors.Is(err, repository.ErrSessionNotFound):
			return "", ErrSessionNotFound
		}
		return "", fmt.Errorf("record gate state: %w", err)
	}

	s.log.Info().
		Str("session_id", sessionID).
		Str("from", string(state)).
		Str("to", string(next)).
		Msg("gate transition")

	if next == model.GateRejected {
		return next, ErrIncorrectSecret
	}
	return next, nil
}
