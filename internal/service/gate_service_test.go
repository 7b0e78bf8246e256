package service

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/aiready-backend/internal/config"
	"github.com/stemsi/aiready-backend/internal/model"
	"github.com/stemsi/aiready-backend/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// recordingRepo wraps a repository and remembers every state written.
type recordingRepo struct {
	repository.SessionRepository
	written []model.GateState
	failSet error
}

func (r *recordingRepo) SetState(ctx context.Context, id string, state model.GateState) error {
	if r.failSet != nil {
		return r.failSet
	}
	r.written = append(r.written, state)
	return r.SessionRepository.SetState(ctx, id, state)
}

// interleavedRepo holds each GetState until two readers have arrived and
// delays rejected writes until an accepted write has landed.
type interleavedRepo struct {
	repository.SessionRepository
	readers  sync.WaitGroup
	accepted chan struct{}
}

func (r *interleavedRepo) GetState(ctx context.Context, id string) (model.GateState, error) {
	state, err := r.SessionRepository.GetState(ctx, id)
	r.readers.Done()
	r.readers.Wait()
	return state, err
}

func (r *interleavedRepo) SetState(ctx context.Context, id string, state model.GateState) error {
	if state == model.GateRejected {
		<-r.accepted
	}
	err := r.SessionRepository.SetState(ctx, id, state)
	if state == model.GateAccepted {
		close(r.accepted)
	}
	return err
}

func newGate(t *testing.T, verifier SecretVerifier) (*GateService, *recordingRepo) {
	t.Helper()
	repo := &recordingRepo{SessionRepository: repository.NewMemorySessionRepository()}
	require.NoError(t, repo.Create(context.Background(), "s1", model.GateUnset, time.Hour))
	return NewGateService(repo, verifier, zerolog.Nop()), repo
}

func TestAuthorize(t *testing.T) {
	assert.True(t, Authorize("open sesame", "open sesame"))
	assert.False(t, Authorize("open sesame ", "open sesame"))
	assert.False(t, Authorize("Open sesame", "open sesame"))
	assert.False(t, Authorize("", "open sesame"))
	assert.True(t, Authorize("", ""))
}

func TestGateTransitions(t *testing.T) {
	ctx := context.Background()
	gate, repo := newGate(t, plainSecret("open sesame"))

	state, err := gate.State(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, model.GateUnset, state)

	state, err = gate.Unlock(ctx, "s1", "guess")
	assert.ErrorIs(t, err, ErrIncorrectSecret)
	assert.Equal(t, model.GateRejected, state)

	state, err = gate.Unlock(ctx, "s1", "another guess")
	assert.ErrorIs(t, err, ErrIncorrectSecret)
	assert.Equal(t, model.GateRejected, state)

	state, err = gate.Unlock(ctx, "s1", "open sesame")
	require.NoError(t, err)
	assert.Equal(t, model.GateAccepted, state)

	// Accepted is terminal: a wrong password afterwards changes nothing.
	state, err = gate.Unlock(ctx, "s1", "guess")
	require.NoError(t, err)
	assert.Equal(t, model.GateAccepted, state)

	assert.Equal(t, []model.GateState{model.GateRejected, model.GateRejected, model.GateAccepted}, repo.written)
}

func TestGateUnknownSession(t *testing.T) {
	gate, _ := newGate(t, plainSecret("x"))

	_, err := gate.State(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = gate.Unlock(context.Background(), "nope", "x")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestGateStoreFailure(t *testing.T) {
	gate, repo := newGate(t, plainSecret("x"))
	repo.failSet = errors.New("store down")

	_, err := gate.Unlock(context.Background(), "s1", "x")
	assert.ErrorContains(t, err, "store down")
	assert.NotErrorIs(t, err, ErrIncorrectSecret)
}

func TestNewSecretVerifier(t *testing.T) {
	_, err := NewSecretVerifier(&config.Config{})
	assert.ErrorIs(t, err, ErrSecretNotDefined)

	_, err = NewSecretVerifier(&config.Config{SurveySecretHash: "not-a-hash"})
	assert.Error(t, err)

	plain, err := NewSecretVerifier(&config.Config{SurveySecret: "pw"})
	require.NoError(t, err)
	assert.True(t, plain.Verify("pw"))
	assert.False(t, plain.Verify("pw2"))

	hash, err := bcrypt.GenerateFromPassword([]byte("hashed pw"), bcrypt.MinCost)
	require.NoError(t, err)

	hashed, err := NewSecretVerifier(&config.Config{SurveySecret: "pw", SurveySecretHash: string(hash)})
	require.NoError(t, err)
	assert.True(t, hashed.Verify("hashed pw"))
	assert.False(t, hashed.Verify("pw"))
}

func TestUnlockNeverLogsPassword(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	repo := repository.NewMemorySessionRepository()
	require.NoError(t, repo.Create(ctx, "s1", model.GateUnset, time.Hour))
	gate := NewGateService(repo, plainSecret("hunter2-correct"), zerolog.New(&buf).Level(zerolog.DebugLevel))

	_, err := gate.Unlock(ctx, "s1", "hunter2-guess")
	require.ErrorIs(t, err, ErrIncorrectSecret)
	_, err = gate.Unlock(ctx, "s1", "hunter2-correct")
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "gate transition")
	assert.NotContains(t, buf.String(), "hunter2")
}

func TestConcurrentUnlockKeepsAccepted(t *testing.T) {
	ctx := context.Background()
	repo := &interleavedRepo{
		SessionRepository: repository.NewMemorySessionRepository(),
		accepted:          make(chan struct{}),
	}
	require.NoError(t, repo.Create(ctx, "s1", model.GateUnset, time.Hour))
	repo.readers.Add(2)

	gate := NewGateService(repo, plainSecret("open sesame"), zerolog.Nop())

	type outcome struct {
		state model.GateState
		err   error
	}
	var good, bad outcome
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		good.state, good.err = gate.Unlock(ctx, "s1", "open sesame")
	}()
	go func() {
		defer wg.Done()
		bad.state, bad.err = gate.Unlock(ctx, "s1", "guess")
	}()
	wg.Wait()

	require.NoError(t, good.err)
	assert.Equal(t, model.GateAccepted, good.state)

	// The losing request observes the accepted session instead of rejecting it.
	require.NoError(t, bad.err)
	assert.Equal(t, model.GateAccepted, bad.state)

	state, err := repo.SessionRepository.GetState(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, model.GateAccepted, state)
}
