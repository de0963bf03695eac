package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/frigelar/esteira/internal/auth"
	"github.com/frigelar/esteira/internal/domain"
	"github.com/frigelar/esteira/internal/session"
	apperrors "github.com/frigelar/esteira/pkg/util/errorutil"
)

type fakeAgentRepo struct {
	names []string
	err   error
}

func (r *fakeAgentRepo) List(context.Context) ([]domain.Agent, error) {
	if r.err != nil {
		return nil, r.err
	}
	agents := make([]domain.Agent, 0, len(r.names))
	for _, name := range r.names {
		agents = append(agents, domain.Agent{Name: name})
	}
	return agents, nil
}

func newSessionService(repo *fakeAgentRepo) (*SessionService, session.Store, *auth.TokenManager) {
	store := session.NewMemoryStore()
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	svc := NewSessionService(SessionDependencies{
		AgentRepo: repo,
		Sessions:  store,
		Tokens:    tokens,
		TTL:       time.Hour,
		Logger:    zap.NewNop(),
	})
	return svc, store, tokens
}

func TestLoginIssuesTokenAndStoresSession(t *testing.T) {
	svc, store, tokens := newSessionService(&fakeAgentRepo{names: []string{"Ana", "Bruno"}})

	token, state, err := svc.Login(context.Background(), "Ana")
	require.NoError(t, err)
	assert.Equal(t, "Ana", state.Agent)
	assert.False(t, state.ConfirmingFinish)

	claims, err := tokens.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, state.ID, claims.SessionID)
	assert.Equal(t, "Ana", claims.Agent)

	stored, err := store.Get(context.Background(), state.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana", stored.Agent)
}

func TestLoginRejectsEmptyName(t *testing.T) {
	svc, _, _ := newSessionService(&fakeAgentRepo{names: []string{"Ana"}})

	_, _, err := svc.Login(context.Background(), "   ")
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)
}

func TestLoginRejectsUnknownName(t *testing.T) {
	svc, _, _ := newSessionService(&fakeAgentRepo{names: []string{"Ana"}})

	_, _, err := svc.Login(context.Background(), "Mallory")
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)
}

func TestLoginWhenAgentListUnavailable(t *testing.T) {
	svc, _, _ := newSessionService(&fakeAgentRepo{err: errors.New("quota exceeded")})

	_, _, err := svc.Login(context.Background(), "Ana")
	require.Error(t, err)
	assert.Equal(t, "DEPENDENCY_UNAVAILABLE", apperrors.ToDomainError(err).Code)
}

func TestLogoutDiscardsSession(t *testing.T) {
	svc, store, _ := newSessionService(&fakeAgentRepo{names: []string{"Ana"}})

	_, state, err := svc.Login(context.Background(), "Ana")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), state))
	_, err = store.Get(context.Background(), state.ID)
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestFinishConfirmationFlag(t *testing.T) {
	svc, store, _ := newSessionService(&fakeAgentRepo{names: []string{"Ana"}})

	_, state, err := svc.Login(context.Background(), "Ana")
	require.NoError(t, err)

	require.NoError(t, svc.BeginFinish(context.Background(), state))
	assert.True(t, state.ConfirmingFinish)

	stored, err := store.Get(context.Background(), state.ID)
	require.NoError(t, err)
	assert.True(t, stored.ConfirmingFinish)

	require.NoError(t, svc.ClearConfirm(context.Background(), state))
	assert.False(t, state.ConfirmingFinish)

	stored, err = store.Get(context.Background(), state.ID)
	require.NoError(t, err)
	assert.False(t, stored.ConfirmingFinish)
}

func TestClearConfirmIsIdempotent(t *testing.T) {
	svc, _, _ := newSessionService(&fakeAgentRepo{names: []string{"Ana"}})

	_, state, err := svc.Login(context.Background(), "Ana")
	require.NoError(t, err)

	require.NoError(t, svc.ClearConfirm(context.Background(), state))
	require.NoError(t, svc.ClearConfirm(context.Background(), state))
	assert.False(t, state.ConfirmingFinish)
}
