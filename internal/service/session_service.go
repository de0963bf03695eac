package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/frigelar/esteira/internal/auth"
	"github.com/frigelar/esteira/internal/domain"
	"github.com/frigelar/esteira/internal/repository"
	"github.com/frigelar/esteira/internal/session"
	apperrors "github.com/frigelar/esteira/pkg/util/errorutil"
)

// SessionService owns the login state machine: logged out, logged in, and
// logged in awaiting finish confirmation. Transitions outside this service do
// not exist.
type SessionService struct {
	agents   repository.AgentRepository
	sessions session.Store
	tokens   *auth.TokenManager
	ttl      time.Duration
	logger   *zap.Logger
}

// SessionDependencies bundles collaborators for the session service.
type SessionDependencies struct {
	AgentRepo repository.AgentRepository
	Sessions  session.Store
	Tokens    *auth.TokenManager
	TTL       time.Duration
	Logger    *zap.Logger
}

// NewSessionService constructs the service.
func NewSessionService(deps SessionDependencies) *SessionService {
	return &SessionService{
		agents:   deps.AgentRepo,
		sessions: deps.Sessions,
		tokens:   deps.Tokens,
		ttl:      deps.TTL,
		logger:   deps.Logger,
	}
}

// Agents lists the names offered by the login selector.
func (s *SessionService) Agents(ctx context.Context) ([]domain.Agent, error) {
	agents, err := s.agents.List(ctx)
	if err != nil {
		return nil, apperrors.NewUnavailable("agent list not available", map[string]any{
			"cause": err.Error(),
		})
	}
	return agents, nil
}

// Login opens a session for the named agent. The name must be one of the
// listed agents; nothing else is verified, by design.
func (s *SessionService) Login(ctx context.Context, name string) (string, *session.State, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", nil, apperrors.NewValidationError("select a name first", nil)
	}

	agents, err := s.Agents(ctx)
	if err != nil {
		return "", nil, err
	}
	known := false
	for _, agent := range agents {
		if agent.Name == name {
			known = true
			break
		}
	}
	if !known {
		return "", nil, apperrors.NewValidationError("unknown agent name", map[string]any{
			"agent": name,
		})
	}

	state := session.State{ID: uuid.New().String(), Agent: name}
	if err := s.sessions.Put(ctx, state, s.ttl); err != nil {
		return "", nil, apperrors.MapError(err)
	}
	token, _, err := s.tokens.GenerateToken(state.ID, state.Agent)
	if err != nil {
		return "", nil, apperrors.MapError(err)
	}

	s.logger.Info("agent logged in", zap.String("agent", name))
	return token, &state, nil
}

// Logout discards the session. There is nothing server-side beyond the
// stored state, so this is the whole of logout.
func (s *SessionService) Logout(ctx context.Context, state *session.State) error {
	if err := s.sessions.Delete(ctx, state.ID); err != nil {
		return apperrors.MapError(err)
	}
	s.logger.Info("agent logged out", zap.String("agent", state.Agent))
	return nil
}

// BeginFinish raises the confirmation flag before a finish is applied.
func (s *SessionService) BeginFinish(ctx context.Context, state *session.State) error {
	state.ConfirmingFinish = true
	return s.save(ctx, state)
}

// ClearConfirm lowers the confirmation flag: on confirm, on cancel, and when
// the board renders without an active ticket.
func (s *SessionService) ClearConfirm(ctx context.Context, state *session.State) error {
	if !state.ConfirmingFinish {
		return nil
	}
	state.ConfirmingFinish = false
	return s.save(ctx, state)
}

// Touch extends the session lifetime without changing state.
func (s *SessionService) Touch(ctx context.Context, state *session.State) {
	_ = s.save(ctx, state)
}

func (s *SessionService) save(ctx context.Context, state *session.State) error {
	if err := s.sessions.Put(ctx, *state, s.ttl); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}
