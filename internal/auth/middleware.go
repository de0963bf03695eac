package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/frigelar/esteira/internal/session"
	apperrors "github.com/frigelar/esteira/pkg/util/errorutil"
)

const principalKey = "session_principal"

// SessionMiddleware validates bearer tokens and loads the live session state.
type SessionMiddleware struct {
	tokens   *TokenManager
	sessions session.Store
}

// NewSessionMiddleware constructs middleware.
func NewSessionMiddleware(tokens *TokenManager, sessions session.Store) *SessionMiddleware {
	return &SessionMiddleware{tokens: tokens, sessions: sessions}
}

// Handle requires a logged-in session for the route.
func (m *SessionMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return apperrors.NewUnauthorized("invalid session token")
	}

	state, err := m.sessions.Get(c.UserContext(), claims.SessionID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return apperrors.NewUnauthorized("session expired, log in again")
		}
		return apperrors.MapError(err)
	}

	c.Locals(principalKey, state)
	return c.Next()
}

// StateFromContext extracts the session state stored by the middleware.
func StateFromContext(c *fiber.Ctx) (*session.State, bool) {
	state, ok := c.Locals(principalKey).(*session.State)
	return state, ok
}
