package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/frigelar/esteira/internal/api/dto"
	"github.com/frigelar/esteira/internal/auth"
	"github.com/frigelar/esteira/internal/service"
	apperrors "github.com/frigelar/esteira/pkg/util/errorutil"
)

// SessionHandler manages login, logout and session inspection.
type SessionHandler struct {
	sessions *service.SessionService
}

// NewSessionHandler constructs handler.
func NewSessionHandler(sessionService *service.SessionService) *SessionHandler {
	return &SessionHandler{sessions: sessionService}
}

// Agents GET /agents.
func (h *SessionHandler) Agents(c *fiber.Ctx) error {
	agents, err := h.sessions.Agents(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.AgentResponse, 0, len(agents))
	for _, agent := range agents {
		items = append(items, dto.AgentResponse{Name: agent.Name})
	}
	return c.JSON(fiber.Map{"data": items})
}

// Login POST /session/login.
func (h *SessionHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	token, state, err := h.sessions.Login(c.UserContext(), req.Agent)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.LoginResponse{
		Token: token,
		Agent: state.Agent,
	}})
}

// Logout POST /session/logout.
func (h *SessionHandler) Logout(c *fiber.Ctx) error {
	state, ok := auth.StateFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("session required")
	}
	if err := h.sessions.Logout(c.UserContext(), state); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Current GET /session.
func (h *SessionHandler) Current(c *fiber.Ctx) error {
	state, ok := auth.StateFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("session required")
	}
	return c.JSON(fiber.Map{"data": dto.SessionResponse{
		Agent:            state.Agent,
		ConfirmingFinish: state.ConfirmingFinish,
	}})
}
