package handlers

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/frigelar/esteira/internal/api/dto"
	"github.com/frigelar/esteira/internal/auth"
	"github.com/frigelar/esteira/internal/config"
	"github.com/frigelar/esteira/internal/domain"
	"github.com/frigelar/esteira/internal/qualitor"
	"github.com/frigelar/esteira/internal/service"
	"github.com/frigelar/esteira/internal/session"
	apperrors "github.com/frigelar/esteira/pkg/util/errorutil"
)

// BoardHandler serves the main screen and the claim/finish actions.
type BoardHandler struct {
	claims       *service.ClaimService
	sessions     *service.SessionService
	links        qualitor.LinkBuilder
	finishPolicy config.FinishPolicy
}

// NewBoardHandler constructs handler.
func NewBoardHandler(claimService *service.ClaimService, sessionService *service.SessionService, links qualitor.LinkBuilder, finishPolicy config.FinishPolicy) *BoardHandler {
	return &BoardHandler{
		claims:       claimService,
		sessions:     sessionService,
		links:        links,
		finishPolicy: finishPolicy,
	}
}

// Board GET /board.
func (h *BoardHandler) Board(c *fiber.Ctx) error {
	state, ok := auth.StateFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("session required")
	}
	h.sessions.Touch(c.UserContext(), state)

	resp := dto.BoardResponse{
		Agent:        state.Agent,
		FinishPolicy: string(h.finishPolicy),
	}

	if ticket, found := h.claims.ActiveTicket(c.UserContext(), state.Agent); found {
		resp.Screen = dto.ScreenActiveTicket
		resp.ConfirmingFinish = state.ConfirmingFinish
		resp.ActiveTicket = h.ticketView(ticket)
		return c.JSON(fiber.Map{"data": resp})
	}

	// No active ticket: abandon any half-finished confirmation.
	if err := h.sessions.ClearConfirm(c.UserContext(), state); err != nil {
		return err
	}

	if h.claims.SnapshotEmpty(c.UserContext()) {
		resp.Screen = dto.ScreenLoading
		return c.JSON(fiber.Map{"data": resp})
	}

	resp.Screen = dto.ScreenQueue
	resp.QueueDepth = h.claims.QueueDepth(c.UserContext())
	return c.JSON(fiber.Map{"data": resp})
}

// Claim POST /board/claim.
func (h *BoardHandler) Claim(c *fiber.Ctx) error {
	state, ok := auth.StateFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("session required")
	}

	ticket, err := h.claims.ClaimNext(c.UserContext(), state.Agent)
	switch {
	case errors.Is(err, service.ErrQueueRaced):
		return c.JSON(fiber.Map{"data": dto.ClaimResponse{
			Claimed: false,
			Message: "someone claimed it first",
		}})
	case errors.Is(err, service.ErrAlreadyHolding):
		return apperrors.NewConflict("you already hold a ticket", map[string]any{
			"ticket_id": ticket.ID,
		})
	case err != nil:
		// Locate and write failures reach the agent verbatim; there is no
		// automatic retry.
		return apperrors.NewStoreError(err)
	}

	return c.JSON(fiber.Map{"data": dto.ClaimResponse{
		Claimed: true,
		Ticket:  h.ticketView(ticket),
	}})
}

// Finish POST /board/finish. Under the confirm policy the first press only
// raises the confirmation flag; the write happens on /board/finish/confirm.
func (h *BoardHandler) Finish(c *fiber.Ctx) error {
	state, ok := auth.StateFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("session required")
	}

	if h.finishPolicy == config.FinishConfirm {
		if err := h.sessions.BeginFinish(c.UserContext(), state); err != nil {
			return err
		}
		return c.JSON(fiber.Map{"data": dto.FinishResponse{ConfirmRequired: true}})
	}

	return h.applyFinish(c, state)
}

// FinishConfirm POST /board/finish/confirm.
func (h *BoardHandler) FinishConfirm(c *fiber.Ctx) error {
	state, ok := auth.StateFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("session required")
	}
	if h.finishPolicy == config.FinishConfirm && !state.ConfirmingFinish {
		return apperrors.NewValidationError("nothing awaiting confirmation", nil)
	}
	if err := h.sessions.ClearConfirm(c.UserContext(), state); err != nil {
		return err
	}
	return h.applyFinish(c, state)
}

// FinishCancel POST /board/finish/cancel.
func (h *BoardHandler) FinishCancel(c *fiber.Ctx) error {
	state, ok := auth.StateFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("session required")
	}
	if err := h.sessions.ClearConfirm(c.UserContext(), state); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FinishResponse{Finished: false}})
}

// Refresh POST /board/refresh. The manual retry control: drops the display
// snapshot so the next board read hits the store.
func (h *BoardHandler) Refresh(c *fiber.Ctx) error {
	if _, ok := auth.StateFromContext(c); !ok {
		return apperrors.NewUnauthorized("session required")
	}
	h.claims.RefreshSnapshot()
	return c.SendStatus(http.StatusNoContent)
}

func (h *BoardHandler) applyFinish(c *fiber.Ctx, state *session.State) error {
	result, err := h.claims.FinishCurrent(c.UserContext(), state.Agent)
	switch {
	case errors.Is(err, service.ErrNoActiveTicket):
		return apperrors.NewConflict("no ticket in progress", nil)
	case err != nil:
		return apperrors.NewStoreError(err)
	}

	resp := dto.FinishResponse{
		Finished:     !result.AlreadyDone,
		AlreadyDone:  result.AlreadyDone,
		TicketID:     result.Ticket.ID,
		FinalizadoEm: result.Ticket.FinalizadoEm,
	}
	if result.AlreadyDone {
		resp.Message = "ticket was already concluded"
	}
	return c.JSON(fiber.Map{"data": resp})
}

func (h *BoardHandler) ticketView(ticket *domain.Ticket) *dto.ActiveTicketView {
	return &dto.ActiveTicketView{
		ID:         ticket.ID,
		Dados:      ticket.Dados,
		Link:       h.links.TicketURL(ticket.Dados),
		IniciadoEm: ticket.IniciadoEm,
	}
}
