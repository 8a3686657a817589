package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"go.hackfix.me/ticketd/db/models"
	dbtypes "go.hackfix.me/ticketd/db/types"
	"go.hackfix.me/ticketd/web/server/handler"
	"go.hackfix.me/ticketd/web/server/types"
)

// CreateTicket creates a ticket owned by the caller.
func (h *Handler) CreateTicket(r *http.Request) (*handler.Response, error) {
	ident, ok := types.IdentityFromContext(r.Context())
	if !ok {
		return nil, types.AuthContextMissing()
	}

	req, err := handler.DecodeJSON[types.CreateTicketRequest](r)
	if err != nil {
		return nil, err
	}

	t := &models.Ticket{CreatorID: ident.UserID, Title: req.Title}
	if err = t.Save(r.Context(), h.appCtx.DB); err != nil {
		return nil, storeError(err)
	}

	return handler.JSON(http.StatusCreated, ticketView(t))
}

// ListTickets returns all tickets.
func (h *Handler) ListTickets(r *http.Request) (*handler.Response, error) {
	tickets, err := models.Tickets(r.Context(), h.appCtx.DB, nil)
	if err != nil {
		return nil, storeError(err)
	}

	resp := types.TicketsResponse{Tickets: make([]types.Ticket, 0, len(tickets))}
	for _, t := range tickets {
		resp.Tickets = append(resp.Tickets, ticketView(t))
	}

	return handler.JSON(http.StatusOK, resp)
}

// DeleteTicket deletes the ticket with the ID given in the path, and returns
// the deleted ticket.
func (h *Handler) DeleteTicket(r *http.Request) (*handler.Response, error) {
	idParam := chi.URLParam(r, "id")
	id, err := strconv.ParseUint(idParam, 10, 64)
	if err != nil || id == 0 {
		return nil, types.InvalidParams("invalid ticket ID: " + idParam)
	}

	t := &models.Ticket{ID: id}
	if err = t.Delete(r.Context(), h.appCtx.DB); err != nil {
		return nil, storeError(err)
	}

	return handler.JSON(http.StatusOK, ticketView(t))
}

// storeError maps ticket store errors into the pipeline error taxonomy.
func storeError(err error) error {
	var (
		errNoResult dbtypes.NoResultError
		errInput    dbtypes.InvalidInputError
	)
	switch {
	case errors.As(err, &errNoResult):
		return types.ResourceNotFound(errNoResult.ModelName, errNoResult.ID)
	case errors.As(err, &errInput):
		return types.InvalidParams(errInput.Msg)
	default:
		return types.Internal(err)
	}
}

func ticketView(t *models.Ticket) types.Ticket {
	return types.Ticket{
		ID:        t.ID,
		CreatorID: t.CreatorID,
		Title:     t.Title,
		CreatedAt: t.CreatedAt,
	}
}
