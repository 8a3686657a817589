package api

import (
	"net/http"

	"go.hackfix.me/ticketd/web/server/handler"
	"go.hackfix.me/ticketd/web/server/types"
)

// WhoAmI returns the identity of the caller.
func (h *Handler) WhoAmI(r *http.Request) (*handler.Response, error) {
	ident, ok := types.IdentityFromContext(r.Context())
	if !ok {
		return nil, types.AuthContextMissing()
	}

	return handler.JSON(http.StatusOK, types.WhoAmIResponse{UserID: ident.UserID})
}
