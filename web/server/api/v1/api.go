package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	actx "go.hackfix.me/ticketd/app/context"
	"go.hackfix.me/ticketd/web/server/auth"
	"go.hackfix.me/ticketd/web/server/handler"
	"go.hackfix.me/ticketd/web/server/types"
)

// Route is a single entry of the route table.
type Route struct {
	Method  string
	Pattern string
	// Protected routes run behind the authorization gate.
	Protected bool
	Handler   handler.HandlerFunc
}

// Handler is the API endpoint handler.
type Handler struct {
	appCtx *actx.Context
	logger *slog.Logger
}

// New returns a new API handler.
func New(appCtx *actx.Context, logger *slog.Logger) *Handler {
	return &Handler{appCtx: appCtx, logger: logger}
}

// Routes returns the route table of the application.
func (h *Handler) Routes() []Route {
	return []Route{
		{Method: http.MethodGet, Pattern: "/hello", Handler: h.Hello},
		{Method: http.MethodGet, Pattern: "/hello2/{name}", Handler: h.Hello2},
		{Method: http.MethodPost, Pattern: "/api/login", Handler: h.Login},
		{Method: http.MethodPost, Pattern: "/api/tickets", Protected: true, Handler: h.CreateTicket},
		{Method: http.MethodGet, Pattern: "/api/tickets", Protected: true, Handler: h.ListTickets},
		{Method: http.MethodDelete, Pattern: "/api/tickets/{id}", Protected: true, Handler: h.DeleteTicket},
		{Method: http.MethodGet, Pattern: "/api/whoami", Protected: true, Handler: h.WhoAmI},
	}
}

// Mount registers routes on r. Public routes run through pub, and protected
// routes through pub extended with the authorization gate. If static is not
// nil, requests that don't match any route are served from it. Other
// unmatched requests fail with RouteNotFound through the public pipeline.
func Mount(r chi.Router, pub *handler.Pipeline, routes []Route, static http.FileSystem) {
	prot := pub.With(auth.Gate)

	for _, rt := range routes {
		p := pub
		if rt.Protected {
			p = prot
		}
		r.Method(rt.Method, rt.Pattern, p.Handle(rt.Handler))
	}

	notFound := pub.Handle(func(r *http.Request) (*handler.Response, error) {
		return nil, types.RouteNotFound(r.Method, r.URL.Path)
	})
	if static != nil {
		r.NotFound(staticFallback(static, notFound))
	} else {
		r.NotFound(notFound)
	}
	r.MethodNotAllowed(notFound)
}
