package api

import (
	"fmt"
	"html"
	"net/http"

	"github.com/go-chi/chi/v5"

	"go.hackfix.me/ticketd/web/server/handler"
)

// Hello greets the name given in the query string, e.g. /hello?name=Jen.
func (h *Handler) Hello(r *http.Request) (*handler.Response, error) {
	name := r.URL.Query().Get("name")
	if name == "" {
		name = "World!"
	}

	return handler.HTML(http.StatusOK,
		fmt.Sprintf("Hello, <strong>%s</strong>", html.EscapeString(name))), nil
}

// Hello2 greets the name given in the path, e.g. /hello2/Mike.
func (h *Handler) Hello2(r *http.Request) (*handler.Response, error) {
	name := chi.URLParam(r, "name")

	return handler.HTML(http.StatusOK,
		fmt.Sprintf("Hello2 <strong>%s</strong>", html.EscapeString(name))), nil
}
