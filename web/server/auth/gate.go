package auth

import (
	"net/http"

	"go.hackfix.me/ticketd/web/server/handler"
	"go.hackfix.me/ticketd/web/server/types"
)

// Gate is the authorization middleware for protected routes. It lets the
// request proceed only if the caller identity was resolved, and makes the
// identity available to the handler via types.IdentityFromContext.
//
// If resolution failed, the original resolution error is returned. If the
// request has no resolution outcome at all, the Resolve middleware wasn't
// installed in front of the route, and AuthContextMissing is returned.
func Gate(next handler.HandlerFunc) handler.HandlerFunc {
	return func(r *http.Request) (*handler.Response, error) {
		out, ok := types.OutcomeFromContext(r.Context())
		if !ok {
			return nil, types.AuthContextMissing()
		}

		ident, err := out.Identity()
		if err != nil {
			return nil, err //nolint:wrapcheck // The resolution error is preserved as is.
		}

		return next(r.WithContext(types.WithIdentity(r.Context(), ident)))
	}
}

var _ handler.Middleware = Gate
