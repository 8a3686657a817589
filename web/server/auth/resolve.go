package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"go.hackfix.me/ticketd/web/server/middleware"
	"go.hackfix.me/ticketd/web/server/types"
)

// DefaultCookieName is the name of the cookie that carries the credential.
const DefaultCookieName = "auth-token"

// Verifier validates a raw credential and returns the identity it asserts.
// Verify should return one of the types.Error auth variants if the credential
// is rejected. Any other error is treated as a failure of the verifier itself.
type Verifier interface {
	Verify(ctx context.Context, credential string) (types.Identity, error)
}

// VerifierFunc adapts a function to the Verifier interface.
type VerifierFunc func(ctx context.Context, credential string) (types.Identity, error)

// Verify calls f(ctx, credential).
func (f VerifierFunc) Verify(ctx context.Context, credential string) (types.Identity, error) {
	return f(ctx, credential)
}

// StructuralVerifier accepts any credential that parses as a Token. It doesn't
// check the token signature or expiration.
type StructuralVerifier struct{}

var _ Verifier = StructuralVerifier{}

// Verify implements the Verifier interface.
func (StructuralVerifier) Verify(_ context.Context, credential string) (types.Identity, error) {
	tok, err := ParseToken(credential)
	if err != nil {
		return types.Identity{}, types.AuthMalformedCredential()
	}
	return types.Identity{UserID: tok.UserID}, nil
}

type resolver struct {
	verifier   Verifier
	cookieName string
	logger     *slog.Logger
}

// ResolveOption configures the identity resolution middleware.
type ResolveOption func(*resolver)

// WithCookieName sets the name of the cookie the credential is read from.
func WithCookieName(name string) ResolveOption {
	return func(res *resolver) {
		if name != "" {
			res.cookieName = name
		}
	}
}

// WithLogger sets the logger used to report resolution failures at DEBUG level.
func WithLogger(logger *slog.Logger) ResolveOption {
	return func(res *resolver) {
		if logger != nil {
			res.logger = logger
		}
	}
}

// Resolve returns a middleware that resolves the caller identity of every
// request, and attaches the outcome to the request context. It never rejects a
// request: a failed resolution is recorded in the outcome, and only enforced
// by the Gate on protected routes.
//
// The credential is read from the auth cookie, or from a Bearer token in the
// Authorization header if the cookie isn't set.
func Resolve(v Verifier, opts ...ResolveOption) middleware.Middleware {
	if v == nil {
		v = StructuralVerifier{}
	}
	res := &resolver{
		verifier:   v,
		cookieName: DefaultCookieName,
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(res)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Resolution happens once per request.
			if _, ok := types.OutcomeFromContext(r.Context()); ok {
				next.ServeHTTP(w, r)
				return
			}

			out := res.resolve(r)
			next.ServeHTTP(w, r.WithContext(types.WithOutcome(r.Context(), out)))
		})
	}
}

func (res *resolver) resolve(r *http.Request) types.Outcome {
	cred, err := res.credential(r)
	if err != nil {
		res.logFailure(r, err)
		return types.Failed(err)
	}

	ident, verr := res.verifier.Verify(r.Context(), cred)
	if verr != nil {
		terr := types.AsError(verr)
		if k := terr.Kind(); !k.IsAuth() && k != types.KindInternal {
			terr = types.AuthMalformedCredential()
		}
		res.logFailure(r, terr)
		return types.Failed(terr)
	}

	return types.Resolved(ident)
}

func (res *resolver) credential(r *http.Request) (string, *types.Error) {
	c, err := r.Cookie(res.cookieName)
	switch {
	case err == nil:
		if c.Value == "" {
			return "", types.AuthMalformedCredential()
		}
		return c.Value, nil
	case !errors.Is(err, http.ErrNoCookie):
		return "", types.AuthMalformedCredential()
	case hasRawCookie(r, res.cookieName):
		// net/http drops cookies with invalid values.
		return "", types.AuthMalformedCredential()
	}

	header := r.Header.Get("Authorization")
	if header == "" {
		return "", types.AuthMissingCredential()
	}

	token, err := parseAuthHeader(header)
	if err != nil {
		return "", types.AuthMalformedCredential()
	}

	return token, nil
}

// hasRawCookie returns true if any Cookie header has a pair with the given
// name, regardless of whether its value is valid.
func hasRawCookie(r *http.Request, name string) bool {
	for _, line := range r.Header.Values("Cookie") {
		for part := range strings.SplitSeq(line, ";") {
			k, _, _ := strings.Cut(strings.TrimSpace(part), "=")
			if k == name {
				return true
			}
		}
	}
	return false
}

func (res *resolver) logFailure(r *http.Request, err *types.Error) {
	res.logger.Debug("identity resolution failed",
		"method", r.Method, "path", r.URL.Path, "error", err)
}
