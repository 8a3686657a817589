package types

import (
	"context"
	"log/slog"
)

// Identity is the resolved identity of the caller.
type Identity struct {
	UserID uint64 `json:"user_id"`
}

// LogValue implements slog.LogValuer.
func (i Identity) LogValue() slog.Value {
	return slog.Uint64Value(i.UserID)
}

// Outcome is the result of resolving the caller identity of a request. It
// holds either a resolved Identity or the error that prevented resolution.
type Outcome struct {
	identity Identity
	err      *Error
}

// Resolved returns a successful Outcome.
func Resolved(id Identity) Outcome {
	return Outcome{identity: id}
}

// Failed returns an Outcome for a failed resolution. A nil err is recorded as
// AuthMissingCredential, so that a failed Outcome always has a cause.
func Failed(err *Error) Outcome {
	if err == nil {
		err = AuthMissingCredential()
	}
	return Outcome{err: err}
}

// Identity returns the resolved identity, or the resolution error.
func (o Outcome) Identity() (Identity, error) {
	if o.err != nil {
		return Identity{}, o.err
	}
	return o.identity, nil
}

// Err returns the resolution error, or nil if the identity was resolved.
func (o Outcome) Err() *Error {
	return o.err
}

type contextKey string

const (
	contextKeyOutcome  contextKey = "resolution_outcome"
	contextKeyIdentity contextKey = "identity"
)

// WithOutcome returns a copy of ctx that carries the resolution outcome.
func WithOutcome(ctx context.Context, o Outcome) context.Context {
	return context.WithValue(ctx, contextKeyOutcome, o)
}

// OutcomeFromContext returns the resolution outcome attached to ctx, if any.
func OutcomeFromContext(ctx context.Context) (Outcome, bool) {
	o, ok := ctx.Value(contextKeyOutcome).(Outcome)
	return o, ok
}

// WithIdentity returns a copy of ctx that carries an authorized identity.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, contextKeyIdentity, id)
}

// IdentityFromContext returns the identity authorized for the request. It is
// only set on routes behind the authorization gate.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(contextKeyIdentity).(Identity)
	return id, ok
}
