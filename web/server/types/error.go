package types

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
)

// Kind identifies the variant of an internal Error.
type Kind uint8

// Error kinds. The set is closed: every failure in the request pipeline ends up
// as exactly one of these.
const (
	kindUnknown Kind = iota
	KindLoginFail
	KindAuthMissingCredential
	KindAuthMalformedCredential
	KindAuthContextMissing
	KindResourceNotFound
	KindInvalidParams
	KindRouteNotFound
	KindInternal
)

var kindNames = map[Kind]string{
	KindLoginFail:               "LoginFail",
	KindAuthMissingCredential:   "AuthMissingCredential",
	KindAuthMalformedCredential: "AuthMalformedCredential",
	KindAuthContextMissing:      "AuthContextMissing",
	KindResourceNotFound:        "ResourceNotFound",
	KindInvalidParams:           "InvalidParams",
	KindRouteNotFound:           "RouteNotFound",
	KindInternal:                "Internal",
}

// String returns the variant name.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// IsAuth returns true for the kinds produced by identity resolution and the
// authorization gate.
func (k Kind) IsAuth() bool {
	switch k {
	case KindAuthMissingCredential, KindAuthMalformedCredential, KindAuthContextMissing:
		return true
	default:
		return false
	}
}

// Error is an internal pipeline error. It carries the full detail of the
// failure for server-side logging, and is never serialized to clients
// directly. Use Classify to obtain the client-facing representation.
type Error struct {
	kind Kind

	// variant payload
	resource string
	id       uint64
	reason   string
	method   string
	path     string
	cause    error
}

// LoginFail is returned when login credentials are rejected.
func LoginFail() *Error {
	return &Error{kind: KindLoginFail}
}

// AuthMissingCredential is the resolution failure for requests that carry no
// credential at all.
func AuthMissingCredential() *Error {
	return &Error{kind: KindAuthMissingCredential}
}

// AuthMalformedCredential is the resolution failure for requests whose
// credential doesn't have the expected structure.
func AuthMalformedCredential() *Error {
	return &Error{kind: KindAuthMalformedCredential}
}

// AuthContextMissing is returned by the authorization gate when no resolution
// outcome is found for the request. This indicates a route composition defect
// rather than a caller error.
func AuthContextMissing() *Error {
	return &Error{kind: KindAuthContextMissing}
}

// ResourceNotFound is returned when the resource with the given ID doesn't exist.
func ResourceNotFound(resource string, id uint64) *Error {
	return &Error{kind: KindResourceNotFound, resource: resource, id: id}
}

// InvalidParams is returned when request parameters or the request body can't
// be processed.
func InvalidParams(reason string) *Error {
	return &Error{kind: KindInvalidParams, reason: reason}
}

// RouteNotFound is returned when no route matches the request method and path.
func RouteNotFound(method, path string) *Error {
	return &Error{kind: KindRouteNotFound, method: method, path: path}
}

// Internal wraps an unexpected failure.
func Internal(cause error) *Error {
	if cause == nil {
		cause = errors.New("unknown internal error")
	}
	return &Error{kind: KindInternal, cause: cause}
}

// AsError returns err as an *Error. Errors that aren't already part of the
// taxonomy are wrapped with Internal. A nil err returns nil.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var terr *Error
	if errors.As(err, &terr) && terr != nil {
		return terr
	}
	return Internal(err)
}

// Kind returns the variant of the error.
func (e *Error) Kind() Kind {
	if e == nil {
		return kindUnknown
	}
	return e.kind
}

// Data returns a copy of the variant payload. It is meant for logging only.
func (e *Error) Data() map[string]any {
	if e == nil {
		return nil
	}

	switch e.kind {
	case KindResourceNotFound:
		return map[string]any{"resource": e.resource, "id": e.id}
	case KindInvalidParams:
		return map[string]any{"reason": e.reason}
	case KindRouteNotFound:
		return map[string]any{"method": e.method, "path": e.path}
	case KindInternal:
		return map[string]any{"cause": e.cause.Error()}
	default:
		return nil
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}

	data := e.Data()
	if len(data) == 0 {
		return e.kind.String()
	}

	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fields := make([]string, 0, len(keys))
	for _, k := range keys {
		fields = append(fields, fmt.Sprintf("%s: %v", k, data[k]))
	}

	return fmt.Sprintf("%s { %s }", e.kind, strings.Join(fields, ", "))
}

// Unwrap returns the cause of Internal errors.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	return e.kind == t.kind
}

// LogValue implements slog.LogValuer.
func (e *Error) LogValue() slog.Value {
	if e == nil {
		return slog.Value{}
	}

	data := e.Data()
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	attrs := make([]slog.Attr, 0, len(keys)+1)
	attrs = append(attrs, slog.String("type", e.kind.String()))
	for _, k := range keys {
		attrs = append(attrs, slog.Any(k, data[k]))
	}

	return slog.GroupValue(attrs...)
}
