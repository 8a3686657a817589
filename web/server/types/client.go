package types

import "net/http"

// ClientError is the reduced, client-safe error type sent in error responses.
type ClientError string

// Client error types.
const (
	ClientLoginFail     ClientError = "LOGIN_FAIL"
	ClientNoAuth        ClientError = "NO_AUTH"
	ClientInvalidParams ClientError = "INVALID_PARAMS"
	ClientServiceError  ClientError = "SERVICE_ERROR"
)

// Classify maps any error to the HTTP status code and client error type
// returned to the caller. It never fails: errors outside of the taxonomy, nil
// errors and kinds without an explicit case map to SERVICE_ERROR with status
// 500.
//
// New kinds must get an explicit case here to be reported as anything other
// than SERVICE_ERROR. Variant payloads are never part of the result.
func Classify(err error) (int, ClientError) {
	terr := AsError(err)
	if terr == nil {
		return http.StatusInternalServerError, ClientServiceError
	}

	switch terr.Kind() {
	case KindLoginFail:
		return http.StatusForbidden, ClientLoginFail
	case KindAuthMissingCredential, KindAuthMalformedCredential, KindAuthContextMissing:
		return http.StatusForbidden, ClientNoAuth
	case KindResourceNotFound, KindInvalidParams:
		return http.StatusBadRequest, ClientInvalidParams
	case KindRouteNotFound:
		return http.StatusNotFound, ClientInvalidParams
	default:
		return http.StatusInternalServerError, ClientServiceError
	}
}

// ErrorEnvelope is the JSON body of every error response.
type ErrorEnvelope struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody contains the client error type and the correlation ID that links
// the response to the server-side log record.
type ErrorBody struct {
	Type    ClientError `json:"type"`
	ReqUUID string      `json:"req_uuid"`
}

// NewErrorEnvelope returns the error envelope for the given client error and
// correlation ID.
func NewErrorEnvelope(cerr ClientError, correlationID string) ErrorEnvelope {
	return ErrorEnvelope{Error: ErrorBody{Type: cerr, ReqUUID: correlationID}}
}
