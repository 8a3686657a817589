package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"go.hackfix.me/ticketd/web/server/types"
)

// HeaderRequestID is the response header that carries the correlation ID.
const HeaderRequestID = "X-Request-ID"

// Finalizer is the last stage of request processing. It receives the response
// and error returned by the handler chain, replaces failed responses with a
// sanitized error envelope, and emits a RequestLog for every request.
type Finalizer struct {
	sink   Sink
	newID  func() string
	logger *slog.Logger
}

// FinalizerOption configures a Finalizer.
type FinalizerOption func(*Finalizer)

// WithIDGenerator sets the function used to generate correlation IDs. It must
// be safe for concurrent use.
func WithIDGenerator(fn func() string) FinalizerOption {
	return func(f *Finalizer) {
		if fn != nil {
			f.newID = fn
		}
	}
}

// WithLogger sets the logger used to report failures of the Finalizer itself.
func WithLogger(logger *slog.Logger) FinalizerOption {
	return func(f *Finalizer) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// NewFinalizer returns a new Finalizer that writes request records to sink.
func NewFinalizer(sink Sink, opts ...FinalizerOption) *Finalizer {
	f := &Finalizer{sink: sink, newID: uuid.NewString, logger: slog.Default()}
	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Finalize returns the response to send to the client for the given handler
// result. If err is not nil, the response is replaced by an error envelope
// with the status code and client error type returned by types.Classify. The
// request record is written to the sink before Finalize returns.
//
// Finalizing an already finalized response returns it unchanged.
func (f *Finalizer) Finalize(r *http.Request, resp *Response, err error) *Response {
	return f.finalize(r, resp, err, 0)
}

func (f *Finalizer) finalize(r *http.Request, resp *Response, err error, dur time.Duration) (final *Response) {
	if resp != nil && resp.finalized {
		return resp
	}

	id := f.correlationID()

	defer func() {
		if rec := recover(); rec != nil {
			f.logger.Error("failed finalizing response", "req_uuid", id, "panic", rec)
			final = errorResponse(http.StatusInternalServerError, types.ClientServiceError, id)
			seal(final, id)
		}
	}()

	terr := types.AsError(err)
	if terr == nil && resp == nil {
		terr = types.Internal(errors.New("handler returned no response"))
	}

	rec := RequestLog{
		CorrelationID: id,
		Method:        r.Method,
		Path:          r.URL.Path,
		Duration:      dur,
	}
	if out, ok := types.OutcomeFromContext(r.Context()); ok {
		if ident, ierr := out.Identity(); ierr == nil {
			rec.Identity = &ident
		}
	}

	if terr != nil {
		status, cerr := types.Classify(terr)
		final = errorResponse(status, cerr, id)
		rec.Err = terr
		rec.ClientErr = cerr
	} else {
		final = resp
	}

	seal(final, id)
	rec.Status = final.statusCode

	// The record should be written even if the client went away.
	if f.sink != nil {
		if serr := f.sink.Write(context.WithoutCancel(r.Context()), rec); serr != nil {
			f.logger.Warn("failed writing request log", "req_uuid", id, "error", serr.Error())
		}
	}

	return final
}

func (f *Finalizer) correlationID() (id string) {
	defer func() {
		if rec := recover(); rec != nil {
			f.logger.Error("correlation ID generator failed", "panic", rec)
			id = uuid.NewString()
		}
	}()

	id = f.newID()
	if id == "" {
		id = uuid.NewString()
	}

	return id
}

func errorResponse(statusCode int, cerr types.ClientError, id string) *Response {
	resp, err := JSON(statusCode, types.NewErrorEnvelope(cerr, id))
	if err != nil {
		resp = NewResponse(statusCode)
	}
	return resp
}

func seal(resp *Response, id string) {
	if resp.statusCode == 0 {
		resp.statusCode = http.StatusOK
	}
	resp.Header().Set(HeaderRequestID, id)
	resp.finalized = true
}
