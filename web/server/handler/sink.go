package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"go.hackfix.me/ticketd/web/server/types"
)

// RequestLog is the record emitted once per finalized request. It is built by
// the Finalizer and handed to sinks by value.
type RequestLog struct {
	CorrelationID string
	Method        string
	Path          string
	Status        int
	Duration      time.Duration
	// Identity is the resolved caller identity, or nil.
	Identity *types.Identity
	// Err is the internal error with full detail, or nil.
	Err *types.Error
	// ClientErr is the sanitized error type sent to the client, or empty.
	ClientErr types.ClientError
}

// Sink receives request log records. Implementations must be safe for
// concurrent use.
type Sink interface {
	Write(ctx context.Context, rec RequestLog) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ctx context.Context, rec RequestLog) error

// Write calls f(ctx, rec).
func (f SinkFunc) Write(ctx context.Context, rec RequestLog) error {
	return f(ctx, rec)
}

// SlogSink writes request records to a slog logger.
type SlogSink struct {
	logger *slog.Logger
}

var _ Sink = (*SlogSink)(nil)

// NewSlogSink returns a new sink that writes to logger.
func NewSlogSink(logger *slog.Logger) *SlogSink {
	return &SlogSink{logger: logger}
}

// Write logs the record. Successful requests are logged at INFO level, caller
// errors at WARN, and service errors at ERROR. A missing resolution outcome is
// also logged at ERROR, since it points to a routing defect.
func (s *SlogSink) Write(ctx context.Context, rec RequestLog) error {
	attrs := []slog.Attr{
		slog.String("req_uuid", rec.CorrelationID),
		slog.String("method", rec.Method),
		slog.String("path", rec.Path),
		slog.Int("status", rec.Status),
		slog.Duration("duration", rec.Duration),
	}
	if rec.Identity != nil {
		attrs = append(attrs, slog.Any("user_id", *rec.Identity))
	}
	if rec.Err != nil {
		attrs = append(attrs, slog.Any("error", rec.Err))
	}
	if rec.ClientErr != "" {
		attrs = append(attrs, slog.String("client_error", string(rec.ClientErr)))
	}

	s.logger.LogAttrs(ctx, recordLevel(rec), "request", attrs...)

	return nil
}

func recordLevel(rec RequestLog) slog.Level {
	switch {
	case rec.Err == nil:
		return slog.LevelInfo
	case rec.Err.Kind() == types.KindAuthContextMissing:
		return slog.LevelError
	case rec.Status >= http.StatusInternalServerError:
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

type multiSink []Sink

// Sinks returns a Sink that writes each record to all of the given sinks, in
// order. All sinks are written to even if some of them fail.
func Sinks(sinks ...Sink) Sink {
	return multiSink(sinks)
}

func (ms multiSink) Write(ctx context.Context, rec RequestLog) error {
	var errs []error
	for _, s := range ms {
		if s == nil {
			continue
		}
		if err := s.Write(ctx, rec); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
