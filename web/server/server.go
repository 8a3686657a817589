package server

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"

	actx "go.hackfix.me/ticketd/app/context"
	"go.hackfix.me/ticketd/web/server/api/v1"
	"go.hackfix.me/ticketd/web/server/auth"
	"go.hackfix.me/ticketd/web/server/handler"
	"go.hackfix.me/ticketd/web/server/middleware"
)

// Server is a wrapper around http.Server with some custom behavior.
type Server struct {
	*http.Server
	logger *slog.Logger
}

// New returns a new web Server instance that will listen on addr. Timeouts
// and the request ID format are read from the application configuration.
func New(appCtx *actx.Context, addr string, opts ...Option) (*Server, error) {
	logger := appCtx.Logger.With("component", "web-server")

	h, err := SetupHandlers(appCtx, logger, opts...)
	if err != nil {
		return nil, err
	}

	srvCfg := appCtx.Config.Server
	srv := &Server{
		Server: &http.Server{
			Handler:           h,
			Addr:              addr,
			ReadHeaderTimeout: srvCfg.ReadHeaderTimeout.V,
			ReadTimeout:       srvCfg.ReadTimeout.V,
			WriteTimeout:      srvCfg.WriteTimeout.V,
		},
		logger: logger,
	}

	return srv, nil
}

// ListenAndServe starts the HTTP server. It stores the actual listen address,
// which is convenient when the address is dynamically determined by the system
// (e.g. ':0').
func (s *Server) ListenAndServe() error {
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		//nolint:wrapcheck // This is fine.
		return err
	}

	s.Addr = ln.Addr().String()
	s.logger.Info("started listener", "address", s.Addr)

	//nolint:wrapcheck // This is fine.
	return s.Serve(ln)
}

type options struct {
	sink     handler.Sink
	verifier auth.Verifier
}

// Option configures the server handlers.
type Option func(*options)

// WithSink adds a sink that receives request records, in addition to the
// default logging and metrics sinks.
func WithSink(sink handler.Sink) Option {
	return func(o *options) {
		o.sink = sink
	}
}

// WithVerifier sets the credential verifier used for identity resolution.
func WithVerifier(v auth.Verifier) Option {
	return func(o *options) {
		o.verifier = v
	}
}

// SetupHandlers configures the server HTTP handlers. Identity resolution runs
// for every request before routing, so that the authorization gate of
// protected routes and the request log always see the resolution outcome.
func SetupHandlers(appCtx *actx.Context, logger *slog.Logger, opts ...Option) (http.Handler, error) {
	o := &options{verifier: auth.StructuralVerifier{}}
	for _, opt := range opts {
		opt(o)
	}

	cfg := appCtx.Config
	newID, err := handler.NewIDGenerator(handler.IDFormat(cfg.Server.RequestIDFormat.V))
	if err != nil {
		return nil, fmt.Errorf("failed configuring request IDs: %w", err)
	}

	metrics := handler.NewMetrics()
	sink := handler.Sinks(handler.NewSlogSink(logger), metrics, o.sink)
	fin := handler.NewFinalizer(sink, handler.WithIDGenerator(newID), handler.WithLogger(logger))

	var static http.FileSystem
	if dir := cfg.Server.StaticDir; dir.Valid {
		static = api.NewStaticFS(appCtx.FS, dir.V)
		logger.Debug("serving static files", "dir", dir.V)
	}

	r := chi.NewRouter()
	r.Method(http.MethodGet, "/metrics", metrics.Handler())
	api.Mount(r, handler.NewPipeline(fin), api.New(appCtx, logger).Routes(), static)

	resolve := auth.Resolve(o.verifier,
		auth.WithCookieName(cfg.Auth.CookieName.V),
		auth.WithLogger(logger),
	)

	return middleware.Chain(r, resolve), nil
}
