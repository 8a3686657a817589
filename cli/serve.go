package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	actx "go.hackfix.me/ticketd/app/context"
	aerrors "go.hackfix.me/ticketd/app/errors"
	"go.hackfix.me/ticketd/db"
	"go.hackfix.me/ticketd/db/queries"
	"go.hackfix.me/ticketd/web/server"
)

const shutdownTimeout = 10 * time.Second

// Serve starts the web server.
type Serve struct {
	Address string `arg:"" optional:"" help:"[host]:port to listen on"`
}

// Run the serve command.
func (c *Serve) Run(appCtx *actx.Context) error {
	if appCtx.DB == nil {
		d, err := openDB(appCtx)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := d.Close(); cerr != nil {
				aerrors.Log(appCtx.Logger, aerrors.NewWithCause("failed closing ticket store", cerr))
			}
		}()
		appCtx.DB = d
	}

	srv, err := server.New(appCtx, c.Address)
	if err != nil {
		return aerrors.NewWithCause("failed creating web server", err,
			"hint", "check the server section of the configuration file")
	}

	// Gracefully shutdown the server if a process signal is received, or the
	// main context is done.
	// See https://dev.to/mokiat/proper-http-shutdown-in-go-3fji
	srvDone := make(chan error, 1)
	go func() {
		srvErr := srv.ListenAndServe()
		appCtx.Logger.Debug("web server shutdown")
		srvDone <- srvErr
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case s := <-sigCh:
		appCtx.Logger.Debug("process received signal", "signal", s)
	case <-appCtx.Ctx.Done():
		appCtx.Logger.Debug("app context is done")
	case srvErr := <-srvDone:
		if srvErr != nil && !errors.Is(srvErr, http.ErrServerClosed) {
			return fmt.Errorf("web server error: %w", srvErr)
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(appCtx.Ctx), shutdownTimeout)
	defer cancel()
	if err = srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("failed shutting down web server: %w", err)
	}
	<-srvDone

	return nil
}

func openDB(appCtx *actx.Context) (*db.DB, error) {
	path, err := db.MemoryPath()
	if err != nil {
		return nil, err //nolint:wrapcheck // Already descriptive.
	}

	d, err := db.Open(appCtx.Ctx, path, appCtx.TimeNow)
	if err != nil {
		return nil, aerrors.NewWithCause("failed opening ticket store", err)
	}

	if err = d.Init(appCtx.Version.Semantic, appCtx.Logger); err != nil {
		_ = d.Close()
		return nil, aerrors.NewWithCause("failed initializing ticket store", err)
	}

	version, createdAt, err := queries.StoreInfo(d.NewContext(), d)
	if err != nil {
		_ = d.Close()
		return nil, err //nolint:wrapcheck // Already descriptive.
	}
	appCtx.Logger.Debug("ticket store ready", "version", version, "created_at", createdAt)

	return d, nil
}
