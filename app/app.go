package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mandelsoft/vfs/pkg/memoryfs"

	"go.hackfix.me/ticketd/app/config"
	actx "go.hackfix.me/ticketd/app/context"
	aerrors "go.hackfix.me/ticketd/app/errors"
	"go.hackfix.me/ticketd/cli"
)

// App is the application.
type App struct {
	name string
	ctx  *actx.Context
	cli  *cli.CLI
	// the logging level is set via the CLI, if the app was initialized with the
	// WithLogger option.
	logLevel *slog.LevelVar
}

// New initializes a new application. configFilePath is the default path of the
// configuration file, which can be overridden via the CLI.
func New(name, configFilePath string, opts ...Option) (*App, error) {
	version, err := actx.GetVersion()
	if err != nil {
		return nil, err //nolint:wrapcheck // Already descriptive.
	}

	defaultCtx := &actx.Context{
		Ctx:        context.Background(),
		FS:         memoryfs.New(),
		Logger:     slog.Default(),
		TimeSource: systemTime{},
		Version:    version,
	}
	app := &App{name: name, ctx: defaultCtx}

	for _, opt := range opts {
		opt(app)
	}

	ver := fmt.Sprintf("%s %s", app.name, app.ctx.Version.String())
	app.cli, err = cli.New(app.ctx, configFilePath, ver)
	if err != nil {
		return nil, err //nolint:wrapcheck // Already descriptive.
	}

	return app, nil
}

// Run initializes the application environment and starts execution of the
// application.
func (app *App) Run(args []string) error {
	if err := app.cli.Parse(args); err != nil {
		return err //nolint:wrapcheck // Already descriptive.
	}

	if app.logLevel != nil {
		app.logLevel.Set(app.cli.Log.Level)
		slog.SetLogLoggerLevel(app.cli.Log.Level)
	}

	if app.ctx.Config == nil {
		cfg := config.NewConfig(app.ctx.FS, app.cli.ConfigFile)
		if err := cfg.Load(); err != nil {
			return aerrors.NewWithCause("failed loading configuration", err,
				"path", app.cli.ConfigFile, "hint", "fix or remove the configuration file")
		}
		app.ctx.Config = cfg
	}
	app.ctx.Config.SetDefaults()
	app.cli.ApplyConfig(app.ctx.Config)

	app.ctx.Logger.Debug("running command", "command", app.cli.Command())

	return app.cli.Execute(app.ctx) //nolint:wrapcheck // Already descriptive.
}

type systemTime struct{}

var _ actx.TimeSource = systemTime{}

func (systemTime) Now() time.Time {
	return time.Now()
}
