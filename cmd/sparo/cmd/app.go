// Package cmd wires the sparo command line: configuration, logging, the
// terminal, telemetry, the argument engine and the dispatcher, plus the
// built-in commands.
package cmd

import (
	"context"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/msto63/sparo/internal/argv"
	"github.com/msto63/sparo/internal/command"
	"github.com/msto63/sparo/internal/telemetry"
	"github.com/msto63/sparo/internal/terminal"
	"github.com/msto63/sparo/pkg/core/config"
	sperrors "github.com/msto63/sparo/pkg/core/errors"
	"github.com/msto63/sparo/pkg/core/logging"
	"github.com/msto63/sparo/pkg/core/version"
)

const description = "Sparse checkout helper for large Git repositories"

// AppOptions overrides parts of the wiring, mainly for tests
type AppOptions struct {
	Out io.Writer
	Err io.Writer

	// Store replaces the SQLite telemetry store
	Store telemetry.Store

	// LogOutput receives diagnostic logs (default: stderr)
	LogOutput io.Writer
}

// App is a fully wired sparo command line
type App struct {
	Config     *config.Config
	Logger     *logrus.Entry
	Terminal   *terminal.Terminal
	Engine     *argv.Engine
	Dispatcher *command.Dispatcher

	store   telemetry.Store
	service *telemetry.Service
}

// NewApp builds the application from cfg and registers the built-in
// commands
func NewApp(cfg *config.Config, opts AppOptions) (*App, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Err == nil {
		opts.Err = os.Stderr
	}

	logger := logging.NewLogger(logging.LoggerConfig{
		ServiceName: cfg.General.Name,
		Level:       cfg.General.LogLevel,
		Format:      cfg.General.LogFormat,
		Output:      opts.LogOutput,
	})

	app := &App{
		Config: cfg,
		Logger: logger,
		Terminal: terminal.New(terminal.Options{
			Out:     opts.Out,
			Err:     opts.Err,
			Verbose: cfg.General.Verbose,
			Color:   cfg.Terminal.Color,
		}),
		store: opts.Store,
	}

	var collector command.Collector = telemetry.Nop{}
	if cfg.Telemetry.Enabled {
		if app.store == nil {
			store, err := telemetry.NewSQLiteStore(telemetry.SQLiteConfig{Path: cfg.Telemetry.StoragePath})
			if err != nil {
				return nil, err
			}
			app.store = store
		}
		app.service = telemetry.NewService(app.store, telemetry.ServiceConfig{
			BufferSize:    cfg.Telemetry.BufferSize,
			FlushInterval: cfg.FlushInterval(),
			Logger:        logger,
		})
		collector = app.service
	}

	app.Engine = argv.New(cfg.General.Name, description, version.String(), argv.WithOutput(opts.Out, opts.Err))
	app.Engine.OnFlags(argv.ApplyFlags(app.Terminal))

	app.Dispatcher = command.New(app.Engine, app.Terminal, collector, command.WithLogger(logger))
	app.registerBuiltins()

	logger.WithFields(logrus.Fields{
		"telemetry": cfg.Telemetry.Enabled,
		"commands":  app.Dispatcher.CommandInfos().Len(),
	}).Debug("application initialized")

	return app, nil
}

func (a *App) registerBuiltins() {
	a.Dispatcher.Register(commandsCommand(a.Dispatcher.CommandInfos(), a.Terminal))
	a.Dispatcher.Register(telemetryCommand(a.store, a.Dispatcher, a.Config.Retention()))
	a.Dispatcher.Register(configCommand(a.Config))
}

// Run executes one invocation
func (a *App) Run(ctx context.Context, args []string) command.InvocationResult {
	return a.Dispatcher.Run(ctx, args)
}

// Close flushes pending telemetry and closes the store. ctx bounds the
// final flush.
func (a *App) Close(ctx context.Context) error {
	var firstErr error
	if a.service != nil {
		if err := a.service.Close(ctx); err != nil {
			firstErr = sperrors.Wrap(err, "failed to flush telemetry").
				WithCode(sperrors.CodeInternal).
				WithOperation("App.Close")
		}
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil && firstErr == nil {
			firstErr = sperrors.Wrap(err, "failed to close telemetry store").
				WithCode(sperrors.CodeDatabaseError).
				WithOperation("App.Close")
		}
	}
	return firstErr
}
