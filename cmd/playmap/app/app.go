// Package app wires configuration, logging and the catalog engine for the
// playmap CLI.
package app

import (
	"context"
	"io"
	"sync"

	"github.com/rs/zerolog"

	"github.com/agentstation/playmap"
	"github.com/agentstation/playmap/internal/cmd/application"
	"github.com/agentstation/playmap/pkg/errors"
)

// App holds the CLI's configuration, logger and the engines it created.
type App struct {
	version string
	commit  string
	date    string
	builtBy string

	config *Config
	logger *zerolog.Logger
	out    io.Writer

	mu      sync.Mutex
	clients []playmap.Client
}

// Option configures an App.
type Option func(*App) error

// WithConfig replaces the loaded configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		if config == nil {
			return &errors.ConfigError{Component: "app", Message: "config is nil"}
		}
		a.config = config
		logger := NewLogger(config)
		a.logger = &logger
		return nil
	}
}

// WithLogger replaces the configured logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = &logger
		return nil
	}
}

// WithOutput sends command output to w instead of stdout.
func WithOutput(w io.Writer) Option {
	return func(a *App) error {
		a.out = w
		return nil
	}
}

// New loads configuration and creates the app.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
	}

	config, err := LoadConfig()
	if err != nil {
		return nil, errors.WrapResource("load", "config", "", err)
	}
	app.config = config

	logger := NewLogger(config)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}
	return app, nil
}

// Version returns the version information.
func (a *App) Version() string { return a.version }

// Commit returns the git commit hash.
func (a *App) Commit() string { return a.commit }

// Date returns the build date.
func (a *App) Date() string { return a.date }

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string { return a.builtBy }

// Config returns the application configuration.
func (a *App) Config() *Config { return a.config }

// Settings returns the catalog settings.
func (a *App) Settings() *application.Settings { return &a.config.Settings }

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger { return a.logger }

// OutputFormat returns the --format value.
func (a *App) OutputFormat() string { return a.config.Format }

// Client creates an engine with the configured thresholds, then opts.
func (a *App) Client(opts ...playmap.Option) (playmap.Client, error) {
	base := []playmap.Option{
		playmap.WithFilter(a.config.Filter()),
		playmap.WithPopularity(a.config.Popularity()),
		playmap.WithGoodDealThreshold(a.config.GoodDealThreshold),
	}
	c, err := playmap.New(append(base, opts...)...)
	if err != nil {
		return nil, errors.WrapResource("create", "client", "", err)
	}

	a.mu.Lock()
	a.clients = append(a.clients, c)
	a.mu.Unlock()
	return c, nil
}

// Shutdown stops background rebuilds of every engine the app created.
func (a *App) Shutdown(_ context.Context) error {
	a.mu.Lock()
	clients := a.clients
	a.clients = nil
	a.mu.Unlock()

	for _, c := range clients {
		if err := c.AutoRebuildOff(); err != nil {
			a.logger.Error().Err(err).Msg("Failed to stop auto-rebuild during shutdown")
		}
	}
	return nil
}

var _ application.Application = (*App)(nil)
