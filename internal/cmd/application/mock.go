package application

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/playmap"
)

// Mock is an Application for command tests. Nil function fields fall back
// to a default.
//
//	mock := &application.Mock{SettingsValue: &application.Settings{DataDir: dir}}
//	cmd := build.NewCommand(mock)
type Mock struct {
	ClientFunc    func(opts ...playmap.Option) (playmap.Client, error)
	SettingsValue *Settings
	LoggerValue   *zerolog.Logger
	Format        string
	VersionValue  string
}

// Client calls ClientFunc, or playmap.New.
func (m *Mock) Client(opts ...playmap.Option) (playmap.Client, error) {
	if m.ClientFunc != nil {
		return m.ClientFunc(opts...)
	}
	return playmap.New(opts...)
}

// Settings returns SettingsValue, or empty settings.
func (m *Mock) Settings() *Settings {
	if m.SettingsValue == nil {
		m.SettingsValue = &Settings{}
	}
	return m.SettingsValue
}

// Logger returns LoggerValue, or a no-op logger.
func (m *Mock) Logger() *zerolog.Logger {
	if m.LoggerValue == nil {
		l := zerolog.Nop()
		m.LoggerValue = &l
	}
	return m.LoggerValue
}

// OutputFormat returns Format.
func (m *Mock) OutputFormat() string { return m.Format }

// Version returns VersionValue, or "dev".
func (m *Mock) Version() string {
	if m.VersionValue == "" {
		return "dev"
	}
	return m.VersionValue
}

// Commit returns "none".
func (m *Mock) Commit() string { return "none" }

// Date returns "unknown".
func (m *Mock) Date() string { return "unknown" }

// BuiltBy returns "test".
func (m *Mock) BuiltBy() string { return "test" }

var _ Application = (*Mock)(nil)
