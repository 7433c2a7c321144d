package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetermineLogLevel(t *testing.T) {
	tests := []struct {
		name   string
		config *Config
		want   string
	}{
		{name: "default", config: &Config{}, want: "info"},
		{name: "verbose", config: &Config{Verbose: true}, want: "debug"},
		{name: "quiet", config: &Config{Quiet: true}, want: "warn"},
		{name: "both flags prefer quiet", config: &Config{Verbose: true, Quiet: true}, want: "warn"},
		{name: "explicit level beats verbose", config: &Config{LogLevel: "error", Verbose: true}, want: "error"},
		{name: "explicit level beats quiet", config: &Config{LogLevel: "trace", Quiet: true}, want: "trace"},
		{name: "invalid level falls back", config: &Config{LogLevel: "loud"}, want: "info"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, determineLogLevel(tt.config))
		})
	}
}

func TestNewLoggerLevel(t *testing.T) {
	logger := NewLogger(&Config{Quiet: true, LogOutput: "discard"})
	assert.Equal(t, "warn", logger.GetLevel().String())
}
