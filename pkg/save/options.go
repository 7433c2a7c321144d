// Package save holds the options for writing a catalog document.
package save

import (
	"io"
	"path/filepath"
	"strings"
)

// Format is a document encoding.
type Format int

// Format constants.
const (
	FormatJSON Format = iota
	FormatYAML
)

// IsValid checks if the format is valid.
func (f Format) IsValid() bool {
	switch f {
	case FormatJSON, FormatYAML:
		return true
	default:
		return false
	}
}

// String returns the string representation of the format.
func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatYAML:
		return "yaml"
	}
	return "unknown"
}

// FormatFromPath picks YAML for .yaml and .yml files, JSON otherwise.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

// Options is the configuration for save.
type Options struct {
	path      string
	writer    io.Writer
	format    Format
	formatSet bool
	indent    string
}

// Path returns the destination file, if any.
func (s *Options) Path() string {
	return s.path
}

// Writer returns the destination writer, if any.
func (s *Options) Writer() io.Writer {
	return s.writer
}

// Format returns the explicit format, or the one implied by Path.
func (s *Options) Format() Format {
	if !s.formatSet && s.path != "" {
		return FormatFromPath(s.path)
	}
	return s.format
}

// Indent returns the JSON indent string.
func (s *Options) Indent() string {
	return s.indent
}

// Defaults returns the default save options.
func Defaults() *Options {
	return &Options{
		format: FormatJSON,
		indent: "  ",
	}
}

// Apply applies the given options to the save options.
func (s *Options) Apply(opts ...Option) Options {
	for _, opt := range opts {
		opt(s)
	}
	return *s
}

// Option is a function that configures save options.
type Option func(*Options)

// WithFormat forces an output format regardless of the path extension.
func WithFormat(f Format) Option {
	return func(s *Options) {
		s.format = f
		s.formatSet = true
	}
}

// WithPath writes to a file, replacing it atomically.
func WithPath(path string) Option {
	return func(s *Options) {
		s.path = path
	}
}

// WithWriter writes to w instead of a file.
func WithWriter(w io.Writer) Option {
	return func(s *Options) {
		s.writer = w
	}
}

// WithIndent sets the JSON indent. Empty writes compact JSON.
func WithIndent(indent string) Option {
	return func(s *Options) {
		s.indent = indent
	}
}
