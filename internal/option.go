package internal

import "io"

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config *Config
	stdin  io.Reader
	stdout io.Writer
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithStdio sets the streams used by the stdio MCP transport.
func WithStdio(in io.Reader, out io.Writer) Option {
	return func(a *application) {
		a.stdin = in
		a.stdout = out
	}
}
