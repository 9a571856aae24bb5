package platform

import (
	"io"
	"log/slog"
	"net/http"
)

// options holds the wiring overrides for an App.
type options struct {
	logger     *slog.Logger
	output     io.Writer
	httpClient *http.Client
}

// Option defines a functional option for configuring the App.
type Option func(*options)

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{
		logger:     nil,
		output:     nil,
		httpClient: nil,
	}
}

// WithLogger sets the diagnostic logger shared by every component.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithOutput redirects console notices (defaults to stdout).
func WithOutput(w io.Writer) Option {
	return func(o *options) {
		o.output = w
	}
}

// WithHTTPClient injects the client used by fetch-deps.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		o.httpClient = c
	}
}
