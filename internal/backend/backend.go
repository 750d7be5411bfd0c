// Package backend provides the inference backend client
package backend

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/cmdai-tools/cmdai/internal/config"
)

// DefaultTimeout bounds a single outstanding query.
const DefaultTimeout = 60 * time.Second

// Client issues prompt requests to a configured inference backend. One
// query is a single request/response cycle; failures are terminal for that
// query and never retried.
type Client interface {
	// Name returns the backend type name.
	Name() string

	// Query sends the user text, framed by the configured prompt prefix,
	// and returns the generated suggestion. An empty or whitespace-only
	// response is a valid empty suggestion, not an error.
	Query(ctx context.Context, userText string) (string, error)

	// ListModels returns the model names the backend has available.
	ListModels(ctx context.Context) ([]string, error)
}

// Option configures a client.
type Option func(*options)

type options struct {
	timeout    time.Duration
	httpClient *http.Client
}

// WithTimeout overrides the default query timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithHTTPClient substitutes the underlying HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		if c != nil {
			o.httpClient = c
		}
	}
}

// New creates a client for the backend type named in the configuration.
// Only "ollama" is recognized in v1.
func New(cfg config.Config, opts ...Option) (Client, error) {
	o := options{
		timeout:    DefaultTimeout,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(&o)
	}

	switch cfg.BackendType {
	case config.BackendOllama:
		return newOllamaClient(cfg, o), nil
	default:
		return nil, fmt.Errorf("unknown backend type: %q", cfg.BackendType)
	}
}
