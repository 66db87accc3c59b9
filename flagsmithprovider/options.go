package flagsmithprovider

import (
	"log/slog"
	"time"
)

type Option func(p *Provider)

var _ = []Option{
	WithSlogLogger(nil),
	WithRefreshInterval(0),
	WithRequestTimeout(0),
}

// WithSlogLogger sets the logger used by the provider and the SDK.
func WithSlogLogger(logger *slog.Logger) Option {
	return func(p *Provider) {
		if logger != nil {
			p.log = logger
		}
	}
}

// WithRefreshInterval sets how often locally evaluating connections refresh
// the environment document. Non-positive values keep the default.
func WithRefreshInterval(interval time.Duration) Option {
	return func(p *Provider) {
		if interval > 0 {
			p.refreshInterval = interval
		}
	}
}

// WithRequestTimeout bounds every API request. Non-positive values keep the
// default.
func WithRequestTimeout(timeout time.Duration) Option {
	return func(p *Provider) {
		if timeout > 0 {
			p.requestTimeout = timeout
		}
	}
}
