package feature

import (
	"log/slog"
	"time"

	"github.com/Flagsmith/flagsmith-go-feature/ambient"
)

type Option func(e *Evaluator)

var _ = []Option{
	WithSlogLogger(nil),
	WithEnvironment(nil),
	WithAmbientStore(nil),
	WithClock(nil),
}

// WithSlogLogger sets the logger. A nil logger keeps the default.
func WithSlogLogger(logger *slog.Logger) Option {
	return func(e *Evaluator) {
		if logger != nil {
			e.log = logger
		}
	}
}

func WithEnvironment(env EnvironmentInfo) Option {
	return func(e *Evaluator) {
		if env != nil {
			e.env = env
		}
	}
}

func WithAmbientStore(store ambient.Store) Option {
	return func(e *Evaluator) {
		if store != nil {
			e.store = store
		}
	}
}

// WithClock replaces the clock used to stamp CurrentTime.
func WithClock(now func() time.Time) Option {
	return func(e *Evaluator) {
		if now != nil {
			e.now = now
		}
	}
}
