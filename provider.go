package feature

import "context"

// EventKind names an asynchronous event reported by a provider connection.
type EventKind string

const (
	EventWarn  EventKind = "warn"
	EventError EventKind = "error"
)

// ConnectOptions are the parameters a Provider needs to open a connection.
type ConnectOptions struct {
	URL string
	// AppName identifies the calling service to the provider.
	AppName string
	// Authorization is sent as the Authorization header.
	Authorization string
	// Environment is either "production" or "development".
	Environment string
}

// Definition is the raw metadata a provider holds for a flag.
type Definition struct {
	ID      int
	Name    string
	Enabled bool
	Value   any
}

// Provider opens connections to a remote feature flag service.
type Provider interface {
	// Connect blocks until the connection is usable or fails.
	Connect(ctx context.Context, opts ConnectOptions) (Connection, error)
}

// Connection is a live provider client. Flag decisions are made against
// definitions the connection keeps in sync on its own.
type Connection interface {
	// On registers an observer for warn or error events. Observers are
	// invoked asynchronously and must not block for long.
	On(kind EventKind, handler func(err error))
	IsEnabled(ctx context.Context, name string, ec EvaluationContext) bool
	GetDefinition(ctx context.Context, name string) (Definition, bool)
	Close() error
}
