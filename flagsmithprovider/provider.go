// Package flagsmithprovider implements feature.Provider on top of the
// Flagsmith Go SDK.
//
// Server-side environment keys (prefixed "ser.") select local evaluation:
// the SDK keeps the environment document in memory and refreshes it in the
// background. Any other key selects remote evaluation against the flags and
// identities endpoints.
package flagsmithprovider

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	flagsmith "github.com/Flagsmith/flagsmith-go-client/v4"
	"github.com/google/uuid"

	feature "github.com/Flagsmith/flagsmith-go-feature"
)

const (
	// DefaultRefreshInterval is how often a locally evaluating connection
	// refreshes its environment document.
	DefaultRefreshInterval = 60 * time.Second

	// DefaultRequestTimeout bounds every request made to the API.
	DefaultRequestTimeout = 10 * time.Second

	serverKeyPrefix = "ser."
	eventBufferSize = 64
)

// Provider opens Flagsmith backed connections.
type Provider struct {
	log             *slog.Logger
	refreshInterval time.Duration
	requestTimeout  time.Duration
}

// New returns a Provider configured by options.
func New(options ...Option) *Provider {
	p := &Provider{
		log:             slog.Default(),
		refreshInterval: DefaultRefreshInterval,
		requestTimeout:  DefaultRequestTimeout,
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

var _ feature.Provider = (*Provider)(nil)

// Connect creates an SDK client for opts.Authorization as the environment
// key and blocks until the API has answered once. Locally evaluating
// connections fetch the environment document; remote ones probe the flags
// endpoint.
func (p *Provider) Connect(ctx context.Context, opts feature.ConnectOptions) (feature.Connection, error) {
	baseURL := normalizeBaseURL(opts.URL)
	instanceID := uuid.NewString()
	local := strings.HasPrefix(opts.Authorization, serverKeyPrefix)

	log := p.log.With(
		slog.String("provider", "flagsmith"),
		slog.String("app", opts.AppName),
		slog.String("environment", opts.Environment),
		slog.String("instance", instanceID),
	)

	headers := map[string]string{
		"Authorization":      opts.Authorization,
		"X-Application-Name": opts.AppName,
		"X-Environment":      opts.Environment,
		"X-Instance-Id":      instanceID,
	}

	bus := newEventBus(eventBufferSize)
	sdkLog := slog.New(newEventHandler(log.Handler(), bus))

	// The SDK's background workers outlive the Connect call.
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))

	clientOpts := []flagsmith.Option{
		flagsmith.WithBaseURL(baseURL),
		flagsmith.WithRequestTimeout(p.requestTimeout),
		flagsmith.WithCustomHeaders(headers),
		flagsmith.WithSlogLogger(sdkLog),
		flagsmith.WithErrorHandler(func(apiErr *flagsmith.FlagsmithAPIError) {
			bus.publish(feature.EventError, &APIError{
				StatusCode: apiErr.ResponseStatusCode,
				Status:     apiErr.ResponseStatus,
				Err:        apiErr.Err,
			})
		}),
	}
	if local {
		clientOpts = append(clientOpts,
			flagsmith.WithLocalEvaluation(runCtx),
			flagsmith.WithEnvironmentRefreshInterval(p.refreshInterval),
		)
	}

	log.Debug("connecting", "url", baseURL, "local_evaluation", local)
	client := flagsmith.NewClient(opts.Authorization, clientOpts...)

	var err error
	if local {
		err = client.UpdateEnvironment(ctx)
	} else {
		err = p.probe(ctx, baseURL, opts.Authorization, headers, log)
	}
	if err != nil {
		cancel()
		bus.close()
		return nil, fmt.Errorf("flagsmithprovider: %w", err)
	}

	log.Info("connected")
	return &connection{
		client:      client,
		log:         log,
		bus:         bus,
		cancel:      cancel,
		environment: opts.Environment,
		local:       local,
	}, nil
}

func normalizeBaseURL(url string) string {
	return strings.TrimSuffix(url, "/") + "/"
}
