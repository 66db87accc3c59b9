// Package feature evaluates feature flags for application code.
//
// An Evaluator wraps a remote flag provider connection. Every check reads the
// per-request ambient record (see package ambient) for defaults, normalizes
// platform and app versions, and delegates the decision to the provider.
// Flags that evaluate to true are recorded back into the ambient record so
// request logs can show which features were active.
package feature

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Flagsmith/flagsmith-go-feature/ambient"
)

// Evaluator checks feature flags on behalf of one service.
type Evaluator struct {
	serviceName string
	config      Config
	provider    Provider

	log   *slog.Logger
	env   EnvironmentInfo
	store ambient.Store
	now   func() time.Time

	// initMu serializes Init; mu guards conn.
	initMu sync.Mutex
	mu     sync.RWMutex
	conn   Connection
}

// New creates an Evaluator. Init must be called before flags are evaluated.
func New(serviceName string, config Config, provider Provider, options ...Option) *Evaluator {
	e := &Evaluator{
		serviceName: serviceName,
		config:      config,
		provider:    provider,
		log:         slog.Default(),
		env:         Development,
		store:       ambient.ContextStore{},
		now:         time.Now,
	}
	for _, opt := range options {
		opt(e)
	}
	e.log = e.log.With(slog.String("service", serviceName))
	return e
}

// Init connects to the flag provider. With flags disabled it only logs and
// returns nil; every later check then returns false.
//
// A connection failure is returned as a *ConnectError and leaves the
// Evaluator unconnected, so Init may be called again. Once connected,
// further calls do nothing.
func (e *Evaluator) Init(ctx context.Context) error {
	if !e.config.Enabled {
		e.log.Info("feature flags are disabled, all feature flags are set to false")
		return nil
	}

	e.initMu.Lock()
	defer e.initMu.Unlock()
	if e.connection() != nil {
		return nil
	}

	if err := e.config.Validate(); err != nil {
		return err
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultConnectTimeout)
		defer cancel()
	}

	conn, err := e.provider.Connect(ctx, ConnectOptions{
		URL:           e.config.URL,
		AppName:       e.serviceName,
		Authorization: e.config.APIToken,
		Environment:   environmentTag(e.env),
	})
	if err != nil {
		return &ConnectError{URL: e.config.URL, Err: err}
	}

	conn.On(EventWarn, func(err error) {
		e.log.Warn("feature flag provider warning", "error", err)
	})
	conn.On(EventError, func(err error) {
		e.log.Error("feature flag provider error", "error", err)
	})

	e.mu.Lock()
	e.conn = conn
	e.mu.Unlock()
	e.log.Info("feature flag provider has started")
	return nil
}

func (e *Evaluator) connection() Connection {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.conn
}

// IsEnabled reports whether the named flag is on for ec enriched with the
// ambient state of ctx. ec is not modified.
func (e *Evaluator) IsEnabled(ctx context.Context, name string, ec EvaluationContext) bool {
	if !e.config.Enabled {
		e.log.Warn("feature flags are disabled", "name", name)
		return false
	}

	conn := e.connection()
	if conn == nil {
		e.log.Warn("feature flag provider is not connected", "name", name)
		return false
	}

	enriched := e.enrich(ctx, ec, e.now())
	e.log.Debug("feature flag check", "name", name, "context", enriched)

	enabled := conn.IsEnabled(ctx, name, enriched)
	if enabled {
		e.recordEnabled(ctx, name)
	}
	return enabled
}

// recordEnabled appends name to the flags the current request saw enabled.
// Stores that implement ambient.Updater are modified atomically.
func (e *Evaluator) recordEnabled(ctx context.Context, name string) {
	appendName := func(rec *ambient.Record) {
		rec.LogData.FeatureFlags = append(rec.LogData.FeatureFlags, name)
	}
	if u, ok := e.store.(ambient.Updater); ok && u.Update(ctx, appendName) {
		return
	}
	rec, _ := e.store.Get(ctx)
	appendName(&rec)
	e.store.Set(ctx, rec)
}

// IsSomeEnabled reports whether the flag is on for at least one of the
// contexts. Contexts are checked in order and checking stops at the first
// match.
func (e *Evaluator) IsSomeEnabled(ctx context.Context, name string, contexts ...EvaluationContext) bool {
	for _, ec := range contexts {
		if e.IsEnabled(ctx, name, ec) {
			return true
		}
	}
	return false
}

// GetDefinition returns the provider's definition of the named flag.
// It reports false when flags are disabled, the provider is not connected,
// or the provider does not know the flag.
func (e *Evaluator) GetDefinition(ctx context.Context, name string) (Definition, bool) {
	if !e.config.Enabled {
		return Definition{}, false
	}
	conn := e.connection()
	if conn == nil {
		return Definition{}, false
	}
	return conn.GetDefinition(ctx, name)
}

// Close releases the provider connection. It is safe to call more than once.
func (e *Evaluator) Close() error {
	e.mu.Lock()
	conn := e.conn
	e.conn = nil
	e.mu.Unlock()

	if conn == nil {
		return nil
	}
	return conn.Close()
}
