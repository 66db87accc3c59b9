// Package featuretest provides an in-memory feature.Provider that records
// what it is asked, for tests of code that evaluates feature flags.
package featuretest

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/exp/slices"

	feature "github.com/Flagsmith/flagsmith-go-feature"
)

// ErrClosed is returned by Close on a connection that is already closed.
var ErrClosed = errors.New("featuretest: connection closed")

// Check is one IsEnabled call seen by a Connection.
type Check struct {
	Name    string
	Context feature.EvaluationContext
}

// Provider hands out a single shared Connection.
type Provider struct {
	// ConnectErr, when set, makes Connect fail.
	ConnectErr error

	mu       sync.Mutex
	connects []feature.ConnectOptions
	conn     *Connection
}

// NewProvider returns a Provider whose connection enables the given flags
// for every context.
func NewProvider(enabled ...string) *Provider {
	conn := NewConnection()
	for _, name := range enabled {
		conn.SetFlag(feature.Definition{Name: name, Enabled: true})
	}
	return &Provider{conn: conn}
}

var _ feature.Provider = (*Provider)(nil)

func (p *Provider) Connect(ctx context.Context, opts feature.ConnectOptions) (feature.Connection, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.connects = append(p.connects, opts)
	if p.ConnectErr != nil {
		return nil, p.ConnectErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return p.conn, nil
}

// Connects returns the options of every Connect call so far.
func (p *Provider) Connects() []feature.ConnectOptions {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]feature.ConnectOptions(nil), p.connects...)
}

// Connection returns the connection handed out by Connect.
func (p *Provider) Connection() *Connection {
	return p.conn
}

// Connection is an in-memory feature.Connection.
type Connection struct {
	// Decide, when set, overrides the stored definitions for IsEnabled.
	Decide func(name string, ec feature.EvaluationContext) bool

	mu       sync.Mutex
	flags    map[string]feature.Definition
	checks   []Check
	handlers map[feature.EventKind][]func(error)
	closed   bool
}

func NewConnection() *Connection {
	return &Connection{
		flags:    make(map[string]feature.Definition),
		handlers: make(map[feature.EventKind][]func(error)),
	}
}

var _ feature.Connection = (*Connection)(nil)

// SetFlag stores a definition, replacing any with the same name.
func (c *Connection) SetFlag(def feature.Definition) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.flags[def.Name] = def
}

func (c *Connection) On(kind feature.EventKind, handler func(err error)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[kind] = append(c.handlers[kind], handler)
}

// Emit invokes the observers registered for kind synchronously.
func (c *Connection) Emit(kind feature.EventKind, err error) {
	c.mu.Lock()
	handlers := slices.Clone(c.handlers[kind])
	c.mu.Unlock()
	for _, h := range handlers {
		h(err)
	}
}

// Handlers returns how many observers are registered for kind.
func (c *Connection) Handlers(kind feature.EventKind) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.handlers[kind])
}

func (c *Connection) IsEnabled(_ context.Context, name string, ec feature.EvaluationContext) bool {
	c.mu.Lock()
	c.checks = append(c.checks, Check{Name: name, Context: ec})
	decide := c.Decide
	def, ok := c.flags[name]
	c.mu.Unlock()

	if decide != nil {
		return decide(name, ec)
	}
	return ok && def.Enabled
}

// Checks returns every IsEnabled call so far.
func (c *Connection) Checks() []Check {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Check(nil), c.checks...)
}

func (c *Connection) GetDefinition(_ context.Context, name string) (feature.Definition, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	def, ok := c.flags[name]
	return def, ok
}

func (c *Connection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	c.closed = true
	return nil
}

// Closed reports whether Close has been called.
func (c *Connection) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}
