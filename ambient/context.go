// Package ambient carries per-request state that flag evaluation reads
// defaults from and records evaluated flags into.
//
// A request scope is opened with NewContext (or Middleware for HTTP
// servers). Every goroutine handling that request shares the scope through
// its context.Context; distinct requests never see each other's records.
package ambient

import (
	"context"
	"sync"

	"golang.org/x/exp/slices"
)

// LogData is log metadata collected while a request is handled.
type LogData struct {
	UserIdentifier string
	SessionType    string
	// FeatureFlags lists the flags that evaluated to true, in order.
	FeatureFlags []string
}

// Headers are request header values relevant to flag evaluation.
type Headers struct {
	PlatformType    string
	PlatformVersion string
	AppVersion      string
}

// Record is the ambient state of one logical request.
type Record struct {
	LogData LogData
	Headers Headers
}

func (r Record) clone() Record {
	r.LogData.FeatureFlags = slices.Clone(r.LogData.FeatureFlags)
	return r
}

// Store reads and writes the Record of the request ctx belongs to.
type Store interface {
	Get(ctx context.Context) (Record, bool)
	Set(ctx context.Context, rec Record)
}

// Updater is implemented by stores that can modify a record in place
// atomically. Update reports false when ctx has no record to modify.
type Updater interface {
	Update(ctx context.Context, fn func(rec *Record)) bool
}

type scopeCtxKey struct{}

type scope struct {
	mu  sync.Mutex
	rec Record
}

// NewContext opens a request scope initialised with rec.
func NewContext(ctx context.Context, rec Record) context.Context {
	return context.WithValue(ctx, scopeCtxKey{}, &scope{rec: rec.clone()})
}

func scopeFrom(ctx context.Context) *scope {
	if ctx == nil {
		return nil
	}
	s, _ := ctx.Value(scopeCtxKey{}).(*scope)
	return s
}

// ContextStore is a Store backed by the scope opened with NewContext.
type ContextStore struct{}

var (
	_ Store   = ContextStore{}
	_ Updater = ContextStore{}
)

// Get returns a copy of the scoped record. It reports false when ctx has
// no scope.
func (ContextStore) Get(ctx context.Context) (Record, bool) {
	s := scopeFrom(ctx)
	if s == nil {
		return Record{}, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rec.clone(), true
}

// Set replaces the scoped record. It does nothing when ctx has no scope.
func (ContextStore) Set(ctx context.Context, rec Record) {
	s := scopeFrom(ctx)
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rec = rec.clone()
}

// Update applies fn to the scoped record under the scope lock.
// It reports false when ctx has no scope.
func Update(ctx context.Context, fn func(rec *Record)) bool {
	s := scopeFrom(ctx)
	if s == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.rec)
	return true
}

// Update applies fn to the scoped record under the scope lock.
func (ContextStore) Update(ctx context.Context, fn func(rec *Record)) bool {
	return Update(ctx, fn)
}

// SetUser records the authenticated user for the current request.
func SetUser(ctx context.Context, userIdentifier, sessionType string) bool {
	return Update(ctx, func(rec *Record) {
		rec.LogData.UserIdentifier = userIdentifier
		rec.LogData.SessionType = sessionType
	})
}

// FeatureFlags returns the flags recorded as enabled for the current request.
func FeatureFlags(ctx context.Context) []string {
	rec, ok := ContextStore{}.Get(ctx)
	if !ok {
		return nil
	}
	return rec.LogData.FeatureFlags
}
