package flagsmithprovider

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	feature "github.com/Flagsmith/flagsmith-go-feature"
)

type event struct {
	kind feature.EventKind
	err  error
}

// eventBus delivers events to observers from a single background goroutine.
type eventBus struct {
	mu       sync.RWMutex
	handlers map[feature.EventKind][]func(error)

	events    chan event
	done      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once
}

func newEventBus(size int) *eventBus {
	b := &eventBus{
		handlers: make(map[feature.EventKind][]func(error)),
		events:   make(chan event, size),
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
	go b.run()
	return b
}

func (b *eventBus) on(kind feature.EventKind, handler func(error)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[kind] = append(b.handlers[kind], handler)
}

// publish queues an event. It reports false when the bus is closed or the
// queue is full, in which case the event is dropped.
func (b *eventBus) publish(kind feature.EventKind, err error) bool {
	select {
	case <-b.done:
		return false
	default:
	}
	select {
	case b.events <- event{kind: kind, err: err}:
		return true
	default:
		return false
	}
}

func (b *eventBus) run() {
	defer close(b.stopped)
	for {
		select {
		case <-b.done:
			return
		case ev := <-b.events:
			b.dispatch(ev)
		}
	}
}

func (b *eventBus) dispatch(ev event) {
	b.mu.RLock()
	handlers := b.handlers[ev.kind]
	b.mu.RUnlock()
	for _, h := range handlers {
		h(ev.err)
	}
}

// close stops the dispatcher and waits for it to exit. Queued events are
// discarded.
func (b *eventBus) close() {
	b.closeOnce.Do(func() {
		close(b.done)
	})
	<-b.stopped
}

// LogError is an SDK log record at warn level or above, surfaced as a
// provider event.
type LogError struct {
	Level   slog.Level
	Message string
	Attrs   []slog.Attr
}

func (e *LogError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Message)
	for _, a := range e.Attrs {
		fmt.Fprintf(&sb, " %s=%v", a.Key, a.Value)
	}
	return sb.String()
}

// eventHandler is a [slog.Handler] that turns warn and error records into
// events and passes everything below warn to next.
type eventHandler struct {
	next  slog.Handler
	bus   *eventBus
	attrs []slog.Attr
}

func newEventHandler(next slog.Handler, bus *eventBus) slog.Handler {
	return &eventHandler{next: next, bus: bus}
}

func (h *eventHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= slog.LevelWarn || h.next.Enabled(ctx, level)
}

func (h *eventHandler) Handle(ctx context.Context, rec slog.Record) error {
	if rec.Level < slog.LevelWarn {
		return h.next.Handle(ctx, rec)
	}

	attrs := make([]slog.Attr, 0, len(h.attrs)+rec.NumAttrs())
	attrs = append(attrs, h.attrs...)
	rec.Attrs(func(a slog.Attr) bool {
		attrs = append(attrs, a)
		return true
	})

	kind := feature.EventWarn
	if rec.Level >= slog.LevelError {
		kind = feature.EventError
	}
	h.bus.publish(kind, &LogError{Level: rec.Level, Message: rec.Message, Attrs: attrs})
	return nil
}

func (h *eventHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &eventHandler{next: h.next.WithAttrs(attrs), bus: h.bus, attrs: merged}
}

func (h *eventHandler) WithGroup(name string) slog.Handler {
	return &eventHandler{next: h.next.WithGroup(name), bus: h.bus, attrs: h.attrs}
}
