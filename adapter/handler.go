// Package adapter turns log/slog output into Offer calls on a Sender,
// making concrete the "logging-framework adapter that converts structured
// log events to encoded bytes" boundary.
//
// adapter depends on the core sender package's Offer contract; the core
// never depends on adapter or on log/slog beyond its own optional
// diagnostic logger.
package adapter

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
)

// Offerer is the subset of *appender.Sender the Handler needs. Defining it
// locally (rather than importing the appender package) keeps adapter
// testable against a fake and keeps the dependency one-directional.
type Offerer interface {
	Offer(ctx context.Context, line []byte) error
}

// Handler is a slog.Handler that renders each record as a single JSON line
// (reusing slog.JSONHandler as the rendering engine) and forwards it to a
// Sender, with the trailing newline JSONHandler writes stripped before
// Offer is called.
type Handler struct {
	sender Offerer
	rh     slog.Handler
	buf    *syncBuffer
}

// New builds a Handler that offers rendered records to sender. opts
// configures the underlying slog.JSONHandler (level, AddSource, etc.); pass
// nil for defaults.
func New(sender Offerer, opts *slog.HandlerOptions) *Handler {
	buf := &syncBuffer{}
	return &Handler{
		sender: sender,
		rh:     slog.NewJSONHandler(buf, opts),
		buf:    buf,
	}
}

// Enabled delegates to the underlying JSON handler.
func (h *Handler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.rh.Enabled(ctx, level)
}

// Handle renders record as a JSON line and offers it to the sender.
func (h *Handler) Handle(ctx context.Context, record slog.Record) error {
	h.buf.mu.Lock()
	defer h.buf.mu.Unlock()

	h.buf.buf.Reset()
	if err := h.rh.Handle(ctx, record); err != nil {
		return err
	}

	line := bytes.TrimRight(h.buf.buf.Bytes(), "\n")
	if len(line) == 0 {
		return nil
	}
	// The buffer is reused on the next Handle call, so Offer needs its own copy.
	return h.sender.Offer(ctx, append([]byte(nil), line...))
}

// WithAttrs returns a new Handler sharing this one's sender, with attrs
// applied to the underlying JSON handler.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &Handler{sender: h.sender, rh: h.rh.WithAttrs(attrs), buf: h.buf}
}

// WithGroup returns a new Handler sharing this one's sender, grouped under name.
func (h *Handler) WithGroup(name string) slog.Handler {
	return &Handler{sender: h.sender, rh: h.rh.WithGroup(name), buf: h.buf}
}

// syncBuffer lets concurrent slog callers share one Handler safely: Handle
// holds mu for the render-then-offer sequence since slog.JSONHandler writes
// into buf synchronously within Handle.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

// Write satisfies io.Writer for the underlying slog.JSONHandler. Callers
// must hold mu (Handle does).
func (b *syncBuffer) Write(p []byte) (int, error) {
	return b.buf.Write(p)
}
