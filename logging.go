package lorebase

import (
	"context"
	"log/slog"
)

// DiscardHandler is a slog.Handler that drops every record. Components that
// accept an optional logger default to it so that "no logger configured"
// never means nil checks at call sites.
type DiscardHandler struct{}

func (DiscardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (DiscardHandler) Handle(context.Context, slog.Record) error { return nil }
func (d DiscardHandler) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d DiscardHandler) WithGroup(string) slog.Handler           { return d }

// NopLogger returns a logger that discards all output.
func NopLogger() *slog.Logger {
	return slog.New(DiscardHandler{})
}
