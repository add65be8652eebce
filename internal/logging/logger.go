// Package logging is the structured logger used by catalogctl. Components
// depend on Logger; SlogLogger is the only implementation.
package logging

import "context"

// Logger logs a message with key/value attributes:
//
//	log.Warn(ctx, "fetch products failed", "sort", spec.String(), "error", err)
//
// Tokens, passwords and session secrets are never passed as attributes.
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With returns a logger that adds args to every record, e.g. a
	// "component" attribute.
	With(args ...any) Logger
}
