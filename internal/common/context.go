package common

import (
	"context"
	"time"
)

// Context keys for storing values in context
type contextKey string

const (
	ContextKeyRunID      contextKey = "run_id"
	ContextKeySourceFile contextKey = "source_file"
)

// WithRunID adds a run ID to the context
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, ContextKeyRunID, runID)
}

// RunIDFromContext extracts the run ID from context
func RunIDFromContext(ctx context.Context) string {
	if runID, ok := ctx.Value(ContextKeyRunID).(string); ok {
		return runID
	}
	return ""
}

// WithSourceFile tags the context with the document currently being processed.
func WithSourceFile(ctx context.Context, sourceFile string) context.Context {
	return context.WithValue(ctx, ContextKeySourceFile, sourceFile)
}

// SourceFileFromContext extracts the source file from context
func SourceFileFromContext(ctx context.Context) string {
	if sf, ok := ctx.Value(ContextKeySourceFile).(string); ok {
		return sf
	}
	return ""
}

// WithTimeout creates a context with the specified timeout. A non-positive timeout
// only adds cancellation.
func WithTimeout(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, timeout)
}
