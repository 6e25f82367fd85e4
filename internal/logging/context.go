package logging

import (
	"context"
	"log/slog"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldCorrelationID carries the run id of one reconciliation.
	FieldCorrelationID = "correlation_id"
	// FieldKey is the dotted parameter name being reconciled.
	FieldKey = "key"
	// FieldPhase names the reconciliation phase (before, merge, commit, reload, after).
	FieldPhase = "phase"
	// FieldConfigFile is the sysctl file being rewritten.
	FieldConfigFile = "config_file"
	FieldEventType  = "event_type"
	FieldErrorHint  = "error_hint"
)

type runIDKey struct{}

// WithRunID stores the reconciliation run id on ctx.
func WithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runIDKey{}, id)
}

// RunIDFromContext returns the run id stored by WithRunID.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	id, ok := ctx.Value(runIDKey{}).(string)
	return id, ok && id != ""
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	if id, ok := RunIDFromContext(ctx); ok {
		return logger.With(String(FieldCorrelationID, id))
	}
	return logger
}
