package contextutil

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const TraceIDKey contextKey = "traceID"

func TraceIDFromContext(ctx context.Context) string {
	traceID, ok := ctx.Value(TraceIDKey).(string)
	if !ok {
		return "unknown-trace-id"
	}
	return traceID
}

// WithTraceID attaches the given trace id, generating one when empty.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	if traceID == "" {
		traceID = uuid.New().String()
	}
	return context.WithValue(ctx, TraceIDKey, traceID)
}
