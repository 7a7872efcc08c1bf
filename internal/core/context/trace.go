package context

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// TraceContext identifies one API call. TraceID follows the W3C trace-context
// format (32 hex digits) so it matches the ids of the spans opened for the call.
type TraceContext struct {
	TraceID   string
	RequestID string
}

type traceContextKey struct{}

// WithTrace adds TraceContext to context.
func WithTrace(ctx context.Context, trace *TraceContext) context.Context {
	return context.WithValue(ctx, traceContextKey{}, trace)
}

// GetTrace returns TraceContext from context.
func GetTrace(ctx context.Context) *TraceContext {
	if v, ok := ctx.Value(traceContextKey{}).(*TraceContext); ok {
		return v
	}
	return nil
}

// GetRequestID returns request ID from context or empty string.
func GetRequestID(ctx context.Context) string {
	if t := GetTrace(ctx); t != nil {
		return t.RequestID
	}
	return ""
}

// GetTraceID returns trace ID from context or empty string.
func GetTraceID(ctx context.Context) string {
	if t := GetTrace(ctx); t != nil {
		return t.TraceID
	}
	return ""
}

// NewTraceContext starts a trace for a call. An empty traceID is generated;
// the request id is always new.
func NewTraceContext(traceID string) *TraceContext {
	if traceID == "" {
		traceID = strings.ReplaceAll(uuid.NewString(), "-", "")
	}
	return &TraceContext{
		TraceID:   traceID,
		RequestID: uuid.NewString(),
	}
}
