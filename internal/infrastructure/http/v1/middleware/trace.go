package middleware

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	appctx "khaata/internal/core/context"
)

const (
	HeaderRequestID = "X-Request-ID"
	HeaderTraceID   = "X-Trace-ID"
)

var traceParent = propagation.TraceContext{}

// Trace joins the caller's W3C trace (traceparent header) when one is sent,
// so transaction spans become its children, and otherwise starts a new trace.
// Both ids are echoed in the response headers.
func Trace() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := traceParent.Extract(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))

		var traceID string
		if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
			traceID = sc.TraceID().String()
		}
		tc := appctx.NewTraceContext(traceID)
		if rid := c.GetHeader(HeaderRequestID); rid != "" {
			tc.RequestID = rid
		}

		c.Request = c.Request.WithContext(appctx.WithTrace(ctx, tc))
		c.Header(HeaderRequestID, tc.RequestID)
		c.Header(HeaderTraceID, tc.TraceID)

		c.Next()
	}
}
