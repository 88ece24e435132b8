package middleware

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/jaevor/go-nanoid"
	"github.com/serroba/attempt-limiter-go/internal/handlers"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

// RequestMeta is a middleware that adds client IP, user-agent and request id to the request context.
// Incoming X-Request-ID values are kept; otherwise an id is generated with newID.
// The id is echoed back in the response headers.
func RequestMeta(_ huma.API, newID func() string) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		requestID := ctx.Header(RequestIDHeader)
		if requestID == "" {
			requestID = newID()
		}

		meta := handlers.RequestMeta{
			ClientIP:  clientIP(ctx),
			UserAgent: ctx.Header("User-Agent"),
			RequestID: requestID,
		}

		ctx.SetHeader(RequestIDHeader, requestID)
		ctx = huma.WithContext(ctx, handlers.ContextWithRequestMeta(ctx.Context(), meta))

		next(ctx)
	}
}

// NewRequestIDGenerator returns a nanoid generator for request ids of the given length.
func NewRequestIDGenerator(length int) (func() string, error) {
	return nanoid.Standard(length)
}
