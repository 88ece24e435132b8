package handlers

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/attempt-limiter-go/internal/ratelimit"
)

// RegisterRoutes registers the attempt routes with per-endpoint rate limit configuration.
func RegisterRoutes(api huma.API, attemptHandler *AttemptHandler) {
	// POST /attempts/{key} - Record an attempt
	huma.Register(api, huma.Operation{
		OperationID: "record-attempt",
		Method:      http.MethodPost,
		Path:        "/attempts/{key}",
		Summary:     "Record attempt",
		Description: "Records an attempt against the key and reports whether it fits the fixed window.",
		Tags:        []string{"Attempts"},
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{Scope: ratelimit.ScopeWrite},
		},
	}, attemptHandler.RecordAttempt)

	// GET /attempts/{key} - Remaining attempts
	huma.Register(api, huma.Operation{
		OperationID: "get-remaining-attempts",
		Method:      http.MethodGet,
		Path:        "/attempts/{key}",
		Summary:     "Remaining attempts",
		Description: "Reports how many attempts are left for the key without recording one.",
		Tags:        []string{"Attempts"},
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{Scope: ratelimit.ScopeRead},
		},
	}, attemptHandler.GetRemaining)
}
