package middleware

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/attempt-limiter-go/internal/ratelimit"
	"go.uber.org/zap"
)

// RemainingHeader reports the smallest remaining budget across the limits that applied.
const RemainingHeader = "X-RateLimit-Remaining"

// PolicyRateLimiter returns a Huma middleware that applies policy-based rate limiting.
// It uses a ScopeResolver to determine which scopes apply to each request,
// then checks all applicable limits from the policy.
//
// Per-endpoint configuration can be provided via operation metadata using
// ratelimit.MetadataKey. This allows endpoints to:
//   - Disable rate limiting entirely (Disabled: true)
//   - Override the scope detection (Scope: ratelimit.ScopeRead)
//   - Define custom limits (Limits: []ratelimit.LimitConfig{...})
func PolicyRateLimiter(
	api huma.API,
	limiter *ratelimit.PolicyLimiter,
	resolver ratelimit.ScopeResolver,
	logger *zap.Logger,
) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		path := operationPath(ctx)
		key := clientKey(ctx)

		cfg := ratelimit.GetEndpointConfig(ctx)
		if cfg != nil && cfg.Disabled {
			logger.Debug("rate limiting disabled for endpoint",
				zap.String("path", path), zap.String("method", ctx.Method()))
			next(ctx)

			return
		}

		if cfg != nil && len(cfg.Limits) > 0 {
			allowed, exceeded, err := limiter.AllowCustom(ctx.Context(), key, path, cfg.Limits)
			if !checkResult(api, ctx, allowed, exceeded, err, path, logger) {
				return
			}

			remaining, ok, err := limiter.RemainingCustom(ctx.Context(), key, path, cfg.Limits)
			setRemaining(ctx, remaining, ok, err, path, logger)
			next(ctx)

			return
		}

		scopes := resolver.Resolve(ctx)

		allowed, exceeded, err := limiter.Allow(ctx.Context(), key, scopes)
		if !checkResult(api, ctx, allowed, exceeded, err, path, logger) {
			return
		}

		remaining, ok, err := limiter.Remaining(ctx.Context(), key, scopes)
		setRemaining(ctx, remaining, ok, err, path, logger)
		next(ctx)
	}
}

// setRemaining reports the remaining budget of an allowed request. A failed
// lookup is logged and leaves the header unset.
func setRemaining(ctx huma.Context, remaining int64, ok bool, err error, path string, logger *zap.Logger) {
	if err != nil {
		logger.Warn("remaining attempts lookup failed", zap.String("path", path), zap.Error(err))

		return
	}

	if ok {
		ctx.SetHeader(RemainingHeader, strconv.FormatInt(max(remaining, 0), 10))
	}
}

// operationPath extracts the route template from the operation, if available.
// Custom limits are keyed by this template, so all requests matching the same
// route share counters per client.
func operationPath(ctx huma.Context) string {
	if op := ctx.Operation(); op != nil {
		return op.Path
	}

	return ""
}

// checkResult writes the error response for a failed or rejected check.
// Returns true if the request may proceed.
func checkResult(
	api huma.API,
	ctx huma.Context,
	allowed bool,
	exceeded *ratelimit.LimitExceeded,
	err error,
	path string,
	logger *zap.Logger,
) bool {
	if err != nil {
		logger.Error("rate limit check failed", zap.String("path", path), zap.Error(err))
		_ = huma.WriteErr(api, ctx, http.StatusInternalServerError, "internal server error", err)

		return false
	}

	if allowed {
		return true
	}

	msg := "rate limit exceeded"
	if exceeded != nil {
		msg = fmt.Sprintf("rate limit exceeded: %d requests per %s", exceeded.Config.Max+1, exceeded.Config.Window)
		if exceeded.Scope != "" {
			msg = fmt.Sprintf("rate limit exceeded: %s scope, %d requests per %s",
				exceeded.Scope, exceeded.Config.Max+1, exceeded.Config.Window)
		}

		logger.Warn("rate limit exceeded",
			zap.String("path", path),
			zap.String("method", ctx.Method()),
			zap.String("scope", string(exceeded.Scope)),
			zap.Int64("max", exceeded.Config.Max),
			zap.Int64("remaining", exceeded.Remaining),
			zap.Duration("window", exceeded.Config.Window),
			zap.String("client_ip", clientIP(ctx)),
		)
	}

	ctx.SetHeader(RemainingHeader, "0")
	_ = huma.WriteErr(api, ctx, http.StatusTooManyRequests, msg)

	return false
}
