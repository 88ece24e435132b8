package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
	"github.com/serroba/attempt-limiter-go/internal/events"
	"github.com/serroba/attempt-limiter-go/internal/messaging"
	"github.com/serroba/attempt-limiter-go/internal/ratelimit"
	"go.uber.org/zap"
)

// keyPrefix namespaces caller keys so they never address the service's own counters.
const keyPrefix = "attempt:"

// AttemptHandler exposes the fixed window limiter over HTTP.
type AttemptHandler struct {
	limiter                *ratelimit.FixedWindowLimiter
	publishAttemptRecorded messaging.Publish[events.AttemptRecordedEvent]
	logger                 *zap.Logger
	counterTTL             int64
}

// NewAttemptHandler creates a new attempt handler.
//
// counterTTL is the lifetime in seconds of a stored counter, or 0 when counters
// never expire. Windows must end before their counters do, so a timeLimit of
// counterTTL or more is rejected.
func NewAttemptHandler(
	limiter *ratelimit.FixedWindowLimiter,
	publishAttemptRecorded messaging.Publish[events.AttemptRecordedEvent],
	logger *zap.Logger,
	counterTTL int64,
) *AttemptHandler {
	return &AttemptHandler{
		limiter:                limiter,
		publishAttemptRecorded: publishAttemptRecorded,
		logger:                 logger,
		counterTTL:             counterTTL,
	}
}

func (h *AttemptHandler) checkTimeLimit(timeLimit int64) error {
	if h.counterTTL > 0 && timeLimit >= h.counterTTL {
		return huma.Error422UnprocessableEntity(
			fmt.Sprintf("timeLimit must be below the counter lifetime of %d seconds", h.counterTTL))
	}

	return nil
}

// RecordAttempt records an attempt for the key. A rejected attempt is a
// successful call reporting allowed=false, not an HTTP error.
func (h *AttemptHandler) RecordAttempt(ctx context.Context, req *RecordAttemptRequest) (*RecordAttemptResponse, error) {
	countLimit, timeLimit := req.Body.CountLimit, req.Body.TimeLimit
	if err := h.checkTimeLimit(timeLimit); err != nil {
		return nil, err
	}

	key := keyPrefix + req.Key

	allowed, err := h.limiter.Attempt(ctx, key, countLimit, timeLimit)
	if err != nil {
		h.logger.Error("attempt failed", zap.String("key", req.Key), zap.Error(err))

		return nil, huma.Error500InternalServerError("failed to record attempt")
	}

	remaining, err := h.limiter.RemainingAttempts(ctx, key, countLimit, timeLimit)
	if err != nil {
		h.logger.Error("remaining attempts lookup failed", zap.String("key", req.Key), zap.Error(err))

		return nil, huma.Error500InternalServerError("failed to read remaining attempts")
	}

	meta := RequestMetaFromContext(ctx)
	event := &events.AttemptRecordedEvent{
		ID:         uuid.NewString(),
		Key:        req.Key,
		Allowed:    allowed,
		Remaining:  remaining,
		CountLimit: countLimit,
		TimeLimit:  timeLimit,
		RecordedAt: time.Now().UTC(),
		ClientIP:   meta.ClientIP,
		UserAgent:  meta.UserAgent,
		RequestID:  meta.RequestID,
	}

	if err := h.publishAttemptRecorded(ctx, event); err != nil {
		h.logger.Error("failed to publish attempt event",
			zap.String("key", event.Key),
			zap.Error(err),
		)
	}

	resp := &RecordAttemptResponse{}
	resp.Body.Key = req.Key
	resp.Body.Allowed = allowed
	resp.Body.Remaining = remaining

	return resp, nil
}

// GetRemaining reports the attempts left for the key without recording one.
func (h *AttemptHandler) GetRemaining(ctx context.Context, req *RemainingRequest) (*RemainingResponse, error) {
	if err := h.checkTimeLimit(req.TimeLimit); err != nil {
		return nil, err
	}

	remaining, err := h.limiter.RemainingAttempts(ctx, keyPrefix+req.Key, req.CountLimit, req.TimeLimit)
	if err != nil {
		h.logger.Error("remaining attempts lookup failed", zap.String("key", req.Key), zap.Error(err))

		return nil, huma.Error500InternalServerError("failed to read remaining attempts")
	}

	resp := &RemainingResponse{}
	resp.Body.Key = req.Key
	resp.Body.Remaining = remaining

	return resp, nil
}
