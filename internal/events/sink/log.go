package sink

import (
	"context"

	"github.com/serroba/attempt-limiter-go/internal/events"
	"go.uber.org/zap"
)

// Log is an events.Sink that writes every event to the logger.
// Rejected attempts are logged at warn level.
type Log struct {
	logger *zap.Logger
}

// NewLog creates a new logging sink.
func NewLog(logger *zap.Logger) *Log {
	return &Log{logger: logger}
}

func (l *Log) SaveAttemptRecorded(_ context.Context, event *events.AttemptRecordedEvent) error {
	fields := []zap.Field{
		zap.String("id", event.ID),
		zap.String("key", event.Key),
		zap.Int64("remaining", event.Remaining),
		zap.Int64("countLimit", event.CountLimit),
		zap.Int64("timeLimit", event.TimeLimit),
		zap.Time("recordedAt", event.RecordedAt),
		zap.String("clientIp", event.ClientIP),
		zap.String("requestId", event.RequestID),
	}

	if !event.Allowed {
		l.logger.Warn("attempt rejected", fields...)

		return nil
	}

	l.logger.Info("attempt allowed", fields...)

	return nil
}

// Compile-time check.
var _ events.Sink = (*Log)(nil)
