package events

import "context"

// Sink persists or forwards consumed attempt events.
type Sink interface {
	SaveAttemptRecorded(ctx context.Context, event *AttemptRecordedEvent) error
}
