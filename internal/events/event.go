package events

import "time"

// TopicAttemptRecorded is the topic attempt outcomes are published to.
const TopicAttemptRecorded = "attempt.recorded"

// AttemptRecordedEvent is emitted after an attempt has been checked against a limit.
type AttemptRecordedEvent struct {
	ID         string    `json:"id"`
	Key        string    `json:"key"`
	Allowed    bool      `json:"allowed"`
	Remaining  int64     `json:"remaining"`
	CountLimit int64     `json:"countLimit"`
	TimeLimit  int64     `json:"timeLimit"`
	RecordedAt time.Time `json:"recordedAt"`
	ClientIP   string    `json:"clientIp,omitempty"`
	UserAgent  string    `json:"userAgent,omitempty"`
	RequestID  string    `json:"requestId,omitempty"`
}
