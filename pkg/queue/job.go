package queue

import "context"

// Job handles one message type pulled off the queue.
type Job interface {
	// Name identifies the job in logs.
	Name() string

	// Type is the message type the job consumes.
	Type() string

	// Handle processes one payload. A returned error schedules a retry.
	Handle(ctx context.Context, payload interface{}) error
}
