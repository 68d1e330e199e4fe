package async

import (
	"context"
	"time"
)

// Job is one quote file waiting to be processed.
type Job struct {
	Path        string
	Force       bool // enqueue even if the path was seen recently
	SubmittedAt time.Time
	TraceID     string
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}
