package async

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Job is one queued compliance check.
type Job struct {
	ContractID  uuid.UUID
	Force       bool // enqueue even if the upload deduplicated
	SubmittedAt time.Time
	TraceID     string
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}
