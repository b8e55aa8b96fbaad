package async

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Job is the smallest useful unit. Extend as needed later (trace, retry, etc).
type Job struct {
	FileID      uuid.UUID
	SubmittedAt time.Time
}

// Processor is what a queue drains into.
type Processor interface {
	ProcessFile(ctx context.Context, fileID uuid.UUID) error
}

// Queue is the seam between upload handling and pipeline execution.
// The default implementation is synchronous; a worker-pool variant can
// be substituted without touching pipeline logic.
type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}
