package async

import (
	"context"
	"log/slog"
)

// SyncQueue runs the job inline in the caller's request. This mirrors
// the one-request-one-file execution model: no background worker, the
// caller observes the final status directly.
type SyncQueue struct {
	proc   Processor
	logger *slog.Logger
}

func NewSyncQueue(proc Processor, logger *slog.Logger) *SyncQueue {
	if logger == nil {
		logger = slog.Default()
	}
	return &SyncQueue{proc: proc, logger: logger}
}

func (q *SyncQueue) Enqueue(ctx context.Context, job Job) error {
	q.logger.Info("processing file inline", "file_id", job.FileID)
	return q.proc.ProcessFile(ctx, job.FileID)
}

func (q *SyncQueue) Shutdown(context.Context) {}
