package ingest

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/carbonlens/emissions-tracker/constants"
	"github.com/carbonlens/emissions-tracker/internal/async"
	"github.com/carbonlens/emissions-tracker/internal/pipeline"
)

// Syncer consumes watcher events and pushes each discovered file
// through the normal upload path with source cloud_sync.
type Syncer struct {
	Proc           *pipeline.Processor
	Queue          async.Queue
	OrganizationID uuid.UUID
	ProjectID      uuid.UUID
	Logger         *slog.Logger
}

// Run blocks until ctx is done or the watcher channel closes.
func (s *Syncer) Run(ctx context.Context, paths <-chan string) {
	log := s.Logger
	if log == nil {
		log = slog.Default()
	}
	for {
		select {
		case <-ctx.Done():
			return
		case path, ok := <-paths:
			if !ok {
				return
			}
			s.ingestOne(ctx, path, log)
		}
	}
}

func (s *Syncer) ingestOne(ctx context.Context, path string, log *slog.Logger) {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Error("cloudsync.read_failed", "path", path, "error", err)
		return
	}

	f, err := s.Proc.IngestUpload(ctx, s.OrganizationID, s.ProjectID, filepath.Base(path), data, constants.SourceCloudSync)
	if err != nil {
		log.Error("cloudsync.ingest_failed", "path", path, "error", err)
		return
	}
	log.Info("cloudsync.ingested", "path", path, "file_id", f.ID, "file_type", f.FileType)

	// Structured files wait for a human mapping; unstructured ones go
	// straight to extraction.
	if !constants.IsStructured(f.FileType) {
		if err := s.Queue.Enqueue(ctx, async.Job{FileID: f.ID, SubmittedAt: time.Now().UTC()}); err != nil {
			log.Error("cloudsync.enqueue_failed", "file_id", f.ID, "error", err)
		}
	}
}
