// Package pipeline drives imports end to end: upload registration,
// the AI extraction path for unstructured files, and the mapped bulk
// import path for structured files. One sequential pass per file.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/carbonlens/emissions-tracker/constants"
	"github.com/carbonlens/emissions-tracker/internal/entity"
	"github.com/carbonlens/emissions-tracker/internal/llm"
	"github.com/carbonlens/emissions-tracker/internal/matcher"
	"github.com/carbonlens/emissions-tracker/internal/repository"
	"github.com/carbonlens/emissions-tracker/internal/storage"
)

// Processor owns the import flow for one file at a time.
type Processor struct {
	Logger    *slog.Logger
	Files     repository.UploadedFileRepository
	Materials repository.MaterialRepository
	Records   repository.EmissionRecordRepository
	Sessions  repository.ImportSessionRepository
	Blobs     storage.BlobStore
	Extractor llm.Extractor
}

func NewProcessor(
	logger *slog.Logger,
	files repository.UploadedFileRepository,
	materials repository.MaterialRepository,
	records repository.EmissionRecordRepository,
	sessions repository.ImportSessionRepository,
	blobs storage.BlobStore,
	extractor llm.Extractor,
) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		Logger:    logger,
		Files:     files,
		Materials: materials,
		Records:   records,
		Sessions:  sessions,
		Blobs:     blobs,
		Extractor: extractor,
	}
}

// IngestUpload stores the blob, registers the file row and returns it.
// Structured kinds wait in needs_review for a mapping submission;
// unstructured kinds start out pending and are enqueued by the caller.
func (p *Processor) IngestUpload(ctx context.Context, orgID, projectID uuid.UUID, filename string, data []byte, source constants.UploadSource) (*entity.UploadedFile, error) {
	fileType := constants.DetectFileType(filename)
	id := uuid.New()

	status := constants.StatusPending
	if constants.IsStructured(fileType) {
		status = constants.StatusNeedsReview
	}

	f := &entity.UploadedFile{
		ID:             id,
		OrganizationID: orgID,
		ProjectID:      projectID,
		Filename:       filename,
		FileType:       fileType,
		FileSize:       len(data),
		StoragePath:    fmt.Sprintf("%s/%s/%s", orgID, id, filename),
		ContentHash:    storage.HashBytes(data),
		Source:         source,
		Status:         status,
		UploadedAt:     time.Now().UTC(),
	}

	if err := p.Blobs.Upload(ctx, f.StoragePath, data, contentTypeFor(fileType)); err != nil {
		return nil, fmt.Errorf("store upload: %w", err)
	}
	if err := p.Files.Create(ctx, f); err != nil {
		return nil, err
	}

	p.Logger.Info("upload.registered",
		"file_id", f.ID, "filename", filename, "file_type", fileType,
		"bytes", len(data), "source", source, "status", status,
	)
	return f, nil
}

func contentTypeFor(t constants.FileType) string {
	switch t {
	case constants.FileTypeCSV:
		return "text/csv"
	case constants.FileTypeExcel:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case constants.FileTypeJSON:
		return "application/json"
	case constants.FileTypePDF:
		return "application/pdf"
	case constants.FileTypeImage:
		return "image/*"
	default:
		return "text/plain"
	}
}

// loadIndex reads the material library into an in-memory matcher index.
func (p *Processor) loadIndex(ctx context.Context) (*matcher.Index, error) {
	entries, err := p.Materials.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load material library: %w", err)
	}
	return matcher.NewIndex(entries), nil
}
