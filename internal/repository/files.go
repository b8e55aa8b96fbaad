package repository

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carbonlens/emissions-tracker/constants"
	"github.com/carbonlens/emissions-tracker/internal/common"
	"github.com/carbonlens/emissions-tracker/internal/entity"
)

type UploadedFileRepository interface {
	Create(ctx context.Context, f *entity.UploadedFile) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.UploadedFile, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status constants.ProcessingStatus) error
	FinishWithCounts(ctx context.Context, id uuid.UUID, status constants.ProcessingStatus, counts entity.ImportCounts) error
}

type uploadedFileRepo struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewUploadedFileRepository(pool *pgxpool.Pool, logger *slog.Logger) UploadedFileRepository {
	return &uploadedFileRepo{pool: pool, logger: logger}
}

func (r *uploadedFileRepo) Create(ctx context.Context, f *entity.UploadedFile) error {
	const q = `
		INSERT INTO uploaded_files
			(id, organization_id, project_id, filename, file_type, file_size,
			 storage_path, content_hash, source, status, uploaded_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`
	_, err := r.pool.Exec(ctx, q,
		f.ID, f.OrganizationID, f.ProjectID, f.Filename, string(f.FileType), f.FileSize,
		f.StoragePath, f.ContentHash, string(f.Source), string(f.Status), f.UploadedAt)
	if err != nil {
		r.logger.Error("failed to create uploaded file", "file_id", f.ID, "filename", f.Filename, "error", err)
		return common.WrapError(err, "create uploaded file")
	}
	return nil
}

func (r *uploadedFileRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.UploadedFile, error) {
	const q = `
		SELECT id, organization_id, project_id, filename, file_type, file_size,
		       storage_path, content_hash, source, status,
		       record_count, matched_count, ai_processed_count, needs_review_count, uploaded_at
		FROM uploaded_files WHERE id = $1`
	var f entity.UploadedFile
	var fileType, source, status string
	err := r.pool.QueryRow(ctx, q, id).Scan(
		&f.ID, &f.OrganizationID, &f.ProjectID, &f.Filename, &fileType, &f.FileSize,
		&f.StoragePath, &f.ContentHash, &source, &status,
		&f.RecordCount, &f.MatchedCount, &f.AIProcessed, &f.NeedsReview, &f.UploadedAt)
	if err == pgx.ErrNoRows {
		return nil, common.NewAppError("FILE_NOT_FOUND", "uploaded file not found", common.ErrNotFound)
	}
	if err != nil {
		r.logger.Error("failed to get uploaded file", "file_id", id, "error", err)
		return nil, common.WrapError(err, "get uploaded file")
	}
	f.FileType = constants.FileType(fileType)
	f.Source = constants.UploadSource(source)
	f.Status = constants.ProcessingStatus(status)
	return &f, nil
}

func (r *uploadedFileRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status constants.ProcessingStatus) error {
	const q = `UPDATE uploaded_files SET status = $2 WHERE id = $1`
	if _, err := r.pool.Exec(ctx, q, id, string(status)); err != nil {
		r.logger.Error("failed to update file status", "file_id", id, "status", status, "error", err)
		return common.WrapError(err, "update file status")
	}
	return nil
}

func (r *uploadedFileRepo) FinishWithCounts(ctx context.Context, id uuid.UUID, status constants.ProcessingStatus, counts entity.ImportCounts) error {
	const q = `
		UPDATE uploaded_files
		SET status = $2, record_count = $3, matched_count = $4,
		    ai_processed_count = $5, needs_review_count = $6
		WHERE id = $1`
	_, err := r.pool.Exec(ctx, q, id, string(status),
		counts.Records, counts.Matched, counts.AIProcessed, counts.NeedsReview)
	if err != nil {
		r.logger.Error("failed to finish file with counts", "file_id", id, "status", status, "error", err)
		return common.WrapError(err, "finish file with counts")
	}
	return nil
}
