package repository

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carbonlens/emissions-tracker/constants"
	"github.com/carbonlens/emissions-tracker/internal/common"
	"github.com/carbonlens/emissions-tracker/internal/entity"
)

type ImportSessionRepository interface {
	Create(ctx context.Context, s *entity.BulkImportSession) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status constants.ProcessingStatus) error
	Finish(ctx context.Context, id uuid.UUID, status constants.ProcessingStatus, total, processed int, counts entity.ImportCounts) error
}

type importSessionRepo struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewImportSessionRepository(pool *pgxpool.Pool, logger *slog.Logger) ImportSessionRepository {
	return &importSessionRepo{pool: pool, logger: logger}
}

func (r *importSessionRepo) Create(ctx context.Context, s *entity.BulkImportSession) error {
	mappings, err := json.Marshal(s.Mappings)
	if err != nil {
		return common.WrapError(err, "encode session mappings")
	}
	const q = `
		INSERT INTO bulk_import_sessions (id, file_id, mappings, status, created_at)
		VALUES ($1,$2,$3,$4,$5)`
	if _, err := r.pool.Exec(ctx, q, s.ID, s.FileID, mappings, string(s.Status), s.CreatedAt); err != nil {
		r.logger.Error("failed to create import session", "session_id", s.ID, "file_id", s.FileID, "error", err)
		return common.WrapError(err, "create import session")
	}
	return nil
}

func (r *importSessionRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status constants.ProcessingStatus) error {
	const q = `UPDATE bulk_import_sessions SET status = $2 WHERE id = $1`
	if _, err := r.pool.Exec(ctx, q, id, string(status)); err != nil {
		r.logger.Error("failed to update session status", "session_id", id, "status", status, "error", err)
		return common.WrapError(err, "update session status")
	}
	return nil
}

func (r *importSessionRepo) Finish(ctx context.Context, id uuid.UUID, status constants.ProcessingStatus, total, processed int, counts entity.ImportCounts) error {
	const q = `
		UPDATE bulk_import_sessions
		SET status = $2, total_count = $3, processed_count = $4,
		    matched_count = $5, ai_processed_count = $6, needs_review_count = $7,
		    finished_at = $8
		WHERE id = $1`
	_, err := r.pool.Exec(ctx, q, id, string(status), total, processed,
		counts.Matched, counts.AIProcessed, counts.NeedsReview, time.Now().UTC())
	if err != nil {
		r.logger.Error("failed to finish import session", "session_id", id, "status", status, "error", err)
		return common.WrapError(err, "finish import session")
	}
	return nil
}
