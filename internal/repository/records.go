package repository

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carbonlens/emissions-tracker/constants"
	"github.com/carbonlens/emissions-tracker/internal/common"
	"github.com/carbonlens/emissions-tracker/internal/entity"
)

type EmissionRecordRepository interface {
	CreateBatch(ctx context.Context, recs []entity.EmissionRecord) error
	ListByProject(ctx context.Context, orgID, projectID uuid.UUID) ([]entity.EmissionRecord, error)
}

type emissionRecordRepo struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewEmissionRecordRepository(pool *pgxpool.Pool, logger *slog.Logger) EmissionRecordRepository {
	return &emissionRecordRepo{pool: pool, logger: logger}
}

func (r *emissionRecordRepo) CreateBatch(ctx context.Context, recs []entity.EmissionRecord) error {
	if len(recs) == 0 {
		return nil
	}
	const q = `
		INSERT INTO emission_data_records
			(id, organization_id, project_id, file_id, material_code, material_name,
			 category, unit_of_measure, amount, emission_factor, total_emissions,
			 source_type, processing_status, match_status, confidence, metadata, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)`

	batch := &pgx.Batch{}
	for i := range recs {
		rec := &recs[i]
		var meta []byte
		if rec.Metadata != nil {
			b, err := json.Marshal(rec.Metadata)
			if err != nil {
				return common.WrapError(err, "encode record metadata")
			}
			meta = b
		}
		batch.Queue(q,
			rec.ID, rec.OrganizationID, rec.ProjectID, rec.FileID,
			rec.MaterialCode, rec.MaterialName, rec.Category, rec.UnitOfMeasure,
			rec.Amount, rec.EmissionFactor, rec.TotalEmissions,
			string(rec.SourceType), string(rec.ProcessingStatus), string(rec.MatchStatus),
			rec.Confidence, meta, rec.CreatedAt)
	}

	br := r.pool.SendBatch(ctx, batch)
	defer func() {
		if err := br.Close(); err != nil {
			r.logger.Warn("record batch close error", "error", err)
		}
	}()
	for range recs {
		if _, err := br.Exec(); err != nil {
			r.logger.Error("failed to insert emission record batch", "count", len(recs), "error", err)
			return common.WrapError(err, "insert emission records")
		}
	}
	return nil
}

func (r *emissionRecordRepo) ListByProject(ctx context.Context, orgID, projectID uuid.UUID) ([]entity.EmissionRecord, error) {
	const q = `
		SELECT id, organization_id, project_id, file_id, material_code, material_name,
		       category, unit_of_measure, amount, emission_factor, total_emissions,
		       source_type, processing_status, match_status, confidence, metadata, created_at
		FROM emission_data_records
		WHERE organization_id = $1 AND project_id = $2
		ORDER BY created_at`
	rows, err := r.pool.Query(ctx, q, orgID, projectID)
	if err != nil {
		r.logger.Error("failed to list emission records", "organization_id", orgID, "project_id", projectID, "error", err)
		return nil, common.WrapError(err, "list emission records")
	}
	defer rows.Close()

	var out []entity.EmissionRecord
	for rows.Next() {
		var rec entity.EmissionRecord
		var sourceType, procStatus, matchStatus string
		var meta []byte
		if err := rows.Scan(&rec.ID, &rec.OrganizationID, &rec.ProjectID, &rec.FileID,
			&rec.MaterialCode, &rec.MaterialName, &rec.Category, &rec.UnitOfMeasure,
			&rec.Amount, &rec.EmissionFactor, &rec.TotalEmissions,
			&sourceType, &procStatus, &matchStatus, &rec.Confidence, &meta, &rec.CreatedAt); err != nil {
			return nil, common.WrapError(err, "scan emission record")
		}
		rec.SourceType = constants.UploadSource(sourceType)
		rec.ProcessingStatus = constants.ProcessingStatus(procStatus)
		rec.MatchStatus = constants.MatchStatus(matchStatus)
		if len(meta) > 0 {
			if err := json.Unmarshal(meta, &rec.Metadata); err != nil {
				r.logger.Warn("failed to decode record metadata", "record_id", rec.ID, "error", err)
			}
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
