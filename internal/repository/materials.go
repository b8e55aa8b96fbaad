package repository

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carbonlens/emissions-tracker/internal/common"
	"github.com/carbonlens/emissions-tracker/internal/entity"
)

// MaterialRepository reads the admin-maintained material library.
// The pipeline never writes to it.
type MaterialRepository interface {
	List(ctx context.Context) ([]entity.MaterialEntry, error)
}

type materialRepo struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewMaterialRepository(pool *pgxpool.Pool, logger *slog.Logger) MaterialRepository {
	return &materialRepo{pool: pool, logger: logger}
}

func (r *materialRepo) List(ctx context.Context) ([]entity.MaterialEntry, error) {
	const q = `
		SELECT id, code, name, category, unit_of_measure, emission_factor, keywords, aliases
		FROM material_library ORDER BY code`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		r.logger.Error("failed to list material library", "error", err)
		return nil, common.WrapError(err, "list material library")
	}
	defer rows.Close()

	var out []entity.MaterialEntry
	for rows.Next() {
		var e entity.MaterialEntry
		if err := rows.Scan(&e.ID, &e.Code, &e.Name, &e.Category, &e.UnitOfMeasure,
			&e.EmissionFactor, &e.Keywords, &e.Aliases); err != nil {
			r.logger.Error("failed to scan material entry", "error", err)
			return nil, common.WrapError(err, "scan material entry")
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
