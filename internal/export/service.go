package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/carbonlens/emissions-tracker/internal/entity"
	"github.com/carbonlens/emissions-tracker/internal/repository"
)

// Service is a tiny façade over the record repository that produces
// XLSX or CSV bytes for exports.
type Service struct {
	records repository.EmissionRecordRepository
	logger  *slog.Logger
}

func NewService(records repository.EmissionRecordRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{records: records, logger: logger}
}

var exportHeaders = []string{
	"Material Code",
	"Material Name",
	"Category",
	"Unit",
	"Amount",
	"Emission Factor",
	"Total Emissions (kgCO2e)",
	"Match Status",
	"Source",
	"Created At",
}

// ExportXLSX returns a workbook of all emission records for a project.
func (s *Service) ExportXLSX(ctx context.Context, orgID, projectID uuid.UUID) ([]byte, error) {
	start := time.Now()
	recs, err := s.records.ListByProject(ctx, orgID, projectID)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}

	f := excelize.NewFile()
	const sheet = "Emissions"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	for i, h := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for rowIdx, rec := range recs {
		row := recordRow(rec)
		for col, v := range row {
			cell, _ := excelize.CoordinatesToCellName(col+1, rowIdx+2)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	s.logger.Info("export.xlsx.ok",
		"organization_id", orgID, "project_id", projectID,
		"records", len(recs), "elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// ExportCSV returns the same table as CSV.
func (s *Service) ExportCSV(ctx context.Context, orgID, projectID uuid.UUID) ([]byte, error) {
	recs, err := s.records.ListByProject(ctx, orgID, projectID)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(exportHeaders); err != nil {
		return nil, err
	}
	for _, rec := range recs {
		if err := w.Write(recordRow(rec)); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	s.logger.Info("export.csv.ok",
		"organization_id", orgID, "project_id", projectID, "records", len(recs),
	)
	return buf.Bytes(), nil
}

func recordRow(rec entity.EmissionRecord) []string {
	return []string{
		rec.MaterialCode,
		rec.MaterialName,
		rec.Category,
		rec.UnitOfMeasure,
		floatCell(rec.Amount),
		floatCell(rec.EmissionFactor),
		floatCell(rec.TotalEmissions),
		string(rec.MatchStatus),
		string(rec.SourceType),
		rec.CreatedAt.Format(time.RFC3339),
	}
}

func floatCell(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
