package pipeline

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/carbonlens/emissions-tracker/constants"
	"github.com/carbonlens/emissions-tracker/internal/common"
	"github.com/carbonlens/emissions-tracker/internal/entity"
	"github.com/carbonlens/emissions-tracker/internal/mapping"
	"github.com/carbonlens/emissions-tracker/internal/matcher"
	"github.com/carbonlens/emissions-tracker/internal/parser"
)

// MappingPreview is what the mapping UI needs to render one file.
type MappingPreview struct {
	FileID      uuid.UUID            `json:"file_id"`
	Headers     []string             `json:"headers"`
	RowCount    int                  `json:"row_count"`
	Samples     map[string][]string  `json:"samples"`
	Suggestions []mapping.Suggestion `json:"suggestions"`
}

// SuggestMappings parses the stored file and proposes a mapping per
// column. Advisory only; the caller may override everything.
func (p *Processor) SuggestMappings(ctx context.Context, fileID uuid.UUID) (*MappingPreview, error) {
	f, err := p.Files.GetByID(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if !constants.IsStructured(f.FileType) {
		return nil, common.NewAppError("NOT_STRUCTURED", "field mapping applies to csv, excel and json files only", common.ErrInvalidInput)
	}

	data, err := p.Blobs.Download(ctx, f.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("download upload: %w", err)
	}
	res, err := parser.Parse(f.FileType, data)
	if err != nil {
		return nil, err
	}

	return &MappingPreview{
		FileID:      f.ID,
		Headers:     res.Headers,
		RowCount:    res.RowCount,
		Samples:     parser.ExtractSamples(res.Headers, res.Rows, parser.DefaultSampleCount),
		Suggestions: mapping.Suggest(res.Headers),
	}, nil
}

// RunBulkImport executes the structured path: create a session, parse,
// apply mappings row by row, match against the library and persist.
// Session and file complete or fail together, exactly once.
func (p *Processor) RunBulkImport(ctx context.Context, fileID uuid.UUID, mappings []entity.FieldMapping) (*entity.BulkImportSession, error) {
	f, err := p.Files.GetByID(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if !constants.IsStructured(f.FileType) {
		return nil, common.NewAppError("NOT_STRUCTURED", "bulk import applies to csv, excel and json files only", common.ErrInvalidInput)
	}
	if len(mappings) == 0 {
		return nil, common.NewAppError("MAPPINGS_REQUIRED", "at least one field mapping is required", common.ErrInvalidInput)
	}

	session := &entity.BulkImportSession{
		ID:        uuid.New(),
		FileID:    f.ID,
		Mappings:  mappings,
		Status:    constants.StatusPending,
		CreatedAt: time.Now().UTC(),
	}
	if err := p.Sessions.Create(ctx, session); err != nil {
		return nil, err
	}

	if err := p.Sessions.UpdateStatus(ctx, session.ID, constants.StatusProcessing); err != nil {
		return nil, err
	}
	if err := p.Files.UpdateStatus(ctx, f.ID, constants.StatusProcessing); err != nil {
		return nil, err
	}
	session.Status = constants.StatusProcessing

	total, counts, runErr := p.runMappedImport(ctx, f, mappings)
	if runErr != nil {
		p.Logger.Error("bulkimport.failed", "session_id", session.ID, "file_id", f.ID, "error", runErr)
		if err := p.Sessions.Finish(ctx, session.ID, constants.StatusFailed, total, 0, counts); err != nil {
			p.Logger.Error("bulkimport.session_fail_update", "session_id", session.ID, "error", err)
		}
		if err := p.Files.UpdateStatus(ctx, f.ID, constants.StatusFailed); err != nil {
			p.Logger.Error("bulkimport.file_fail_update", "file_id", f.ID, "error", err)
		}
		session.Status = constants.StatusFailed
		return session, runErr
	}

	if err := p.Sessions.Finish(ctx, session.ID, constants.StatusCompleted, total, total, counts); err != nil {
		return session, err
	}
	if err := p.Files.FinishWithCounts(ctx, f.ID, constants.StatusCompleted, counts); err != nil {
		return session, err
	}
	session.Status = constants.StatusCompleted
	session.Total = total
	session.Processed = total
	session.Counts = counts

	p.Logger.Info("bulkimport.ok",
		"session_id", session.ID, "file_id", f.ID,
		"rows", total, "matched", counts.Matched, "needs_review", counts.NeedsReview,
	)
	return session, nil
}

func (p *Processor) runMappedImport(ctx context.Context, f *entity.UploadedFile, mappings []entity.FieldMapping) (int, entity.ImportCounts, error) {
	var counts entity.ImportCounts

	data, err := p.Blobs.Download(ctx, f.StoragePath)
	if err != nil {
		return 0, counts, fmt.Errorf("download upload: %w", err)
	}
	res, err := parser.Parse(f.FileType, data)
	if err != nil {
		return 0, counts, err
	}

	ix, err := p.loadIndex(ctx)
	if err != nil {
		return res.RowCount, counts, err
	}

	colmap := make(map[string]constants.CanonicalField, len(mappings))
	for _, m := range mappings {
		if m.TargetField == nil || *m.TargetField == "" {
			continue
		}
		colmap[m.SourceColumn] = constants.CanonicalField(*m.TargetField)
	}

	recs := make([]entity.EmissionRecord, 0, res.RowCount)
	for _, row := range res.Rows {
		rec := p.recordFromRow(f, row, colmap, ix)
		switch rec.MatchStatus {
		case constants.MatchStatusMatched:
			counts.Matched++
		case constants.MatchStatusAIProcessed:
			counts.AIProcessed++
		default:
			counts.NeedsReview++
		}
		recs = append(recs, rec)
	}
	counts.Records = len(recs)

	if err := p.Records.CreateBatch(ctx, recs); err != nil {
		return res.RowCount, counts, err
	}
	return res.RowCount, counts, nil
}

// recordFromRow applies the column mapping, then tries a library match
// by code and by name. Named rows without a library hit are parked in
// needs_review; the AI fallback is deliberately not invoked here.
func (p *Processor) recordFromRow(f *entity.UploadedFile, row map[string]string, colmap map[string]constants.CanonicalField, ix *matcher.Index) entity.EmissionRecord {
	rec := entity.EmissionRecord{
		ID:             uuid.New(),
		OrganizationID: f.OrganizationID,
		ProjectID:      f.ProjectID,
		FileID:         &f.ID,
		SourceType:     f.Source,
		CreatedAt:      time.Now().UTC(),
	}

	var extras map[string]any
	for col, raw := range row {
		target, mapped := colmap[col]
		if !mapped {
			if raw != "" {
				if extras == nil {
					extras = make(map[string]any)
				}
				extras[col] = raw
			}
			continue
		}
		switch target {
		case constants.FieldMaterialCode:
			rec.MaterialCode = raw
		case constants.FieldMaterialName:
			rec.MaterialName = raw
		case constants.FieldCategory:
			rec.Category = raw
		case constants.FieldUnitOfMeasure:
			rec.UnitOfMeasure = raw
		case constants.FieldAmount:
			rec.Amount = parseAmount(raw)
		case constants.FieldEmissionFactor:
			rec.EmissionFactor = parseAmount(raw)
		}
	}
	rec.Metadata = extras

	if entry, ok := ix.Match(rec.MaterialName, rec.MaterialCode); ok {
		matcher.Apply(&rec, entry)
		rec.ProcessingStatus = constants.StatusCompleted
		rec.MatchStatus = constants.MatchStatusMatched
		conf := constants.ConfidenceMatched
		rec.Confidence = &conf
		return rec
	}

	rec.TotalEmissions = matcher.TotalEmissions(rec.Amount, rec.EmissionFactor)
	rec.ProcessingStatus = constants.StatusNeedsReview
	if rec.MaterialName != "" || rec.MaterialCode != "" {
		rec.MatchStatus = constants.MatchStatusNeedsReview
	} else {
		rec.MatchStatus = constants.MatchStatusUnmatched
	}
	return rec
}

// parseAmount reads a decimal out of spreadsheet-flavored text.
// Returns nil when the cell is empty or not numeric.
func parseAmount(s string) *float64 {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}
