package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/carbonlens/emissions-tracker/constants"
	"github.com/carbonlens/emissions-tracker/internal/entity"
	"github.com/carbonlens/emissions-tracker/internal/llm"
	"github.com/carbonlens/emissions-tracker/internal/matcher"
)

// ProcessFile runs the AI extraction path for one file: exactly one
// model call per file, then a library match per extracted item.
// On any extraction error no records are persisted and the file moves
// to failed.
func (p *Processor) ProcessFile(ctx context.Context, fileID uuid.UUID) error {
	f, err := p.Files.GetByID(ctx, fileID)
	if err != nil {
		return err
	}

	if err := p.Files.UpdateStatus(ctx, f.ID, constants.StatusProcessing); err != nil {
		return err
	}

	counts, err := p.extractAndPersist(ctx, f)
	if err != nil {
		p.Logger.Error("process.failed", "file_id", f.ID, "error", err)
		if stErr := p.Files.UpdateStatus(ctx, f.ID, constants.StatusFailed); stErr != nil {
			p.Logger.Error("process.failed_status_update", "file_id", f.ID, "error", stErr)
		}
		return err
	}

	if err := p.Files.FinishWithCounts(ctx, f.ID, constants.StatusCompleted, counts); err != nil {
		return err
	}
	p.Logger.Info("process.ok",
		"file_id", f.ID,
		"records", counts.Records,
		"matched", counts.Matched,
		"ai_processed", counts.AIProcessed,
	)
	return nil
}

func (p *Processor) extractAndPersist(ctx context.Context, f *entity.UploadedFile) (entity.ImportCounts, error) {
	var counts entity.ImportCounts

	data, err := p.Blobs.Download(ctx, f.StoragePath)
	if err != nil {
		return counts, fmt.Errorf("download upload: %w", err)
	}

	items, _, err := p.Extractor.ExtractRecords(ctx, llm.ExtractRequest{
		Content:  data,
		FileType: f.FileType,
		Filename: f.Filename,
	})
	if err != nil {
		return counts, fmt.Errorf("ai extract: %w", err)
	}

	ix, err := p.loadIndex(ctx)
	if err != nil {
		return counts, err
	}

	recs := make([]entity.EmissionRecord, 0, len(items))
	for _, item := range items {
		rec := p.recordFromExtraction(f, item, ix)
		switch rec.MatchStatus {
		case constants.MatchStatusMatched:
			counts.Matched++
		default:
			counts.AIProcessed++
		}
		recs = append(recs, rec)
	}
	counts.Records = len(recs)

	if err := p.Records.CreateBatch(ctx, recs); err != nil {
		return counts, err
	}
	return counts, nil
}

// recordFromExtraction builds one record from an AI-extracted item,
// upgrading it to matched when the library resolves it.
func (p *Processor) recordFromExtraction(f *entity.UploadedFile, item llm.ExtractedRecord, ix *matcher.Index) entity.EmissionRecord {
	rec := entity.EmissionRecord{
		ID:               uuid.New(),
		OrganizationID:   f.OrganizationID,
		ProjectID:        f.ProjectID,
		FileID:           &f.ID,
		MaterialName:     item.MaterialName,
		MaterialCode:     item.MaterialCode,
		Category:         item.Category,
		UnitOfMeasure:    item.UnitOfMeasure,
		Amount:           item.Amount,
		SourceType:       f.Source,
		ProcessingStatus: constants.StatusCompleted,
		MatchStatus:      constants.MatchStatusAIProcessed,
		Metadata:         item.Metadata,
		CreatedAt:        time.Now().UTC(),
	}

	if entry, ok := ix.Match(item.MaterialName, item.MaterialCode); ok {
		matcher.Apply(&rec, entry)
		rec.MatchStatus = constants.MatchStatusMatched
		conf := constants.ConfidenceMatched
		rec.Confidence = &conf
	} else {
		conf := constants.ConfidenceAIDefault
		rec.Confidence = &conf
		rec.TotalEmissions = matcher.TotalEmissions(rec.Amount, rec.EmissionFactor)
	}
	return rec
}
