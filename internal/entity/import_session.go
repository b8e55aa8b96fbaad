package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/carbonlens/emissions-tracker/constants"
)

// FieldMapping pairs a source column with a canonical target field.
// A nil TargetField means "do not import this column".
type FieldMapping struct {
	SourceColumn string  `json:"source_column"`
	TargetField  *string `json:"target_field"`
	SampleValue  string  `json:"sample_value,omitempty"`
	Matched      bool    `json:"matched"`
}

// BulkImportSession groups one file with its chosen mappings and
// aggregate progress counters. Completed or failed exactly once.
type BulkImportSession struct {
	ID         uuid.UUID                  `json:"id"`
	FileID     uuid.UUID                  `json:"file_id"`
	Mappings   []FieldMapping             `json:"mappings"`
	Status     constants.ProcessingStatus `json:"status"`
	Total      int                        `json:"total_count"`
	Processed  int                        `json:"processed_count"`
	Counts     ImportCounts               `json:"counts"`
	CreatedAt  time.Time                  `json:"created_at"`
	FinishedAt *time.Time                 `json:"finished_at,omitempty"`
}
