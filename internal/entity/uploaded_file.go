package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/carbonlens/emissions-tracker/constants"
)

// UploadedFile represents one ingested file for data transfer between layers.
type UploadedFile struct {
	ID             uuid.UUID                  `json:"id"`
	OrganizationID uuid.UUID                  `json:"organization_id"`
	ProjectID      uuid.UUID                  `json:"project_id"`
	Filename       string                     `json:"filename"`
	FileType       constants.FileType         `json:"file_type"`
	FileSize       int                        `json:"file_size"`
	StoragePath    string                     `json:"storage_path"`
	ContentHash    []byte                     `json:"content_hash"`
	Source         constants.UploadSource     `json:"source"`
	Status         constants.ProcessingStatus `json:"status"`
	RecordCount    int                        `json:"record_count"`
	MatchedCount   int                        `json:"matched_count"`
	AIProcessed    int                        `json:"ai_processed_count"`
	NeedsReview    int                        `json:"needs_review_count"`
	UploadedAt     time.Time                  `json:"uploaded_at"`
}

// ImportCounts is the rollup written back onto a file (and session)
// when processing finishes.
type ImportCounts struct {
	Records     int `json:"record_count"`
	Matched     int `json:"matched_count"`
	AIProcessed int `json:"ai_processed_count"`
	NeedsReview int `json:"needs_review_count"`
}
