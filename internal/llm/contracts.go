package llm

import (
	"context"

	"github.com/carbonlens/emissions-tracker/constants"
)

// ExtractedRecord is the normalized shape we want from the model for
// one emission entry. Output is provisional pending human review for
// anything not subsequently matched against the material library.
type ExtractedRecord struct {
	MaterialName  string         `json:"material_name"`
	MaterialCode  string         `json:"material_code,omitempty"`
	Amount        *float64       `json:"amount"`
	UnitOfMeasure string         `json:"unit_of_measure,omitempty"`
	Category      string         `json:"category,omitempty"` // scope_1/2/3 if the model can tell
	Metadata      map[string]any `json:"metadata,omitempty"` // source-specific extras
}

// ExtractRequest carries one file's content to the model. Binary kinds
// (pdf, image) are attached base64-encoded; text kinds go inline.
type ExtractRequest struct {
	Content  []byte
	FileType constants.FileType
	Filename string
}

// Extractor is the interface the pipeline depends on. Called exactly
// once per file, never per row.
type Extractor interface {
	ExtractRecords(ctx context.Context, req ExtractRequest) ([]ExtractedRecord, []byte /*rawJSON*/, error)
}
