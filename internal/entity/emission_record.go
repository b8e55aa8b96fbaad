package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/carbonlens/emissions-tracker/constants"
)

// EmissionRecord is the normalized output unit of an import.
// Created once per extracted/matched row; never updated by this core.
type EmissionRecord struct {
	ID               uuid.UUID                  `json:"id"`
	OrganizationID   uuid.UUID                  `json:"organization_id"`
	ProjectID        uuid.UUID                  `json:"project_id"`
	FileID           *uuid.UUID                 `json:"file_id,omitempty"`
	MaterialCode     string                     `json:"material_code,omitempty"`
	MaterialName     string                     `json:"material_name,omitempty"`
	Category         string                     `json:"category,omitempty"`
	UnitOfMeasure    string                     `json:"unit_of_measure,omitempty"`
	Amount           *float64                   `json:"amount,omitempty"`
	EmissionFactor   *float64                   `json:"emission_factor,omitempty"`
	TotalEmissions   *float64                   `json:"total_emissions,omitempty"`
	SourceType       constants.UploadSource     `json:"source_type"`
	ProcessingStatus constants.ProcessingStatus `json:"processing_status"`
	MatchStatus      constants.MatchStatus      `json:"match_status"`
	Confidence       *float32                   `json:"confidence,omitempty"`
	Metadata         map[string]any             `json:"metadata,omitempty"`
	CreatedAt        time.Time                  `json:"created_at"`
}
