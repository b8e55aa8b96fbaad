package entity

import "github.com/google/uuid"

// MaterialEntry is a reference emission factor from the material library.
// Read-only from the pipeline's perspective.
type MaterialEntry struct {
	ID             uuid.UUID `json:"id"`
	Code           string    `json:"code"`
	Name           string    `json:"name"`
	Category       string    `json:"category"`
	UnitOfMeasure  string    `json:"unit_of_measure"`
	EmissionFactor float64   `json:"emission_factor"`
	Keywords       []string  `json:"keywords"`
	Aliases        []string  `json:"aliases"`
}
