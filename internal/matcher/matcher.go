// Package matcher resolves candidate material names/codes against the
// material library. Matching is exact (case-insensitive) only: code,
// then name, then alias. Unmatched candidates fall through to AI
// processing or a needs_review state; no fuzzy matching here.
package matcher

import (
	"strings"

	"github.com/carbonlens/emissions-tracker/internal/entity"
)

// Index is an in-memory lookup over the material library.
type Index struct {
	byCode  map[string]*entity.MaterialEntry
	byName  map[string]*entity.MaterialEntry
	byAlias map[string]*entity.MaterialEntry
}

// NewIndex builds lookup maps from library entries. On key collisions
// the first entry wins, mirroring rule-order semantics elsewhere.
func NewIndex(entries []entity.MaterialEntry) *Index {
	ix := &Index{
		byCode:  make(map[string]*entity.MaterialEntry, len(entries)),
		byName:  make(map[string]*entity.MaterialEntry, len(entries)),
		byAlias: make(map[string]*entity.MaterialEntry),
	}
	for i := range entries {
		e := &entries[i]
		if k := normalize(e.Code); k != "" {
			if _, dup := ix.byCode[k]; !dup {
				ix.byCode[k] = e
			}
		}
		if k := normalize(e.Name); k != "" {
			if _, dup := ix.byName[k]; !dup {
				ix.byName[k] = e
			}
		}
		for _, a := range e.Aliases {
			if k := normalize(a); k != "" {
				if _, dup := ix.byAlias[k]; !dup {
					ix.byAlias[k] = e
				}
			}
		}
	}
	return ix
}

// Match returns the best single library entry for a candidate, trying
// code, then name, then any alias. The name argument is also checked
// against aliases, so "Gasoil" finds the "Diesel" entry.
func (ix *Index) Match(name, code string) (*entity.MaterialEntry, bool) {
	if k := normalize(code); k != "" {
		if e, ok := ix.byCode[k]; ok {
			return e, true
		}
	}
	if k := normalize(name); k != "" {
		if e, ok := ix.byName[k]; ok {
			return e, true
		}
		if e, ok := ix.byAlias[k]; ok {
			return e, true
		}
	}
	return nil, false
}

// Len reports how many distinct codes are indexed.
func (ix *Index) Len() int { return len(ix.byCode) }

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// TotalEmissions computes amount x factor, or nil when either side is
// unknown. The iff invariant on total_emissions lives here.
func TotalEmissions(amount, factor *float64) *float64 {
	if amount == nil || factor == nil {
		return nil
	}
	total := *amount * *factor
	return &total
}

// Apply overwrites a record's material fields with the library's
// canonical values (never the raw input's) and recomputes the total.
func Apply(rec *entity.EmissionRecord, e *entity.MaterialEntry) {
	rec.MaterialCode = e.Code
	rec.MaterialName = e.Name
	rec.Category = e.Category
	rec.UnitOfMeasure = e.UnitOfMeasure
	factor := e.EmissionFactor
	rec.EmissionFactor = &factor
	rec.TotalEmissions = TotalEmissions(rec.Amount, rec.EmissionFactor)
}
