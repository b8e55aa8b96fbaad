package matcher

import (
	"math"
	"testing"

	"github.com/google/uuid"

	"github.com/carbonlens/emissions-tracker/internal/entity"
)

func testLibrary() []entity.MaterialEntry {
	return []entity.MaterialEntry{
		{
			ID:             uuid.New(),
			Code:           "EF001",
			Name:           "Diesel",
			Category:       "scope_1",
			UnitOfMeasure:  "L",
			EmissionFactor: 2.68,
			Aliases:        []string{"Gasoil", "Diesel Fuel"},
		},
		{
			ID:             uuid.New(),
			Code:           "EF004",
			Name:           "Electricity",
			Category:       "scope_2",
			UnitOfMeasure:  "kWh",
			EmissionFactor: 0.233,
		},
	}
}

func TestMatchByCode(t *testing.T) {
	ix := NewIndex(testLibrary())
	e, ok := ix.Match("", "ef001")
	if !ok || e.Name != "Diesel" {
		t.Fatalf("Match by code = %v, %v", e, ok)
	}
}

func TestMatchByName(t *testing.T) {
	ix := NewIndex(testLibrary())
	e, ok := ix.Match("DIESEL", "")
	if !ok || e.Code != "EF001" {
		t.Fatalf("Match by name = %v, %v", e, ok)
	}
}

func TestMatchByAlias(t *testing.T) {
	ix := NewIndex(testLibrary())
	e, ok := ix.Match("gasoil", "")
	if !ok || e.Name != "Diesel" {
		t.Fatalf("Match by alias = %v, %v", e, ok)
	}
	e, ok = ix.Match("diesel fuel", "")
	if !ok || e.Name != "Diesel" {
		t.Fatalf("Match by multi-word alias = %v, %v", e, ok)
	}
}

// Code takes precedence over name when both are present.
func TestMatchCodeBeatsName(t *testing.T) {
	ix := NewIndex(testLibrary())
	e, ok := ix.Match("Electricity", "EF001")
	if !ok || e.Code != "EF001" {
		t.Fatalf("Match(name=Electricity, code=EF001) = %v, want the EF001 entry", e)
	}
}

func TestMatchMiss(t *testing.T) {
	ix := NewIndex(testLibrary())
	if _, ok := ix.Match("unknown-material", ""); ok {
		t.Fatal("unknown material should not match")
	}
	if _, ok := ix.Match("", ""); ok {
		t.Fatal("empty candidate should not match")
	}
}

func TestIndexLen(t *testing.T) {
	if got := NewIndex(testLibrary()).Len(); got != 2 {
		t.Fatalf("Len = %d, want 2", got)
	}
}

func TestTotalEmissions(t *testing.T) {
	amount, factor := 100.0, 2.68
	total := TotalEmissions(&amount, &factor)
	if total == nil || math.Abs(*total-268) > 1e-9 {
		t.Fatalf("TotalEmissions(100, 2.68) = %v, want 268", total)
	}
	if TotalEmissions(nil, &factor) != nil {
		t.Fatal("TotalEmissions with nil amount should be nil")
	}
	if TotalEmissions(&amount, nil) != nil {
		t.Fatal("TotalEmissions with nil factor should be nil")
	}
}

// Apply replaces raw input fields with the library's canonical values.
func TestApplyOverwritesRawInput(t *testing.T) {
	lib := testLibrary()
	amount := 50.0
	rec := entity.EmissionRecord{
		MaterialName:  "diesel fuel",
		MaterialCode:  "misc-77",
		Category:      "fuel?",
		UnitOfMeasure: "liters",
		Amount:        &amount,
	}
	Apply(&rec, &lib[0])

	if rec.MaterialCode != "EF001" || rec.MaterialName != "Diesel" {
		t.Fatalf("canonical identity not applied: %+v", rec)
	}
	if rec.Category != "scope_1" || rec.UnitOfMeasure != "L" {
		t.Fatalf("canonical category/unit not applied: %+v", rec)
	}
	if rec.EmissionFactor == nil || *rec.EmissionFactor != 2.68 {
		t.Fatalf("factor = %v, want 2.68", rec.EmissionFactor)
	}
	if rec.TotalEmissions == nil || math.Abs(*rec.TotalEmissions-134) > 1e-9 {
		t.Fatalf("total = %v, want 134", rec.TotalEmissions)
	}
}

// First entry wins when two entries share a key.
func TestIndexCollisionFirstWins(t *testing.T) {
	entries := []entity.MaterialEntry{
		{Code: "X1", Name: "Diesel", EmissionFactor: 1},
		{Code: "X2", Name: "diesel", EmissionFactor: 2},
	}
	ix := NewIndex(entries)
	e, ok := ix.Match("Diesel", "")
	if !ok || e.Code != "X1" {
		t.Fatalf("collision winner = %v, want X1", e)
	}
}
