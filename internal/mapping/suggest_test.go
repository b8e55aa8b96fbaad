package mapping

import (
	"reflect"
	"testing"

	"github.com/carbonlens/emissions-tracker/constants"
)

func TestSuggestField(t *testing.T) {
	cases := []struct {
		header string
		want   constants.CanonicalField
	}{
		{"Material", constants.FieldMaterialName},
		{"material name", constants.FieldMaterialName},
		{"Item Description", constants.FieldMaterialName},
		{"Fuel", constants.FieldMaterialName},
		{"Product Code", constants.FieldMaterialCode},
		{"EF ID", constants.FieldMaterialCode},
		{"Category", constants.FieldCategory},
		{"Scope", constants.FieldCategory},
		{"Emission Type", constants.FieldCategory},
		{"Unit", constants.FieldUnitOfMeasure},
		{"UOM", constants.FieldUnitOfMeasure},
		{"Qty", constants.FieldAmount},
		{"Quantity", constants.FieldAmount},
		{"Volume (L)", constants.FieldAmount},
		{"Weight", constants.FieldAmount},
		{"Emission Factor", constants.FieldEmissionFactor},
		{"kgCO2e", constants.FieldEmissionFactor},
		{"Notes", ""},
		{"", ""},
	}
	for _, tc := range cases {
		if got := SuggestField(tc.header); got != tc.want {
			t.Errorf("SuggestField(%q) = %q, want %q", tc.header, got, tc.want)
		}
	}
}

// Rules are ordered; a header hitting two rules takes the earlier one.
func TestSuggestFieldRulePriority(t *testing.T) {
	// "code" (material_code) beats "factor" (emission_factor).
	if got := SuggestField("Factor Code"); got != constants.FieldMaterialCode {
		t.Fatalf("SuggestField(Factor Code) = %q, want material_code", got)
	}
	// "material" beats "unit".
	if got := SuggestField("Material Unit"); got != constants.FieldMaterialName {
		t.Fatalf("SuggestField(Material Unit) = %q, want material_name", got)
	}
}

func TestSuggestDeterministic(t *testing.T) {
	headers := []string{"Material", "Qty", "Unit", "Notes"}
	first := Suggest(headers)
	second := Suggest(headers)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("suggestions differ across runs: %v vs %v", first, second)
	}
	if len(first) != len(headers) {
		t.Fatalf("got %d suggestions for %d headers", len(first), len(headers))
	}
	if first[0].TargetField != constants.FieldMaterialName || first[3].TargetField != "" {
		t.Fatalf("unexpected suggestions: %v", first)
	}
}
