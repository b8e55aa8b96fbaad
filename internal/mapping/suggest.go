// Package mapping proposes source-column to canonical-field mappings
// from header names. Suggestions are advisory; callers may override
// every one of them before committing an import.
package mapping

import (
	"strings"

	"github.com/carbonlens/emissions-tracker/constants"
)

// rule matches a lowercased header by substring. Rules are tried in
// order and the first hit wins, so more specific rules come first.
type rule struct {
	keywords []string
	target   constants.CanonicalField
}

var rules = []rule{
	{[]string{"code", "id"}, constants.FieldMaterialCode},
	{[]string{"material", "item", "product", "fuel"}, constants.FieldMaterialName},
	{[]string{"category", "scope", "type"}, constants.FieldCategory},
	{[]string{"unit", "uom", "measure"}, constants.FieldUnitOfMeasure},
	{[]string{"amount", "quantity", "qty", "volume", "weight"}, constants.FieldAmount},
	{[]string{"emission factor", "factor", "co2"}, constants.FieldEmissionFactor},
}

// Suggestion pairs a source header with its best-guess target.
// Target is empty when no rule matched.
type Suggestion struct {
	SourceColumn string                   `json:"source_column"`
	TargetField  constants.CanonicalField `json:"target_field,omitempty"`
}

// SuggestField returns the canonical field for one header, or "" when
// nothing matches.
func SuggestField(header string) constants.CanonicalField {
	h := strings.ToLower(strings.TrimSpace(header))
	if h == "" {
		return ""
	}
	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(h, kw) {
				return r.target
			}
		}
	}
	return ""
}

// Suggest maps every header. Deterministic: identical header lists
// always produce identical suggestions.
func Suggest(headers []string) []Suggestion {
	out := make([]Suggestion, 0, len(headers))
	for _, h := range headers {
		out = append(out, Suggestion{SourceColumn: h, TargetField: SuggestField(h)})
	}
	return out
}
