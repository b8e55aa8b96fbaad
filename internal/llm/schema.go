package llm

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/carbonlens/emissions-tracker/constants"
)

// BuildExtractionJSONSchema returns a JSON-Schema (draft 2020-12 subset)
// for the array of records we expect back. Passed to the model as a
// constraint and used locally to validate what actually came back.
func BuildExtractionJSONSchema() map[string]any {
	item := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"material_name":   map[string]any{"type": "string", "minLength": 1},
			"material_code":   map[string]any{"type": "string"},
			"amount":          map[string]any{"type": []any{"number", "null"}},
			"unit_of_measure": map[string]any{"type": "string"},
			"category": map[string]any{
				"type": "string",
				"enum": []any{constants.CategoryScope1, constants.CategoryScope2, constants.CategoryScope3},
			},
			"metadata": map[string]any{"type": "object"},
		},
		"required": []any{"material_name"},
	}
	return map[string]any{
		"type":  "array",
		"items": item,
	}
}

// ValidateJSONAgainstSchema compiles the schema map and validates doc.
func ValidateJSONAgainstSchema(schema map[string]any, doc []byte) error {
	sb, err := json.Marshal(schema)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource("inline://schema.json", bytes.NewReader(sb)); err != nil {
		return fmt.Errorf("add schema resource: %w", err)
	}
	compiled, err := c.Compile("inline://schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(doc, &v); err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	return compiled.Validate(v)
}
