package llm

import "testing"

func TestValidateExtractionSchema(t *testing.T) {
	schema := BuildExtractionJSONSchema()

	valid := []byte(`[
		{"material_name":"Diesel","material_code":"EF001","amount":50,"unit_of_measure":"L","category":"scope_1"},
		{"material_name":"Electricity","amount":null,"category":"scope_2","metadata":{"supplier":"acme"}}
	]`)
	if err := ValidateJSONAgainstSchema(schema, valid); err != nil {
		t.Fatalf("valid document rejected: %v", err)
	}

	if err := ValidateJSONAgainstSchema(schema, []byte(`[]`)); err != nil {
		t.Fatalf("empty array rejected: %v", err)
	}
}

func TestValidateExtractionSchemaRejects(t *testing.T) {
	schema := BuildExtractionJSONSchema()
	cases := []struct {
		name string
		doc  string
	}{
		{"missing material_name", `[{"amount":50}]`},
		{"empty material_name", `[{"material_name":""}]`},
		{"bad category", `[{"material_name":"Diesel","category":"scope_4"}]`},
		{"unknown property", `[{"material_name":"Diesel","vendor":"x"}]`},
		{"not an array", `{"material_name":"Diesel"}`},
		{"string amount", `[{"material_name":"Diesel","amount":"50"}]`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := ValidateJSONAgainstSchema(schema, []byte(tc.doc)); err == nil {
				t.Fatalf("document %s should be rejected", tc.doc)
			}
		})
	}
}

func TestValidateBadDocument(t *testing.T) {
	if err := ValidateJSONAgainstSchema(BuildExtractionJSONSchema(), []byte("not json")); err == nil {
		t.Fatal("malformed json should fail")
	}
}
