package constants

// CanonicalField is a normalized target field name used across all
// import sources. Field mappings resolve source columns to these.
type CanonicalField string

const (
	FieldMaterialCode   CanonicalField = "material_code"
	FieldMaterialName   CanonicalField = "material_name"
	FieldCategory       CanonicalField = "category"
	FieldUnitOfMeasure  CanonicalField = "unit_of_measure"
	FieldAmount         CanonicalField = "amount"
	FieldEmissionFactor CanonicalField = "emission_factor"
)

// CanonicalFields lists every mappable target, in display order.
var CanonicalFields = []CanonicalField{
	FieldMaterialCode,
	FieldMaterialName,
	FieldCategory,
	FieldUnitOfMeasure,
	FieldAmount,
	FieldEmissionFactor,
}

// Categories are emission scopes per the GHG protocol.
const (
	CategoryScope1 = "scope_1"
	CategoryScope2 = "scope_2"
	CategoryScope3 = "scope_3"
)
