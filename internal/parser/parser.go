// Package parser converts raw bytes of structured uploads (CSV, Excel,
// JSON) into a uniform tabular shape: ordered headers plus row maps.
package parser

import (
	"fmt"
	"strconv"

	"github.com/carbonlens/emissions-tracker/constants"
	"github.com/carbonlens/emissions-tracker/internal/common"
)

// Result is the uniform output of parsing one structured file.
type Result struct {
	Headers  []string            `json:"headers"`
	Rows     []map[string]string `json:"rows"`
	RowCount int                 `json:"row_count"`
}

// Parse dispatches on file type. Only structured kinds are accepted;
// everything else is rejected upstream and is an error here.
func Parse(fileType constants.FileType, data []byte) (*Result, error) {
	switch fileType {
	case constants.FileTypeCSV:
		return ParseCSV(data)
	case constants.FileTypeExcel:
		return ParseExcel(data)
	case constants.FileTypeJSON:
		return ParseJSON(data)
	default:
		return nil, common.ParseError(fmt.Sprintf("unsupported file type %q for structured parsing", fileType), nil)
	}
}

// formatValue normalizes a decoded scalar to its string form so rows
// compare equal across CSV, Excel and JSON sources.
func formatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", t)
	}
}
