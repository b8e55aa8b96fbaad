package parser

import (
	"encoding/json"
	"sort"

	"github.com/carbonlens/emissions-tracker/internal/common"
)

// ParseJSON accepts a top-level array of objects or a single object
// (wrapped into a one-row array). Any other top-level shape fails.
func ParseJSON(data []byte) (*Result, error) {
	var top any
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, common.ParseError("invalid json", err)
	}

	var objects []map[string]any
	switch t := top.(type) {
	case []any:
		objects = make([]map[string]any, 0, len(t))
		for _, item := range t {
			obj, ok := item.(map[string]any)
			if !ok {
				return nil, common.ParseError("json array must contain objects", nil)
			}
			objects = append(objects, obj)
		}
	case map[string]any:
		objects = []map[string]any{t}
	default:
		return nil, common.ParseError("json top-level shape must be an array or object", nil)
	}

	// Collect the union of keys; first-seen order, then alphabetical for
	// keys introduced by later rows.
	seen := make(map[string]bool)
	var headers []string
	for i, obj := range objects {
		var keys []string
		for k := range obj {
			if !seen[k] {
				keys = append(keys, k)
				seen[k] = true
			}
		}
		sort.Strings(keys)
		if i == 0 {
			headers = keys
		} else {
			headers = append(headers, keys...)
		}
	}

	rows := make([]map[string]string, 0, len(objects))
	for _, obj := range objects {
		row := make(map[string]string, len(obj))
		for k, v := range obj {
			switch v.(type) {
			case map[string]any, []any:
				b, err := json.Marshal(v)
				if err != nil {
					return nil, common.ParseError("encoding nested json value", err)
				}
				row[k] = string(b)
			default:
				row[k] = formatValue(v)
			}
		}
		rows = append(rows, row)
	}

	return &Result{Headers: headers, Rows: rows, RowCount: len(rows)}, nil
}
