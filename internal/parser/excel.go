package parser

import (
	"bytes"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/carbonlens/emissions-tracker/internal/common"
)

// ParseExcel reads the first sheet of a workbook. Row 1 is treated as
// the header row, matching the CSV convention.
func ParseExcel(data []byte) (*Result, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, common.ParseError("opening workbook", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, common.ParseError("workbook has no sheets", nil)
	}
	raw, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, common.ParseError("reading sheet rows", err)
	}
	if len(raw) == 0 {
		return nil, common.ParseError("sheet is empty", nil)
	}

	headers := make([]string, len(raw[0]))
	for i, h := range raw[0] {
		headers[i] = strings.TrimSpace(h)
	}

	rows := make([]map[string]string, 0, len(raw)-1)
	for _, cells := range raw[1:] {
		row := make(map[string]string, len(headers))
		for i, h := range headers {
			if h == "" {
				continue
			}
			if i < len(cells) {
				row[h] = strings.TrimSpace(cells[i])
			}
		}
		rows = append(rows, row)
	}

	return &Result{Headers: headers, Rows: rows, RowCount: len(rows)}, nil
}
