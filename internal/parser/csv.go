package parser

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"github.com/carbonlens/emissions-tracker/internal/common"
)

// ParseCSV reads header-driven CSV: the first row names the columns,
// every following row becomes one record.
func ParseCSV(data []byte) (*Result, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err == io.EOF {
		return nil, common.ParseError("csv file is empty", nil)
	}
	if err != nil {
		return nil, common.ParseError("reading csv header", err)
	}
	headers := make([]string, len(header))
	for i, h := range header {
		headers[i] = strings.TrimSpace(h)
	}

	rows := make([]map[string]string, 0)
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, common.ParseError("reading csv row", err)
		}
		row := make(map[string]string, len(headers))
		for i, h := range headers {
			if i < len(record) {
				row[h] = strings.TrimSpace(record[i])
			}
		}
		rows = append(rows, row)
	}

	return &Result{Headers: headers, Rows: rows, RowCount: len(rows)}, nil
}
