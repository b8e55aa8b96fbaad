package parser

// DefaultSampleCount is how many example values per column the
// mapping UI gets unless the caller asks for more.
const DefaultSampleCount = 5

// ExtractSamples returns up to n example values per column, skipping
// rows that do not carry the column. n <= 0 uses the default.
func ExtractSamples(headers []string, rows []map[string]string, n int) map[string][]string {
	if n <= 0 {
		n = DefaultSampleCount
	}
	samples := make(map[string][]string, len(headers))
	for _, h := range headers {
		if h == "" {
			continue
		}
		vals := make([]string, 0, n)
		for _, row := range rows {
			v, ok := row[h]
			if !ok {
				continue
			}
			vals = append(vals, v)
			if len(vals) == n {
				break
			}
		}
		samples[h] = vals
	}
	return samples
}
