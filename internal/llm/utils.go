package llm

import (
	"encoding/base64"
	"fmt"
	"mime"
	"path/filepath"
	"strings"

	"github.com/carbonlens/emissions-tracker/constants"
)

// LocateJSONArray pulls the first top-level `[...]` span out of a
// free-form model response. Models wrap output in prose or code fences
// often enough that this cannot just be json.Unmarshal.
func LocateJSONArray(s string) (string, error) {
	start := strings.Index(s, "[")
	if start < 0 {
		return "", fmt.Errorf("no JSON array found in response")
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return s[start : i+1], nil
			}
		}
	}
	return "", fmt.Errorf("unterminated JSON array in response")
}

// DataURL base64-encodes content for inline attachment to the model.
func DataURL(filename string, content []byte) string {
	ext := strings.ToLower(filepath.Ext(filename))
	mt := mime.TypeByExtension(ext)
	if mt == "" {
		switch constants.NormalizeExt(ext) {
		case "jpg", "jpeg":
			mt = "image/jpeg"
		case "png":
			mt = "image/png"
		case "pdf":
			mt = "application/pdf"
		default:
			mt = "application/octet-stream"
		}
	}
	return "data:" + mt + ";base64," + base64.StdEncoding.EncodeToString(content)
}
