package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/carbonlens/emissions-tracker/constants"
	"github.com/carbonlens/emissions-tracker/internal/llm"
)

// ExtractRecords implements llm.Extractor. Text kinds go inline in the
// user message; pdf/image content is attached as a base64 data URL for
// the vision path. One call per file.
func (c *Client) ExtractRecords(ctx context.Context, req llm.ExtractRequest) ([]llm.ExtractedRecord, []byte, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.log.Info("llm.extract.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"file_type", req.FileType,
		"filename", req.Filename,
		"content_bytes", len(req.Content),
	)

	schema := llm.BuildExtractionJSONSchema()
	body := map[string]any{
		"model":       c.cfg.Model,
		"temperature": c.cfg.Temperature,
		"messages":    c.buildMessages(req, schema),
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	raw, httpErr := c.post(ctx, endpoint, body)
	if httpErr != nil {
		c.log.Error("llm.extract.http_error",
			"req_id", rid, "error", httpErr,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, nil, httpErr
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		c.log.Error("llm.extract.decode_error",
			"req_id", rid, "error", err, "raw_bytes", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, raw, fmt.Errorf("decode openai response: %w", err)
	}
	if len(cc.Choices) == 0 {
		c.log.Error("llm.extract.no_choices", "req_id", rid,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, raw, fmt.Errorf("no choices in openai response")
	}

	content := strings.TrimSpace(cc.Choices[0].Message.Content)
	span, err := llm.LocateJSONArray(content)
	if err != nil {
		c.log.Error("llm.extract.no_json_array",
			"req_id", rid, "error", err, "content_bytes", len(content),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, []byte(content), fmt.Errorf("locate json array: %w", err)
	}
	rawContent := []byte(span)

	if err := llm.ValidateJSONAgainstSchema(schema, rawContent); err != nil {
		c.log.Error("llm.extract.schema_validation_failed",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, rawContent, fmt.Errorf("schema validation failed: %w", err)
	}

	var out []llm.ExtractedRecord
	if err := json.Unmarshal(rawContent, &out); err != nil {
		c.log.Error("llm.extract.unmarshal_failed",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, rawContent, fmt.Errorf("unmarshal records: %w", err)
	}

	c.log.Info("llm.extract.ok",
		"req_id", rid,
		"records", len(out),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, rawContent, nil
}

func (c *Client) buildMessages(req llm.ExtractRequest, schema map[string]any) []map[string]any {
	sys := strings.Join([]string{
		"You extract carbon emission activity data from documents.",
		"Return ONLY a JSON array that matches the provided JSON Schema.",
		"Each element is one material/fuel/activity line with its quantity.",
		"Use numeric amounts without thousands separators.",
		"Category, when identifiable, is one of scope_1, scope_2, scope_3.",
		"If nothing can be extracted, return an empty array [].",
	}, " ")

	switch req.FileType {
	case constants.FileTypePDF, constants.FileTypeImage:
		return []map[string]any{
			{"role": "system", "content": sys},
			{"role": "user", "content": []map[string]any{
				{"type": "text", "text": "Extract all emission entries from the attached document (" + req.Filename + ")."},
				{"type": "image_url", "image_url": map[string]any{"url": llm.DataURL(req.Filename, req.Content)}},
			}},
			{"role": "system", "content": "JSON Schema:\n" + mustJSON(schema)},
		}
	default:
		return []map[string]any{
			{"role": "system", "content": sys},
			{"role": "user", "content": "Extract all emission entries from this document (" + req.Filename + "):\n\n" + string(req.Content)},
			{"role": "system", "content": "JSON Schema:\n" + mustJSON(schema)},
		}
	}
}

func (c *Client) post(ctx context.Context, url string, body map[string]any) ([]byte, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openai http error: %w", err)
	}
	defer func(body io.ReadCloser) {
		if err := body.Close(); err != nil {
			c.log.Warn("openai response body close error", "error", err)
		}
	}(resp.Body)

	buf := new(bytes.Buffer)
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return nil, fmt.Errorf("read openai response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("openai status %d: %s", resp.StatusCode, buf.String())
	}
	return buf.Bytes(), nil
}

func mustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(b)
}
