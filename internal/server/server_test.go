package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/carbonlens/emissions-tracker/constants"
	"github.com/carbonlens/emissions-tracker/internal/async"
	"github.com/carbonlens/emissions-tracker/internal/entity"
	"github.com/carbonlens/emissions-tracker/internal/export"
	"github.com/carbonlens/emissions-tracker/internal/llm"
	"github.com/carbonlens/emissions-tracker/internal/pipeline"
	"github.com/carbonlens/emissions-tracker/internal/testutil"
)

type serverEnv struct {
	handler   http.Handler
	files     *testutil.FakeFiles
	records   *testutil.FakeRecords
	extractor *testutil.StubExtractor
}

func newServerEnv(t *testing.T, extractor *testutil.StubExtractor) *serverEnv {
	t.Helper()
	if extractor == nil {
		extractor = &testutil.StubExtractor{}
	}
	files := testutil.NewFakeFiles()
	records := &testutil.FakeRecords{}
	materials := &testutil.FakeMaterials{Entries: []entity.MaterialEntry{
		{
			ID:             uuid.New(),
			Code:           "EF001",
			Name:           "Diesel",
			Category:       "scope_1",
			UnitOfMeasure:  "L",
			EmissionFactor: 2.68,
		},
	}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	proc := pipeline.NewProcessor(logger, files, materials, records,
		testutil.NewFakeSessions(), testutil.NewFakeBlobs(), extractor)
	queue := async.NewSyncQueue(proc, logger)
	exp := export.NewService(records, logger)
	srv := New(zap.NewNop(), proc, queue, exp, nil, 0)
	return &serverEnv{
		handler:   srv.Router(),
		files:     files,
		records:   records,
		extractor: extractor,
	}
}

func multipartBody(t *testing.T, fields map[string]string, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	if filename != "" {
		fw, err := w.CreateFormFile("file", filename)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := fw.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return &buf, w.FormDataContentType()
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, rec.Body.String())
	}
}

func TestHealthz(t *testing.T) {
	env := newServerEnv(t, nil)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestUploadCSVRequiresMapping(t *testing.T) {
	env := newServerEnv(t, nil)
	body, ctype := multipartBody(t, map[string]string{
		"organization_id": uuid.New().String(),
		"project_id":      uuid.New().String(),
	}, "data.csv", "Material,Qty,Unit\nDiesel,50,L\n")

	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", ctype)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		FileID          uuid.UUID `json:"fileId"`
		FileType        string    `json:"fileType"`
		RequiresMapping bool      `json:"requiresMapping"`
	}
	decodeJSON(t, rec, &resp)
	if resp.FileType != "csv" || !resp.RequiresMapping {
		t.Fatalf("response = %+v", resp)
	}
	f, err := env.files.GetByID(context.Background(), resp.FileID)
	if err != nil {
		t.Fatalf("file not registered: %v", err)
	}
	if f.Status != constants.StatusNeedsReview {
		t.Fatalf("file status = %q, want needs_review", f.Status)
	}
	if env.extractor.CallCount() != 0 {
		t.Fatal("structured upload must not trigger extraction")
	}
}

func TestUploadTxtProcessesInline(t *testing.T) {
	extractor := &testutil.StubExtractor{Records: []llm.ExtractedRecord{
		{MaterialName: "Diesel", Category: "scope_1"},
	}}
	env := newServerEnv(t, extractor)
	body, ctype := multipartBody(t, map[string]string{
		"organization_id": uuid.New().String(),
		"project_id":      uuid.New().String(),
	}, "receipt.txt", "diesel receipt")

	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", ctype)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	// SyncQueue runs the pipeline before the response is written.
	if extractor.CallCount() != 1 {
		t.Fatalf("extractor calls = %d, want 1", extractor.CallCount())
	}
	if len(env.records.All()) != 1 {
		t.Fatalf("records = %d, want 1", len(env.records.All()))
	}
}

func TestUploadValidation(t *testing.T) {
	env := newServerEnv(t, nil)

	// Missing organization_id.
	body, ctype := multipartBody(t, map[string]string{
		"project_id": uuid.New().String(),
	}, "data.csv", "A\n1\n")
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", ctype)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var envlp ErrorEnvelope
	decodeJSON(t, rec, &envlp)
	if envlp.Error.Code != "MISSING_PARAM" {
		t.Fatalf("error code = %q", envlp.Error.Code)
	}
	if envlp.RequestID == "" {
		t.Fatal("error envelope missing request id")
	}

	// Bad source value.
	body, ctype = multipartBody(t, map[string]string{
		"organization_id": uuid.New().String(),
		"project_id":      uuid.New().String(),
		"source":          "carrier_pigeon",
	}, "data.csv", "A\n1\n")
	req = httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", ctype)
	rec = httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad source status = %d, want 400", rec.Code)
	}

	// No file part.
	body, ctype = multipartBody(t, map[string]string{
		"organization_id": uuid.New().String(),
		"project_id":      uuid.New().String(),
	}, "", "")
	req = httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", ctype)
	rec = httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing file status = %d, want 400", rec.Code)
	}
}

func TestFieldMappingFlow(t *testing.T) {
	env := newServerEnv(t, nil)

	// Upload a CSV first.
	body, ctype := multipartBody(t, map[string]string{
		"organization_id": uuid.New().String(),
		"project_id":      uuid.New().String(),
	}, "data.csv", "Material,Qty,Unit\nDiesel,50,L\n")
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", ctype)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	var up struct {
		FileID uuid.UUID `json:"fileId"`
	}
	decodeJSON(t, rec, &up)

	// Suggestions.
	rec = httptest.NewRecorder()
	env.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/field-mapping?file_id="+up.FileID.String(), nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("suggest status = %d, body %s", rec.Code, rec.Body.String())
	}
	var preview struct {
		Headers     []string `json:"headers"`
		RowCount    int      `json:"row_count"`
		Suggestions []struct {
			SourceColumn string `json:"source_column"`
			TargetField  string `json:"target_field"`
		} `json:"suggestions"`
	}
	decodeJSON(t, rec, &preview)
	if preview.RowCount != 1 || len(preview.Suggestions) != 3 {
		t.Fatalf("preview = %+v", preview)
	}

	// Commit.
	target := func(s string) *string { return &s }
	payload, _ := json.Marshal(map[string]any{
		"file_id": up.FileID,
		"mappings": []entity.FieldMapping{
			{SourceColumn: "Material", TargetField: target("material_name")},
			{SourceColumn: "Qty", TargetField: target("amount")},
			{SourceColumn: "Unit", TargetField: target("unit_of_measure")},
		},
	})
	req = httptest.NewRequest(http.MethodPost, "/api/field-mapping", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("commit status = %d, body %s", rec.Code, rec.Body.String())
	}
	var session struct {
		Status  string `json:"status"`
		Total   int    `json:"total"`
		Matched int    `json:"matched"`
	}
	decodeJSON(t, rec, &session)
	if session.Status != "completed" || session.Total != 1 || session.Matched != 1 {
		t.Fatalf("session = %+v", session)
	}
	if len(env.records.All()) != 1 {
		t.Fatalf("records = %d, want 1", len(env.records.All()))
	}
}

func TestCommitMappingsValidation(t *testing.T) {
	env := newServerEnv(t, nil)
	cases := []string{
		`{}`,
		`{"file_id":"` + uuid.New().String() + `"}`,
		`not json`,
	}
	for _, payload := range cases {
		req := httptest.NewRequest(http.MethodPost, "/api/field-mapping", strings.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		env.handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("payload %q: status = %d, want 400", payload, rec.Code)
		}
	}
}

func TestImportWithInlineMappings(t *testing.T) {
	env := newServerEnv(t, nil)
	mappings := `[{"source_column":"Material","target_field":"material_name"},` +
		`{"source_column":"Qty","target_field":"amount"}]`
	body, ctype := multipartBody(t, map[string]string{
		"organization_id": uuid.New().String(),
		"project_id":      uuid.New().String(),
		"mappings":        mappings,
	}, "data.csv", "Material,Qty\nDiesel,50\n")

	req := httptest.NewRequest(http.MethodPost, "/api/import", body)
	req.Header.Set("Content-Type", ctype)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var session struct {
		Status  string `json:"status"`
		Matched int    `json:"matched"`
	}
	decodeJSON(t, rec, &session)
	if session.Status != "completed" || session.Matched != 1 {
		t.Fatalf("session = %+v", session)
	}
}

func TestMobileUpload(t *testing.T) {
	extractor := &testutil.StubExtractor{Records: []llm.ExtractedRecord{
		{MaterialName: "Diesel", Category: "scope_1"},
		{MaterialName: "mystery", Category: "scope_3"},
	}}
	env := newServerEnv(t, extractor)

	payload, _ := json.Marshal(map[string]string{
		"filename":        "receipt.jpg",
		"content_base64":  base64.StdEncoding.EncodeToString([]byte("jpegbytes")),
		"organization_id": uuid.New().String(),
		"project_id":      uuid.New().String(),
	})
	req := httptest.NewRequest(http.MethodPost, "/api/mobile/upload", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Status      string `json:"status"`
		Records     int    `json:"records"`
		Matched     int    `json:"matched"`
		AIProcessed int    `json:"aiProcessed"`
	}
	decodeJSON(t, rec, &resp)
	if resp.Status != "completed" || resp.Records != 2 || resp.Matched != 1 || resp.AIProcessed != 1 {
		t.Fatalf("response = %+v", resp)
	}
}

func TestMobileUploadBadBase64(t *testing.T) {
	env := newServerEnv(t, nil)
	payload, _ := json.Marshal(map[string]string{
		"filename":        "receipt.jpg",
		"content_base64":  "!!!not-base64!!!",
		"organization_id": uuid.New().String(),
		"project_id":      uuid.New().String(),
	})
	req := httptest.NewRequest(http.MethodPost, "/api/mobile/upload", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestExportCSV(t *testing.T) {
	env := newServerEnv(t, nil)
	orgID, projectID := uuid.New(), uuid.New()
	amount, factor, total := 50.0, 2.68, 134.0
	_ = env.records.CreateBatch(context.Background(), []entity.EmissionRecord{{
		ID:             uuid.New(),
		OrganizationID: orgID,
		ProjectID:      projectID,
		MaterialCode:   "EF001",
		MaterialName:   "Diesel",
		Category:       "scope_1",
		UnitOfMeasure:  "L",
		Amount:         &amount,
		EmissionFactor: &factor,
		TotalEmissions: &total,
		SourceType:     constants.SourceWebUpload,
		MatchStatus:    constants.MatchStatusMatched,
	}})

	url := "/api/records/export?format=csv&organization_id=" + orgID.String() + "&project_id=" + projectID.String()
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, url, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Fatalf("content type = %q", ct)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Material Code") || !strings.Contains(body, "Diesel") || !strings.Contains(body, "134") {
		t.Fatalf("csv body = %q", body)
	}
}

func TestExportBadFormat(t *testing.T) {
	env := newServerEnv(t, nil)
	url := "/api/records/export?format=toml&organization_id=" + uuid.New().String() + "&project_id=" + uuid.New().String()
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, url, nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
