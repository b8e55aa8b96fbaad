package server

import (
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/carbonlens/emissions-tracker/constants"
	"github.com/carbonlens/emissions-tracker/internal/async"
)

type uploadResponse struct {
	FileID          uuid.UUID          `json:"fileId"`
	FileType        constants.FileType `json:"fileType"`
	RequiresMapping bool               `json:"requiresMapping"`
}

// handleUpload receives one multipart file. Structured kinds park in
// needs_review until mappings arrive; unstructured kinds are enqueued
// for AI extraction.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	orgID, projectID, source, filename, data, ok := s.readUploadForm(w, r)
	if !ok {
		return
	}

	f, err := s.proc.IngestUpload(r.Context(), orgID, projectID, filename, data, source)
	if err != nil {
		RenderError(w, r, err)
		return
	}

	requiresMapping := constants.IsStructured(f.FileType)
	if !requiresMapping {
		if err := s.queue.Enqueue(r.Context(), async.Job{FileID: f.ID, SubmittedAt: time.Now().UTC()}); err != nil {
			RenderError(w, r, err)
			return
		}
	}

	WriteJSON(w, http.StatusOK, uploadResponse{
		FileID:          f.ID,
		FileType:        f.FileType,
		RequiresMapping: requiresMapping,
	})
}

// readUploadForm validates the shared multipart contract of the upload
// and import endpoints.
func (s *Server) readUploadForm(w http.ResponseWriter, r *http.Request) (orgID, projectID uuid.UUID, source constants.UploadSource, filename string, data []byte, ok bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	if err := r.ParseMultipartForm(s.maxUploadBytes); err != nil {
		WriteError(w, r, http.StatusBadRequest, "BAD_MULTIPART", "could not parse multipart form")
		return
	}

	orgID, ok1 := parseUUIDParam(w, r, r.FormValue("organization_id"), "organization_id")
	if !ok1 {
		return
	}
	projectID, ok2 := parseUUIDParam(w, r, r.FormValue("project_id"), "project_id")
	if !ok2 {
		return
	}

	source = constants.UploadSource(r.FormValue("source"))
	switch source {
	case "":
		source = constants.SourceWebUpload
	case constants.SourceWebUpload, constants.SourceMobileApp, constants.SourceCloudSync:
	default:
		WriteError(w, r, http.StatusBadRequest, "BAD_SOURCE", "source must be web_upload, mobile_app or cloud_sync")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		WriteError(w, r, http.StatusBadRequest, "FILE_REQUIRED", "multipart field 'file' is required")
		return
	}
	defer func() { _ = file.Close() }()

	data, err = io.ReadAll(file)
	if err != nil {
		WriteError(w, r, http.StatusBadRequest, "FILE_UNREADABLE", "could not read uploaded file")
		return
	}
	if len(data) == 0 {
		WriteError(w, r, http.StatusBadRequest, "FILE_EMPTY", "uploaded file is empty")
		return
	}

	return orgID, projectID, source, header.Filename, data, true
}

func parseUUIDParam(w http.ResponseWriter, r *http.Request, raw, name string) (uuid.UUID, bool) {
	if raw == "" {
		WriteError(w, r, http.StatusBadRequest, "MISSING_PARAM", name+" is required")
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		WriteError(w, r, http.StatusBadRequest, "BAD_PARAM", name+" must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}
