package server

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/carbonlens/emissions-tracker/constants"
)

type mobileUploadRequest struct {
	Filename       string `json:"filename"`
	ContentBase64  string `json:"content_base64"`
	OrganizationID string `json:"organization_id"`
	ProjectID      string `json:"project_id"`
}

type mobileUploadResponse struct {
	FileID      uuid.UUID                  `json:"fileId"`
	FileType    constants.FileType         `json:"fileType"`
	Status      constants.ProcessingStatus `json:"status"`
	Records     int                        `json:"records"`
	Matched     int                        `json:"matched"`
	AIProcessed int                        `json:"aiProcessed"`
}

// handleMobileUpload takes a base64 payload and runs AI extraction
// immediately, regardless of file kind. Mobile clients want a final
// answer in one round trip.
func (s *Server) handleMobileUpload(w http.ResponseWriter, r *http.Request) {
	var req mobileUploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "BAD_JSON", "could not decode request body")
		return
	}
	if req.Filename == "" || req.ContentBase64 == "" {
		WriteError(w, r, http.StatusBadRequest, "MISSING_PARAM", "filename and content_base64 are required")
		return
	}
	orgID, ok := parseUUIDParam(w, r, req.OrganizationID, "organization_id")
	if !ok {
		return
	}
	projectID, ok := parseUUIDParam(w, r, req.ProjectID, "project_id")
	if !ok {
		return
	}

	data, err := base64.StdEncoding.DecodeString(req.ContentBase64)
	if err != nil {
		WriteError(w, r, http.StatusBadRequest, "BAD_BASE64", "content_base64 is not valid base64")
		return
	}
	if len(data) == 0 {
		WriteError(w, r, http.StatusBadRequest, "FILE_EMPTY", "decoded content is empty")
		return
	}

	f, err := s.proc.IngestUpload(r.Context(), orgID, projectID, req.Filename, data, constants.SourceMobileApp)
	if err != nil {
		RenderError(w, r, err)
		return
	}

	if err := s.proc.ProcessFile(r.Context(), f.ID); err != nil {
		RenderError(w, r, err)
		return
	}

	done, err := s.proc.Files.GetByID(r.Context(), f.ID)
	if err != nil {
		RenderError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, mobileUploadResponse{
		FileID:      done.ID,
		FileType:    done.FileType,
		Status:      done.Status,
		Records:     done.RecordCount,
		Matched:     done.MatchedCount,
		AIProcessed: done.AIProcessed,
	})
}
