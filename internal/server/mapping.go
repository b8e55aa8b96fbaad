package server

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/carbonlens/emissions-tracker/constants"
	"github.com/carbonlens/emissions-tracker/internal/entity"
)

// handleSuggestMappings parses the stored file and returns headers,
// sample values and suggested mappings for the UI.
func (s *Server) handleSuggestMappings(w http.ResponseWriter, r *http.Request) {
	fileID, ok := parseUUIDParam(w, r, r.URL.Query().Get("file_id"), "file_id")
	if !ok {
		return
	}
	preview, err := s.proc.SuggestMappings(r.Context(), fileID)
	if err != nil {
		RenderError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, preview)
}

type commitMappingsRequest struct {
	FileID   uuid.UUID             `json:"file_id"`
	Mappings []entity.FieldMapping `json:"mappings"`
}

type sessionResponse struct {
	SessionID   uuid.UUID                  `json:"sessionId"`
	FileID      uuid.UUID                  `json:"fileId"`
	Status      constants.ProcessingStatus `json:"status"`
	Total       int                        `json:"total"`
	Processed   int                        `json:"processed"`
	Matched     int                        `json:"matched"`
	AIProcessed int                        `json:"aiProcessed"`
	NeedsReview int                        `json:"needsReview"`
}

// handleCommitMappings accepts the chosen mappings and runs the bulk
// import for the file.
func (s *Server) handleCommitMappings(w http.ResponseWriter, r *http.Request) {
	var req commitMappingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "BAD_JSON", "could not decode request body")
		return
	}
	if req.FileID == uuid.Nil {
		WriteError(w, r, http.StatusBadRequest, "MISSING_PARAM", "file_id is required")
		return
	}
	if len(req.Mappings) == 0 {
		WriteError(w, r, http.StatusBadRequest, "MAPPINGS_REQUIRED", "mappings must not be empty")
		return
	}

	session, err := s.proc.RunBulkImport(r.Context(), req.FileID, req.Mappings)
	if err != nil {
		RenderError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, toSessionResponse(session))
}

func toSessionResponse(session *entity.BulkImportSession) sessionResponse {
	return sessionResponse{
		SessionID:   session.ID,
		FileID:      session.FileID,
		Status:      session.Status,
		Total:       session.Total,
		Processed:   session.Processed,
		Matched:     session.Counts.Matched,
		AIProcessed: session.Counts.AIProcessed,
		NeedsReview: session.Counts.NeedsReview,
	}
}
