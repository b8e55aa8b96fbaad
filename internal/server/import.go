package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/carbonlens/emissions-tracker/constants"
	"github.com/carbonlens/emissions-tracker/internal/async"
	"github.com/carbonlens/emissions-tracker/internal/entity"
)

// handleImport is the direct multi-mode entrypoint: a multipart file
// plus an optional inline `mappings` JSON array. With mappings, a
// structured file runs the bulk path in one request; without, the
// behavior matches /api/upload.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	orgID, projectID, source, filename, data, ok := s.readUploadForm(w, r)
	if !ok {
		return
	}

	var mappings []entity.FieldMapping
	if raw := r.FormValue("mappings"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &mappings); err != nil {
			WriteError(w, r, http.StatusBadRequest, "BAD_MAPPINGS", "mappings must be a JSON array of field mappings")
			return
		}
	}

	f, err := s.proc.IngestUpload(r.Context(), orgID, projectID, filename, data, source)
	if err != nil {
		RenderError(w, r, err)
		return
	}

	structured := constants.IsStructured(f.FileType)
	switch {
	case structured && len(mappings) > 0:
		session, err := s.proc.RunBulkImport(r.Context(), f.ID, mappings)
		if err != nil {
			RenderError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusOK, toSessionResponse(session))
	case structured:
		WriteJSON(w, http.StatusOK, uploadResponse{FileID: f.ID, FileType: f.FileType, RequiresMapping: true})
	default:
		if err := s.queue.Enqueue(r.Context(), async.Job{FileID: f.ID, SubmittedAt: time.Now().UTC()}); err != nil {
			RenderError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusOK, uploadResponse{FileID: f.ID, FileType: f.FileType, RequiresMapping: false})
	}
}
