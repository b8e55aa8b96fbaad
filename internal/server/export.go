package server

import (
	"net/http"
)

// handleExport streams the project's emission records as XLSX or CSV.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	orgID, ok := parseUUIDParam(w, r, r.URL.Query().Get("organization_id"), "organization_id")
	if !ok {
		return
	}
	projectID, ok := parseUUIDParam(w, r, r.URL.Query().Get("project_id"), "project_id")
	if !ok {
		return
	}

	format := r.URL.Query().Get("format")
	switch format {
	case "", "xlsx":
		data, err := s.export.ExportXLSX(r.Context(), orgID, projectID)
		if err != nil {
			RenderError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="emissions.xlsx"`)
		_, _ = w.Write(data)
	case "csv":
		data, err := s.export.ExportCSV(r.Context(), orgID, projectID)
		if err != nil {
			RenderError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="emissions.csv"`)
		_, _ = w.Write(data)
	default:
		WriteError(w, r, http.StatusBadRequest, "BAD_FORMAT", "format must be xlsx or csv")
	}
}
