package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/carbonlens/emissions-tracker/internal/common"
)

type ErrorEnvelope struct {
	Error     ErrorBody `json:"error"`
	RequestID string    `json:"requestId,omitempty"`
}

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	WriteJSON(w, status, ErrorEnvelope{
		Error:     ErrorBody{Code: code, Message: message},
		RequestID: common.RequestIDFromContext(r.Context()),
	})
}

// RenderError maps application errors onto the HTTP taxonomy:
// validation 400, auth 401, not-found 404, everything else 500.
func RenderError(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *common.AppError
	code := "INTERNAL"
	msg := "internal error"

	if errors.As(err, &appErr) {
		code = appErr.Code
		msg = appErr.Message
	}

	switch {
	case errors.Is(err, common.ErrInvalidInput), errors.Is(err, common.ErrParse):
		if code == "INTERNAL" {
			code = "INVALID_INPUT"
		}
		WriteError(w, r, http.StatusBadRequest, code, msg)
	case errors.Is(err, common.ErrUnauthorized):
		WriteError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", msg)
	case errors.Is(err, common.ErrNotFound):
		if code == "INTERNAL" {
			code = "NOT_FOUND"
		}
		WriteError(w, r, http.StatusNotFound, code, msg)
	default:
		WriteError(w, r, http.StatusInternalServerError, code, msg)
	}
}
