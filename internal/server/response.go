package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/Ning0612/nasbrowser/internal/domain"
)

type errorResponse struct {
	Error     string   `json:"error"`
	RequestID string   `json:"request_id,omitempty"`
	Files     []string `json:"files,omitempty"`
}

type uploadResponse struct {
	Uploaded int      `json:"uploaded"`
	Files    []string `json:"files"`
	Skipped  int      `json:"skipped"`
}

type createFolderResponse struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

type deleteResponse struct {
	Deleted string `json:"deleted"`
	Parent  string `json:"parent"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError reports err with the status its kind maps to
func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), errorResponse{
		Error:     err.Error(),
		RequestID: w.Header().Get(headerRequestID),
	})
}

// statusFor maps domain errors onto HTTP status codes
func statusFor(err error) int {
	var tooLarge *http.MaxBytesError

	switch {
	case errors.Is(err, domain.ErrUnsafePath), errors.Is(err, domain.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrTargetMissing),
		errors.Is(err, domain.ErrNotFile):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrNameEmpty),
		errors.Is(err, domain.ErrInvalidName),
		errors.Is(err, domain.ErrNothingSelected):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrAlreadyExists):
		return http.StatusConflict
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

// escapePath escapes each segment of a slash-separated relative path
func escapePath(rel string) string {
	parts := strings.Split(rel, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}

// parentOf returns the directory a client returns to after deleting rel
func parentOf(rel string) string {
	cleaned := path.Clean("/" + strings.ReplaceAll(rel, "\\", "/"))
	return strings.TrimPrefix(path.Dir(cleaned), "/")
}
