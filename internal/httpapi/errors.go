package httpapi

import (
	"encoding/json"
	"net/http"

	"sumbench/internal/dataset"
	"sumbench/internal/engine"
	"sumbench/internal/manager"
	"sumbench/internal/pipeline"

	"sumbench/pkg/types"
)

// writeJSONError writes a consistent JSON error payload.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(types.ErrorResponse{Error: msg, Code: status})
}

// errorStatus maps the core error taxonomy to HTTP status codes.
func errorStatus(err error) int {
	switch {
	case manager.IsModelNotFound(err):
		return http.StatusNotFound
	case manager.IsModelNotAvailable(err):
		return http.StatusNotFound
	case manager.IsInsufficientMemory(err):
		return http.StatusInsufficientStorage
	case manager.IsNotResident(err), manager.IsModelUnloaded(err):
		return http.StatusConflict
	case pipeline.IsEmptyInput(err), pipeline.IsInvalidParameter(err):
		return http.StatusBadRequest
	case pipeline.IsModelNotResident(err):
		return http.StatusConflict
	case dataset.IsParseError(err):
		return http.StatusBadRequest
	case engine.IsUnavailable(err):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
