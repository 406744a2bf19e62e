package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"mercator-hq/underwriter/pkg/catalog"
	"mercator-hq/underwriter/pkg/documents"
	"mercator-hq/underwriter/pkg/evaluation"
)

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail describes an API error.
type ErrorDetail struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code,omitempty"`
}

// Error types.
const (
	ErrorTypeInvalidRequest     = "invalid_request_error"
	ErrorTypeNotFound           = "not_found"
	ErrorTypeServiceUnavailable = "service_unavailable"
	ErrorTypeServerError        = "server_error"
)

// Error codes.
const (
	CodeInvalidJSON      = "invalid_json"
	CodeInvalidValue     = "invalid_value"
	CodeBodyTooLarge     = "body_too_large"
	CodeLoanNotFound     = "loan_not_found"
	CodeDocumentNotFound = "document_not_found"
	CodeRecordNotFound   = "record_not_found"
	CodeCatalogNotLoaded = "catalog_not_loaded"
	CodeNotConfigured    = "not_configured"
	CodeStorage          = "storage_error"
	CodeInternal         = "internal_error"
)

func newErrorResponse(errType, code, message string) ErrorResponse {
	return ErrorResponse{Error: ErrorDetail{Message: message, Type: errType, Code: code}}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, errType, code, message string) {
	writeJSON(w, status, newErrorResponse(errType, code, message))
}

// writeServiceError maps evaluation and storage errors to responses.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var maxBytes *http.MaxBytesError
	switch {
	case errors.Is(err, catalog.ErrNotLoaded):
		writeError(w, http.StatusServiceUnavailable, ErrorTypeServiceUnavailable, CodeCatalogNotLoaded, err.Error())
	case errors.Is(err, evaluation.ErrNoDocumentStore):
		writeError(w, http.StatusServiceUnavailable, ErrorTypeServiceUnavailable, CodeNotConfigured, err.Error())
	case errors.Is(err, documents.ErrNotFound):
		writeError(w, http.StatusNotFound, ErrorTypeNotFound, CodeLoanNotFound, "no documents stored for loan")
	case errors.Is(err, documents.ErrInvalidKey):
		writeError(w, http.StatusBadRequest, ErrorTypeInvalidRequest, CodeInvalidValue, err.Error())
	case errors.As(err, &maxBytes):
		writeError(w, http.StatusRequestEntityTooLarge, ErrorTypeInvalidRequest, CodeBodyTooLarge, "request body too large")
	default:
		s.logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, ErrorTypeServerError, CodeStorage, "internal storage error")
	}
}
