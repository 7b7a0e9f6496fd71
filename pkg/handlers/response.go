package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/ekaya-inc/contig-alias/pkg/apperrors"
	"github.com/ekaya-inc/contig-alias/pkg/assemblyreport"
	"github.com/ekaya-inc/contig-alias/pkg/logging"
)

// ErrorResponse writes a JSON error response and returns any encoding error.
func ErrorResponse(w http.ResponseWriter, statusCode int, errorCode, message string) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(map[string]string{
		"error":   errorCode,
		"message": message,
	})
}

// WriteJSON writes a JSON response and returns any encoding error.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	if statusCode != http.StatusOK {
		w.WriteHeader(statusCode)
	}
	return json.NewEncoder(w).Encode(data)
}

// writeServiceError maps a service error onto a status code and error envelope.
// Unexpected errors are logged and reported as 500 without detail.
func writeServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	var maxBytes *http.MaxBytesError

	status, code, message := http.StatusInternalServerError, "internal_error", "Internal server error"
	switch {
	case assemblyreport.IsInvalidReport(err):
		status, code, message = http.StatusUnprocessableEntity, "invalid_report", err.Error()
	case errors.As(err, &maxBytes), errors.Is(err, apperrors.ErrReportTooLarge):
		status, code, message = http.StatusRequestEntityTooLarge, "report_too_large", "Assembly report exceeds the upload limit"
	case errors.Is(err, apperrors.ErrNotFound):
		status, code, message = http.StatusNotFound, "not_found", "Not found"
	case errors.Is(err, apperrors.ErrConflict):
		status, code, message = http.StatusConflict, "conflict", err.Error()
	case errors.Is(err, apperrors.ErrInvalidPageRequest):
		status, code, message = http.StatusBadRequest, "invalid_page_request", err.Error()
	case errors.Is(err, apperrors.ErrInvalidNameType):
		status, code, message = http.StatusBadRequest, "invalid_name_type", err.Error()
	default:
		logger.Error("Request failed", zap.String("error", logging.SanitizeError(err)))
	}

	if err := ErrorResponse(w, status, code, message); err != nil {
		logger.Error("Failed to write error response", zap.Error(err))
	}
}
