package handlers

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/ekaya-inc/contig-alias/pkg/config"
	"github.com/ekaya-inc/contig-alias/pkg/logging"
	"github.com/ekaya-inc/contig-alias/pkg/models"
	"github.com/ekaya-inc/contig-alias/pkg/sql"
)

// ParsePageRequest reads the page and size query parameters.
// page defaults to 0 and size to the configured default page size.
// Returns false (after writing an error response) when either is out of range.
func ParsePageRequest(w http.ResponseWriter, r *http.Request, cfg config.PaginationConfig, logger *zap.Logger) (models.PageRequest, bool) {
	req := models.PageRequest{Page: 0, Size: cfg.DefaultPageSize}
	q := r.URL.Query()

	if s := q.Get("page"); s != "" {
		page, err := strconv.Atoi(s)
		if err != nil || page < 0 {
			writeBadRequest(w, "invalid_page_request", "page must be a non-negative integer", logger)
			return models.PageRequest{}, false
		}
		req.Page = page
	}

	if s := q.Get("size"); s != "" {
		size, err := strconv.Atoi(s)
		if err != nil || size < 1 || size > cfg.MaxPageSize {
			writeBadRequest(w, "invalid_page_request",
				"size must be an integer between 1 and "+strconv.Itoa(cfg.MaxPageSize), logger)
			return models.PageRequest{}, false
		}
		req.Size = size
	}

	return req, true
}

// ParseTaxid parses a taxonomy id from the named path parameter or, when
// pathParam is empty, from the taxid query parameter.
func ParseTaxid(w http.ResponseWriter, r *http.Request, pathParam string, logger *zap.Logger) (int64, bool) {
	raw := r.URL.Query().Get("taxid")
	if pathParam != "" {
		raw = r.PathValue(pathParam)
	}

	taxid, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || taxid < 0 {
		writeBadRequest(w, "invalid_taxid", "taxid must be a non-negative integer", logger)
		return 0, false
	}
	return taxid, true
}

// ParseAccession extracts the accession path parameter.
// Expects path parameter: accession
func ParseAccession(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (string, bool) {
	return parseLookupValue(w, "accession", r.PathValue("accession"), logger)
}

// ParseSequenceName extracts the name and name_type query parameters.
// name_type defaults to genbank.
func ParseSequenceName(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (models.SequenceNameType, string, bool) {
	q := r.URL.Query()

	nameType := q.Get("name_type")
	if nameType == "" {
		nameType = string(models.NameTypeGenbank)
	}
	if !models.IsValidNameType(nameType) {
		writeBadRequest(w, "invalid_name_type", "name_type must be one of genbank, ucsc, ena", logger)
		return "", "", false
	}

	name, ok := parseLookupValue(w, "name", q.Get("name"), logger)
	if !ok {
		return "", "", false
	}
	return models.SequenceNameType(nameType), name, true
}

// parseLookupValue rejects empty values and values libinjection flags as SQL
// injection attempts. Queries are parameterized; this keeps obvious attacks out
// of the database and the logs.
func parseLookupValue(w http.ResponseWriter, param, value string, logger *zap.Logger) (string, bool) {
	if value == "" {
		writeBadRequest(w, "missing_"+param, param+" is required", logger)
		return "", false
	}

	if result := sql.CheckParameterForInjection(param, value); result != nil {
		logger.Warn("Rejected lookup parameter",
			zap.String("param", param),
			zap.String("value", logging.SanitizeValue(value)),
			zap.String("fingerprint", result.Fingerprint))
		writeBadRequest(w, "invalid_"+param, "Invalid "+param, logger)
		return "", false
	}

	return value, true
}

func writeBadRequest(w http.ResponseWriter, code, message string, logger *zap.Logger) {
	if err := ErrorResponse(w, http.StatusBadRequest, code, message); err != nil {
		logger.Error("Failed to write error response", zap.Error(err))
	}
}
