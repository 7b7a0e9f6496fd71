package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/ekaya-inc/contig-alias/pkg/config"
	"github.com/ekaya-inc/contig-alias/pkg/services"
)

// SequenceHandler serves lookups that start from a sequence rather than an assembly.
type SequenceHandler struct {
	lookupService services.LookupService
	cfg           *config.Config
	logger        *zap.Logger
}

// NewSequenceHandler creates a new sequence handler.
func NewSequenceHandler(lookupService services.LookupService, cfg *config.Config, logger *zap.Logger) *SequenceHandler {
	return &SequenceHandler{
		lookupService: lookupService,
		cfg:           cfg,
		logger:        logger,
	}
}

// RegisterRoutes registers the sequence routes on the given mux.
func (h *SequenceHandler) RegisterRoutes(mux *http.ServeMux, scope ScopeMiddleware) {
	mux.HandleFunc("GET /api/sequences/{accession}", scope(h.ListByAccession))
	mux.HandleFunc("GET /api/sequences/{accession}/assemblies", scope(h.ListAssemblies))
	mux.HandleFunc("GET /api/taxa/{taxid}/sequences", scope(h.ListByName))
}

// ListByAccession handles GET /api/sequences/{accession}
func (h *SequenceHandler) ListByAccession(w http.ResponseWriter, r *http.Request) {
	accession, ok := ParseAccession(w, r, h.logger)
	if !ok {
		return
	}
	page, ok := ParsePageRequest(w, r, h.cfg.Pagination, h.logger)
	if !ok {
		return
	}

	result, err := h.lookupService.ListSequencesByAccession(r.Context(), accession, page)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusOK, result); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// ListAssemblies handles GET /api/sequences/{accession}/assemblies
func (h *SequenceHandler) ListAssemblies(w http.ResponseWriter, r *http.Request) {
	accession, ok := ParseAccession(w, r, h.logger)
	if !ok {
		return
	}

	assemblies, err := h.lookupService.ListAssembliesBySequence(r.Context(), accession)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusOK, toAssemblySummaries(assemblies)); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// ListByName handles GET /api/taxa/{taxid}/sequences?name=&name_type=
func (h *SequenceHandler) ListByName(w http.ResponseWriter, r *http.Request) {
	taxid, ok := ParseTaxid(w, r, "taxid", h.logger)
	if !ok {
		return
	}
	nameType, name, ok := ParseSequenceName(w, r, h.logger)
	if !ok {
		return
	}
	page, ok := ParsePageRequest(w, r, h.cfg.Pagination, h.logger)
	if !ok {
		return
	}

	result, err := h.lookupService.ListSequencesByName(r.Context(), nameType, name, taxid, page)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusOK, result); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
