package handlers

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ekaya-inc/contig-alias/pkg/apperrors"
	"github.com/ekaya-inc/contig-alias/pkg/config"
	"github.com/ekaya-inc/contig-alias/pkg/logging"
	"github.com/ekaya-inc/contig-alias/pkg/models"
	"github.com/ekaya-inc/contig-alias/pkg/services"
)

// ScopeMiddleware attaches a database connection to the request context.
type ScopeMiddleware func(http.HandlerFunc) http.HandlerFunc

// AssemblySummary is the assembly representation without its sequences.
type AssemblySummary struct {
	ID                       uuid.UUID `json:"id"`
	Name                     string    `json:"name"`
	Organism                 string    `json:"organism"`
	Taxid                    int64     `json:"taxid"`
	Genbank                  *string   `json:"genbank,omitempty"`
	Refseq                   *string   `json:"refseq,omitempty"`
	IsGenbankRefseqIdentical bool      `json:"is_genbank_refseq_identical"`
	CreatedAt                time.Time `json:"created_at"`
	ChromosomeCount          *int      `json:"chromosome_count,omitempty"`
	ScaffoldCount            *int      `json:"scaffold_count,omitempty"`
}

func toAssemblySummary(a *models.Assembly) AssemblySummary {
	return AssemblySummary{
		ID:                       a.ID,
		Name:                     a.Name,
		Organism:                 a.Organism,
		Taxid:                    a.Taxid,
		Genbank:                  a.Genbank,
		Refseq:                   a.Refseq,
		IsGenbankRefseqIdentical: a.IsGenbankRefseqIdentical,
		CreatedAt:                a.CreatedAt,
	}
}

func toAssemblySummaries(assemblies []*models.Assembly) []AssemblySummary {
	out := make([]AssemblySummary, len(assemblies))
	for i, a := range assemblies {
		out[i] = toAssemblySummary(a)
	}
	return out
}

// AssemblyHandler serves assembly ingestion and assembly-scoped lookups.
type AssemblyHandler struct {
	ingestService services.IngestionService
	lookupService services.LookupService
	cfg           *config.Config
	logger        *zap.Logger
}

// NewAssemblyHandler creates a new assembly handler.
func NewAssemblyHandler(ingestService services.IngestionService, lookupService services.LookupService, cfg *config.Config, logger *zap.Logger) *AssemblyHandler {
	return &AssemblyHandler{
		ingestService: ingestService,
		lookupService: lookupService,
		cfg:           cfg,
		logger:        logger,
	}
}

// RegisterRoutes registers the assembly routes on the given mux.
func (h *AssemblyHandler) RegisterRoutes(mux *http.ServeMux, scope ScopeMiddleware) {
	base := "/api/assemblies"

	mux.HandleFunc("POST "+base, scope(h.Create))
	mux.HandleFunc("GET "+base, scope(h.ListByTaxid))
	mux.HandleFunc("GET "+base+"/{accession}", scope(h.Get))
	mux.HandleFunc("DELETE "+base+"/{accession}", scope(h.Delete))
	mux.HandleFunc("GET "+base+"/{accession}/sequences", scope(h.ListSequences))
	mux.HandleFunc("GET "+base+"/{accession}/chromosomes", scope(h.ListChromosomes))
	mux.HandleFunc("GET "+base+"/{accession}/scaffolds", scope(h.ListScaffolds))
}

// Create handles POST /api/assemblies
// The body is an NCBI assembly report, optionally sent with Content-Encoding: gzip.
func (h *AssemblyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body io.Reader = http.MaxBytesReader(w, r.Body, h.cfg.Ingest.MaxReportBytes)

	if strings.EqualFold(r.Header.Get("Content-Encoding"), "gzip") {
		gz, err := gzip.NewReader(body)
		if err != nil {
			writeBadRequest(w, "invalid_encoding", "Body is not valid gzip", h.logger)
			return
		}
		defer gz.Close()
		// Bound the decompressed size too.
		body = &cappedReader{r: gz, remaining: h.cfg.Ingest.MaxReportBytes}
	}

	asm, err := h.ingestService.Ingest(r.Context(), body)
	if err != nil {
		h.logger.Info("Assembly report rejected", zap.String("reason", logging.SanitizeError(err)))
		writeServiceError(w, err, h.logger)
		return
	}

	summary := toAssemblySummary(asm)
	chromosomes, scaffolds := len(asm.Chromosomes), len(asm.Scaffolds)
	summary.ChromosomeCount = &chromosomes
	summary.ScaffoldCount = &scaffolds

	w.Header().Set("Location", fmt.Sprintf("/api/assemblies/%s", asm.Accessions()[0]))
	if err := WriteJSON(w, http.StatusCreated, summary); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// ListByTaxid handles GET /api/assemblies?taxid=
func (h *AssemblyHandler) ListByTaxid(w http.ResponseWriter, r *http.Request) {
	taxid, ok := ParseTaxid(w, r, "", h.logger)
	if !ok {
		return
	}
	page, ok := ParsePageRequest(w, r, h.cfg.Pagination, h.logger)
	if !ok {
		return
	}

	result, err := h.lookupService.ListAssembliesByTaxid(r.Context(), taxid, page)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	response := models.Page[AssemblySummary]{
		Content: toAssemblySummaries(result.Content),
		Info:    result.Info,
	}
	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Get handles GET /api/assemblies/{accession}
func (h *AssemblyHandler) Get(w http.ResponseWriter, r *http.Request) {
	accession, ok := ParseAccession(w, r, h.logger)
	if !ok {
		return
	}

	asm, err := h.lookupService.GetAssembly(r.Context(), accession)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusOK, toAssemblySummary(asm)); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Delete handles DELETE /api/assemblies/{accession}
func (h *AssemblyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	accession, ok := ParseAccession(w, r, h.logger)
	if !ok {
		return
	}

	if err := h.lookupService.DeleteAssembly(r.Context(), accession); err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListSequences handles GET /api/assemblies/{accession}/sequences
func (h *AssemblyHandler) ListSequences(w http.ResponseWriter, r *http.Request) {
	h.servePage(w, r, h.lookupService.ListSequences)
}

// ListChromosomes handles GET /api/assemblies/{accession}/chromosomes
func (h *AssemblyHandler) ListChromosomes(w http.ResponseWriter, r *http.Request) {
	h.servePage(w, r, h.lookupService.ListChromosomes)
}

// ListScaffolds handles GET /api/assemblies/{accession}/scaffolds
func (h *AssemblyHandler) ListScaffolds(w http.ResponseWriter, r *http.Request) {
	h.servePage(w, r, h.lookupService.ListScaffolds)
}

type accessionPager func(ctx context.Context, accession string, page models.PageRequest) (*models.Page[*models.Sequence], error)

func (h *AssemblyHandler) servePage(w http.ResponseWriter, r *http.Request, fetch accessionPager) {
	accession, ok := ParseAccession(w, r, h.logger)
	if !ok {
		return
	}
	page, ok := ParsePageRequest(w, r, h.cfg.Pagination, h.logger)
	if !ok {
		return
	}

	result, err := fetch(r.Context(), accession, page)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusOK, result); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// cappedReader fails with ErrReportTooLarge once more than remaining bytes are read.
type cappedReader struct {
	r         io.Reader
	remaining int64
}

func (c *cappedReader) Read(p []byte) (int, error) {
	if c.remaining < 0 {
		return 0, apperrors.ErrReportTooLarge
	}
	if int64(len(p)) > c.remaining+1 {
		p = p[:c.remaining+1]
	}
	n, err := c.r.Read(p)
	c.remaining -= int64(n)
	if c.remaining < 0 {
		return n, apperrors.ErrReportTooLarge
	}
	return n, err
}
