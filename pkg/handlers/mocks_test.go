package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/ekaya-inc/contig-alias/pkg/apperrors"
	"github.com/ekaya-inc/contig-alias/pkg/config"
	"github.com/ekaya-inc/contig-alias/pkg/models"
	"github.com/ekaya-inc/contig-alias/pkg/repositories"
)

// mockIngestionService implements services.IngestionService.
// When ingestFn is nil the body is drained and an empty assembly returned.
type mockIngestionService struct {
	ingestFn func(ctx context.Context, r io.Reader) (*models.Assembly, error)
	body     []byte
}

func (m *mockIngestionService) Ingest(ctx context.Context, r io.Reader) (*models.Assembly, error) {
	if m.ingestFn != nil {
		return m.ingestFn(ctx, r)
	}
	b, err := io.ReadAll(r)
	m.body = b
	if err != nil {
		return nil, err
	}
	return &models.Assembly{}, nil
}

// emptyAssemblyRepo is an AssemblyRepository with nothing stored. It backs a real
// ingestion service in handler tests; methods it does not override panic.
type emptyAssemblyRepo struct {
	repositories.AssemblyRepository
	created []*models.Assembly
}

func (r *emptyAssemblyRepo) GetByAccession(context.Context, string) (*models.Assembly, error) {
	return nil, apperrors.ErrNotFound
}

func (r *emptyAssemblyRepo) Create(_ context.Context, asm *models.Assembly) error {
	r.created = append(r.created, asm)
	return nil
}

// mockLookupService implements services.LookupService. Each method returns the
// matching canned value and records the last arguments it received.
type mockLookupService struct {
	assembly   *models.Assembly
	assemblies []*models.Assembly
	asmPage    *models.Page[*models.Assembly]
	seqPage    *models.Page[*models.Sequence]
	err        error

	lastAccession string
	lastPage      models.PageRequest
	lastNameType  models.SequenceNameType
	lastName      string
	lastTaxid     int64
	lastMethod    string
}

func (m *mockLookupService) GetAssembly(_ context.Context, accession string) (*models.Assembly, error) {
	m.lastMethod, m.lastAccession = "GetAssembly", accession
	return m.assembly, m.err
}

func (m *mockLookupService) ListAssembliesByTaxid(_ context.Context, taxid int64, page models.PageRequest) (*models.Page[*models.Assembly], error) {
	m.lastMethod, m.lastTaxid, m.lastPage = "ListAssembliesByTaxid", taxid, page
	return m.asmPage, m.err
}

func (m *mockLookupService) ListAssembliesBySequence(_ context.Context, accession string) ([]*models.Assembly, error) {
	m.lastMethod, m.lastAccession = "ListAssembliesBySequence", accession
	return m.assemblies, m.err
}

func (m *mockLookupService) DeleteAssembly(_ context.Context, accession string) error {
	m.lastMethod, m.lastAccession = "DeleteAssembly", accession
	return m.err
}

func (m *mockLookupService) seqs(method, accession string, page models.PageRequest) (*models.Page[*models.Sequence], error) {
	m.lastMethod, m.lastAccession, m.lastPage = method, accession, page
	return m.seqPage, m.err
}

func (m *mockLookupService) ListSequences(_ context.Context, accession string, page models.PageRequest) (*models.Page[*models.Sequence], error) {
	return m.seqs("ListSequences", accession, page)
}

func (m *mockLookupService) ListChromosomes(_ context.Context, accession string, page models.PageRequest) (*models.Page[*models.Sequence], error) {
	return m.seqs("ListChromosomes", accession, page)
}

func (m *mockLookupService) ListScaffolds(_ context.Context, accession string, page models.PageRequest) (*models.Page[*models.Sequence], error) {
	return m.seqs("ListScaffolds", accession, page)
}

func (m *mockLookupService) ListSequencesByAccession(_ context.Context, accession string, page models.PageRequest) (*models.Page[*models.Sequence], error) {
	return m.seqs("ListSequencesByAccession", accession, page)
}

func (m *mockLookupService) ListSequencesByName(_ context.Context, nameType models.SequenceNameType, name string, taxid int64, page models.PageRequest) (*models.Page[*models.Sequence], error) {
	m.lastNameType, m.lastName, m.lastTaxid = nameType, name, taxid
	return m.seqs("ListSequencesByName", "", page)
}

// passThrough stands in for the database scope middleware.
func passThrough(next http.HandlerFunc) http.HandlerFunc {
	return next
}

func testConfig() *config.Config {
	return &config.Config{
		Version:    "test-version",
		Env:        "test",
		Pagination: config.PaginationConfig{DefaultPageSize: 10, MaxPageSize: 100},
		Ingest:     config.IngestConfig{MaxReportBytes: 1 << 20},
	}
}
