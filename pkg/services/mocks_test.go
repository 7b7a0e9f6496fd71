package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/ekaya-inc/contig-alias/pkg/apperrors"
	"github.com/ekaya-inc/contig-alias/pkg/models"
	"github.com/ekaya-inc/contig-alias/pkg/testhelpers"
)

// mockAssemblyRepo implements repositories.AssemblyRepository in memory.
// Sequences handed to Create are also registered with seqRepo when set.
type mockAssemblyRepo struct {
	assemblies []*models.Assembly
	seqRepo    *mockSequenceRepo

	createErrs  []error // returned by successive Create calls before succeeding
	createCalls int
	getErr      error
}

func (m *mockAssemblyRepo) Create(_ context.Context, asm *models.Assembly) error {
	m.createCalls++
	if len(m.createErrs) > 0 {
		err := m.createErrs[0]
		m.createErrs = m.createErrs[1:]
		return err
	}
	if asm.ID == uuid.Nil {
		asm.ID = uuid.New()
	}
	m.assemblies = append(m.assemblies, asm)
	if m.seqRepo != nil {
		m.seqRepo.add(asm)
	}
	return nil
}

func (m *mockAssemblyRepo) GetByAccession(_ context.Context, accession string) (*models.Assembly, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	for _, a := range m.assemblies {
		for _, acc := range a.Accessions() {
			if acc == accession {
				return a, nil
			}
		}
	}
	return nil, apperrors.ErrNotFound
}

func (m *mockAssemblyRepo) ListByTaxid(_ context.Context, taxid int64, page models.PageRequest) ([]*models.Assembly, error) {
	var matched []*models.Assembly
	for _, a := range m.assemblies {
		if a.Taxid == taxid {
			matched = append(matched, a)
		}
	}
	return storePage(matched, page), nil
}

func (m *mockAssemblyRepo) CountByTaxid(_ context.Context, taxid int64) (int64, error) {
	var n int64
	for _, a := range m.assemblies {
		if a.Taxid == taxid {
			n++
		}
	}
	return n, nil
}

func (m *mockAssemblyRepo) ListBySequenceAccession(_ context.Context, accession string) ([]*models.Assembly, error) {
	var matched []*models.Assembly
	for _, a := range m.assemblies {
		for _, s := range testhelpers.Merged(a) {
			if matchesAccession(s, accession) {
				matched = append(matched, a)
				break
			}
		}
	}
	return matched, nil
}

func (m *mockAssemblyRepo) Delete(_ context.Context, accession string) error {
	for i, a := range m.assemblies {
		for _, acc := range a.Accessions() {
			if acc == accession {
				m.assemblies = append(m.assemblies[:i], m.assemblies[i+1:]...)
				return nil
			}
		}
	}
	return apperrors.ErrNotFound
}

// storeCall records one page query against a role's backing store.
type storeCall struct {
	role models.SequenceRole
	page models.PageRequest
}

// mockSequenceRepo implements repositories.SequenceRepository over in-memory
// per-role slices, answering only page-index/page-size queries like the real store.
type mockSequenceRepo struct {
	byRole map[models.SequenceRole][]*models.Sequence
	taxid  map[uuid.UUID]int64
	calls  []storeCall
	err    error
}

func newMockSequenceRepo() *mockSequenceRepo {
	return &mockSequenceRepo{
		byRole: map[models.SequenceRole][]*models.Sequence{},
		taxid:  map[uuid.UUID]int64{},
	}
}

func (m *mockSequenceRepo) add(asm *models.Assembly) {
	m.taxid[asm.ID] = asm.Taxid
	for _, s := range asm.Chromosomes {
		s.AssemblyID = asm.ID
		m.byRole[models.RoleChromosome] = append(m.byRole[models.RoleChromosome], s)
	}
	for _, s := range asm.Scaffolds {
		s.AssemblyID = asm.ID
		m.byRole[models.RoleScaffold] = append(m.byRole[models.RoleScaffold], s)
	}
}

func (m *mockSequenceRepo) filter(role models.SequenceRole, keep func(*models.Sequence) bool) []*models.Sequence {
	var out []*models.Sequence
	for _, s := range m.byRole[role] {
		if keep(s) {
			out = append(out, s)
		}
	}
	return out
}

func (m *mockSequenceRepo) list(role models.SequenceRole, page models.PageRequest, keep func(*models.Sequence) bool) ([]*models.Sequence, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.calls = append(m.calls, storeCall{role: role, page: page})
	return storePage(m.filter(role, keep), page), nil
}

func (m *mockSequenceRepo) count(role models.SequenceRole, keep func(*models.Sequence) bool) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	return int64(len(m.filter(role, keep))), nil
}

func inAssembly(id uuid.UUID) func(*models.Sequence) bool {
	return func(s *models.Sequence) bool { return s.AssemblyID == id }
}

func withAccession(accession string) func(*models.Sequence) bool {
	return func(s *models.Sequence) bool { return matchesAccession(s, accession) }
}

func (m *mockSequenceRepo) withName(nameType models.SequenceNameType, name string, taxid int64) func(*models.Sequence) bool {
	return func(s *models.Sequence) bool {
		if m.taxid[s.AssemblyID] != taxid {
			return false
		}
		var value *string
		switch nameType {
		case models.NameTypeGenbank:
			value = &s.GenbankSequenceName
		case models.NameTypeUcsc:
			value = s.UcscName
		case models.NameTypeEna:
			value = s.EnaSequenceName
		}
		return value != nil && *value == name
	}
}

func (m *mockSequenceRepo) ListByAssembly(_ context.Context, assemblyID uuid.UUID, role models.SequenceRole, page models.PageRequest) ([]*models.Sequence, error) {
	return m.list(role, page, inAssembly(assemblyID))
}

func (m *mockSequenceRepo) CountByAssembly(_ context.Context, assemblyID uuid.UUID, role models.SequenceRole) (int64, error) {
	return m.count(role, inAssembly(assemblyID))
}

func (m *mockSequenceRepo) ListByAccession(_ context.Context, role models.SequenceRole, accession string, page models.PageRequest) ([]*models.Sequence, error) {
	return m.list(role, page, withAccession(accession))
}

func (m *mockSequenceRepo) CountByAccession(_ context.Context, role models.SequenceRole, accession string) (int64, error) {
	return m.count(role, withAccession(accession))
}

func (m *mockSequenceRepo) ListByNameAndTaxid(_ context.Context, role models.SequenceRole, nameType models.SequenceNameType, name string, taxid int64, page models.PageRequest) ([]*models.Sequence, error) {
	return m.list(role, page, m.withName(nameType, name, taxid))
}

func (m *mockSequenceRepo) CountByNameAndTaxid(_ context.Context, role models.SequenceRole, nameType models.SequenceNameType, name string, taxid int64) (int64, error) {
	return m.count(role, m.withName(nameType, name, taxid))
}

func matchesAccession(s *models.Sequence, accession string) bool {
	return (s.Genbank != nil && *s.Genbank == accession) || (s.Refseq != nil && *s.Refseq == accession)
}

// storePage answers a page query the way LIMIT size OFFSET page*size does.
func storePage[T any](items []T, page models.PageRequest) []T {
	start := page.Offset()
	if start >= int64(len(items)) {
		return []T{}
	}
	end := min(start+int64(page.Size), int64(len(items)))
	return items[start:end]
}
