package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ekaya-inc/contig-alias/pkg/apperrors"
	"github.com/ekaya-inc/contig-alias/pkg/models"
	"github.com/ekaya-inc/contig-alias/pkg/pagination"
	"github.com/ekaya-inc/contig-alias/pkg/repositories"
)

// LookupService answers read queries over stored assemblies and their sequences.
// Lists spanning both roles present chromosomes first, then scaffolds, as one
// virtual collection paged with the caller's page request.
type LookupService interface {
	GetAssembly(ctx context.Context, accession string) (*models.Assembly, error)
	ListAssembliesByTaxid(ctx context.Context, taxid int64, page models.PageRequest) (*models.Page[*models.Assembly], error)
	ListAssembliesBySequence(ctx context.Context, accession string) ([]*models.Assembly, error)
	DeleteAssembly(ctx context.Context, accession string) error

	ListSequences(ctx context.Context, accession string, page models.PageRequest) (*models.Page[*models.Sequence], error)
	ListChromosomes(ctx context.Context, accession string, page models.PageRequest) (*models.Page[*models.Sequence], error)
	ListScaffolds(ctx context.Context, accession string, page models.PageRequest) (*models.Page[*models.Sequence], error)
	ListSequencesByAccession(ctx context.Context, accession string, page models.PageRequest) (*models.Page[*models.Sequence], error)
	ListSequencesByName(ctx context.Context, nameType models.SequenceNameType, name string, taxid int64, page models.PageRequest) (*models.Page[*models.Sequence], error)
}

type lookupService struct {
	assemblyRepo repositories.AssemblyRepository
	sequenceRepo repositories.SequenceRepository
	logger       *zap.Logger
}

// NewLookupService creates a new lookup service with dependencies.
func NewLookupService(assemblyRepo repositories.AssemblyRepository, sequenceRepo repositories.SequenceRepository, logger *zap.Logger) LookupService {
	return &lookupService{
		assemblyRepo: assemblyRepo,
		sequenceRepo: sequenceRepo,
		logger:       logger.Named("lookup"),
	}
}

func validatePage(page models.PageRequest) error {
	if page.Page < 0 || page.Size <= 0 {
		return fmt.Errorf("page %d size %d: %w", page.Page, page.Size, apperrors.ErrInvalidPageRequest)
	}
	return nil
}

func (s *lookupService) GetAssembly(ctx context.Context, accession string) (*models.Assembly, error) {
	return s.assemblyRepo.GetByAccession(ctx, accession)
}

func (s *lookupService) ListAssembliesByTaxid(ctx context.Context, taxid int64, page models.PageRequest) (*models.Page[*models.Assembly], error) {
	if err := validatePage(page); err != nil {
		return nil, err
	}

	total, err := s.assemblyRepo.CountByTaxid(ctx, taxid)
	if err != nil {
		return nil, err
	}
	if page.Offset() >= total {
		return models.NewPage[*models.Assembly](nil, page, total), nil
	}

	assemblies, err := s.assemblyRepo.ListByTaxid(ctx, taxid, page)
	if err != nil {
		return nil, err
	}
	return models.NewPage(assemblies, page, total), nil
}

func (s *lookupService) ListAssembliesBySequence(ctx context.Context, accession string) ([]*models.Assembly, error) {
	return s.assemblyRepo.ListBySequenceAccession(ctx, accession)
}

func (s *lookupService) DeleteAssembly(ctx context.Context, accession string) error {
	if err := s.assemblyRepo.Delete(ctx, accession); err != nil {
		return err
	}
	s.logger.Info("Assembly deleted", zap.String("accession", accession))
	return nil
}

func (s *lookupService) ListSequences(ctx context.Context, accession string, page models.PageRequest) (*models.Page[*models.Sequence], error) {
	if err := validatePage(page); err != nil {
		return nil, err
	}
	asm, err := s.assemblyRepo.GetByAccession(ctx, accession)
	if err != nil {
		return nil, err
	}

	return s.mergedPage(ctx, page,
		func(ctx context.Context, role models.SequenceRole) (int64, error) {
			return s.sequenceRepo.CountByAssembly(ctx, asm.ID, role)
		},
		func(ctx context.Context, role models.SequenceRole, p models.PageRequest) ([]*models.Sequence, error) {
			return s.sequenceRepo.ListByAssembly(ctx, asm.ID, role, p)
		})
}

func (s *lookupService) ListChromosomes(ctx context.Context, accession string, page models.PageRequest) (*models.Page[*models.Sequence], error) {
	return s.rolePage(ctx, accession, models.RoleChromosome, page)
}

func (s *lookupService) ListScaffolds(ctx context.Context, accession string, page models.PageRequest) (*models.Page[*models.Sequence], error) {
	return s.rolePage(ctx, accession, models.RoleScaffold, page)
}

func (s *lookupService) rolePage(ctx context.Context, accession string, role models.SequenceRole, page models.PageRequest) (*models.Page[*models.Sequence], error) {
	if err := validatePage(page); err != nil {
		return nil, err
	}
	asm, err := s.assemblyRepo.GetByAccession(ctx, accession)
	if err != nil {
		return nil, err
	}

	total, err := s.sequenceRepo.CountByAssembly(ctx, asm.ID, role)
	if err != nil {
		return nil, err
	}
	if page.Offset() >= total {
		return models.NewPage[*models.Sequence](nil, page, total), nil
	}

	seqs, err := s.sequenceRepo.ListByAssembly(ctx, asm.ID, role, page)
	if err != nil {
		return nil, err
	}
	return models.NewPage(seqs, page, total), nil
}

func (s *lookupService) ListSequencesByAccession(ctx context.Context, accession string, page models.PageRequest) (*models.Page[*models.Sequence], error) {
	if err := validatePage(page); err != nil {
		return nil, err
	}

	return s.mergedPage(ctx, page,
		func(ctx context.Context, role models.SequenceRole) (int64, error) {
			return s.sequenceRepo.CountByAccession(ctx, role, accession)
		},
		func(ctx context.Context, role models.SequenceRole, p models.PageRequest) ([]*models.Sequence, error) {
			return s.sequenceRepo.ListByAccession(ctx, role, accession, p)
		})
}

func (s *lookupService) ListSequencesByName(ctx context.Context, nameType models.SequenceNameType, name string, taxid int64, page models.PageRequest) (*models.Page[*models.Sequence], error) {
	if !models.IsValidNameType(string(nameType)) {
		return nil, fmt.Errorf("%q: %w", nameType, apperrors.ErrInvalidNameType)
	}
	if err := validatePage(page); err != nil {
		return nil, err
	}

	return s.mergedPage(ctx, page,
		func(ctx context.Context, role models.SequenceRole) (int64, error) {
			return s.sequenceRepo.CountByNameAndTaxid(ctx, role, nameType, name, taxid)
		},
		func(ctx context.Context, role models.SequenceRole, p models.PageRequest) ([]*models.Sequence, error) {
			return s.sequenceRepo.ListByNameAndTaxid(ctx, role, nameType, name, taxid, p)
		})
}

type roleCounter func(ctx context.Context, role models.SequenceRole) (int64, error)
type roleLister func(ctx context.Context, role models.SequenceRole, page models.PageRequest) ([]*models.Sequence, error)

// mergedPage serves one page of the virtual chromosomes ++ scaffolds collection.
// Both role totals are counted, the page is split into per-role store requests,
// and every store page fetched is trimmed to the slice the request covers.
func (s *lookupService) mergedPage(ctx context.Context, page models.PageRequest, count roleCounter, list roleLister) (*models.Page[*models.Sequence], error) {
	chromosomeTotal, err := count(ctx, models.RoleChromosome)
	if err != nil {
		return nil, err
	}
	scaffoldTotal, err := count(ctx, models.RoleScaffold)
	if err != nil {
		return nil, err
	}

	split := pagination.SplitPageWithin(chromosomeTotal, scaffoldTotal, page)
	if split.Empty() {
		return models.NewPage([]*models.Sequence{}, page, chromosomeTotal+scaffoldTotal), nil
	}

	content := make([]*models.Sequence, 0, page.Size)
	for _, role := range models.SequenceRoles {
		requests := split.Chromosomes
		if role == models.RoleScaffold {
			requests = split.Scaffolds
		}
		for _, req := range requests {
			fetched, err := list(ctx, role, models.PageRequest{Page: req.Page, Size: req.StorePageSize})
			if err != nil {
				return nil, err
			}
			content = append(content, pagination.Take(req, fetched)...)
		}
	}

	s.logger.Debug("Served merged sequence page",
		zap.Int("page", page.Page),
		zap.Int("size", page.Size),
		zap.Int64("chromosomes", chromosomeTotal),
		zap.Int64("scaffolds", scaffoldTotal),
		zap.Int("chromosome_requests", len(split.Chromosomes)),
		zap.Int("scaffold_requests", len(split.Scaffolds)),
		zap.Int("returned", len(content)))

	return models.NewPage(content, page, chromosomeTotal+scaffoldTotal), nil
}
