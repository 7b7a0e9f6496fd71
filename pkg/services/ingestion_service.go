package services

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/ekaya-inc/contig-alias/pkg/apperrors"
	"github.com/ekaya-inc/contig-alias/pkg/assemblyreport"
	"github.com/ekaya-inc/contig-alias/pkg/models"
	"github.com/ekaya-inc/contig-alias/pkg/repositories"
	"github.com/ekaya-inc/contig-alias/pkg/retry"
)

// IngestionService turns assembly reports into stored assemblies.
type IngestionService interface {
	// Ingest parses the report and stores the assembly with all of its sequences.
	// Parse failures are returned as the assemblyreport typed errors and nothing is
	// stored. Returns ErrConflict if either assembly accession is already stored.
	Ingest(ctx context.Context, r io.Reader) (*models.Assembly, error)
}

type ingestionService struct {
	assemblyRepo repositories.AssemblyRepository
	retryConfig  *retry.Config
	logger       *zap.Logger
}

// NewIngestionService creates a new ingestion service. A nil retryConfig uses
// retry.DefaultConfig.
func NewIngestionService(assemblyRepo repositories.AssemblyRepository, retryConfig *retry.Config, logger *zap.Logger) IngestionService {
	if retryConfig == nil {
		retryConfig = retry.DefaultConfig()
	}
	return &ingestionService{
		assemblyRepo: assemblyRepo,
		retryConfig:  retryConfig,
		logger:       logger.Named("ingest"),
	}
}

func (s *ingestionService) Ingest(ctx context.Context, r io.Reader) (*models.Assembly, error) {
	asm, err := assemblyreport.Read(r)
	if err != nil {
		return nil, err
	}

	for _, accession := range asm.Accessions() {
		existing, err := s.assemblyRepo.GetByAccession(ctx, accession)
		if err == nil {
			s.logger.Info("Assembly already stored",
				zap.String("accession", accession),
				zap.String("existing_id", existing.ID.String()))
			return nil, fmt.Errorf("assembly %s: %w", accession, apperrors.ErrConflict)
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("failed to check existing assembly: %w", err)
		}
	}

	err = retry.DoIfRetryable(ctx, s.retryConfig, func() error {
		return s.assemblyRepo.Create(ctx, asm)
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, fmt.Errorf("assembly %s: %w", asm.Accessions()[0], err)
		}
		return nil, fmt.Errorf("failed to store assembly: %w", err)
	}

	s.logger.Info("Assembly ingested",
		zap.String("id", asm.ID.String()),
		zap.Strings("accessions", asm.Accessions()),
		zap.Int64("taxid", asm.Taxid),
		zap.Int("chromosomes", len(asm.Chromosomes)),
		zap.Int("scaffolds", len(asm.Scaffolds)))

	return asm, nil
}
