package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ekaya-inc/contig-alias/pkg/apperrors"
	"github.com/ekaya-inc/contig-alias/pkg/database"
	"github.com/ekaya-inc/contig-alias/pkg/models"
)

// AssemblyRepository defines the interface for assembly data access.
type AssemblyRepository interface {
	// Create stores the assembly and all of its sequences in one transaction.
	// Returns ErrConflict if either assembly accession is already stored.
	Create(ctx context.Context, asm *models.Assembly) error
	// GetByAccession finds an assembly by its GenBank or RefSeq accession.
	// Sequences are not loaded.
	GetByAccession(ctx context.Context, accession string) (*models.Assembly, error)
	ListByTaxid(ctx context.Context, taxid int64, page models.PageRequest) ([]*models.Assembly, error)
	CountByTaxid(ctx context.Context, taxid int64) (int64, error)
	// ListBySequenceAccession returns the assemblies containing a chromosome or
	// scaffold with the given GenBank or RefSeq accession.
	ListBySequenceAccession(ctx context.Context, accession string) ([]*models.Assembly, error)
	// Delete removes an assembly and, by cascade, its sequences.
	Delete(ctx context.Context, accession string) error
}

// assemblyRepository implements AssemblyRepository using PostgreSQL.
type assemblyRepository struct{}

// NewAssemblyRepository creates a new assembly repository.
func NewAssemblyRepository() AssemblyRepository {
	return &assemblyRepository{}
}

const assemblyColumns = `id, name, organism, taxid, genbank, refseq, is_genbank_refseq_identical, created_at`

func (r *assemblyRepository) Create(ctx context.Context, asm *models.Assembly) error {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return fmt.Errorf("no database scope in context")
	}

	if asm.ID == uuid.Nil {
		asm.ID = uuid.New()
	}
	asm.CreatedAt = time.Now().UTC()

	tx, err := scope.Conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback on defer is best-effort

	query := `
		INSERT INTO assemblies (` + assemblyColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err = tx.Exec(ctx, query,
		asm.ID,
		asm.Name,
		asm.Organism,
		asm.Taxid,
		asm.Genbank,
		asm.Refseq,
		asm.IsGenbankRefseqIdentical,
		asm.CreatedAt,
	)
	if err != nil {
		// Unique constraint violation (PostgreSQL error code 23505)
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperrors.ErrConflict
		}
		return fmt.Errorf("failed to create assembly: %w", err)
	}

	for _, role := range models.SequenceRoles {
		if err := copySequences(ctx, tx, asm, role); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// copySequences bulk-loads one role's sequences with COPY. Ordinal is the
// position of the sequence within its role, which is the file order.
func copySequences(ctx context.Context, tx pgx.Tx, asm *models.Assembly, role models.SequenceRole) error {
	seqs := asm.Chromosomes
	if role == models.RoleScaffold {
		seqs = asm.Scaffolds
	}
	if len(seqs) == 0 {
		return nil
	}

	table, err := tableFor(role)
	if err != nil {
		return err
	}

	rows := make([][]any, len(seqs))
	for i, s := range seqs {
		if s.ID == uuid.Nil {
			s.ID = uuid.New()
		}
		s.AssemblyID = asm.ID
		s.Role = role
		rows[i] = []any{
			s.ID, s.AssemblyID, int32(i), s.GenbankSequenceName, s.DeclaredRole,
			s.Genbank, s.Refseq, s.UcscName, s.EnaSequenceName,
			s.AssignedMolecule, s.AssemblyUnit, s.Length,
		}
	}

	n, err := tx.CopyFrom(ctx, pgx.Identifier{table}, sequenceCopyColumns, pgx.CopyFromRows(rows))
	if err != nil {
		return fmt.Errorf("failed to copy %s: %w", table, err)
	}
	if n != int64(len(rows)) {
		return fmt.Errorf("copied %d of %d %s", n, len(rows), table)
	}
	return nil
}

func (r *assemblyRepository) GetByAccession(ctx context.Context, accession string) (*models.Assembly, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no database scope in context")
	}

	query := `
		SELECT ` + assemblyColumns + `
		FROM assemblies
		WHERE genbank = $1 OR refseq = $1
		LIMIT 1`

	asm, err := scanAssembly(scope.Conn.QueryRow(ctx, query, accession))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get assembly: %w", err)
	}

	return asm, nil
}

func (r *assemblyRepository) ListByTaxid(ctx context.Context, taxid int64, page models.PageRequest) ([]*models.Assembly, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no database scope in context")
	}

	query := `
		SELECT ` + assemblyColumns + `
		FROM assemblies
		WHERE taxid = $1
		ORDER BY created_at, COALESCE(genbank, refseq)
		LIMIT $2 OFFSET $3`

	rows, err := scope.Conn.Query(ctx, query, taxid, page.Size, page.Offset())
	if err != nil {
		return nil, fmt.Errorf("failed to list assemblies by taxid: %w", err)
	}
	return collectAssemblies(rows)
}

func (r *assemblyRepository) CountByTaxid(ctx context.Context, taxid int64) (int64, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return 0, fmt.Errorf("no database scope in context")
	}

	var count int64
	err := scope.Conn.QueryRow(ctx, `SELECT COUNT(*) FROM assemblies WHERE taxid = $1`, taxid).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count assemblies by taxid: %w", err)
	}
	return count, nil
}

func (r *assemblyRepository) ListBySequenceAccession(ctx context.Context, accession string) ([]*models.Assembly, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no database scope in context")
	}

	query := `
		SELECT ` + assemblyColumns + `
		FROM assemblies
		WHERE id IN (
			SELECT assembly_id FROM chromosomes WHERE genbank = $1 OR refseq = $1
			UNION
			SELECT assembly_id FROM scaffolds WHERE genbank = $1 OR refseq = $1
		)
		ORDER BY created_at, COALESCE(genbank, refseq)`

	rows, err := scope.Conn.Query(ctx, query, accession)
	if err != nil {
		return nil, fmt.Errorf("failed to list assemblies by sequence: %w", err)
	}
	return collectAssemblies(rows)
}

func (r *assemblyRepository) Delete(ctx context.Context, accession string) error {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return fmt.Errorf("no database scope in context")
	}

	result, err := scope.Conn.Exec(ctx, `DELETE FROM assemblies WHERE genbank = $1 OR refseq = $1`, accession)
	if err != nil {
		return fmt.Errorf("failed to delete assembly: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

func scanAssembly(row pgx.Row) (*models.Assembly, error) {
	var asm models.Assembly
	err := row.Scan(
		&asm.ID,
		&asm.Name,
		&asm.Organism,
		&asm.Taxid,
		&asm.Genbank,
		&asm.Refseq,
		&asm.IsGenbankRefseqIdentical,
		&asm.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &asm, nil
}

func collectAssemblies(rows pgx.Rows) ([]*models.Assembly, error) {
	defer rows.Close()

	assemblies := make([]*models.Assembly, 0)
	for rows.Next() {
		asm, err := scanAssembly(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan assembly: %w", err)
		}
		assemblies = append(assemblies, asm)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating assemblies: %w", err)
	}

	return assemblies, nil
}
