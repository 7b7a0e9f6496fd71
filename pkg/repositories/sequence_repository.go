package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jinzhu/inflection"

	"github.com/ekaya-inc/contig-alias/pkg/database"
	"github.com/ekaya-inc/contig-alias/pkg/models"
)

// SequenceRepository reads chromosomes and scaffolds. Each role lives in its own
// table and every list is one store page: ORDER BY ordinal, LIMIT size OFFSET page*size.
type SequenceRepository interface {
	ListByAssembly(ctx context.Context, assemblyID uuid.UUID, role models.SequenceRole, page models.PageRequest) ([]*models.Sequence, error)
	CountByAssembly(ctx context.Context, assemblyID uuid.UUID, role models.SequenceRole) (int64, error)
	// ListByAccession matches the GenBank or RefSeq sequence accession across assemblies.
	ListByAccession(ctx context.Context, role models.SequenceRole, accession string, page models.PageRequest) ([]*models.Sequence, error)
	CountByAccession(ctx context.Context, role models.SequenceRole, accession string) (int64, error)
	// ListByNameAndTaxid matches one alias column within assemblies of a taxonomy.
	ListByNameAndTaxid(ctx context.Context, role models.SequenceRole, nameType models.SequenceNameType, name string, taxid int64, page models.PageRequest) ([]*models.Sequence, error)
	CountByNameAndTaxid(ctx context.Context, role models.SequenceRole, nameType models.SequenceNameType, name string, taxid int64) (int64, error)
}

type sequenceRepository struct{}

// NewSequenceRepository creates a new sequence repository.
func NewSequenceRepository() SequenceRepository {
	return &sequenceRepository{}
}

var sequenceCopyColumns = []string{
	"id", "assembly_id", "ordinal", "genbank_sequence_name", "sequence_role",
	"genbank", "refseq", "ucsc_name", "ena_sequence_name",
	"assigned_molecule", "assembly_unit", "seq_length",
}

const sequenceColumns = `s.id, s.assembly_id, s.genbank_sequence_name, s.sequence_role,
		s.genbank, s.refseq, s.ucsc_name, s.ena_sequence_name,
		s.assigned_molecule, s.assembly_unit, s.seq_length`

// tableFor maps a role onto its backing table: chromosome -> chromosomes.
func tableFor(role models.SequenceRole) (string, error) {
	switch role {
	case models.RoleChromosome, models.RoleScaffold:
		return inflection.Plural(role.String()), nil
	default:
		return "", fmt.Errorf("unknown sequence role %q", role)
	}
}

// nameColumn maps a name type onto the alias column it matches.
func nameColumn(nameType models.SequenceNameType) (string, error) {
	switch nameType {
	case models.NameTypeGenbank:
		return "genbank_sequence_name", nil
	case models.NameTypeUcsc:
		return "ucsc_name", nil
	case models.NameTypeEna:
		return "ena_sequence_name", nil
	default:
		return "", fmt.Errorf("unknown sequence name type %q", nameType)
	}
}

func (r *sequenceRepository) ListByAssembly(ctx context.Context, assemblyID uuid.UUID, role models.SequenceRole, page models.PageRequest) ([]*models.Sequence, error) {
	table, err := tableFor(role)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT ` + sequenceColumns + `
		FROM ` + table + ` s
		WHERE s.assembly_id = $1
		ORDER BY s.ordinal
		LIMIT $2 OFFSET $3`

	return r.list(ctx, role, query, assemblyID, page.Size, page.Offset())
}

func (r *sequenceRepository) CountByAssembly(ctx context.Context, assemblyID uuid.UUID, role models.SequenceRole) (int64, error) {
	table, err := tableFor(role)
	if err != nil {
		return 0, err
	}
	return r.count(ctx, `SELECT COUNT(*) FROM `+table+` WHERE assembly_id = $1`, assemblyID)
}

func (r *sequenceRepository) ListByAccession(ctx context.Context, role models.SequenceRole, accession string, page models.PageRequest) ([]*models.Sequence, error) {
	table, err := tableFor(role)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT ` + sequenceColumns + `
		FROM ` + table + ` s
		JOIN assemblies a ON a.id = s.assembly_id
		WHERE s.genbank = $1 OR s.refseq = $1
		ORDER BY a.created_at, COALESCE(a.genbank, a.refseq), s.ordinal
		LIMIT $2 OFFSET $3`

	return r.list(ctx, role, query, accession, page.Size, page.Offset())
}

func (r *sequenceRepository) CountByAccession(ctx context.Context, role models.SequenceRole, accession string) (int64, error) {
	table, err := tableFor(role)
	if err != nil {
		return 0, err
	}
	return r.count(ctx, `SELECT COUNT(*) FROM `+table+` WHERE genbank = $1 OR refseq = $1`, accession)
}

func (r *sequenceRepository) ListByNameAndTaxid(ctx context.Context, role models.SequenceRole, nameType models.SequenceNameType, name string, taxid int64, page models.PageRequest) ([]*models.Sequence, error) {
	table, err := tableFor(role)
	if err != nil {
		return nil, err
	}
	column, err := nameColumn(nameType)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT ` + sequenceColumns + `
		FROM ` + table + ` s
		JOIN assemblies a ON a.id = s.assembly_id
		WHERE s.` + column + ` = $1 AND a.taxid = $2
		ORDER BY a.created_at, COALESCE(a.genbank, a.refseq), s.ordinal
		LIMIT $3 OFFSET $4`

	return r.list(ctx, role, query, name, taxid, page.Size, page.Offset())
}

func (r *sequenceRepository) CountByNameAndTaxid(ctx context.Context, role models.SequenceRole, nameType models.SequenceNameType, name string, taxid int64) (int64, error) {
	table, err := tableFor(role)
	if err != nil {
		return 0, err
	}
	column, err := nameColumn(nameType)
	if err != nil {
		return 0, err
	}

	query := `
		SELECT COUNT(*)
		FROM ` + table + ` s
		JOIN assemblies a ON a.id = s.assembly_id
		WHERE s.` + column + ` = $1 AND a.taxid = $2`

	return r.count(ctx, query, name, taxid)
}

func (r *sequenceRepository) list(ctx context.Context, role models.SequenceRole, query string, args ...any) ([]*models.Sequence, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no database scope in context")
	}

	rows, err := scope.Conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", inflection.Plural(role.String()), err)
	}
	defer rows.Close()

	sequences := make([]*models.Sequence, 0)
	for rows.Next() {
		s, err := scanSequence(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", role, err)
		}
		s.Role = role
		sequences = append(sequences, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s rows: %w", role, err)
	}

	return sequences, nil
}

func (r *sequenceRepository) count(ctx context.Context, query string, args ...any) (int64, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return 0, fmt.Errorf("no database scope in context")
	}

	var n int64
	if err := scope.Conn.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count sequences: %w", err)
	}
	return n, nil
}

func scanSequence(row pgx.Row) (*models.Sequence, error) {
	var s models.Sequence
	err := row.Scan(
		&s.ID,
		&s.AssemblyID,
		&s.GenbankSequenceName,
		&s.DeclaredRole,
		&s.Genbank,
		&s.Refseq,
		&s.UcscName,
		&s.EnaSequenceName,
		&s.AssignedMolecule,
		&s.AssemblyUnit,
		&s.Length,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
