package models

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// SequenceRole classifies a report row. Only "assembled-molecule" rows are chromosomes.
type SequenceRole string

const (
	RoleChromosome SequenceRole = "chromosome"
	RoleScaffold   SequenceRole = "scaffold"
)

// AssembledMoleculeRole is the NCBI sequence-role value that marks a chromosome.
const AssembledMoleculeRole = "assembled-molecule"

// SequenceRoles lists the roles in merged order: chromosomes first, then scaffolds.
var SequenceRoles = []SequenceRole{RoleChromosome, RoleScaffold}

// ClassifyRole maps a declared NCBI sequence role onto the two-way split.
func ClassifyRole(declared string) SequenceRole {
	if declared == AssembledMoleculeRole {
		return RoleChromosome
	}
	return RoleScaffold
}

func (r SequenceRole) String() string {
	return string(r)
}

// Sequence is one row of an assembly report. Chromosomes and scaffolds share this shape
// and differ only by Role. Absent values are nil, never the "na" sentinel.
type Sequence struct {
	ID                  uuid.UUID    `json:"id"`
	AssemblyID          uuid.UUID    `json:"assembly_id"`
	Role                SequenceRole `json:"role"`
	DeclaredRole        string       `json:"declared_role,omitempty"`
	GenbankSequenceName string       `json:"genbank_sequence_name"`
	Genbank             *string      `json:"genbank,omitempty"`
	Refseq              *string      `json:"refseq,omitempty"`
	UcscName            *string      `json:"ucsc_name,omitempty"`
	EnaSequenceName     *string      `json:"ena_sequence_name,omitempty"`
	AssignedMolecule    *string      `json:"assigned_molecule,omitempty"`
	AssemblyUnit        *string      `json:"assembly_unit,omitempty"`
	Length              int64        `json:"length"`
}

// Sequence invariant violations reported by Validate.
var (
	ErrMissingSequenceName = errors.New("sequence name is empty")
	ErrMissingAccession    = errors.New("neither a GenBank nor a RefSeq accession")
	ErrNegativeLength      = errors.New("negative length")
)

// Validate checks the record invariants: a name, at least one naming authority and a
// non-negative length.
func (s *Sequence) Validate() error {
	if s.GenbankSequenceName == "" {
		return ErrMissingSequenceName
	}
	if s.Genbank == nil && s.Refseq == nil {
		return fmt.Errorf("sequence %q: %w", s.GenbankSequenceName, ErrMissingAccession)
	}
	if s.Length < 0 {
		return fmt.Errorf("sequence %q: %w %d", s.GenbankSequenceName, ErrNegativeLength, s.Length)
	}
	return nil
}

// SequenceNameType selects which alias column a name lookup matches against.
type SequenceNameType string

const (
	NameTypeGenbank SequenceNameType = "genbank"
	NameTypeUcsc    SequenceNameType = "ucsc"
	NameTypeEna     SequenceNameType = "ena"
)

// ValidNameTypes contains all valid name type values.
var ValidNameTypes = []SequenceNameType{NameTypeGenbank, NameTypeUcsc, NameTypeEna}

// IsValidNameType checks if the given name type is valid.
func IsValidNameType(nameType string) bool {
	for _, t := range ValidNameTypes {
		if string(t) == nameType {
			return true
		}
	}
	return false
}
