// Package testhelpers provides utilities for testing contig-alias components.
package testhelpers

import (
	"fmt"

	"github.com/ekaya-inc/contig-alias/pkg/models"
)

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}

// NewAssembly builds an in-memory assembly with the given accessions and
// chromosomes + scaffolds sequence counts. Sequence accessions are derived from
// the assembly GenBank accession so fixtures from different assemblies never collide.
func NewAssembly(genbank, refseq string, taxid int64, chromosomes, scaffolds int) *models.Assembly {
	asm := &models.Assembly{
		Name:                     "asm-" + genbank,
		Organism:                 "Bos taurus (cattle)",
		Taxid:                    taxid,
		IsGenbankRefseqIdentical: true,
	}
	if genbank != "" {
		asm.Genbank = Ptr(genbank)
	}
	if refseq != "" {
		asm.Refseq = Ptr(refseq)
	}

	for i := 0; i < chromosomes; i++ {
		asm.Chromosomes = append(asm.Chromosomes, newSequence(genbank, models.RoleChromosome, i))
	}
	for i := 0; i < scaffolds; i++ {
		asm.Scaffolds = append(asm.Scaffolds, newSequence(genbank, models.RoleScaffold, i))
	}
	return asm
}

// Merged returns the assembly's sequences in merged chromosomes ++ scaffolds order.
func Merged(asm *models.Assembly) []*models.Sequence {
	merged := make([]*models.Sequence, 0, asm.SequenceCount())
	merged = append(merged, asm.Chromosomes...)
	return append(merged, asm.Scaffolds...)
}

func newSequence(prefix string, role models.SequenceRole, i int) *models.Sequence {
	declared := "unplaced-scaffold"
	name := fmt.Sprintf("Un%d", i+1)
	if role == models.RoleChromosome {
		declared = models.AssembledMoleculeRole
		name = fmt.Sprintf("%d", i+1)
	}
	return &models.Sequence{
		Role:                role,
		DeclaredRole:        declared,
		GenbankSequenceName: name,
		Genbank:             Ptr(fmt.Sprintf("%s-%s-%d.1", prefix, role, i)),
		Refseq:              Ptr(fmt.Sprintf("NC_%s-%s-%d.1", prefix, role, i)),
		UcscName:            Ptr("chr" + name),
		AssemblyUnit:        Ptr("Primary Assembly"),
		Length:              int64(1000 + i),
	}
}
