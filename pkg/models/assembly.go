package models

import (
	"time"

	"github.com/google/uuid"
)

// Assembly is one versioned genome assembly as declared by an NCBI assembly report.
// Chromosomes and Scaffolds keep the order in which the rows appeared in the report.
type Assembly struct {
	ID                       uuid.UUID   `json:"id"`
	Name                     string      `json:"name"`
	Organism                 string      `json:"organism"`
	Taxid                    int64       `json:"taxid"`
	Genbank                  *string     `json:"genbank,omitempty"`
	Refseq                   *string     `json:"refseq,omitempty"`
	IsGenbankRefseqIdentical bool        `json:"is_genbank_refseq_identical"`
	CreatedAt                time.Time   `json:"created_at"`
	Chromosomes              []*Sequence `json:"chromosomes,omitempty"`
	Scaffolds                []*Sequence `json:"scaffolds,omitempty"`
}

// Accessions returns the non-null assembly accessions, GenBank first.
func (a *Assembly) Accessions() []string {
	var accessions []string
	if a.Genbank != nil {
		accessions = append(accessions, *a.Genbank)
	}
	if a.Refseq != nil {
		accessions = append(accessions, *a.Refseq)
	}
	return accessions
}

// SequenceCount returns the number of chromosomes plus scaffolds.
func (a *Assembly) SequenceCount() int {
	return len(a.Chromosomes) + len(a.Scaffolds)
}
