package assemblyreport

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ekaya-inc/contig-alias/pkg/models"
)

// naSentinel is NCBI's declared-absent value. It is case-sensitive in data rows.
const naSentinel = "na"

// Data row columns, in file order.
const (
	colSequenceName = iota
	colSequenceRole
	colAssignedMolecule
	colMoleculeLocation
	colGenbankAccession
	colRelationship
	colRefseqAccession
	colAssemblyUnit
	colSequenceLength
	colUcscName
	rowColumns
)

var columnNames = [rowColumns]string{
	"Sequence-Name",
	"Sequence-Role",
	"Assigned-Molecule",
	"Assigned-Molecule-Location/Type",
	"GenBank-Accn",
	"Relationship",
	"RefSeq-Accn",
	"Assembly-Unit",
	"Sequence-Length",
	"UCSC-style-name",
}

// ParseRow decodes one tab-delimited data row into a Sequence whose Role is derived
// from the Sequence-Role column alone. lineNo is used for error reporting.
func ParseRow(line string, lineNo int) (*models.Sequence, error) {
	fields := strings.Split(strings.TrimRight(line, "\r\n"), "\t")
	if len(fields) != rowColumns {
		return nil, &MalformedRowError{
			Line:     lineNo,
			Expected: fmt.Sprintf("%d tab-separated columns", rowColumns),
			Found:    fmt.Sprintf("%d", len(fields)),
		}
	}

	var name string
	if v := optional(fields[colSequenceName]); v != nil {
		name = *v
	}

	rawLength := strings.TrimSpace(fields[colSequenceLength])
	length, err := strconv.ParseInt(rawLength, 10, 64)
	if err != nil {
		return nil, &MalformedRowError{
			Line: lineNo, Column: columnNames[colSequenceLength], Expected: "a non-negative integer", Found: rawLength,
		}
	}

	declaredRole := strings.TrimSpace(fields[colSequenceRole])
	seq := &models.Sequence{
		Role:                models.ClassifyRole(declaredRole),
		DeclaredRole:        declaredRole,
		GenbankSequenceName: name,
		Genbank:             optional(fields[colGenbankAccession]),
		Refseq:              optional(fields[colRefseqAccession]),
		UcscName:            optional(fields[colUcscName]),
		AssignedMolecule:    optional(fields[colAssignedMolecule]),
		AssemblyUnit:        optional(fields[colAssemblyUnit]),
		Length:              length,
	}

	if err := seq.Validate(); err != nil {
		rowErr := &MalformedRowError{Line: lineNo}
		switch {
		case errors.Is(err, models.ErrMissingSequenceName):
			rowErr.Column, rowErr.Expected = columnNames[colSequenceName], "a sequence name"
			rowErr.Found = strings.TrimSpace(fields[colSequenceName])
		case errors.Is(err, models.ErrMissingAccession):
			rowErr.Column = columnNames[colGenbankAccession] + "/" + columnNames[colRefseqAccession]
			rowErr.Expected, rowErr.Found = "at least one accession", naSentinel
		case errors.Is(err, models.ErrNegativeLength):
			rowErr.Column, rowErr.Expected, rowErr.Found = columnNames[colSequenceLength], "a non-negative integer", rawLength
		default:
			rowErr.Expected, rowErr.Found = "a valid sequence", err.Error()
		}
		return nil, rowErr
	}

	return seq, nil
}

// optional maps the "na" sentinel and empty cells to nil.
func optional(field string) *string {
	v := strings.TrimSpace(field)
	if v == "" || v == naSentinel {
		return nil
	}
	return &v
}
