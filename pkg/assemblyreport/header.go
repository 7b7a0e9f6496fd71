package assemblyreport

import (
	"strconv"
	"strings"

	"github.com/ekaya-inc/contig-alias/pkg/models"
)

const commentMarker = "#"

// Header field names as they appear in NCBI reports, lower-cased.
const (
	keyAssemblyName     = "assembly name"
	keyOrganismName     = "organism name"
	keyTaxid            = "taxid"
	keyGenbankAccession = "genbank assembly accession"
	keyRefseqAccession  = "refseq assembly accession"
	keyGenbankID        = "genbank assembly id"
	keyRefseqID         = "refseq assembly id"
	keyIdentical        = "refseq assembly and genbank assemblies identical"
)

// Field names reported in MissingRequiredFieldError.
const (
	FieldName      = "assembly name"
	FieldOrganism  = "organism name"
	FieldTaxid     = "taxid"
	FieldAccession = "genbank or refseq assembly accession"
)

// headerParser accumulates recognized "key: value" comment lines into an Assembly.
// Unrecognized comment lines are ignored.
type headerParser struct {
	assembly *models.Assembly
	hasTaxid bool
}

func newHeaderParser() *headerParser {
	return &headerParser{assembly: &models.Assembly{}}
}

// isComment reports whether line belongs to the header block.
func isComment(line string) bool {
	return strings.HasPrefix(line, commentMarker)
}

// consume parses one comment line.
func (p *headerParser) consume(line string, lineNo int) error {
	body := strings.TrimLeft(line, commentMarker)
	key, value, found := strings.Cut(body, ":")
	if !found {
		return nil
	}
	key = strings.ToLower(strings.TrimSpace(key))
	value = strings.TrimSpace(value)

	a := p.assembly
	switch key {
	case keyAssemblyName:
		a.Name = value
	case keyOrganismName:
		a.Organism = value
	case keyTaxid:
		taxid, err := strconv.ParseInt(value, 10, 64)
		if err != nil || taxid < 0 {
			return &MalformedHeaderError{Line: lineNo, Field: keyTaxid, Expected: "a non-negative integer", Found: value}
		}
		a.Taxid = taxid
		p.hasTaxid = true
	case keyGenbankAccession, keyGenbankID:
		a.Genbank = accessionValue(value)
	case keyRefseqAccession, keyRefseqID:
		a.Refseq = accessionValue(value)
	case keyIdentical:
		switch strings.ToLower(value) {
		case "yes":
			a.IsGenbankRefseqIdentical = true
		case "no":
			a.IsGenbankRefseqIdentical = false
		default:
			return &MalformedHeaderError{Line: lineNo, Field: keyIdentical, Expected: "yes or no", Found: value}
		}
	}
	return nil
}

// finish validates the accumulated header. lineNo is the first line after the header block.
func (p *headerParser) finish(lineNo int) (*models.Assembly, error) {
	var missing []string
	a := p.assembly
	if a.Name == "" {
		missing = append(missing, FieldName)
	}
	if a.Organism == "" {
		missing = append(missing, FieldOrganism)
	}
	if !p.hasTaxid {
		missing = append(missing, FieldTaxid)
	}
	if a.Genbank == nil && a.Refseq == nil {
		missing = append(missing, FieldAccession)
	}
	if len(missing) > 0 {
		return nil, &MissingRequiredFieldError{Line: lineNo, Fields: missing}
	}
	return a, nil
}

// accessionValue decodes an assembly accession header value. Older reports append a
// parenthesized note ("GCA_000001405.28 (latest)"), which is dropped.
func accessionValue(value string) *string {
	if i := strings.IndexByte(value, '('); i >= 0 {
		value = strings.TrimSpace(value[:i])
	}
	switch strings.ToLower(value) {
	case "", naSentinel, "n/a":
		return nil
	}
	return &value
}

// ParseHeader consumes the leading run of comment lines and returns the assembly
// metadata they declare, together with the number of lines consumed. The returned
// Assembly has no sequences.
func ParseHeader(lines []string) (*models.Assembly, int, error) {
	p := newHeaderParser()
	consumed := 0
	for _, line := range lines {
		if !isComment(line) {
			break
		}
		consumed++
		if err := p.consume(line, consumed); err != nil {
			return nil, consumed, err
		}
	}
	a, err := p.finish(consumed + 1)
	if err != nil {
		return nil, consumed, err
	}
	return a, consumed, nil
}
