package assemblyreport

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/ekaya-inc/contig-alias/pkg/models"
)

// maxLineBytes bounds a single report line.
const maxLineBytes = 1 << 20

// Reader turns one NCBI assembly report stream into an Assembly. The stream is read
// once, forward only; the caller owns it and is responsible for closing it.
type Reader struct {
	scanner *bufio.Scanner
	lineNo  int
}

// NewReader wraps r for a single Read.
func NewReader(r io.Reader) *Reader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	return &Reader{scanner: scanner}
}

// Read parses the header block and every data row. The first error aborts the read
// and no Assembly is returned.
func (r *Reader) Read() (*models.Assembly, error) {
	header := newHeaderParser()
	var assembly *models.Assembly

	for r.scanner.Scan() {
		r.lineNo++
		line := strings.TrimRight(r.scanner.Text(), "\r")

		if assembly == nil {
			if isComment(line) {
				if err := header.consume(line, r.lineNo); err != nil {
					return nil, r.fail(err)
				}
				continue
			}
			a, err := header.finish(r.lineNo)
			if err != nil {
				return nil, r.fail(err)
			}
			assembly = a
		}

		if strings.TrimSpace(line) == "" {
			continue
		}

		seq, err := ParseRow(line, r.lineNo)
		if err != nil {
			return nil, r.fail(err)
		}
		switch seq.Role {
		case models.RoleChromosome:
			assembly.Chromosomes = append(assembly.Chromosomes, seq)
		default:
			assembly.Scaffolds = append(assembly.Scaffolds, seq)
		}
	}
	if err := r.scanner.Err(); err != nil {
		return nil, readError(r.lineNo+1, err)
	}

	if assembly == nil {
		a, err := header.finish(r.lineNo + 1)
		if err != nil {
			return nil, err
		}
		assembly = a
	}
	return assembly, nil
}

// fail returns parseErr unless the stream itself failed. The scanner hands back the
// partial line in front of a read error as a final token, so a parse error on that
// line describes a truncation, not the report.
func (r *Reader) fail(parseErr error) error {
	if err := r.scanner.Err(); err != nil {
		return readError(r.lineNo, err)
	}
	return parseErr
}

func readError(line int, err error) error {
	return fmt.Errorf("line %d: failed to read assembly report: %w", line, err)
}

// Read parses a complete assembly report from r.
func Read(r io.Reader) (*models.Assembly, error) {
	return NewReader(r).Read()
}
