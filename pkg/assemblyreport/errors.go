package assemblyreport

import (
	"errors"
	"fmt"
	"strings"
)

// MissingRequiredFieldError is returned when the header block ends without declaring
// every field an Assembly needs. Line is where the header block ended.
type MissingRequiredFieldError struct {
	Line   int
	Fields []string
}

func (e *MissingRequiredFieldError) Error() string {
	return fmt.Sprintf("line %d: assembly report header is missing required field(s): %s",
		e.Line, strings.Join(e.Fields, ", "))
}

// MalformedHeaderError is returned when a recognized header field has a value that
// cannot be decoded, such as a non-numeric taxid.
type MalformedHeaderError struct {
	Line     int
	Field    string
	Expected string
	Found    string
}

func (e *MalformedHeaderError) Error() string {
	return fmt.Sprintf("line %d: header field %q: expected %s, found %q",
		e.Line, e.Field, e.Expected, e.Found)
}

// MalformedRowError is returned for a data row with the wrong arity, a non-numeric
// length, or values that violate the sequence invariants.
type MalformedRowError struct {
	Line     int
	Column   string // empty when the problem concerns the whole row
	Expected string
	Found    string
}

func (e *MalformedRowError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("line %d: malformed row: expected %s, found %s", e.Line, e.Expected, e.Found)
	}
	return fmt.Sprintf("line %d: malformed row: column %s: expected %s, found %q",
		e.Line, e.Column, e.Expected, e.Found)
}

// IsInvalidReport reports whether err (or anything it wraps) describes a
// problem with the report content rather than with reading it.
func IsInvalidReport(err error) bool {
	var missing *MissingRequiredFieldError
	var header *MalformedHeaderError
	var row *MalformedRowError
	return errors.As(err, &missing) || errors.As(err, &header) || errors.As(err, &row)
}
