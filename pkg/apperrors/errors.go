package apperrors

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrInvalidPageRequest = errors.New("invalid page request")
	ErrInvalidNameType    = errors.New("invalid sequence name type")
	ErrReportTooLarge     = errors.New("assembly report too large")
)
