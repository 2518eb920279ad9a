package delimiters

import "errors"

var (
	// ErrInvalidDelimiter indicates a delimiter with missing markers or a malformed family.
	ErrInvalidDelimiter = errors.New("delimiters: invalid delimiter")
	// ErrDuplicateDelimiter indicates the same marker pair was registered twice for a family.
	ErrDuplicateDelimiter = errors.New("delimiters: duplicate delimiter")
	// ErrNoDelimitersActive reports that filtering left no usable delimiter.
	// Callers treat it as "nothing to transform", not as a failure.
	ErrNoDelimitersActive = errors.New("delimiters: no active delimiters")
)
