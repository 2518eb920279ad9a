package filter

import "errors"

var (
	// ErrSplitBoundary reports a match whose boundary could not be mapped to
	// a live text leaf. Only that match is skipped.
	ErrSplitBoundary = errors.New("filter: split boundary")
	// ErrUnresolvedFamily reports a wrapper whose text matches no active
	// delimiter. The wrapper is kept untagged.
	ErrUnresolvedFamily = errors.New("filter: unresolved family")

	errNoMatch = errors.New("filter: no match")
)

// Skip reasons reported through FilterMetrics.IncrementSkipped.
const (
	SkipNoDelimiters  = "no_delimiters"
	SkipNoMatch       = "no_match"
	SkipSplitBoundary = "split_boundary"
	SkipUnresolved    = "unresolved_family"
	SkipDepthExceeded = "depth_exceeded"
)
