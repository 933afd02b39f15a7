package model

import "errors"

// Sentinel errors surfaced to callers. Generator failures are deliberately
// absent: the synthesis engine recovers from every generator problem by
// falling back to deterministic composition, so they never cross the API.
var (
	// ErrNotFound means a referenced term or note does not exist.
	ErrNotFound = errors.New("not found")

	// ErrNoEvidence means synthesis was requested for a term with zero
	// matching excerpts. Distinct from ErrNotFound: the term exists, there
	// is just nothing to cite.
	ErrNoEvidence = errors.New("no evidence to synthesize from")
)
