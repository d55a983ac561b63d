package resolve

import "errors"

var (
	// ErrInvalidEvidence means the evidence carries nothing to match against:
	// no filename, no text sample, no signals and no known type or category.
	ErrInvalidEvidence = errors.New("evidence contains nothing to match against")

	// ErrUnknownContext means the consumer context tag is not one of the
	// enumerated values. This is a caller programming error.
	ErrUnknownContext = errors.New("unknown consumer context")

	// ErrUnknownFormat means the requested output format is not one of the
	// enumerated shapes. Like ErrUnknownContext, a caller programming error.
	ErrUnknownFormat = errors.New("unknown output format")

	// ErrCatalogUnavailable means Resolve was called before any catalog
	// snapshot was published. Transient at startup.
	ErrCatalogUnavailable = errors.New("no catalog snapshot published")
)
