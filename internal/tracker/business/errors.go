package business

import "errors"

// ErrReferenceDataMissing aborts the current unit of work: categories and
// retailers must exist before anything referencing them is ingested.
var ErrReferenceDataMissing = errors.New("reference data missing")
