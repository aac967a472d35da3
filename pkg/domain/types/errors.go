package types

import "github.com/m-mizutani/goerr/v2"

// Error tags classify repository failures so upper layers can match the
// condition without importing a concrete backend package.
var (
	// ErrTagNotFound marks errors for entities that do not exist
	ErrTagNotFound = goerr.NewTag("not_found")

	// ErrTagSlugBusy marks lease acquisition failures when another job
	// already holds a company slug
	ErrTagSlugBusy = goerr.NewTag("slug_busy")
)
