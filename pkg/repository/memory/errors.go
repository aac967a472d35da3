package memory

import (
	"github.com/m-mizutani/goerr/v2"

	"github.com/duedil-lab/diligent/pkg/domain/types"
)

var (
	// ErrNotFound is returned when a requested entity does not exist
	ErrNotFound = goerr.New("not found", goerr.T(types.ErrTagNotFound))

	// ErrSlugBusy is returned when another job already holds the lease for
	// a company slug
	ErrSlugBusy = goerr.New("company slug is busy", goerr.T(types.ErrTagSlugBusy))
)
