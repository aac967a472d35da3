package usecase

import (
	"errors"

	"github.com/m-mizutani/goerr/v2"

	"github.com/duedil-lab/diligent/pkg/domain/types"
)

// Sentinel errors for use case layer
var (
	// Not found errors
	ErrJobNotFound      = errors.New("job not found")
	ErrDocumentNotFound = errors.New("document not found")
	ErrVersionNotFound  = errors.New("document version not found")

	// Submission errors
	ErrCompanyBusy    = errors.New("another investigation is running for this company")
	ErrUnknownPlan    = errors.New("unknown plan")
	ErrInvalidRequest = errors.New("invalid request")
)

func isRepoNotFound(err error) bool {
	return goerr.HasTag(err, types.ErrTagNotFound)
}

func isSlugBusy(err error) bool {
	return goerr.HasTag(err, types.ErrTagSlugBusy)
}
