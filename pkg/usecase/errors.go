package usecase

import (
	"errors"

	"github.com/fuelrats/ratboard/pkg/domain/model"
)

// Sentinel errors for the board and fact operations. All of them are
// recoverable: the chat bridge turns each into a reply and carries on.
var (
	ErrCaseNotFound        = errors.New("case not found")
	ErrDuplicateActiveCase = errors.New("reporter already has an open case")
	ErrFactNotFound        = errors.New("fact not found")

	// ErrPersistenceUnavailable means a mutation could not be written
	// through to storage. The live board stays unchanged and mutations are
	// rejected until a repository ping succeeds again.
	ErrPersistenceUnavailable = errors.New("persistence unavailable")

	// ErrInvalidTransition is the domain sentinel, re-exported so callers
	// only need this package to classify board errors.
	ErrInvalidTransition = model.ErrInvalidTransition
)
