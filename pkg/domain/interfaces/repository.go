package interfaces

import (
	"context"
	"errors"
)

// ErrNotFound is wrapped by every backend when a requested record does not
// exist, so callers classify misses without importing a concrete backend.
var ErrNotFound = errors.New("record not found")

// Repository defines the interface for data persistence
type Repository interface {
	Case() CaseRepository
	Fact() FactRepository

	// Ping verifies the backend is reachable. The board uses it to decide
	// when to leave degraded mode after a persistence failure.
	Ping(ctx context.Context) error

	Close() error
}
