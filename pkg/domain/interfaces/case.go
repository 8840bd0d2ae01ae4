package interfaces

import (
	"context"

	"github.com/fuelrats/ratboard/pkg/domain/model"
)

// CaseRepository defines the interface for case persistence. The board is
// the single writer; every board mutation is written through here before it
// becomes visible in the live mapping.
type CaseRepository interface {
	// Save upserts a live case keyed by its board ID
	Save(ctx context.Context, c *model.Case) error

	// ListOpen returns all live cases, used once at startup to repopulate
	// the board
	ListOpen(ctx context.Context) ([]*model.Case, error)

	// Archive writes a closed case to the archive. The case's ArchiveID
	// must be set by the caller.
	Archive(ctx context.Context, c *model.Case) error

	// Delete removes a case from the live set. Called after Archive during
	// close, and directly on administrative purge of corrupt records.
	Delete(ctx context.Context, id int) error

	// GetArchived retrieves a closed case by its archive ID
	GetArchived(ctx context.Context, archiveID string) (*model.Case, error)
}

// FactRepository defines the interface for fact storage used by the fact
// lookup feature.
type FactRepository interface {
	Put(ctx context.Context, fact *model.Fact) error
	Get(ctx context.Context, name, lang string) (*model.Fact, error)
	Delete(ctx context.Context, name, lang string) error
	List(ctx context.Context) ([]*model.Fact, error)
}
