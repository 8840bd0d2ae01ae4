package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/m-mizutani/goerr/v2"

	"github.com/fuelrats/ratboard/pkg/domain/model"
)

type caseRepository struct {
	mu       sync.RWMutex
	live     map[int]*model.Case
	archived map[string]*model.Case
}

func newCaseRepository() *caseRepository {
	return &caseRepository{
		live:     make(map[int]*model.Case),
		archived: make(map[string]*model.Case),
	}
}

func (r *caseRepository) Save(ctx context.Context, c *model.Case) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.live[c.ID] = c.Clone()
	return nil
}

func (r *caseRepository) ListOpen(ctx context.Context) ([]*model.Case, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.Case, 0, len(r.live))
	for _, c := range r.live {
		result = append(result, c.Clone())
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})

	return result, nil
}

func (r *caseRepository) Archive(ctx context.Context, c *model.Case) error {
	if c.ArchiveID == "" {
		return goerr.New("archive ID is required", goerr.V("case_id", c.ID))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.archived[c.ArchiveID] = c.Clone()
	return nil
}

func (r *caseRepository) Delete(ctx context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.live[id]; !exists {
		return goerr.Wrap(ErrNotFound, "case not found", goerr.V("case_id", id))
	}

	delete(r.live, id)
	return nil
}

func (r *caseRepository) GetArchived(ctx context.Context, archiveID string) (*model.Case, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, exists := r.archived[archiveID]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "archived case not found", goerr.V("archive_id", archiveID))
	}

	return c.Clone(), nil
}
