package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/m-mizutani/goerr/v2"

	"github.com/fuelrats/ratboard/pkg/domain/model"
)

type factRepository struct {
	mu    sync.RWMutex
	facts map[string]*model.Fact
}

func newFactRepository() *factRepository {
	return &factRepository{
		facts: make(map[string]*model.Fact),
	}
}

func copyFact(f *model.Fact) *model.Fact {
	copied := *f
	return &copied
}

func (r *factRepository) Put(ctx context.Context, fact *model.Fact) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.facts[fact.Key()] = copyFact(fact)
	return nil
}

func (r *factRepository) Get(ctx context.Context, name, lang string) (*model.Fact, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, exists := r.facts[name+"-"+lang]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "fact not found",
			goerr.V("name", name), goerr.V("lang", lang))
	}

	return copyFact(f), nil
}

func (r *factRepository) Delete(ctx context.Context, name, lang string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := name + "-" + lang
	if _, exists := r.facts[key]; !exists {
		return goerr.Wrap(ErrNotFound, "fact not found",
			goerr.V("name", name), goerr.V("lang", lang))
	}

	delete(r.facts, key)
	return nil
}

func (r *factRepository) List(ctx context.Context) ([]*model.Fact, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.Fact, 0, len(r.facts))
	for _, f := range r.facts {
		result = append(result, copyFact(f))
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Key() < result[j].Key()
	})

	return result, nil
}
