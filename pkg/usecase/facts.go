package usecase

import (
	"context"
	"errors"

	"github.com/jonboulle/clockwork"
	"github.com/m-mizutani/goerr/v2"

	"github.com/fuelrats/ratboard/pkg/domain/interfaces"
	"github.com/fuelrats/ratboard/pkg/domain/model"
)

// fallbackLang is tried when a fact has no entry for the requested language
const fallbackLang = "en"

// Facts answers canned-reply lookups from chat
type Facts struct {
	repo  interfaces.Repository
	clock clockwork.Clock
}

// NewFacts creates the fact lookup usecase
func NewFacts(repo interfaces.Repository, clock clockwork.Clock) *Facts {
	return &Facts{repo: repo, clock: clock}
}

func isRepoNotFound(err error) bool {
	return errors.Is(err, interfaces.ErrNotFound)
}

// Lookup finds a fact by name and language, falling back to English
func (f *Facts) Lookup(ctx context.Context, name, lang string) (*model.Fact, error) {
	if lang == "" {
		lang = fallbackLang
	}

	fact, err := f.repo.Fact().Get(ctx, name, lang)
	if err == nil {
		return fact, nil
	}
	if !isRepoNotFound(err) {
		return nil, goerr.Wrap(err, "failed to look up fact",
			goerr.V("name", name), goerr.V("lang", lang))
	}

	if lang != fallbackLang {
		fact, err = f.repo.Fact().Get(ctx, name, fallbackLang)
		if err == nil {
			return fact, nil
		}
		if !isRepoNotFound(err) {
			return nil, goerr.Wrap(err, "failed to look up fact",
				goerr.V("name", name), goerr.V("lang", fallbackLang))
		}
	}

	return nil, goerr.Wrap(ErrFactNotFound, "no such fact",
		goerr.V("name", name), goerr.V("lang", lang))
}

// Set stores or overwrites a fact
func (f *Facts) Set(ctx context.Context, name, lang, text, author string) error {
	if lang == "" {
		lang = fallbackLang
	}
	if name == "" || text == "" {
		return goerr.New("fact name and text are required")
	}

	fact := &model.Fact{
		Name:      name,
		Lang:      lang,
		Text:      text,
		Author:    author,
		UpdatedAt: f.clock.Now().UTC(),
	}
	if err := f.repo.Fact().Put(ctx, fact); err != nil {
		return goerr.Wrap(err, "failed to store fact", goerr.V("key", fact.Key()))
	}
	return nil
}

// Forget deletes a fact
func (f *Facts) Forget(ctx context.Context, name, lang string) error {
	if lang == "" {
		lang = fallbackLang
	}

	if err := f.repo.Fact().Delete(ctx, name, lang); err != nil {
		if isRepoNotFound(err) {
			return goerr.Wrap(ErrFactNotFound, "no such fact",
				goerr.V("name", name), goerr.V("lang", lang))
		}
		return goerr.Wrap(err, "failed to delete fact",
			goerr.V("name", name), goerr.V("lang", lang))
	}
	return nil
}

// All lists every stored fact
func (f *Facts) All(ctx context.Context) ([]*model.Fact, error) {
	facts, err := f.repo.Fact().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list facts")
	}
	return facts, nil
}
