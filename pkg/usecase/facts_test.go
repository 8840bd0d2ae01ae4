package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/m-mizutani/gt"

	"github.com/fuelrats/ratboard/pkg/repository/memory"
	"github.com/fuelrats/ratboard/pkg/usecase"
)

func newTestFacts(t *testing.T) *usecase.Facts {
	t.Helper()
	clock := clockwork.NewFakeClockAt(time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC))
	return usecase.NewFacts(memory.New(), clock)
}

func TestFacts(t *testing.T) {
	ctx := context.Background()

	t.Run("set then lookup", func(t *testing.T) {
		facts := newTestFacts(t)

		gt.NoError(t, facts.Set(ctx, "fuel", "en", "Shut down all modules.", "Ada")).Required()

		fact, err := facts.Lookup(ctx, "fuel", "en")
		gt.NoError(t, err).Required()
		gt.Value(t, fact.Text).Equal("Shut down all modules.")
	})

	t.Run("missing language falls back to english", func(t *testing.T) {
		facts := newTestFacts(t)

		gt.NoError(t, facts.Set(ctx, "fuel", "en", "Shut down all modules.", "Ada")).Required()

		fact, err := facts.Lookup(ctx, "fuel", "de")
		gt.NoError(t, err).Required()
		gt.Value(t, fact.Lang).Equal("en")
	})

	t.Run("requested language wins over fallback", func(t *testing.T) {
		facts := newTestFacts(t)

		gt.NoError(t, facts.Set(ctx, "fuel", "en", "english", "Ada")).Required()
		gt.NoError(t, facts.Set(ctx, "fuel", "de", "deutsch", "Ada")).Required()

		fact, err := facts.Lookup(ctx, "fuel", "de")
		gt.NoError(t, err).Required()
		gt.Value(t, fact.Text).Equal("deutsch")
	})

	t.Run("unknown fact reports not found", func(t *testing.T) {
		facts := newTestFacts(t)

		_, err := facts.Lookup(ctx, "nosuch", "en")
		gt.Bool(t, errors.Is(err, usecase.ErrFactNotFound)).True()
	})

	t.Run("forget removes the fact", func(t *testing.T) {
		facts := newTestFacts(t)

		gt.NoError(t, facts.Set(ctx, "fuel", "en", "text", "Ada")).Required()
		gt.NoError(t, facts.Forget(ctx, "fuel", "en")).Required()

		_, err := facts.Lookup(ctx, "fuel", "en")
		gt.Bool(t, errors.Is(err, usecase.ErrFactNotFound)).True()

		err = facts.Forget(ctx, "fuel", "en")
		gt.Bool(t, errors.Is(err, usecase.ErrFactNotFound)).True()
	})

	t.Run("set requires name and text", func(t *testing.T) {
		facts := newTestFacts(t)

		gt.Error(t, facts.Set(ctx, "", "en", "text", "Ada"))
		gt.Error(t, facts.Set(ctx, "fuel", "en", "", "Ada"))
	})
}
