package repository_test

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/m-mizutani/gt"

	"github.com/fuelrats/ratboard/pkg/domain/interfaces"
	"github.com/fuelrats/ratboard/pkg/domain/model"
	"github.com/fuelrats/ratboard/pkg/domain/types"
	"github.com/fuelrats/ratboard/pkg/repository/firestore"
	"github.com/fuelrats/ratboard/pkg/repository/memory"
	"github.com/fuelrats/ratboard/pkg/repository/postgres"
)

// Every backend wraps the shared sentinel, so callers never need to know
// which backend they are talking to.
func isNotFound(err error) bool {
	return errors.Is(err, interfaces.ErrNotFound)
}

func runCaseRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	base := time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC)

	t.Run("Save then ListOpen returns the case", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		c := model.NewCase(0, "Nova", "ratsignal pc cmdr stranded", "#rescue", base)
		gt.NoError(t, repo.Case().Save(ctx, c)).Required()

		open, err := repo.Case().ListOpen(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, open).Length(1)
		gt.Value(t, open[0].ID).Equal(0)
		gt.Value(t, open[0].Reporter).Equal("Nova")
		gt.Value(t, open[0].Status).Equal(types.CaseStatusOpen)
		gt.Array(t, open[0].Quotes).Length(1)
	})

	t.Run("Save is an upsert", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		c := model.NewCase(3, "Nova", "ratsignal", "#rescue", base)
		gt.NoError(t, repo.Case().Save(ctx, c)).Required()

		_, err := c.Assign("Ada", base.Add(time.Minute))
		gt.NoError(t, err).Required()
		gt.NoError(t, repo.Case().Save(ctx, c)).Required()

		open, err := repo.Case().ListOpen(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, open).Length(1)
		gt.Value(t, open[0].Status).Equal(types.CaseStatusAssigned)
		gt.Array(t, open[0].Responders).Length(1)
	})

	t.Run("ListOpen orders by creation time", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		late := model.NewCase(1, "Late", "ratsignal", "#rescue", base.Add(time.Hour))
		early := model.NewCase(2, "Early", "ratsignal", "#rescue", base)
		gt.NoError(t, repo.Case().Save(ctx, late)).Required()
		gt.NoError(t, repo.Case().Save(ctx, early)).Required()

		open, err := repo.Case().ListOpen(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, open).Length(2)
		gt.Value(t, open[0].Reporter).Equal("Early")
		gt.Value(t, open[1].Reporter).Equal("Late")
	})

	t.Run("Delete removes a live case", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		c := model.NewCase(5, "Nova", "ratsignal", "#rescue", base)
		gt.NoError(t, repo.Case().Save(ctx, c)).Required()
		gt.NoError(t, repo.Case().Delete(ctx, 5)).Required()

		open, err := repo.Case().ListOpen(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, open).Length(0)
	})

	t.Run("Delete of unknown case reports not found", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		err := repo.Case().Delete(ctx, 404)
		gt.Error(t, err)
		gt.Bool(t, isNotFound(err)).True()
	})

	t.Run("Archive then GetArchived round-trips", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		c := model.NewCase(7, "Nova", "ratsignal xb cmdr stuck", "#rescue", base)
		_, err := c.Assign("Ada", base)
		gt.NoError(t, err).Required()
		gt.NoError(t, c.Apply(types.CaseEventCallForJump, base)).Required()
		gt.NoError(t, c.Apply(types.CaseEventSuccess, base.Add(time.Minute))).Required()
		c.ArchiveID = uuid.NewString()

		gt.NoError(t, repo.Case().Archive(ctx, c)).Required()

		archived, err := repo.Case().GetArchived(ctx, c.ArchiveID)
		gt.NoError(t, err).Required()
		gt.Value(t, archived.ID).Equal(7)
		gt.Value(t, archived.Status).Equal(types.CaseStatusClosed)
		gt.Value(t, archived.CloseReason).Equal(types.CloseReasonSuccess)
		gt.Array(t, archived.Responders).Length(1)
		gt.Array(t, archived.Quotes).Length(1)
	})

	t.Run("Archive without archive ID fails", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		c := model.NewCase(8, "Nova", "ratsignal", "#rescue", base)
		gt.Error(t, repo.Case().Archive(ctx, c))
	})

	t.Run("GetArchived of unknown ID reports not found", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.Case().GetArchived(ctx, uuid.NewString())
		gt.Error(t, err)
		gt.Bool(t, isNotFound(err)).True()
	})

	t.Run("Ping succeeds on a healthy backend", func(t *testing.T) {
		repo := newRepo(t)
		gt.NoError(t, repo.Ping(context.Background()))
	})
}

func TestCaseRepository_Memory(t *testing.T) {
	runCaseRepositoryTest(t, func(t *testing.T) interfaces.Repository {
		return memory.New()
	})
}

func TestCaseRepository_Firestore(t *testing.T) {
	projectID := os.Getenv("TEST_FIRESTORE_PROJECT_ID")
	if projectID == "" {
		t.Skip("TEST_FIRESTORE_PROJECT_ID not set")
	}

	runCaseRepositoryTest(t, func(t *testing.T) interfaces.Repository {
		repo, err := firestore.New(context.Background(), projectID,
			os.Getenv("TEST_FIRESTORE_DATABASE_ID"),
			firestore.WithCollectionPrefix(uuid.NewString()[:8]))
		gt.NoError(t, err).Required()
		t.Cleanup(func() { _ = repo.Close() })
		return repo
	})
}

func TestCaseRepository_Postgres(t *testing.T) {
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set")
	}

	runCaseRepositoryTest(t, func(t *testing.T) interfaces.Repository {
		repo, err := postgres.New(context.Background(), dsn)
		gt.NoError(t, err).Required()
		truncatePostgres(t, dsn)
		t.Cleanup(func() { _ = repo.Close() })
		return repo
	})
}

// truncatePostgres clears the test database so each subtest starts empty
func truncatePostgres(t *testing.T, dsn string) {
	t.Helper()
	db, err := sql.Open("postgres", dsn)
	gt.NoError(t, err).Required()
	defer func() { _ = db.Close() }()
	_, err = db.Exec(`TRUNCATE rescue_cases, rescue_archive, facts`)
	gt.NoError(t, err).Required()
}
