package config

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/fuelrats/ratboard/pkg/domain/interfaces"
	"github.com/fuelrats/ratboard/pkg/repository/firestore"
	"github.com/fuelrats/ratboard/pkg/repository/memory"
	"github.com/fuelrats/ratboard/pkg/repository/postgres"
	"github.com/fuelrats/ratboard/pkg/utils/logging"
)

// Repository holds CLI flags for the persistence backend
type Repository struct {
	backend    string
	dsn        string
	projectID  string
	databaseID string
}

// Flags returns CLI flags for repository configuration
func (r *Repository) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "repository-backend",
			Usage:       "Repository backend type (memory, firestore or postgres)",
			Value:       "memory",
			Sources:     cli.EnvVars("RATBOARD_REPOSITORY_BACKEND"),
			Destination: &r.backend,
		},
		&cli.StringFlag{
			Name:        "database-dsn",
			Usage:       "Postgres connection string (required for postgres backend)",
			Sources:     cli.EnvVars("RATBOARD_DATABASE_DSN"),
			Destination: &r.dsn,
		},
		&cli.StringFlag{
			Name:        "firestore-project-id",
			Usage:       "Firestore Project ID (required for firestore backend)",
			Sources:     cli.EnvVars("RATBOARD_FIRESTORE_PROJECT_ID"),
			Destination: &r.projectID,
		},
		&cli.StringFlag{
			Name:        "firestore-database-id",
			Usage:       "Firestore Database ID",
			Sources:     cli.EnvVars("RATBOARD_FIRESTORE_DATABASE_ID"),
			Destination: &r.databaseID,
		},
	}
}

// Backend returns the configured backend type
func (r *Repository) Backend() string {
	return r.backend
}

// Configure initializes the repository for the configured backend. The
// caller owns Close().
func (r *Repository) Configure(ctx context.Context) (interfaces.Repository, error) {
	switch r.backend {
	case "memory":
		logging.Default().Info("Using in-memory repository, cases are lost on restart")
		return memory.New(), nil

	case "firestore":
		if r.projectID == "" {
			return nil, goerr.New("firestore-project-id is required when using firestore backend")
		}
		repo, err := firestore.New(ctx, r.projectID, r.databaseID)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize firestore repository")
		}
		logging.Default().Info("Using Firestore repository",
			"project_id", r.projectID,
			"database_id", r.databaseID,
		)
		return repo, nil

	case "postgres":
		if r.dsn == "" {
			return nil, goerr.New("database-dsn is required when using postgres backend")
		}
		repo, err := postgres.New(ctx, r.dsn)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize postgres repository")
		}
		logging.Default().Info("Using Postgres repository")
		return repo, nil

	default:
		return nil, goerr.New("invalid repository backend", goerr.V("backend", r.backend))
	}
}
