package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/m-mizutani/goerr/v2"

	"github.com/fuelrats/ratboard/pkg/domain/interfaces"
)

// ErrNotFound is returned when a requested record does not exist
var ErrNotFound = interfaces.ErrNotFound

const schema = `
CREATE TABLE IF NOT EXISTS rescue_cases (
	id         INTEGER PRIMARY KEY,
	data       JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS rescue_archive (
	archive_id UUID PRIMARY KEY,
	case_id    INTEGER NOT NULL,
	data       JSONB NOT NULL,
	closed_at  TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS facts (
	name       TEXT NOT NULL,
	lang       TEXT NOT NULL,
	text       TEXT NOT NULL,
	author     TEXT NOT NULL DEFAULT '',
	updated_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (name, lang)
);
`

// Postgres is the relational repository reached via the configured database
// connection string.
type Postgres struct {
	db       *sqlx.DB
	caseRepo *caseRepository
	factRepo *factRepository
}

var _ interfaces.Repository = &Postgres{}

// New connects to PostgreSQL and ensures the tables exist
func New(ctx context.Context, dsn string) (*Postgres, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to connect to postgres")
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, goerr.Wrap(err, "failed to ensure schema")
	}

	return &Postgres{
		db:       db,
		caseRepo: &caseRepository{db: db},
		factRepo: &factRepository{db: db},
	}, nil
}

func (p *Postgres) Case() interfaces.CaseRepository {
	return p.caseRepo
}

func (p *Postgres) Fact() interfaces.FactRepository {
	return p.factRepo
}

func (p *Postgres) Ping(ctx context.Context) error {
	if err := p.db.PingContext(ctx); err != nil {
		return goerr.Wrap(err, "postgres ping failed")
	}
	return nil
}

func (p *Postgres) Close() error {
	return p.db.Close()
}
