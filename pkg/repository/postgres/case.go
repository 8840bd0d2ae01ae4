package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/m-mizutani/goerr/v2"

	"github.com/fuelrats/ratboard/pkg/domain/model"
)

type caseRepository struct {
	db *sqlx.DB
}

func (r *caseRepository) Save(ctx context.Context, c *model.Case) error {
	data, err := json.Marshal(c)
	if err != nil {
		return goerr.Wrap(err, "failed to encode case", goerr.V("case_id", c.ID))
	}

	const q = `
		INSERT INTO rescue_cases (id, data, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET data = $2, updated_at = $4`

	if _, err := r.db.ExecContext(ctx, q, c.ID, data, c.CreatedAt, c.UpdatedAt); err != nil {
		return goerr.Wrap(err, "failed to save case", goerr.V("case_id", c.ID))
	}
	return nil
}

func (r *caseRepository) ListOpen(ctx context.Context) ([]*model.Case, error) {
	const q = `SELECT data FROM rescue_cases ORDER BY created_at, id`

	var rows [][]byte
	if err := r.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, goerr.Wrap(err, "failed to list cases")
	}

	cases := make([]*model.Case, 0, len(rows))
	for _, data := range rows {
		var c model.Case
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, goerr.Wrap(err, "failed to decode case")
		}
		cases = append(cases, &c)
	}

	return cases, nil
}

func (r *caseRepository) Archive(ctx context.Context, c *model.Case) error {
	if c.ArchiveID == "" {
		return goerr.New("archive ID is required", goerr.V("case_id", c.ID))
	}

	data, err := json.Marshal(c)
	if err != nil {
		return goerr.Wrap(err, "failed to encode case", goerr.V("case_id", c.ID))
	}

	const q = `
		INSERT INTO rescue_archive (archive_id, case_id, data, closed_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (archive_id) DO NOTHING`

	if _, err := r.db.ExecContext(ctx, q, c.ArchiveID, c.ID, data, c.UpdatedAt); err != nil {
		return goerr.Wrap(err, "failed to archive case",
			goerr.V("case_id", c.ID), goerr.V("archive_id", c.ArchiveID))
	}
	return nil
}

func (r *caseRepository) Delete(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM rescue_cases WHERE id = $1`, id)
	if err != nil {
		return goerr.Wrap(err, "failed to delete case", goerr.V("case_id", id))
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return goerr.Wrap(err, "failed to check delete result", goerr.V("case_id", id))
	}
	if affected == 0 {
		return goerr.Wrap(ErrNotFound, "case not found", goerr.V("case_id", id))
	}
	return nil
}

func (r *caseRepository) GetArchived(ctx context.Context, archiveID string) (*model.Case, error) {
	var data []byte
	err := r.db.GetContext(ctx, &data, `SELECT data FROM rescue_archive WHERE archive_id = $1`, archiveID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, goerr.Wrap(ErrNotFound, "archived case not found", goerr.V("archive_id", archiveID))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get archived case", goerr.V("archive_id", archiveID))
	}

	var c model.Case
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, goerr.Wrap(err, "failed to decode archived case", goerr.V("archive_id", archiveID))
	}

	return &c, nil
}
