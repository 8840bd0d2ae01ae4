package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/m-mizutani/goerr/v2"

	"github.com/fuelrats/ratboard/pkg/domain/model"
)

type factRepository struct {
	db *sqlx.DB
}

type factRow struct {
	Name      string    `db:"name"`
	Lang      string    `db:"lang"`
	Text      string    `db:"text"`
	Author    string    `db:"author"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (row *factRow) toModel() *model.Fact {
	return &model.Fact{
		Name:      row.Name,
		Lang:      row.Lang,
		Text:      row.Text,
		Author:    row.Author,
		UpdatedAt: row.UpdatedAt,
	}
}

func (r *factRepository) Put(ctx context.Context, fact *model.Fact) error {
	const q = `
		INSERT INTO facts (name, lang, text, author, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (name, lang) DO UPDATE SET text = $3, author = $4, updated_at = $5`

	if _, err := r.db.ExecContext(ctx, q, fact.Name, fact.Lang, fact.Text, fact.Author, fact.UpdatedAt); err != nil {
		return goerr.Wrap(err, "failed to put fact", goerr.V("key", fact.Key()))
	}
	return nil
}

func (r *factRepository) Get(ctx context.Context, name, lang string) (*model.Fact, error) {
	var row factRow
	err := r.db.GetContext(ctx, &row,
		`SELECT name, lang, text, author, updated_at FROM facts WHERE name = $1 AND lang = $2`,
		name, lang)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, goerr.Wrap(ErrNotFound, "fact not found",
			goerr.V("name", name), goerr.V("lang", lang))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get fact",
			goerr.V("name", name), goerr.V("lang", lang))
	}

	return row.toModel(), nil
}

func (r *factRepository) Delete(ctx context.Context, name, lang string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM facts WHERE name = $1 AND lang = $2`, name, lang)
	if err != nil {
		return goerr.Wrap(err, "failed to delete fact",
			goerr.V("name", name), goerr.V("lang", lang))
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return goerr.Wrap(err, "failed to check delete result")
	}
	if affected == 0 {
		return goerr.Wrap(ErrNotFound, "fact not found",
			goerr.V("name", name), goerr.V("lang", lang))
	}
	return nil
}

func (r *factRepository) List(ctx context.Context) ([]*model.Fact, error) {
	var rows []factRow
	if err := r.db.SelectContext(ctx, &rows,
		`SELECT name, lang, text, author, updated_at FROM facts ORDER BY name, lang`); err != nil {
		return nil, goerr.Wrap(err, "failed to list facts")
	}

	facts := make([]*model.Fact, len(rows))
	for i := range rows {
		facts[i] = rows[i].toModel()
	}
	return facts, nil
}
