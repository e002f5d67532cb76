package postgres

import (
	"context"
	"database/sql"

	"catalogapi/internal/model"
	"catalogapi/internal/query"
	"catalogapi/internal/repository"
)

// PublisherPostgres is a PostgreSQL implementation of repository.PublisherRepository.
type PublisherPostgres struct {
	db *sql.DB
}

func NewPublisherPostgres(db *sql.DB) *PublisherPostgres {
	return &PublisherPostgres{db: db}
}

var _ repository.PublisherRepository = (*PublisherPostgres)(nil)

var publisherList = listSpec{
	table:   "publishers",
	selects: "id, name, region_id",
	pk:      "id",
	fields: map[string]column{
		"name":   {name: "name", kind: query.Text},
		"region": {name: "region_id", kind: query.Integer},
	},
}

func scanPublisher(row scanner) (model.Publisher, error) {
	var p model.Publisher
	err := row.Scan(&p.ID, &p.Name, &p.RegionID)
	return p, err
}

func (r *PublisherPostgres) List(ctx context.Context, plan query.Plan) ([]model.Publisher, int, error) {
	return list(ctx, r.db, publisherList, plan, scanPublisher)
}

func (r *PublisherPostgres) Create(ctx context.Context, in *model.Publisher) (*model.Publisher, error) {
	const q = `INSERT INTO publishers (name, region_id) VALUES ($1, $2) RETURNING id, name, region_id`
	out, err := scanPublisher(r.db.QueryRowContext(ctx, q, in.Name, in.RegionID))
	if err != nil {
		return nil, mapError(err)
	}
	return &out, nil
}

func (r *PublisherPostgres) FindByID(ctx context.Context, id int64) (*model.Publisher, error) {
	const q = `SELECT id, name, region_id FROM publishers WHERE id = $1`
	out, err := scanPublisher(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *PublisherPostgres) Update(ctx context.Context, in *model.Publisher) (*model.Publisher, error) {
	const q = `UPDATE publishers SET name = $1, region_id = $2 WHERE id = $3 RETURNING id, name, region_id`
	out, err := scanPublisher(r.db.QueryRowContext(ctx, q, in.Name, in.RegionID, in.ID))
	if err != nil {
		return nil, mapError(err)
	}
	return &out, nil
}

func (r *PublisherPostgres) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM publishers WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}
