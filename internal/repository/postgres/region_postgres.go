package postgres

import (
	"context"
	"database/sql"

	"catalogapi/internal/model"
	"catalogapi/internal/query"
	"catalogapi/internal/repository"
)

// RegionPostgres is a PostgreSQL implementation of repository.RegionRepository.
type RegionPostgres struct {
	db *sql.DB
}

func NewRegionPostgres(db *sql.DB) *RegionPostgres {
	return &RegionPostgres{db: db}
}

var _ repository.RegionRepository = (*RegionPostgres)(nil)

var regionList = listSpec{
	table:   "regions",
	selects: "id, code, name",
	pk:      "id",
	fields: map[string]column{
		"name": {name: "name", kind: query.Text},
		"code": {name: "code", kind: query.Text},
	},
}

func scanRegion(row scanner) (model.Region, error) {
	var r model.Region
	err := row.Scan(&r.ID, &r.Code, &r.Name)
	return r, err
}

func (r *RegionPostgres) List(ctx context.Context, plan query.Plan) ([]model.Region, int, error) {
	return list(ctx, r.db, regionList, plan, scanRegion)
}

func (r *RegionPostgres) Create(ctx context.Context, in *model.Region) (*model.Region, error) {
	const q = `INSERT INTO regions (code, name) VALUES ($1, $2) RETURNING id, code, name`
	out, err := scanRegion(r.db.QueryRowContext(ctx, q, in.Code, in.Name))
	if err != nil {
		return nil, mapError(err)
	}
	return &out, nil
}

func (r *RegionPostgres) FindByID(ctx context.Context, id int64) (*model.Region, error) {
	const q = `SELECT id, code, name FROM regions WHERE id = $1`
	out, err := scanRegion(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *RegionPostgres) Update(ctx context.Context, in *model.Region) (*model.Region, error) {
	const q = `UPDATE regions SET code = $1, name = $2 WHERE id = $3 RETURNING id, code, name`
	out, err := scanRegion(r.db.QueryRowContext(ctx, q, in.Code, in.Name, in.ID))
	if err != nil {
		return nil, mapError(err)
	}
	return &out, nil
}

// Delete removes a region; its publishers are removed by cascade.
func (r *RegionPostgres) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM regions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}
