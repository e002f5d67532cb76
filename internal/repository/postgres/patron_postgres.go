package postgres

import (
	"context"
	"database/sql"

	"catalogapi/internal/model"
	"catalogapi/internal/query"
	"catalogapi/internal/repository"
)

// PatronPostgres stores patrons in the book_lovers table.
type PatronPostgres struct {
	db *sql.DB
}

func NewPatronPostgres(db *sql.DB) *PatronPostgres {
	return &PatronPostgres{db: db}
}

var _ repository.PatronRepository = (*PatronPostgres)(nil)

const patronColumns = `id_book_lover, first_name, last_name, middle_name, birthday, date_of_joining, address, phone`

var patronList = listSpec{
	table:   "book_lovers",
	selects: patronColumns,
	pk:      "id_book_lover",
	fields: map[string]column{
		"first_name":      {name: "first_name", kind: query.Text},
		"birthday":        {name: "birthday", kind: query.Date},
		"date_of_joining": {name: "date_of_joining", kind: query.Date},
	},
}

func scanPatron(row scanner) (model.Patron, error) {
	var (
		p                       model.Patron
		middle, address, phone  sql.NullString
		birthday, dateOfJoining sql.NullTime
	)
	if err := row.Scan(&p.ID, &p.FirstName, &p.LastName, &middle, &birthday, &dateOfJoining, &address, &phone); err != nil {
		return model.Patron{}, err
	}
	p.MiddleName = stringPtr(middle)
	p.Address = stringPtr(address)
	p.Phone = stringPtr(phone)
	p.Birthday = datePtr(birthday)
	p.DateOfJoining = datePtr(dateOfJoining)
	return p, nil
}

func datePtr(nt sql.NullTime) *model.Date {
	if !nt.Valid {
		return nil
	}
	return &model.Date{Time: nt.Time}
}

func nullDate(d *model.Date) sql.NullTime {
	if d == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: d.Time, Valid: true}
}

func patronArgs(p *model.Patron) []any {
	return []any{
		p.FirstName,
		p.LastName,
		nullString(p.MiddleName),
		nullDate(p.Birthday),
		nullDate(p.DateOfJoining),
		nullString(p.Address),
		nullString(p.Phone),
	}
}

func (r *PatronPostgres) List(ctx context.Context, plan query.Plan) ([]model.Patron, int, error) {
	return list(ctx, r.db, patronList, plan, scanPatron)
}

func (r *PatronPostgres) Create(ctx context.Context, in *model.Patron) (*model.Patron, error) {
	const q = `
		INSERT INTO book_lovers (first_name, last_name, middle_name, birthday, date_of_joining, address, phone)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + patronColumns
	out, err := scanPatron(r.db.QueryRowContext(ctx, q, patronArgs(in)...))
	if err != nil {
		return nil, mapError(err)
	}
	return &out, nil
}

func (r *PatronPostgres) FindByID(ctx context.Context, id int64) (*model.Patron, error) {
	const q = `SELECT ` + patronColumns + ` FROM book_lovers WHERE id_book_lover = $1`
	out, err := scanPatron(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *PatronPostgres) Update(ctx context.Context, in *model.Patron) (*model.Patron, error) {
	const q = `
		UPDATE book_lovers
		SET first_name = $1, last_name = $2, middle_name = $3, birthday = $4,
		    date_of_joining = $5, address = $6, phone = $7
		WHERE id_book_lover = $8
		RETURNING ` + patronColumns
	args := append(patronArgs(in), in.ID)
	out, err := scanPatron(r.db.QueryRowContext(ctx, q, args...))
	if err != nil {
		return nil, mapError(err)
	}
	return &out, nil
}

func (r *PatronPostgres) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM book_lovers WHERE id_book_lover = $1`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}
