package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"catalogapi/internal/model"
	"catalogapi/internal/query"
	"catalogapi/internal/repository"
)

// BookPostgres stores books in books and their parts in volumes.
type BookPostgres struct {
	db *sql.DB
}

func NewBookPostgres(db *sql.DB) *BookPostgres {
	return &BookPostgres{db: db}
}

var _ repository.BookRepository = (*BookPostgres)(nil)

const bookColumns = `id_book, title, publisher_id, year_of_release, cover_photo`

var bookList = listSpec{
	table:   "books",
	selects: bookColumns,
	pk:      "id_book",
	fields: map[string]column{
		"title":           {name: "title", kind: query.Text},
		"year_of_release": {name: "year_of_release", kind: query.Integer32},
		"id":              {name: "id_book", kind: query.Integer},
	},
}

func scanBook(row scanner) (model.Book, error) {
	var (
		b         model.Book
		publisher sql.NullInt64
		year      sql.NullInt32
		cover     sql.NullString
	)
	if err := row.Scan(&b.ID, &b.Title, &publisher, &year, &cover); err != nil {
		return model.Book{}, err
	}
	if publisher.Valid {
		id := publisher.Int64
		b.PublisherID = &id
	}
	if year.Valid {
		y := int(year.Int32)
		b.YearOfRelease = &y
	}
	b.CoverPhoto = stringPtr(cover)
	b.Volumes = []model.Volume{}
	return b, nil
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func nullInt32(v *int) sql.NullInt32 {
	if v == nil {
		return sql.NullInt32{}
	}
	return sql.NullInt32{Int32: int32(*v), Valid: true}
}

// List returns one page of books with their volumes attached.
func (r *BookPostgres) List(ctx context.Context, plan query.Plan) ([]model.Book, int, error) {
	books, total, err := list(ctx, r.db, bookList, plan, scanBook)
	if err != nil {
		return nil, 0, err
	}
	if err := attachVolumes(ctx, r.db, books); err != nil {
		return nil, 0, err
	}
	return books, total, nil
}

func (r *BookPostgres) Create(ctx context.Context, in *model.Book) (*model.Book, error) {
	var out model.Book
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		const q = `
			INSERT INTO books (title, publisher_id, year_of_release)
			VALUES ($1, $2, $3)
			RETURNING ` + bookColumns
		b, err := scanBook(tx.QueryRowContext(ctx, q, in.Title, nullInt64(in.PublisherID), nullInt32(in.YearOfRelease)))
		if err != nil {
			return mapError(err)
		}
		if b.Volumes, err = insertVolumes(ctx, tx, b.ID, in.Volumes); err != nil {
			return err
		}
		out = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *BookPostgres) FindByID(ctx context.Context, id int64) (*model.Book, error) {
	const q = `SELECT ` + bookColumns + ` FROM books WHERE id_book = $1`
	b, err := scanBook(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		return nil, err
	}
	books := []model.Book{b}
	if err := attachVolumes(ctx, r.db, books); err != nil {
		return nil, err
	}
	return &books[0], nil
}

// Update leaves cover_photo alone; covers change only through SetCover.
func (r *BookPostgres) Update(ctx context.Context, in *model.Book) (*model.Book, error) {
	var out model.Book
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		const q = `
			UPDATE books SET title = $1, publisher_id = $2, year_of_release = $3
			WHERE id_book = $4
			RETURNING ` + bookColumns
		b, err := scanBook(tx.QueryRowContext(ctx, q, in.Title, nullInt64(in.PublisherID), nullInt32(in.YearOfRelease), in.ID))
		if err != nil {
			return mapError(err)
		}

		if in.Volumes != nil {
			if _, err := tx.ExecContext(ctx, `DELETE FROM volumes WHERE book_id = $1`, b.ID); err != nil {
				return fmt.Errorf("clear volumes: %w", err)
			}
			if b.Volumes, err = insertVolumes(ctx, tx, b.ID, in.Volumes); err != nil {
				return err
			}
		} else {
			books := []model.Book{b}
			if err := attachVolumes(ctx, tx, books); err != nil {
				return err
			}
			b = books[0]
		}
		out = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *BookPostgres) SetCover(ctx context.Context, id int64, key string) (*string, error) {
	var previous *string
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		var cur sql.NullString
		err := tx.QueryRowContext(ctx, `SELECT cover_photo FROM books WHERE id_book = $1 FOR UPDATE`, id).Scan(&cur)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `UPDATE books SET cover_photo = $1 WHERE id_book = $2`, key, id); err != nil {
			return err
		}
		previous = stringPtr(cur)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return previous, nil
}

// Delete removes the book; volumes go with it by cascade.
func (r *BookPostgres) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM books WHERE id_book = $1`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func insertVolumes(ctx context.Context, db DBTX, bookID int64, volumes []model.Volume) ([]model.Volume, error) {
	const q = `
		INSERT INTO volumes (book_id, volume_number, number_of_pages)
		VALUES ($1, $2, $3)
		RETURNING id_volume`
	out := make([]model.Volume, 0, len(volumes))
	for _, v := range volumes {
		v.BookID = bookID
		if err := db.QueryRowContext(ctx, q, bookID, v.VolumeNumber, v.NumberOfPages).Scan(&v.ID); err != nil {
			return nil, fmt.Errorf("insert volume %d: %w", v.VolumeNumber, mapError(err))
		}
		out = append(out, v)
	}
	return out, nil
}

// attachVolumes loads the volumes of every book in one query. The ids travel
// as one array parameter whatever the page size.
func attachVolumes(ctx context.Context, db DBTX, books []model.Book) error {
	if len(books) == 0 {
		return nil
	}
	ids := make([]int64, len(books))
	index := make(map[int64]int, len(books))
	for i, b := range books {
		ids[i] = b.ID
		index[b.ID] = i
	}

	const q = `SELECT id_volume, book_id, volume_number, number_of_pages FROM volumes
		WHERE book_id = ANY($1::bigint[])
		ORDER BY book_id, volume_number, id_volume`
	rows, err := db.QueryContext(ctx, q, bigintArray(ids))
	if err != nil {
		return fmt.Errorf("load volumes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var v model.Volume
		if err := rows.Scan(&v.ID, &v.BookID, &v.VolumeNumber, &v.NumberOfPages); err != nil {
			return err
		}
		i := index[v.BookID]
		books[i].Volumes = append(books[i].Volumes, v)
	}
	return rows.Err()
}
