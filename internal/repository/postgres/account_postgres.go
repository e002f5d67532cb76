package postgres

import (
	"context"
	"database/sql"

	"catalogapi/internal/model"
	"catalogapi/internal/repository"
)

// AccountPostgres is the PostgreSQL credential store.
type AccountPostgres struct {
	db *sql.DB
}

func NewAccountPostgres(db *sql.DB) *AccountPostgres {
	return &AccountPostgres{db: db}
}

var _ repository.AccountRepository = (*AccountPostgres)(nil)

const accountColumns = `id, username, password_hash, email, created_at`

func scanAccount(row scanner) (*model.Account, error) {
	var a model.Account
	if err := row.Scan(&a.ID, &a.Username, &a.PasswordHash, &a.Email, &a.CreatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

// Create relies on the unique index on username, so concurrent registrations
// of one name produce exactly one row.
func (r *AccountPostgres) Create(ctx context.Context, acc *model.Account) (*model.Account, error) {
	const q = `
		INSERT INTO accounts (username, password_hash, email)
		VALUES ($1, $2, $3)
		RETURNING ` + accountColumns
	out, err := scanAccount(r.db.QueryRowContext(ctx, q, acc.Username, acc.PasswordHash, acc.Email))
	if err != nil {
		return nil, mapError(err)
	}
	return out, nil
}

func (r *AccountPostgres) FindByUsername(ctx context.Context, username string) (*model.Account, error) {
	const q = `SELECT ` + accountColumns + ` FROM accounts WHERE username = $1`
	return scanAccount(r.db.QueryRowContext(ctx, q, username))
}

func (r *AccountPostgres) FindByID(ctx context.Context, id int64) (*model.Account, error) {
	const q = `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	return scanAccount(r.db.QueryRowContext(ctx, q, id))
}

func (r *AccountPostgres) UpdatePasswordHash(ctx context.Context, id int64, hash string) error {
	const q = `UPDATE accounts SET password_hash = $1 WHERE id = $2`
	res, err := r.db.ExecContext(ctx, q, hash, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}
