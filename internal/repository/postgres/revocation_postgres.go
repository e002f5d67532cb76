package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"catalogapi/internal/token"
)

// RevocationPostgres keeps revoked access-token ids in revoked_tokens.
// Rows past their natural expiry are pruned on every revoke.
type RevocationPostgres struct {
	db  *sql.DB
	now func() time.Time
}

func NewRevocationPostgres(db *sql.DB) *RevocationPostgres {
	return &RevocationPostgres{db: db, now: time.Now}
}

var _ token.RevocationStore = (*RevocationPostgres)(nil)

func (r *RevocationPostgres) Revoke(ctx context.Context, id string, expiresAt time.Time) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM revoked_tokens WHERE expires_at <= $1`, r.now().UTC()); err != nil {
		return fmt.Errorf("prune revoked tokens: %w", err)
	}

	const q = `
		INSERT INTO revoked_tokens (jti, expires_at)
		VALUES ($1, $2)
		ON CONFLICT (jti) DO NOTHING
	`
	res, err := r.db.ExecContext(ctx, q, id, expiresAt.UTC())
	if err != nil {
		return fmt.Errorf("insert revoked token: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return token.ErrAlreadyRevoked
	}
	return nil
}

func (r *RevocationPostgres) IsRevoked(ctx context.Context, id string) (bool, error) {
	var revoked bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM revoked_tokens WHERE jti = $1)`, id).Scan(&revoked)
	if err != nil {
		return false, fmt.Errorf("lookup revoked token: %w", err)
	}
	return revoked, nil
}
