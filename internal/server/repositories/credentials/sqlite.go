package credentials

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/credvault/internal/dbx"
	"github.com/dmitrijs2005/credvault/internal/server/models"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Upsert leaves updated_at NULL on insert and stamps it on conflict, so the
// returned row tells the branches apart.
func (r *SQLiteRepository) Upsert(ctx context.Context, username, service, secretHash string) (models.UpsertResult, error) {
	var inserted bool
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO credentials (username, service, secret_hash) VALUES (?, ?, ?)
		ON CONFLICT(username, service) DO UPDATE
		SET secret_hash = excluded.secret_hash, updated_at = CURRENT_TIMESTAMP
		RETURNING updated_at IS NULL
	`, username, service, secretHash).Scan(&inserted)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return upsertResult(inserted), nil
}

func (r *SQLiteRepository) Update(ctx context.Context, username, service, secretHash string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE credentials SET secret_hash = ?, updated_at = CURRENT_TIMESTAMP
		WHERE username = ? AND service = ?
	`, secretHash, username, service)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return affected(res)
}

func (r *SQLiteRepository) Get(ctx context.Context, username, service string) (*models.Credential, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT username, service, secret_hash, created_at, updated_at FROM credentials
		WHERE username = ? AND service = ?
	`, username, service)
	return scanCredential(row)
}

func (r *SQLiteRepository) Delete(ctx context.Context, username, service string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM credentials WHERE username = ? AND service = ?`, username, service)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return affected(res)
}

func (r *SQLiteRepository) ListServices(ctx context.Context, username string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT service FROM credentials WHERE username = ? ORDER BY service`, username)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return scanServices(rows)
}
