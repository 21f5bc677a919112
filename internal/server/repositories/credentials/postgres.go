package credentials

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/credvault/internal/dbx"
	"github.com/dmitrijs2005/credvault/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Upsert relies on xmax being zero only for freshly inserted tuples.
func (r *PostgresRepository) Upsert(ctx context.Context, username, service, secretHash string) (models.UpsertResult, error) {
	query :=
		`INSERT INTO credentials (username, service, secret_hash)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (username, service) DO UPDATE
		 SET secret_hash = EXCLUDED.secret_hash, updated_at = now()
		 RETURNING (xmax = 0) AS inserted`

	var inserted bool
	if err := r.db.QueryRowContext(ctx, query, username, service, secretHash).Scan(&inserted); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return upsertResult(inserted), nil
}

func (r *PostgresRepository) Update(ctx context.Context, username, service, secretHash string) (bool, error) {
	query :=
		`UPDATE credentials SET secret_hash = $3, updated_at = now()
		 WHERE username = $1 AND service = $2`

	res, err := r.db.ExecContext(ctx, query, username, service, secretHash)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return affected(res)
}

func (r *PostgresRepository) Get(ctx context.Context, username, service string) (*models.Credential, error) {
	query :=
		`SELECT username, service, secret_hash, created_at, updated_at FROM credentials
		 WHERE username = $1 AND service = $2`

	return scanCredential(r.db.QueryRowContext(ctx, query, username, service))
}

func (r *PostgresRepository) Delete(ctx context.Context, username, service string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM credentials WHERE username = $1 AND service = $2`, username, service)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return affected(res)
}

func (r *PostgresRepository) ListServices(ctx context.Context, username string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT service FROM credentials WHERE username = $1 ORDER BY service`, username)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return scanServices(rows)
}
