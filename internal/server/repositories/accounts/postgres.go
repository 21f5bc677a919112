package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/credvault/internal/common"
	"github.com/dmitrijs2005/credvault/internal/dbx"
	"github.com/dmitrijs2005/credvault/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, account *models.Account) error {
	if account.CreatedAt.IsZero() {
		account.CreatedAt = time.Now().UTC()
	}

	query :=
		`INSERT INTO accounts (username, password_hash, created_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (username) DO NOTHING`

	res, err := r.db.ExecContext(ctx, query, account.Username, account.PasswordHash, account.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return insertedOrDuplicate(res)
}

func (r *PostgresRepository) FindByUsername(ctx context.Context, username string) (*models.Account, error) {
	query :=
		`SELECT username, password_hash, created_at FROM accounts
		 WHERE username = $1`

	return scanAccount(r.db.QueryRowContext(ctx, query, username))
}

func insertedOrDuplicate(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrDuplicateUser
	}
	return nil
}

func scanAccount(row *sql.Row) (*models.Account, error) {
	a := &models.Account{}
	if err := row.Scan(&a.Username, &a.PasswordHash, &a.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return a, nil
}
