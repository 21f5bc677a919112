package auditlog

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

func (r *PostgresRepository) Insert(ctx context.Context, e *models.AuditEntry) error {
	query :=
		`INSERT INTO audit_log (id, username, action_type, status, details, source_address, client_agent, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.ExecContext(ctx, query, e.ID, e.Username, string(e.Action), string(e.Status),
		e.Details, e.SourceAddress, e.ClientAgent, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, username string, limit int) ([]*models.AuditEntry, error) {
	query :=
		`SELECT id, username, action_type, status, details, source_address, client_agent, created_at
		 FROM audit_log
		 WHERE username = $1
		 ORDER BY created_at DESC, id DESC
		 LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, username, limit)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return scanEntries(rows)
}
