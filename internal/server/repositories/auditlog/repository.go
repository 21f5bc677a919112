// Package auditlog persists audit entries. Entries are only ever inserted.
package auditlog

import (
	"context"

	"github.com/dmitrijs2005/credvault/internal/server/models"
)

type Repository interface {
	Insert(ctx context.Context, entry *models.AuditEntry) error
	// ListByUser returns up to limit entries, newest first.
	ListByUser(ctx context.Context, username string, limit int) ([]*models.AuditEntry, error)
}
