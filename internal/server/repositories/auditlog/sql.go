package auditlog

import (
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/credvault/internal/server/models"
)

func scanEntries(rows *sql.Rows) ([]*models.AuditEntry, error) {
	defer rows.Close()

	entries := []*models.AuditEntry{}
	for rows.Next() {
		e := &models.AuditEntry{}
		if err := rows.Scan(&e.ID, &e.Username, &e.Action, &e.Status, &e.Details,
			&e.SourceAddress, &e.ClientAgent, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		e.CreatedAt = e.CreatedAt.UTC()
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return entries, nil
}
