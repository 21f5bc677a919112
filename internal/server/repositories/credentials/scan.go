package credentials

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/credvault/internal/server/models"
)

func upsertResult(inserted bool) models.UpsertResult {
	if inserted {
		return models.UpsertCreated
	}
	return models.UpsertUpdated
}

func affected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n > 0, nil
}

func scanCredential(row *sql.Row) (*models.Credential, error) {
	c := &models.Credential{}
	var updatedAt sql.NullTime

	err := row.Scan(&c.Username, &c.Service, &c.SecretHash, &c.CreatedAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	if updatedAt.Valid {
		t := updatedAt.Time
		c.UpdatedAt = &t
	}
	return c, nil
}

func scanServices(rows *sql.Rows) ([]string, error) {
	defer rows.Close()

	services := []string{}
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		services = append(services, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return services, nil
}
