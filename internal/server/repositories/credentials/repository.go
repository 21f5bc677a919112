// Package credentials stores hashed service secrets, one per
// (username, service) pair.
package credentials

import (
	"context"

	"github.com/dmitrijs2005/credvault/internal/server/models"
)

type Repository interface {
	// Upsert writes the secret hash in a single atomic statement and reports
	// whether a row was created or an existing one overwritten.
	Upsert(ctx context.Context, username, service, secretHash string) (models.UpsertResult, error)
	// Update overwrites an existing row only; false when there is none.
	Update(ctx context.Context, username, service, secretHash string) (bool, error)
	// Get returns nil, nil when absent.
	Get(ctx context.Context, username, service string) (*models.Credential, error)
	// Delete reports whether a row was removed.
	Delete(ctx context.Context, username, service string) (bool, error)
	// ListServices returns the service names of a user in ascending order.
	ListServices(ctx context.Context, username string) ([]string, error)
}
