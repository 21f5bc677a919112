// Package accounts stores vault accounts keyed by username.
package accounts

import (
	"context"

	"github.com/dmitrijs2005/credvault/internal/server/models"
)

type Repository interface {
	// Create inserts a new account. It returns common.ErrDuplicateUser when
	// the username is taken; uniqueness is enforced by the database.
	Create(ctx context.Context, account *models.Account) error
	// FindByUsername returns nil, nil when no such account exists.
	FindByUsername(ctx context.Context, username string) (*models.Account, error)
}
