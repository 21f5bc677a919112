package services

import (
	"context"

	"github.com/dmitrijs2005/credvault/internal/server/auth"
	"github.com/dmitrijs2005/credvault/internal/server/models"
)

// Vault is the engine surface the transports depend on.
type Vault interface {
	Register(ctx context.Context, meta RequestMeta, username, password string) error
	Login(ctx context.Context, meta RequestMeta, username, password string) (*auth.TokenPair, error)
	Refresh(ctx context.Context, meta RequestMeta, refreshToken string) (*auth.TokenPair, error)
	Logout(ctx context.Context, meta RequestMeta, username string) error
	Authenticate(ctx context.Context, accessToken string) (string, error)

	SaveCredential(ctx context.Context, meta RequestMeta, username, service, secret string) (models.UpsertResult, error)
	UpdateCredential(ctx context.Context, meta RequestMeta, username, service, secret string) error
	VerifyCredential(ctx context.Context, meta RequestMeta, username, service, secret string) (bool, error)
	DeleteCredential(ctx context.Context, meta RequestMeta, username, service string) error
	ListServices(ctx context.Context, username string) ([]string, error)
	GetAuditLog(ctx context.Context, username string, limit int) ([]*models.AuditEntry, error)
}

var _ Vault = (*AuthEngine)(nil)
