// Package services holds the auth engine: every register, login, token and
// credential operation of the vault, each followed by exactly one audit
// entry. Reads that change nothing (ListServices, GetAuditLog and the bearer
// check in Authenticate) are not audited.
package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/credvault/internal/common"
	"github.com/dmitrijs2005/credvault/internal/dbx"
	"github.com/dmitrijs2005/credvault/internal/logging"
	"github.com/dmitrijs2005/credvault/internal/server/auth"
	"github.com/dmitrijs2005/credvault/internal/server/metrics"
	"github.com/dmitrijs2005/credvault/internal/server/models"
	"github.com/dmitrijs2005/credvault/internal/server/ratelimit"
	"github.com/dmitrijs2005/credvault/internal/server/repositories/repomanager"
)

const (
	minUsernameLen = 4
	maxUsernameLen = 64
	minPasswordLen = 8
	maxPasswordLen = 1024
	maxServiceLen  = 128
	maxSecretLen   = 1024

	// hashed once at startup; unknown users are verified against it
	dummyPassword = "credvault-dummy-password"
)

// Hasher is satisfied by cryptox.Argon2Hasher.
type Hasher interface {
	Hash(plaintext string) (string, error)
	Verify(hashed, plaintext string) (bool, error)
}

// TokenIssuer is satisfied by auth.TokenService.
type TokenIssuer interface {
	IssuePair(username string) (*auth.TokenPair, error)
	ParseAccess(token string) (string, error)
	ParseRefresh(token string) (string, error)
}

// Auditor is satisfied by audit.Log.
type Auditor interface {
	Record(ctx context.Context, e models.AuditEntry)
	QueryByUser(ctx context.Context, username string, limit int) ([]*models.AuditEntry, error)
}

// RequestMeta describes the caller as seen by the transport.
type RequestMeta struct {
	SourceAddress string
	ClientAgent   string
}

type AuthEngine struct {
	db          dbx.DBTX
	repomanager repomanager.RepositoryManager
	hasher      Hasher
	tokens      TokenIssuer
	audit       Auditor
	limiter     ratelimit.Limiter
	logger      logging.Logger
	dummyHash   string
}

type Option func(*AuthEngine)

// WithLimiter enables login throttling.
func WithLimiter(l ratelimit.Limiter) Option {
	return func(e *AuthEngine) { e.limiter = l }
}

func NewAuthEngine(
	db dbx.DBTX,
	m repomanager.RepositoryManager,
	hasher Hasher,
	tokens TokenIssuer,
	auditor Auditor,
	logger logging.Logger,
	opts ...Option,
) (*AuthEngine, error) {
	dummy, err := hasher.Hash(dummyPassword)
	if err != nil {
		return nil, fmt.Errorf("prepare dummy hash: %w", err)
	}

	e := &AuthEngine{
		db:          db,
		repomanager: m,
		hasher:      hasher,
		tokens:      tokens,
		audit:       auditor,
		limiter:     ratelimit.Noop{},
		logger:      logger,
		dummyHash:   dummy,
	}
	for _, o := range opts {
		o(e)
	}
	return e, nil
}

func (e *AuthEngine) record(ctx context.Context, meta RequestMeta, username string, action models.AuditAction, err error, details string) {
	status := models.StatusSuccess
	if err != nil {
		status = models.StatusFailed
	}
	e.audit.Record(ctx, models.AuditEntry{
		Username:      username,
		Action:        action,
		Status:        status,
		Details:       details,
		SourceAddress: meta.SourceAddress,
		ClientAgent:   meta.ClientAgent,
	})
}

func observe(operation string, err error) {
	status := metrics.StatusOK
	if err != nil {
		status = strings.ToLower(common.Kind(err))
	}
	metrics.EngineOperationsTotal.WithLabelValues(operation, status).Inc()
}

// storageError logs the driver error and hides it from the caller.
func (e *AuthEngine) storageError(ctx context.Context, op string, err error, args ...any) error {
	e.logger.Error(ctx, op+" failed", append(args, "error", err)...)
	return common.ErrStorage
}

func (e *AuthEngine) processingError(ctx context.Context, op string, err error, args ...any) error {
	e.logger.Error(ctx, op+" failed", append(args, "error", err)...)
	return common.ErrProcessing
}

// reason renders an error for the audit details column. Internal failures
// keep their generic text.
func reason(err error) string {
	if err == nil {
		return ""
	}
	return common.PublicMessage(err)
}

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", common.ErrValidation, fmt.Sprintf(format, args...))
}

func validateUsername(username string) error {
	if n := len(username); n < minUsernameLen || n > maxUsernameLen {
		return validationError("username must be %d to %d characters", minUsernameLen, maxUsernameLen)
	}
	return nil
}

func validatePassword(password string) error {
	if n := len(password); n < minPasswordLen || n > maxPasswordLen {
		return validationError("password must be %d to %d characters", minPasswordLen, maxPasswordLen)
	}
	return nil
}

// normalizeService trims surrounding whitespace and checks the length.
// ServiceName returns service the way it is stored.
func ServiceName(service string) string {
	return strings.TrimSpace(service)
}

func normalizeService(service string) (string, error) {
	s := ServiceName(service)
	if s == "" || len(s) > maxServiceLen {
		return s, validationError("service must be 1 to %d characters", maxServiceLen)
	}
	return s, nil
}

func validateSecret(secret string) error {
	if secret == "" || len(secret) > maxSecretLen {
		return validationError("secret must be 1 to %d characters", maxSecretLen)
	}
	return nil
}
