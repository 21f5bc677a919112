package services

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/credvault/internal/common"
	"github.com/dmitrijs2005/credvault/internal/server/auth"
	"github.com/dmitrijs2005/credvault/internal/server/metrics"
	"github.com/dmitrijs2005/credvault/internal/server/models"
	"github.com/dmitrijs2005/credvault/internal/server/ratelimit"
)

// Register creates an account. The username is unique; a second
// registration with the same name fails with common.ErrDuplicateUser.
func (e *AuthEngine) Register(ctx context.Context, meta RequestMeta, username, password string) (err error) {
	var details string
	defer func() {
		if details == "" {
			details = reason(err)
		}
		e.record(ctx, meta, username, models.ActionRegister, err, details)
		observe("register", err)
	}()

	if err := validateUsername(username); err != nil {
		return err
	}
	if err := validatePassword(password); err != nil {
		return err
	}

	hash, err := e.hasher.Hash(password)
	if err != nil {
		return e.processingError(ctx, "hash password", err, "username", username)
	}

	err = e.repomanager.Accounts(e.db).Create(ctx, &models.Account{Username: username, PasswordHash: hash})
	if err != nil {
		if errors.Is(err, common.ErrDuplicateUser) {
			return common.ErrDuplicateUser
		}
		return e.storageError(ctx, "create account", err, "username", username)
	}

	e.logger.Info(ctx, "account registered", "username", username)
	return nil
}

// Login checks the password and issues a token pair. An unknown username
// and a wrong password return the same common.ErrInvalidCredentials; the
// audit entry keeps the real reason.
func (e *AuthEngine) Login(ctx context.Context, meta RequestMeta, username, password string) (pair *auth.TokenPair, err error) {
	var details string
	defer func() {
		if details == "" {
			details = reason(err)
		}
		e.record(ctx, meta, username, models.ActionLogin, err, details)
		observe("login", err)
	}()

	if username == "" || len(username) > maxUsernameLen || password == "" || len(password) > maxPasswordLen {
		return nil, validationError("username and password are required")
	}

	if err := e.limiter.Allow(ctx, username, meta.SourceAddress); err != nil {
		if errors.Is(err, common.ErrRateLimited) {
			details = "rate limited"
			return nil, common.ErrRateLimited
		}
		e.limiterDown(ctx, err)
	}

	account, err := e.repomanager.Accounts(e.db).FindByUsername(ctx, username)
	if err != nil {
		return nil, e.storageError(ctx, "find account", err, "username", username)
	}

	if account == nil {
		// keep the timing of a real verification
		_, _ = e.hasher.Verify(e.dummyHash, password)
		details = "unknown user"
		return nil, common.ErrInvalidCredentials
	}

	ok, err := e.hasher.Verify(account.PasswordHash, password)
	if err != nil {
		return nil, e.processingError(ctx, "verify password", err, "username", username)
	}
	if !ok {
		details = "wrong password"
		return nil, common.ErrInvalidCredentials
	}

	pair, err = e.tokens.IssuePair(username)
	if err != nil {
		return nil, e.processingError(ctx, "issue tokens", err, "username", username)
	}

	if err := e.limiter.Reset(ctx, username, meta.SourceAddress); err != nil {
		e.limiterDown(ctx, err)
	}
	return pair, nil
}

// limiterDown lets the attempt through when the limiter backend fails.
func (e *AuthEngine) limiterDown(ctx context.Context, err error) {
	metrics.LoginLimiterErrorsTotal.Inc()
	if errors.Is(err, ratelimit.ErrUnavailable) {
		e.logger.Warn(ctx, "login limiter unavailable, allowing attempt", "error", err)
		return
	}
	e.logger.Warn(ctx, "login limiter error, allowing attempt", "error", err)
}

// Refresh exchanges a valid refresh token for a new pair. Refresh tokens
// are not tracked, so the old one stays usable until it expires.
func (e *AuthEngine) Refresh(ctx context.Context, meta RequestMeta, refreshToken string) (pair *auth.TokenPair, err error) {
	var username string
	defer func() {
		e.record(ctx, meta, username, models.ActionRefresh, err, reason(err))
		observe("refresh", err)
	}()

	if refreshToken == "" {
		return nil, common.ErrMissingToken
	}

	username, err = e.tokens.ParseRefresh(refreshToken)
	if err != nil {
		username = ""
		return nil, err
	}

	account, err := e.repomanager.Accounts(e.db).FindByUsername(ctx, username)
	if err != nil {
		return nil, e.storageError(ctx, "find account", err, "username", username)
	}
	if account == nil {
		return nil, common.ErrUserNotFound
	}

	pair, err = e.tokens.IssuePair(username)
	if err != nil {
		return nil, e.processingError(ctx, "issue tokens", err, "username", username)
	}
	return pair, nil
}

// Logout only records the event. Tokens are stateless; the client drops
// them.
func (e *AuthEngine) Logout(ctx context.Context, meta RequestMeta, username string) error {
	e.record(ctx, meta, username, models.ActionLogout, nil, "")
	observe("logout", nil)
	return nil
}

// Authenticate resolves a bearer access token to its username.
func (e *AuthEngine) Authenticate(ctx context.Context, accessToken string) (string, error) {
	if accessToken == "" {
		return "", common.ErrMissingToken
	}
	return e.tokens.ParseAccess(accessToken)
}
