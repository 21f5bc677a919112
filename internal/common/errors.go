// Package common defines shared constants and sentinel errors used across
// the engine, repositories and transports. Callers should use errors.Is to
// match these values; details are attached with fmt.Errorf("%w: ...").
package common

import "errors"

var (
	// Input errors.
	ErrValidation = errors.New("validation error")

	// Account errors.
	ErrDuplicateUser      = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")

	// Bearer / session errors.
	ErrUnauthorized = errors.New("unauthorized")
	ErrMissingToken = errors.New("missing token")
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// Credential errors.
	ErrNotFound = errors.New("not found")

	// Throttling.
	ErrRateLimited = errors.New("too many attempts")

	// Internal failures. Never carry driver or hasher details outward.
	ErrProcessing = errors.New("processing error")
	ErrStorage    = errors.New("storage error")
)

// Stable machine-readable error kinds reported to clients.
const (
	KindValidation         = "VALIDATION_ERROR"
	KindDuplicateUser      = "DUPLICATE_USER"
	KindInvalidCredentials = "INVALID_CREDENTIALS"
	KindUserNotFound       = "USER_NOT_FOUND"
	KindUnauthorized       = "UNAUTHORIZED"
	KindMissingToken       = "MISSING_TOKEN"
	KindInvalidToken       = "INVALID_TOKEN"
	KindExpiredToken       = "EXPIRED_TOKEN"
	KindNotFound           = "NOT_FOUND"
	KindRateLimited        = "RATE_LIMITED"
	KindProcessing         = "PROCESSING_ERROR"
	KindStorage            = "STORAGE_ERROR"
	KindInternal           = "INTERNAL_ERROR"
)

var kinds = []struct {
	err  error
	kind string
}{
	{ErrValidation, KindValidation},
	{ErrDuplicateUser, KindDuplicateUser},
	{ErrInvalidCredentials, KindInvalidCredentials},
	{ErrUserNotFound, KindUserNotFound},
	{ErrMissingToken, KindMissingToken},
	{ErrTokenExpired, KindExpiredToken},
	{ErrInvalidToken, KindInvalidToken},
	{ErrUnauthorized, KindUnauthorized},
	{ErrNotFound, KindNotFound},
	{ErrRateLimited, KindRateLimited},
	{ErrProcessing, KindProcessing},
	{ErrStorage, KindStorage},
}

// Kind returns the stable kind of err, or KindInternal for anything that is
// not part of the taxonomy.
func Kind(err error) string {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return KindInternal
}

// PublicMessage returns a message that is safe to show to a client.
// Internal kinds collapse to their generic sentinel text.
func PublicMessage(err error) string {
	switch Kind(err) {
	case KindProcessing:
		return ErrProcessing.Error()
	case KindStorage:
		return ErrStorage.Error()
	case KindInternal:
		return "internal error"
	}
	return err.Error()
}
