package models

import "time"

// Credential is one stored service secret owned by an account.
type Credential struct {
	Username   string
	Service    string
	SecretHash string
	CreatedAt  time.Time
	UpdatedAt  *time.Time
}

// UpsertResult tells which branch an upsert took.
type UpsertResult int

const (
	UpsertCreated UpsertResult = iota + 1
	UpsertUpdated
)

func (r UpsertResult) String() string {
	switch r {
	case UpsertCreated:
		return "created"
	case UpsertUpdated:
		return "updated"
	default:
		return "unknown"
	}
}
