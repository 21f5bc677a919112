package models

import "time"

// Account is a registered vault user.
type Account struct {
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}
