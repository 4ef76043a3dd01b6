package domain

import "time"

// User is a registered principal. Username and email are unique across the
// store; PasswordHash only ever holds a bcrypt hash.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	Roles        []RoleName
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
