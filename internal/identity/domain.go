package identity

import "time"

// Account represents a sign-in capable account.
type Account struct {
	ID           string
	Email        string
	PasswordHash string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Identity is the authenticated principal exposed to the rest of the
// application: just enough to key profile and grant lookups.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}
