package domain

import "time"

// Roles understood by the authorization gate.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is a registered account. PasswordHash never leaves the service layer.
type User struct {
	ID           string
	Email        string
	Username     string
	PasswordHash string
	Role         string
	Watchlist    []string
	CreatedAt    time.Time
}

// Identity is the verified caller carried by a token.
type Identity struct {
	ID       string
	Username string
	Role     string
}

// IsAdmin reports whether the identity holds the administrative role.
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// Profile is a user joined with its resolved watchlist.
type Profile struct {
	ID        string
	Email     string
	Username  string
	Watchlist []MovieSummary
}
