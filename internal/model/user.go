package model

import "time"

// UserID uniquely identifies a user account across the system
type UserID string

// Role is an account's authorization level
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"

	// RoleAuthenticated is a sentinel accepted by authorization checks:
	// any valid session satisfies it regardless of the account's role
	RoleAuthenticated Role = "authenticated"
)

// ParseRole validates and converts a string to a Role.
// The authenticated sentinel is not a storable role and is rejected here.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleUser, RoleAdmin:
		return Role(s), nil
	default:
		return "", ErrInvalidRole
	}
}

// User represents an account holder.
// PasswordHash is a bcrypt hash and never leaves the storage/auth boundary.
type User struct {
	ID           UserID
	Username     string // login username, unique
	Email        string // unique when set
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
