package domain

import (
	"time"

	"github.com/google/uuid"
)

// User represents a user in the system
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"` // Never expose password hash in JSON
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UserRole constants
const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

// Principal is the authenticated identity attached to a request.
// It is derived from a verified token and never persisted.
type Principal struct {
	UserID   uuid.UUID
	Username string
	Role     string

	// RefreshOnly marks a principal reconstructed from an
	// expired-but-authentic token. Such a principal carries no role
	// authority and is accepted only by the token refresh endpoint.
	RefreshOnly bool
}
