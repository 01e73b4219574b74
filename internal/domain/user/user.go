package user

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/stayhaven/service-booking/internal/domain"
)

// Role is the authorization level of a registered user.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// IsValid returns true if the role is recognized.
func (r Role) IsValid() bool {
	return r == RoleUser || r == RoleAdmin
}

// ParseRole converts a string to a Role, returning an error if invalid.
func ParseRole(s string) (Role, error) {
	role := Role(s)
	if !role.IsValid() {
		return "", fmt.Errorf("invalid role: %s", s)
	}
	return role, nil
}

// User is a registered caller. The core only ever consumes the username as an
// opaque customer identity; roles gate the administrative surface.
type User struct {
	id           uuid.UUID
	username     string
	passwordHash string
	role         Role

	createdAt time.Time
	updatedAt time.Time
}

// NewUser creates a new User with an already-hashed password.
func NewUser(username, passwordHash string, role Role) (*User, error) {
	if username == "" {
		return nil, domain.NewValidationError("username is required")
	}
	if passwordHash == "" {
		return nil, domain.NewValidationError("password is required")
	}
	if role == "" {
		role = RoleUser
	}
	if !role.IsValid() {
		return nil, domain.NewValidationError(fmt.Sprintf("invalid role: %s", role))
	}

	now := time.Now().UTC()
	return &User{
		id:           uuid.New(),
		username:     username,
		passwordHash: passwordHash,
		role:         role,
		createdAt:    now,
		updatedAt:    now,
	}, nil
}

// ReconstructUser rebuilds a User from persistence data (no validation).
func ReconstructUser(id uuid.UUID, username, passwordHash string, role Role, createdAt, updatedAt time.Time) *User {
	return &User{
		id:           id,
		username:     username,
		passwordHash: passwordHash,
		role:         role,
		createdAt:    createdAt,
		updatedAt:    updatedAt,
	}
}

// ID returns the user's unique identifier.
func (u *User) ID() uuid.UUID { return u.id }

// Username returns the unique login name.
func (u *User) Username() string { return u.username }

// PasswordHash returns the stored bcrypt hash.
func (u *User) PasswordHash() string { return u.passwordHash }

// Role returns the user's authorization level.
func (u *User) Role() Role { return u.role }

// CreatedAt returns the creation timestamp.
func (u *User) CreatedAt() time.Time { return u.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (u *User) UpdatedAt() time.Time { return u.updatedAt }
