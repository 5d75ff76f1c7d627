package model

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Role is the fixed set of caller roles. Every user holds exactly one.
type Role string

const (
	RolePatient   Role = "patient"
	RoleDoctor    Role = "doctor"
	RoleSurgeon   Role = "surgeon"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RolePatient, RoleDoctor, RoleSurgeon, RoleModerator, RoleAdmin:
		return true
	}
	return false
}

// AdminEquivalent reports whether the role bypasses ownership checks.
func (r Role) AdminEquivalent() bool {
	return r == RoleAdmin
}

// Actor is the resolved caller identity available to every service call.
type Actor struct {
	ID    uuid.UUID `json:"id"`
	Role  Role      `json:"role"`
	Email string    `json:"email"`
}

// TokenClaims is the JWT claim set issued at login.
type TokenClaims struct {
	jwt.RegisteredClaims
	UserID uuid.UUID `json:"user_id"`
	Role   Role      `json:"role"`
	Email  string    `json:"email"`
}

// Actor converts validated claims into a caller identity.
func (c *TokenClaims) Actor() *Actor {
	return &Actor{ID: c.UserID, Role: c.Role, Email: c.Email}
}
