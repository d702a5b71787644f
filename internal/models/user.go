package models

import (
	"fmt"
	"time"
)

// UserRole is the closed set of roles the classroom knows about. Tokens
// carrying any other value are rejected at the authentication boundary.
type UserRole string

const (
	RoleTutor   UserRole = "TUTOR"
	RoleStudent UserRole = "STUDENT"
)

// ParseRole validates a raw role value against the closed enumeration.
func ParseRole(raw string) (UserRole, error) {
	switch UserRole(raw) {
	case RoleTutor:
		return RoleTutor, nil
	case RoleStudent:
		return RoleStudent, nil
	default:
		return "", fmt.Errorf("unknown role %q", raw)
	}
}

// User represents an application user stored in the users table.
type User struct {
	ID           string    `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	PasswordHash string    `db:"password_hash" json:"-"`
	FullName     string    `db:"full_name" json:"full_name"`
	Role         UserRole  `db:"role" json:"role"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
