// Package user holds account entities and their persistence.
package user

import (
	"time"

	"campusattend/internal/auth"
	"campusattend/internal/lifecycle"
)

// User is a registered account: student, instructor or admin.
type User struct {
	ID           string          `json:"id"`
	Username     string          `json:"username"`
	Email        string          `json:"email"`
	PasswordHash string          `json:"-"`
	Role         auth.Role       `json:"role"`
	FirstName    string          `json:"first_name"`
	LastName     string          `json:"last_name"`
	Lifecycle    lifecycle.State `json:"lifecycle"`
	LastLogin    *time.Time      `json:"last_login,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

// FullName joins first and last name for display.
func (u User) FullName() string {
	return u.FirstName + " " + u.LastName
}
