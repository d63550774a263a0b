// Package model defines the data structures used throughout the application.
package model

// Roles reported to clients after login.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User represents an account that can sign in to the admin area.
//
// PasswordHash holds a bcrypt hash. Rows migrated from older deployments may
// still carry an unsalted SHA-256 hex digest; those are upgraded to bcrypt on
// the next successful login.
type User struct {
	ID           int64  `json:"id"       db:"id"`
	Username     string `json:"username" db:"username"`
	PasswordHash string `json:"-"        db:"password"`
	IsAdmin      bool   `json:"-"        db:"is_admin"`
}

// Role maps the is_admin flag to the role string returned by /login.
func (u *User) Role() string {
	if u.IsAdmin {
		return RoleAdmin
	}
	return RoleUser
}
