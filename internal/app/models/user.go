package models

import (
	"time"
)

// User defines the user model based on the 'users' table
type User struct {
	ID        int64      `json:"id" db:"id"`
	Name      string     `json:"name" db:"name"`
	Email     string     `json:"email" db:"email"`
	Password  string     `json:"-" db:"password"` // hashed, excluded from JSON
	CreatedAt time.Time  `json:"createdAt" db:"created_at"`
	Roles     []RoleType `json:"roles,omitempty"` // from users_roles, no db tag
}

// HasRole reports whether the user carries the given role.
func (u *User) HasRole(role RoleType) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}
