package models

// User defines the user model based on the 'users' table
type User struct {
	ID           int64   `json:"id" db:"id" example:"1"`
	Username     string  `json:"username" db:"username" example:"admin"`
	PasswordHash string  `json:"-" db:"password_hash"`
	Email        *string `json:"email" db:"email" example:"admin@school.edu"`
	Role         Role    `json:"role" db:"role" example:"user"`
}

// IsAdmin reports whether the stored role grants admin views
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// EmailOrEmpty returns the email or "" when unset
func (u *User) EmailOrEmpty() string {
	if u.Email == nil {
		return ""
	}
	return *u.Email
}
