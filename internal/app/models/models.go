package models

// Role is the coarse authorization tag of an account
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// UnassignedGrade is the histogram bucket for students without a grade
const UnassignedGrade = "Unassigned"
