package models

// Student defines the student model based on the 'students' table
type Student struct {
	ID         int64   `json:"id" db:"id"`
	RollNumber string  `json:"roll_number" db:"roll_number"`
	Name       string  `json:"name" db:"name"`
	Email      *string `json:"email" db:"email"`
	Subject    string  `json:"subject" db:"subject"`
	Marks      int     `json:"marks" db:"marks"`
	Grade      *string `json:"grade" db:"grade"`
}

// EmailOrEmpty returns the email or "" when unset
func (s *Student) EmailOrEmpty() string {
	if s.Email == nil {
		return ""
	}
	return *s.Email
}

// GradeOrEmpty returns the grade or "" when unset
func (s *Student) GradeOrEmpty() string {
	if s.Grade == nil {
		return ""
	}
	return *s.Grade
}
