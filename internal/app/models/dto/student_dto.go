package dto

import (
	"strconv"

	"github.com/yigit/gradebook/internal/app/models"
)

// StudentRequest is the add/edit form. Marks stays a string until validated as an integer.
type StudentRequest struct {
	RollNumber string `json:"roll_number" form:"roll_number" validate:"required,notblank" example:"R1"`
	Name       string `json:"name" form:"name" validate:"required,notblank" example:"Alice"`
	Email      string `json:"email" form:"email" example:"alice@school.edu"`
	Subject    string `json:"subject" form:"subject" validate:"required,notblank" example:"Math"`
	Marks      string `json:"marks" form:"marks" validate:"required,notblank" example:"85"`
	Grade      string `json:"grade" form:"grade" example:"A"`
}

// NewStudentRequest prefills the edit form from a stored record
func NewStudentRequest(s *models.Student) StudentRequest {
	return StudentRequest{
		RollNumber: s.RollNumber,
		Name:       s.Name,
		Email:      s.EmailOrEmpty(),
		Subject:    s.Subject,
		Marks:      strconv.Itoa(s.Marks),
		Grade:      s.GradeOrEmpty(),
	}
}
