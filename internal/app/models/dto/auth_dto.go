package dto

import (
	"strings"

	"github.com/yigit/gradebook/internal/app/models"
)

// RegisterRequest represents a signup form or JSON body
type RegisterRequest struct {
	Username        string  `json:"username" form:"username" validate:"required,notblank,max=150" example:"alice"`
	Password        string  `json:"password" form:"password" validate:"required" example:"s3cret"`
	ConfirmPassword *string `json:"confirm_password,omitempty" form:"confirm_password" example:"s3cret"`
	Email           string  `json:"email,omitempty" form:"email" validate:"max=254" example:"alice@school.edu"`
}

// LoginRequest accepts the identifier as username, email or identifier
type LoginRequest struct {
	Username   string `json:"username" form:"username" example:"admin"`
	Email      string `json:"email,omitempty" form:"email"`
	Identifier string `json:"identifier,omitempty" form:"identifier"`
	Password   string `json:"password" form:"password" example:"admin123"`
}

// LoginIdentifier returns the first non-blank identifier field, trimmed
func (r LoginRequest) LoginIdentifier() string {
	for _, v := range []string{r.Identifier, r.Username, r.Email} {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// AccountUpdateRequest holds self-service changes; blank fields are left unchanged
type AccountUpdateRequest struct {
	Username   string `json:"username" form:"username" validate:"max=150"`
	Password   string `json:"password" form:"password"`
	Email      string `json:"email" form:"email" validate:"max=254"`
	ClearEmail bool   `json:"clear_email" form:"clear_email"`
}

// UserResponse represents basic user information
type UserResponse struct {
	ID       int64   `json:"id" example:"1"`
	Username string  `json:"username" example:"admin"`
	Email    *string `json:"email" example:"admin@school.edu"`
	Role     string  `json:"role" example:"admin" enums:"admin,user"`
}

// NewUserResponse maps a stored user; the password hash never leaves the service layer
func NewUserResponse(user *models.User) *UserResponse {
	if user == nil {
		return nil
	}
	return &UserResponse{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Role:     string(user.Role),
	}
}
