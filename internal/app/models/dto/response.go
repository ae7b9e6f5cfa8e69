package dto

// APIResponse is the envelope of the JSON auth endpoints and of every API error
type APIResponse struct {
	Success bool          `json:"success" example:"true"`
	Message string        `json:"message" example:"Login successful"`
	User    *UserResponse `json:"user,omitempty"`
}

// NewErrorResponse builds a failed envelope
func NewErrorResponse(message string) APIResponse {
	return APIResponse{Success: false, Message: message}
}

// HealthResponse is returned by GET /health
type HealthResponse struct {
	Status   string `json:"status" example:"ok"`
	Database string `json:"database" example:"ok"`
}
