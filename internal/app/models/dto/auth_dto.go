package dto

import "time"

// LoginRequest represents login credentials
type LoginRequest struct {
	Email    string `json:"email" example:"ada@tamu.edu"`
	Password string `json:"password" example:"s3cret-pass"`
}

// LoginResponse carries the session token and the student profile
type LoginResponse struct {
	Success   bool                   `json:"success" example:"true"`
	Token     string                 `json:"token"`
	TokenType string                 `json:"tokenType" example:"Bearer"`
	ExpiresIn int64                  `json:"expiresIn" example:"86400"`
	Student   StudentProfileResponse `json:"student"`
}

// SessionResponse describes the caller's live session
type SessionResponse struct {
	Success   bool                   `json:"success" example:"true"`
	ExpiresAt time.Time              `json:"expiresAt"`
	Student   StudentProfileResponse `json:"student"`
}
