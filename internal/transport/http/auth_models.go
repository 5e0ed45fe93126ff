package http

import (
	"time"

	"github.com/njprem/Apartment_APP_BackEnd/internal/domain"
)

// ErrorResponse represents a generic error payload.
type ErrorResponse struct {
	Error string `json:"error" example:"Incorrect username or password"`
}

// MessageResponse carries a human readable confirmation.
type MessageResponse struct {
	Message string `json:"message" example:"Password has been reset successfully"`
}

// AuthUser is the sanitized account representation returned by auth endpoints.
type AuthUser struct {
	ID              string    `json:"id" example:"9fd13fd2-63c5-4f29-a210-4a1a8e285f74"`
	Username        string    `json:"username" example:"somchai"`
	Email           string    `json:"email" example:"somchai@example.com"`
	FullName        *string   `json:"full_name,omitempty" example:"Somchai Jaidee"`
	Phone           *string   `json:"phone,omitempty" example:"+66812345678"`
	Role            string    `json:"role" example:"resident"`
	ApartmentNumber *string   `json:"apartment_number,omitempty" example:"B-204"`
	Building        *string   `json:"building,omitempty" example:"B"`
	IsActive        bool      `json:"is_active" example:"true"`
	CreatedAt       time.Time `json:"created_at" example:"2025-01-01T12:00:00Z"`
	UpdatedAt       time.Time `json:"updated_at" example:"2025-01-02T09:30:00Z"`
}

func toAuthUser(u *domain.User) AuthUser {
	return AuthUser{
		ID:              u.ID.String(),
		Username:        u.Username,
		Email:           u.Email,
		FullName:        u.FullName,
		Phone:           u.Phone,
		Role:            string(u.Role),
		ApartmentNumber: u.ApartmentNumber,
		Building:        u.Building,
		IsActive:        u.IsActive,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
}

// AuthTokenResponse is returned by login.
type AuthTokenResponse struct {
	AccessToken string   `json:"access_token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	TokenType   string   `json:"token_type" example:"bearer"`
	ExpiresAt   string   `json:"expires_at" example:"2025-01-02T09:30:00Z"`
	User        AuthUser `json:"user"`
}

// AuthUserResponse wraps a user object.
type AuthUserResponse struct {
	User AuthUser `json:"user"`
}

// VerifyResetCodeResponse confirms a reset code without consuming it.
type VerifyResetCodeResponse struct {
	Valid   bool   `json:"valid" example:"true"`
	Message string `json:"message" example:"Reset code is valid"`
}

// LoginRequest accepts a username or an email in Username.
type LoginRequest struct {
	Username string `json:"username" example:"somchai"`
	Password string `json:"password" example:"secret1"`
}

// RegisterRequest carries the fields of a new resident account.
type RegisterRequest struct {
	Username        string  `json:"username" example:"somchai"`
	Email           string  `json:"email" example:"somchai@example.com"`
	Password        string  `json:"password" example:"secret1"`
	FullName        *string `json:"full_name" example:"Somchai Jaidee"`
	Phone           *string `json:"phone" example:"+66812345678"`
	ApartmentNumber *string `json:"apartment_number" example:"B-204"`
	Building        *string `json:"building" example:"B"`
}

// ChangePasswordRequest captures the payload for password updates.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" example:"secret1"`
	NewPassword     string `json:"new_password" example:"secret2"`
}

// ForgotPasswordRequest captures the payload for requesting a reset code.
type ForgotPasswordRequest struct {
	Email string `json:"email" example:"somchai@example.com"`
}

// VerifyResetCodeRequest checks a reset code.
type VerifyResetCodeRequest struct {
	Email string `json:"email" example:"somchai@example.com"`
	OTP   string `json:"otp" example:"042917"`
}

// ResetPasswordRequest redeems a reset code.
type ResetPasswordRequest struct {
	Email       string `json:"email" example:"somchai@example.com"`
	OTP         string `json:"otp" example:"042917"`
	NewPassword string `json:"new_password" example:"secret2"`
}
