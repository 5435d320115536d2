package auth

import (
	"github.com/riverbend-alliance/portal-backend/internal/members"
)

// LoginRequest captures the credentials sent to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse contains the tokens and member produced by a successful login.
type LoginResponse struct {
	AccessToken  string             `json:"access_token"`
	RefreshToken string             `json:"refresh_token"`
	Member       *members.MemberDTO `json:"member"`
}

// RegisterRequest contains the payload for a new membership application.
type RegisterRequest struct {
	Email       string  `json:"email" validate:"required,email"`
	Password    string  `json:"password" validate:"required,min=10"`
	DisplayName string  `json:"display_name" validate:"required,min=1,max=120"`
	Phone       *string `json:"phone,omitempty" validate:"omitempty,max=32"`
}

// RefreshRequest carries the expiring access token plus its refresh token.
type RefreshRequest struct {
	AccessToken  string `json:"access_token" validate:"required"`
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RefreshResponse returns the rotated token pair.
type RefreshResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}
