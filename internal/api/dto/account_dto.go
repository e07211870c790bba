package dto

import (
	"time"

	"github.com/spec-kit/event-ticketing/internal/domain"
)

// RegisterRequest payload for new accounts.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ActivateRequest carries the activation token and the mailed code.
type ActivateRequest struct {
	ActivationToken string `json:"activation_token"`
	ActivationCode  string `json:"activation_code"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SocialLoginRequest is an identity already verified by a provider.
type SocialLoginRequest struct {
	Email  string `json:"email"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

// UpdateInfoRequest changes name and/or email; absent fields are left alone.
type UpdateInfoRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

// UpdatePasswordRequest payload.
type UpdatePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

// UpdateAvatarRequest points the account at an uploaded image.
type UpdateAvatarRequest struct {
	Avatar string `json:"avatar"`
}

// ForgotPasswordRequest payload.
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// ResetPasswordRequest consumes a reset token.
type ResetPasswordRequest struct {
	ResetToken  string `json:"reset_token"`
	ResetCode   string `json:"reset_code"`
	NewPassword string `json:"newPassword"`
}

// AccountResponse is the public view of an account.
type AccountResponse struct {
	ID         string              `json:"id"`
	Name       string              `json:"name"`
	Email      string              `json:"email"`
	Avatar     string              `json:"avatar,omitempty"`
	Role       domain.Role         `json:"role"`
	IsVerified bool                `json:"is_verified"`
	Tickets    []domain.TicketStub `json:"tickets"`
	CreatedAt  time.Time           `json:"created_at"`
	UpdatedAt  time.Time           `json:"updated_at"`
}

// AuthResponse standard response for endpoints that issue credentials.
type AuthResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// NewAccountResponse builds the response from a session snapshot.
func NewAccountResponse(s domain.AccountSnapshot) AccountResponse {
	tickets := s.Tickets
	if tickets == nil {
		tickets = []domain.TicketStub{}
	}
	return AccountResponse{
		ID:         s.ID,
		Name:       s.Name,
		Email:      s.Email,
		Avatar:     s.Avatar,
		Role:       s.Role,
		IsVerified: s.IsVerified,
		Tickets:    tickets,
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  s.UpdatedAt,
	}
}

// NewAuthResponse exposes the access half of a pair; the refresh token only
// travels in its cookie.
func NewAuthResponse(pair domain.TokenPair) AuthResponse {
	return AuthResponse{AccessToken: pair.AccessToken, ExpiresAt: pair.AccessExpiresAt}
}
