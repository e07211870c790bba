package handlers

import (
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/event-ticketing/internal/api/dto"
	"github.com/spec-kit/event-ticketing/internal/auth"
	"github.com/spec-kit/event-ticketing/internal/domain"
	"github.com/spec-kit/event-ticketing/internal/service"
	apperrors "github.com/spec-kit/event-ticketing/pkg/util"
)

// AccountsHandler exposes registration, login and profile endpoints.
type AccountsHandler struct {
	auth    *service.AuthService
	cookies *auth.CookieWriter
}

// NewAccountsHandler constructs handler.
func NewAccountsHandler(authService *service.AuthService, cookies *auth.CookieWriter) *AccountsHandler {
	return &AccountsHandler{auth: authService, cookies: cookies}
}

// Register handles POST /register.
func (h *AccountsHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.auth.Register(c.UserContext(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"message": fmt.Sprintf("Please check your email: %s to activate your account", req.Email),
		"data":    fiber.Map{"activation_token": ticket.Token},
	})
}

// Activate handles POST /activate-user.
func (h *AccountsHandler) Activate(c *fiber.Ctx) error {
	var req dto.ActivateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	account, err := h.auth.Activate(c.UserContext(), req.ActivationToken, req.ActivationCode)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewAccountResponse(account.Snapshot())})
}

// Login handles POST /login-user.
func (h *AccountsHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	account, pair, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return h.signedIn(c, account.Snapshot(), pair)
}

// SocialLogin handles POST /social-login.
func (h *AccountsHandler) SocialLogin(c *fiber.Ctx) error {
	var req dto.SocialLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	account, pair, err := h.auth.SocialLogin(c.UserContext(), req.Email, req.Name, req.Avatar)
	if err != nil {
		return err
	}
	return h.signedIn(c, account.Snapshot(), pair)
}

// Logout handles GET /logout-user.
func (h *AccountsHandler) Logout(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	if err := h.auth.Logout(c.UserContext(), principal.AccountID); err != nil {
		return err
	}
	h.cookies.Clear(c)
	return c.JSON(fiber.Map{"message": "Logged out successfully"})
}

// Refresh handles GET /refresh-token. The refresh token comes from its cookie.
func (h *AccountsHandler) Refresh(c *fiber.Ctx) error {
	token := c.Cookies(auth.RefreshCookieName)
	if token == "" {
		return apperrors.NewUnauthenticated("Please login to access this resource")
	}
	pair, snapshot, err := h.auth.Refresh(c.UserContext(), token)
	if err != nil {
		return err
	}
	return h.signedIn(c, *snapshot, pair)
}

// Me handles GET /me.
func (h *AccountsHandler) Me(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	snapshot, err := h.auth.Me(c.UserContext(), principal.AccountID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewAccountResponse(*snapshot)})
}

// UpdateInfo handles PUT /update-user.
func (h *AccountsHandler) UpdateInfo(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	var req dto.UpdateInfoRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	account, err := h.auth.UpdateInfo(c.UserContext(), principal.AccountID, service.UpdateInfoInput{
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "User info updated successfully",
		"data":    dto.NewAccountResponse(account.Snapshot()),
	})
}

// UpdatePassword handles PUT /update-password.
func (h *AccountsHandler) UpdatePassword(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	var req dto.UpdatePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.auth.UpdatePassword(c.UserContext(), principal.AccountID, req.OldPassword, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Password updated successfully"})
}

// UpdateAvatar handles POST /update-profile-picture.
func (h *AccountsHandler) UpdateAvatar(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	var req dto.UpdateAvatarRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	account, err := h.auth.UpdateAvatar(c.UserContext(), principal.AccountID, req.Avatar)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewAccountResponse(account.Snapshot())})
}

// AvatarUploadURL handles POST /avatar-upload-url.
func (h *AccountsHandler) AvatarUploadURL(c *fiber.Ctx) error {
	if _, err := requirePrincipal(c); err != nil {
		return err
	}
	upload, err := h.auth.AvatarUploadURL(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": upload})
}

// ForgotPassword handles POST /forgot-password.
func (h *AccountsHandler) ForgotPassword(c *fiber.Ctx) error {
	var req dto.ForgotPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	token, err := h.auth.RequestPasswordReset(c.UserContext(), req.Email)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Please check your email: %s to reset your password", req.Email),
		"data":    fiber.Map{"reset_token": token.Token, "expires_at": token.ExpiresAt},
	})
}

// ResetPassword handles POST /reset-password.
func (h *AccountsHandler) ResetPassword(c *fiber.Ctx) error {
	var req dto.ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.auth.ConfirmPasswordReset(c.UserContext(), req.ResetToken, req.ResetCode, req.NewPassword); err != nil {
		return err
	}
	h.cookies.Clear(c)
	return c.JSON(fiber.Map{"message": "Password reset successfully"})
}

func (h *AccountsHandler) signedIn(c *fiber.Ctx, snapshot domain.AccountSnapshot, pair domain.TokenPair) error {
	h.cookies.SetPair(c, pair)
	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"account": dto.NewAccountResponse(snapshot),
			"auth":    dto.NewAuthResponse(pair),
		},
	})
}

func requirePrincipal(c *fiber.Ctx) (*auth.Principal, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return nil, apperrors.NewUnauthenticated("Please login to access this resource")
	}
	return principal, nil
}
