package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/event-ticketing/internal/auth"
	"github.com/spec-kit/event-ticketing/internal/config"
	"github.com/spec-kit/event-ticketing/internal/domain"
	"github.com/spec-kit/event-ticketing/internal/events"
	"github.com/spec-kit/event-ticketing/internal/repository"
	"github.com/spec-kit/event-ticketing/internal/storage"
	apperrors "github.com/spec-kit/event-ticketing/pkg/util"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// AuthService coordinates registration, login and profile flows.
type AuthService struct {
	accounts    repository.AccountRepository
	resets      repository.PasswordResetRepository
	sessions    *auth.SessionManager
	uploads     storage.Presigner
	dispatcher  events.Dispatcher
	logger      *zap.Logger
	passwords   auth.PasswordHasher
	minPassword int
	resetTTL    time.Duration
	now         func() time.Time
}

// AuthDependencies encapsulates collaborators for the auth service.
type AuthDependencies struct {
	AccountRepo       repository.AccountRepository
	PasswordResetRepo repository.PasswordResetRepository
	Sessions          *auth.SessionManager
	Uploads           storage.Presigner
	Dispatcher        events.Dispatcher
	Logger            *zap.Logger
}

// RegisterInput is a sign-up request.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// UpdateInfoInput carries optional profile changes.
type UpdateInfoInput struct {
	Name  *string
	Email *string
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	minPassword := cfg.MinPasswordLength
	if minPassword <= 0 {
		minPassword = 6
	}
	return &AuthService{
		accounts:    deps.AccountRepo,
		resets:      deps.PasswordResetRepo,
		sessions:    deps.Sessions,
		uploads:     deps.Uploads,
		dispatcher:  deps.Dispatcher,
		logger:      logger,
		passwords:   auth.NewPasswordHasher(cfg.BcryptCost),
		minPassword: minPassword,
		resetTTL:    cfg.ActivationTTL(),
		now:         time.Now,
	}
}

// Register validates a sign-up and mails an activation code. Nothing is
// persisted until Activate succeeds.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*domain.ActivationTicket, error) {
	name := strings.TrimSpace(in.Name)
	email := normalizeEmail(in.Email)
	if name == "" {
		return nil, apperrors.NewValidationError("Please enter your name", nil)
	}
	if err := s.validateEmail(email); err != nil {
		return nil, err
	}
	if err := s.validatePassword(in.Password); err != nil {
		return nil, err
	}
	if err := s.ensureEmailFree(ctx, email); err != nil {
		return nil, err
	}

	hash, err := s.passwords.Hash(in.Password)
	if err != nil {
		return nil, err
	}
	code, err := newShortCode()
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	token, err := s.sessions.Tokens().GenerateActivation(domain.AccountDraft{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
	}, code)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	s.publish(ctx, events.New(events.EventActivationRequested, "", events.ActivationRequestedPayload{
		Name:  name,
		Email: email,
		Code:  code,
	}))
	return &domain.ActivationTicket{Token: token, Code: code}, nil
}

// Activate turns a verified registration into an account.
func (s *AuthService) Activate(ctx context.Context, token, code string) (*domain.Account, error) {
	claims, err := s.sessions.Tokens().ParseActivation(token)
	if err != nil {
		return nil, apperrors.NewValidationError("Invalid activation token", nil)
	}
	if strings.TrimSpace(code) == "" || claims.ActivationCode != strings.TrimSpace(code) {
		return nil, apperrors.NewValidationError("Invalid activation code", nil)
	}
	if err := s.ensureEmailFree(ctx, claims.Draft.Email); err != nil {
		return nil, err
	}

	account := &domain.Account{
		Name:         claims.Draft.Name,
		Email:        claims.Draft.Email,
		PasswordHash: claims.Draft.PasswordHash,
		Role:         domain.RoleUser,
		IsVerified:   true,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, apperrors.ToDomainError(err)
	}
	s.logger.Info("account activated", zap.String("account_id", account.ID))
	return account, nil
}

// Login checks credentials and opens a session.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.Account, domain.TokenPair, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.TokenPair{}, apperrors.NewValidationError("Please enter email and password", nil)
	}
	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, domain.TokenPair{}, apperrors.NewUnauthenticated("Invalid email or password")
		}
		return nil, domain.TokenPair{}, apperrors.ToDomainError(err)
	}
	if !s.passwords.Matches(account, password) {
		return nil, domain.TokenPair{}, apperrors.NewUnauthenticated("Invalid email or password")
	}

	pair, err := s.sessions.IssuePair(ctx, account.Snapshot())
	if err != nil {
		return nil, domain.TokenPair{}, err
	}
	return account, pair, nil
}

// SocialLogin signs in an identity verified by an external provider,
// creating the account on first sight.
func (s *AuthService) SocialLogin(ctx context.Context, email, name, avatar string) (*domain.Account, domain.TokenPair, error) {
	email = normalizeEmail(email)
	if err := s.validateEmail(email); err != nil {
		return nil, domain.TokenPair{}, err
	}

	account, err := s.accounts.GetByEmail(ctx, email)
	switch {
	case err == nil:
	case repository.IsNotFound(err):
		account = &domain.Account{
			Name:       strings.TrimSpace(name),
			Email:      email,
			Avatar:     strings.TrimSpace(avatar),
			Role:       domain.RoleUser,
			IsVerified: true,
		}
		if account.Name == "" {
			account.Name = email
		}
		if err := s.accounts.Create(ctx, account); err != nil {
			return nil, domain.TokenPair{}, apperrors.ToDomainError(err)
		}
	default:
		return nil, domain.TokenPair{}, apperrors.ToDomainError(err)
	}

	pair, err := s.sessions.IssuePair(ctx, account.Snapshot())
	if err != nil {
		return nil, domain.TokenPair{}, err
	}
	return account, pair, nil
}

// Refresh rotates the credential pair from the cached session.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (domain.TokenPair, *domain.AccountSnapshot, error) {
	return s.sessions.Refresh(ctx, refreshToken)
}

// Logout drops the session. Signed tokens stay valid until they expire.
func (s *AuthService) Logout(ctx context.Context, accountID string) error {
	return s.sessions.Invalidate(ctx, accountID)
}

// Me returns the live session view of the account.
func (s *AuthService) Me(ctx context.Context, accountID string) (*domain.AccountSnapshot, error) {
	return s.sessions.Lookup(ctx, accountID)
}

// UpdateInfo changes name and/or email.
func (s *AuthService) UpdateInfo(ctx context.Context, accountID string, in UpdateInfoInput) (*domain.Account, error) {
	account, err := s.loadAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	if in.Email != nil {
		email := normalizeEmail(*in.Email)
		if email != account.Email {
			if err := s.validateEmail(email); err != nil {
				return nil, err
			}
			if err := s.ensureEmailFree(ctx, email); err != nil {
				return nil, err
			}
			account.Email = email
		}
	}
	if in.Name != nil {
		if name := strings.TrimSpace(*in.Name); name != "" {
			account.Name = name
		}
	}

	return s.save(ctx, account)
}

// UpdatePassword replaces the password after checking the current one.
func (s *AuthService) UpdatePassword(ctx context.Context, accountID, oldPassword, newPassword string) error {
	if oldPassword == "" || newPassword == "" {
		return apperrors.NewValidationError("Please enter old and new password", nil)
	}
	if oldPassword == newPassword {
		return apperrors.NewValidationError("New password must be different from the old one", nil)
	}
	if err := s.validatePassword(newPassword); err != nil {
		return err
	}

	account, err := s.loadAccount(ctx, accountID)
	if err != nil {
		return err
	}
	if account.PasswordHash == "" {
		return apperrors.NewValidationError("Account has no password to change", nil)
	}
	if !s.passwords.Matches(account, oldPassword) {
		return apperrors.NewValidationError("Invalid old password", nil)
	}

	hash, err := s.passwords.Hash(newPassword)
	if err != nil {
		return err
	}
	account.PasswordHash = hash
	_, err = s.save(ctx, account)
	return err
}

// UpdateAvatar records the object key of an uploaded avatar.
func (s *AuthService) UpdateAvatar(ctx context.Context, accountID, avatar string) (*domain.Account, error) {
	avatar = strings.TrimSpace(avatar)
	if avatar == "" {
		return nil, apperrors.NewValidationError("Please provide an avatar", nil)
	}
	account, err := s.loadAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	account.Avatar = avatar
	return s.save(ctx, account)
}

// AvatarUploadURL presigns an avatar upload.
func (s *AuthService) AvatarUploadURL(ctx context.Context) (storage.Upload, error) {
	if s.uploads == nil {
		return storage.Upload{}, apperrors.NewInternalError(errStorageDisabled)
	}
	up, err := s.uploads.PresignUpload(ctx, storage.PrefixAvatars)
	if err != nil {
		return storage.Upload{}, apperrors.NewInternalError(err)
	}
	return up, nil
}

// RequestPasswordReset stores a single-use reset token and mails its code.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) (*repository.PasswordResetToken, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, apperrors.NewValidationError("Please provide email", nil)
	}
	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperrors.NewNotFound("Account", map[string]any{"email": email})
		}
		return nil, apperrors.ToDomainError(err)
	}

	code, err := newShortCode()
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	token := &repository.PasswordResetToken{
		ID:        uuid.NewString(),
		AccountID: account.ID,
		Token:     uuid.NewString(),
		Code:      code,
		ExpiresAt: s.now().Add(s.resetTTL),
	}
	if err := s.resets.Create(ctx, token); err != nil {
		return nil, apperrors.ToDomainError(err)
	}

	s.publish(ctx, events.New(events.EventPasswordResetRequested, account.ID, events.PasswordResetRequestedPayload{
		Email: account.Email,
		Token: token.Token,
		Code:  code,
	}))
	return token, nil
}

// ConfirmPasswordReset consumes the reset token and sets the new password.
// Any open session is dropped.
func (s *AuthService) ConfirmPasswordReset(ctx context.Context, tokenStr, code, newPassword string) error {
	if err := s.validatePassword(newPassword); err != nil {
		return err
	}
	token, err := s.resets.GetByToken(ctx, strings.TrimSpace(tokenStr))
	if err != nil {
		if repository.IsNotFound(err) {
			return apperrors.NewValidationError("Invalid reset token", nil)
		}
		return apperrors.ToDomainError(err)
	}
	if token.UsedAt != nil || s.now().After(token.ExpiresAt) {
		return apperrors.NewValidationError("Reset token expired or used", nil)
	}
	if token.Code != strings.TrimSpace(code) {
		return apperrors.NewValidationError("Invalid reset code", nil)
	}

	account, err := s.loadAccount(ctx, token.AccountID)
	if err != nil {
		return err
	}
	consumed, err := s.resets.MarkUsed(ctx, token.ID)
	if err != nil {
		return apperrors.ToDomainError(err)
	}
	if !consumed {
		return apperrors.NewValidationError("Reset token expired or used", nil)
	}

	hash, err := s.passwords.Hash(newPassword)
	if err != nil {
		return err
	}
	account.PasswordHash = hash
	if err := s.accounts.Update(ctx, account); err != nil {
		return apperrors.ToDomainError(err)
	}
	if err := s.sessions.Invalidate(ctx, account.ID); err != nil {
		s.logger.Warn("drop session after password reset failed", zap.String("account_id", account.ID), zap.Error(err))
	}
	return nil
}

func (s *AuthService) loadAccount(ctx context.Context, accountID string) (*domain.Account, error) {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperrors.NewNotFound("Account", map[string]any{"account_id": accountID})
		}
		return nil, apperrors.ToDomainError(err)
	}
	return account, nil
}

// save persists the account and overwrites its live session, if any.
func (s *AuthService) save(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	if err := s.accounts.Update(ctx, account); err != nil {
		return nil, apperrors.ToDomainError(err)
	}
	if err := s.sessions.Sync(ctx, account.Snapshot()); err != nil {
		s.logger.Warn("session sync failed", zap.String("account_id", account.ID), zap.Error(err))
	}
	return account, nil
}

func (s *AuthService) ensureEmailFree(ctx context.Context, email string) error {
	_, err := s.accounts.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return apperrors.NewConflict("Email already exist", map[string]any{"email": email})
	case repository.IsNotFound(err):
		return nil
	default:
		return apperrors.ToDomainError(err)
	}
}

func (s *AuthService) validateEmail(email string) error {
	if !emailPattern.MatchString(email) {
		return apperrors.NewValidationError("Please enter a valid email", map[string]any{"email": email})
	}
	return nil
}

func (s *AuthService) validatePassword(password string) error {
	if len(password) < s.minPassword {
		return apperrors.NewValidationError(
			fmt.Sprintf("Password must be at least %d characters", s.minPassword), nil)
	}
	return nil
}

func (s *AuthService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handlers failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// newShortCode returns a random 4-digit code.
func newShortCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(9000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d", n.Int64()+1000), nil
}
