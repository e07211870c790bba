package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/event-ticketing/internal/domain"
	apperrors "github.com/spec-kit/event-ticketing/pkg/util"
)

// PasswordHasher turns account passwords into the bcrypt hashes kept on the
// account row and checks login attempts against them.
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher uses bcrypt's default cost when cost is out of range.
func NewPasswordHasher(cost int) PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return PasswordHasher{cost: cost}
}

// Hash returns the stored form of a new account password. bcrypt only reads
// 72 bytes, so longer passwords are rejected instead of silently truncated.
func (h PasswordHasher) Hash(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", apperrors.NewValidationError("Password is too long", map[string]any{"password": "at most 72 bytes"})
	}
	if err != nil {
		return "", apperrors.NewInternalError(err)
	}
	return string(hashed), nil
}

// Matches reports whether plain is the account's password. Accounts created
// through social login have no hash and never match.
func (h PasswordHasher) Matches(account *domain.Account, plain string) bool {
	if account == nil || account.PasswordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(plain)) == nil
}
