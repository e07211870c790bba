package auth

import (
	"errors"
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/spec-kit/event-ticketing/internal/domain"
)

// ErrInvalidToken covers malformed, expired and badly signed tokens.
var ErrInvalidToken = errors.New("invalid token")

// TokenKind separates the secrets used for each credential.
type TokenKind int

const (
	KindAccess TokenKind = iota
	KindRefresh
)

// TokenConfig carries secrets and lifetimes for the manager.
type TokenConfig struct {
	AccessSecret     string
	RefreshSecret    string
	ActivationSecret string
	AccessTTL        time.Duration
	RefreshTTL       time.Duration
	ActivationTTL    time.Duration
}

// TokenManager signs and validates JWTs.
type TokenManager struct {
	accessSecret     []byte
	refreshSecret    []byte
	activationSecret []byte
	accessTTL        time.Duration
	refreshTTL       time.Duration
	activationTTL    time.Duration
	now              func() time.Time
}

// NewTokenManager builds a new manager.
func NewTokenManager(cfg TokenConfig) *TokenManager {
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = 300 * time.Minute
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = 1200 * time.Minute
	}
	if cfg.ActivationTTL <= 0 {
		cfg.ActivationTTL = 5 * time.Minute
	}
	return &TokenManager{
		accessSecret:     []byte(cfg.AccessSecret),
		refreshSecret:    []byte(cfg.RefreshSecret),
		activationSecret: []byte(cfg.ActivationSecret),
		accessTTL:        cfg.AccessTTL,
		refreshTTL:       cfg.RefreshTTL,
		activationTTL:    cfg.ActivationTTL,
		now:              time.Now,
	}
}

// Claims describes the access/refresh JWT payload.
type Claims struct {
	AccountID string `json:"id"`
	jwt.RegisteredClaims
}

// ActivationClaims carries a pending registration and its code.
type ActivationClaims struct {
	Draft          domain.AccountDraft `json:"user"`
	ActivationCode string              `json:"activationCode"`
	jwt.RegisteredClaims
}

// AccessTTL returns the access token lifetime.
func (tm *TokenManager) AccessTTL() time.Duration { return tm.accessTTL }

// RefreshTTL returns the refresh token lifetime.
func (tm *TokenManager) RefreshTTL() time.Duration { return tm.refreshTTL }

// GenerateToken signs a token of the given kind for the account.
func (tm *TokenManager) GenerateToken(kind TokenKind, accountID string) (string, time.Time, error) {
	secret, ttl := tm.keyFor(kind)
	issuedAt := tm.now()
	expiresAt := issuedAt.Add(ttl)
	claims := &Claims{
		AccountID: accountID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   accountID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// ParseToken validates a token of the given kind and returns its claims.
func (tm *TokenManager) ParseToken(kind TokenKind, tokenStr string) (*Claims, error) {
	secret, _ := tm.keyFor(kind)
	claims := &Claims{}
	if err := tm.parse(tokenStr, claims, secret); err != nil {
		return nil, err
	}
	if claims.AccountID == "" {
		return nil, fmt.Errorf("%w: missing account id", ErrInvalidToken)
	}
	return claims, nil
}

// GenerateActivation signs a short-lived token binding draft to code.
func (tm *TokenManager) GenerateActivation(draft domain.AccountDraft, code string) (string, error) {
	issuedAt := tm.now()
	claims := &ActivationClaims{
		Draft:          draft,
		ActivationCode: code,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(tm.activationTTL)),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(tm.activationSecret)
}

// ParseActivation validates an activation token.
func (tm *TokenManager) ParseActivation(tokenStr string) (*ActivationClaims, error) {
	claims := &ActivationClaims{}
	if err := tm.parse(tokenStr, claims, tm.activationSecret); err != nil {
		return nil, err
	}
	return claims, nil
}

func (tm *TokenManager) parse(tokenStr string, claims jwt.Claims, secret []byte) error {
	parsed, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	}, jwt.WithTimeFunc(tm.now), jwt.WithExpirationRequired())
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return ErrInvalidToken
	}
	return nil
}

func (tm *TokenManager) keyFor(kind TokenKind) ([]byte, time.Duration) {
	if kind == KindRefresh {
		return tm.refreshSecret, tm.refreshTTL
	}
	return tm.accessSecret, tm.accessTTL
}
