package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/event-ticketing/internal/domain"
	"github.com/spec-kit/event-ticketing/internal/session"
	apperrors "github.com/spec-kit/event-ticketing/pkg/util"
)

// SessionManager ties signed tokens to the cache-backed session.
//
// Token validity (signature + expiry) is stateless. Session validity lives in
// the store: deleting the session revokes the account at its next refresh.
type SessionManager struct {
	tokens   *TokenManager
	sessions session.Store
	logger   *zap.Logger
}

// NewSessionManager wires the lifecycle manager.
func NewSessionManager(tokens *TokenManager, sessions session.Store, logger *zap.Logger) *SessionManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionManager{tokens: tokens, sessions: sessions, logger: logger}
}

// Tokens exposes the underlying token manager.
func (m *SessionManager) Tokens() *TokenManager {
	return m.tokens
}

// IssuePair signs a fresh access/refresh pair and stores the snapshot as the
// live session. The session expires with the refresh token.
func (m *SessionManager) IssuePair(ctx context.Context, snapshot domain.AccountSnapshot) (domain.TokenPair, error) {
	pair, err := m.signPair(snapshot.ID)
	if err != nil {
		return domain.TokenPair{}, err
	}
	if err := m.write(ctx, snapshot); err != nil {
		return domain.TokenPair{}, err
	}
	return pair, nil
}

// VerifyAccess checks an access token. It does not consult the session store.
func (m *SessionManager) VerifyAccess(token string) (*Claims, error) {
	if token == "" {
		return nil, apperrors.NewUnauthenticated("Please login to access this resource")
	}
	claims, err := m.tokens.ParseToken(KindAccess, token)
	if err != nil {
		return nil, apperrors.NewUnauthenticated("Invalid token")
	}
	return claims, nil
}

// Refresh rotates the credential pair. A missing session means the account
// logged out and is reported as unauthenticated, not as a transient failure.
// The session is only renewed while it still exists, so a logout racing the
// refresh stays logged out.
func (m *SessionManager) Refresh(ctx context.Context, refreshToken string) (domain.TokenPair, *domain.AccountSnapshot, error) {
	if refreshToken == "" {
		return domain.TokenPair{}, nil, apperrors.NewUnauthenticated("Access token updated was unsuccessfully")
	}
	claims, err := m.tokens.ParseToken(KindRefresh, refreshToken)
	if err != nil {
		return domain.TokenPair{}, nil, apperrors.NewUnauthenticated("Access token updated was unsuccessfully")
	}

	snapshot, err := m.Lookup(ctx, claims.AccountID)
	if err != nil {
		return domain.TokenPair{}, nil, err
	}

	pair, err := m.signPair(snapshot.ID)
	if err != nil {
		return domain.TokenPair{}, nil, err
	}
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return domain.TokenPair{}, nil, apperrors.NewInternalError(err)
	}
	renewed, err := m.sessions.Renew(ctx, snapshot.ID, raw, m.tokens.RefreshTTL())
	if err != nil {
		return domain.TokenPair{}, nil, apperrors.NewInternalError(fmt.Errorf("renew session: %w", err))
	}
	if !renewed {
		return domain.TokenPair{}, nil, apperrors.NewUnauthenticated("Session not found, please login")
	}
	return pair, snapshot, nil
}

// Lookup returns the cached account snapshot.
func (m *SessionManager) Lookup(ctx context.Context, accountID string) (*domain.AccountSnapshot, error) {
	raw, err := m.sessions.Get(ctx, accountID)
	if errors.Is(err, session.ErrNotFound) {
		return nil, apperrors.NewUnauthenticated("Session not found, please login")
	}
	if err != nil {
		return nil, apperrors.NewInternalError(fmt.Errorf("read session: %w", err))
	}

	var snapshot domain.AccountSnapshot
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		m.logger.Warn("dropping unreadable session", zap.String("account_id", accountID), zap.Error(err))
		_ = m.sessions.Delete(ctx, accountID)
		return nil, apperrors.NewUnauthenticated("Session not found, please login")
	}
	if snapshot.ID != accountID {
		return nil, apperrors.NewUnauthenticated("Session not found, please login")
	}
	return &snapshot, nil
}

// Sync overwrites the snapshot of a live session. Logged-out accounts are left
// without a session.
func (m *SessionManager) Sync(ctx context.Context, snapshot domain.AccountSnapshot) error {
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	replaced, err := m.sessions.Replace(ctx, snapshot.ID, raw)
	if err != nil {
		return apperrors.NewInternalError(fmt.Errorf("sync session: %w", err))
	}
	if !replaced {
		m.logger.Debug("no live session to sync", zap.String("account_id", snapshot.ID))
	}
	return nil
}

// Invalidate deletes the session. Signed tokens stay valid until they expire
// but can no longer be refreshed.
func (m *SessionManager) Invalidate(ctx context.Context, accountID string) error {
	if err := m.sessions.Delete(ctx, accountID); err != nil {
		return apperrors.NewInternalError(fmt.Errorf("delete session: %w", err))
	}
	return nil
}

func (m *SessionManager) signPair(accountID string) (domain.TokenPair, error) {
	access, accessExp, err := m.tokens.GenerateToken(KindAccess, accountID)
	if err != nil {
		return domain.TokenPair{}, apperrors.NewInternalError(fmt.Errorf("sign access token: %w", err))
	}
	refresh, refreshExp, err := m.tokens.GenerateToken(KindRefresh, accountID)
	if err != nil {
		return domain.TokenPair{}, apperrors.NewInternalError(fmt.Errorf("sign refresh token: %w", err))
	}
	return domain.TokenPair{
		AccessToken:      access,
		AccessExpiresAt:  accessExp,
		RefreshToken:     refresh,
		RefreshExpiresAt: refreshExp,
	}, nil
}

func (m *SessionManager) write(ctx context.Context, snapshot domain.AccountSnapshot) error {
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	if err := m.sessions.Set(ctx, snapshot.ID, raw, m.tokens.RefreshTTL()); err != nil {
		return apperrors.NewInternalError(fmt.Errorf("write session: %w", err))
	}
	return nil
}
