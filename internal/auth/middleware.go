package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/event-ticketing/internal/domain"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller as seen through its session.
type Principal struct {
	AccountID string
	Account   domain.AccountSnapshot
}

// AuthMiddleware validates access tokens and loads the live session.
type AuthMiddleware struct {
	sessions *SessionManager
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(sessions *SessionManager) *AuthMiddleware {
	return &AuthMiddleware{sessions: sessions}
}

// Handle enforces authentication for protected routes. The access token is
// read from the access_token cookie, falling back to a Bearer header.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	claims, err := m.sessions.VerifyAccess(accessTokenFrom(c))
	if err != nil {
		return err
	}

	snapshot, err := m.sessions.Lookup(c.UserContext(), claims.AccountID)
	if err != nil {
		return err
	}

	c.Locals(principalKey, &Principal{AccountID: claims.AccountID, Account: *snapshot})
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated account.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}

func accessTokenFrom(c *fiber.Ctx) string {
	if tok := c.Cookies(AccessCookieName); tok != "" {
		return tok
	}
	header := c.Get(fiber.HeaderAuthorization)
	parts := strings.SplitN(header, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}
