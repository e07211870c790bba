package auth

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/event-ticketing/internal/domain"
)

// Cookie names carrying the credential pair.
const (
	AccessCookieName  = "access_token"
	RefreshCookieName = "refresh_token"
)

// CookieWriter sets and clears the credential cookies.
type CookieWriter struct {
	secure     bool
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewCookieWriter builds a writer; secure should be true only in production.
func NewCookieWriter(secure bool, accessTTL, refreshTTL time.Duration) *CookieWriter {
	return &CookieWriter{secure: secure, accessTTL: accessTTL, refreshTTL: refreshTTL}
}

// SetPair writes both credential cookies.
func (w *CookieWriter) SetPair(c *fiber.Ctx, pair domain.TokenPair) {
	c.Cookie(w.cookie(AccessCookieName, pair.AccessToken, w.accessTTL, pair.AccessExpiresAt))
	c.Cookie(w.cookie(RefreshCookieName, pair.RefreshToken, w.refreshTTL, pair.RefreshExpiresAt))
}

// Clear expires both credential cookies.
func (w *CookieWriter) Clear(c *fiber.Ctx) {
	for _, name := range []string{AccessCookieName, RefreshCookieName} {
		ck := w.cookie(name, "", 0, time.Unix(0, 0))
		ck.MaxAge = -1
		c.Cookie(ck)
	}
}

func (w *CookieWriter) cookie(name, value string, ttl time.Duration, expires time.Time) *fiber.Cookie {
	return &fiber.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		Expires:  expires,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Secure:   w.secure,
	}
}
