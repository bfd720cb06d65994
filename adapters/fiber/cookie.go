package fiber

import (
	"time"

	"github.com/gofiber/fiber/v3"
)

// SessionCookieName is the canonical session cookie name.
const SessionCookieName = "session"

// stateCookieName carries the OAuth state value across the redirect round-trip.
const stateCookieName = "oauth_state"

// stateCookieMaxAge bounds how long an authorization redirect may take.
const stateCookieMaxAge = 10 * time.Minute

// writeSessionCookie sets the session credential cookie. Attributes follow
// the deployment environment: in production the cookie is Secure, scoped to
// the frontend's parent domain, and SameSite=None so the separately-hosted
// frontend can send it cross-site; in development it stays host-only and Lax.
// The credential inside is signed, never plaintext-inspectable.
func (h *Handler) writeSessionCookie(c fiber.Ctx, credential string) {
	sameSite := fiber.CookieSameSiteLaxMode
	if h.cfg.IsProduction() {
		sameSite = fiber.CookieSameSiteNoneMode
	}

	c.Cookie(&fiber.Cookie{
		Name:     SessionCookieName,
		Value:    credential,
		Path:     "/",
		Domain:   h.cfg.CookieDomain(),
		MaxAge:   int(h.sessions.MaxAge().Seconds()),
		Expires:  time.Now().Add(h.sessions.MaxAge()),
		HTTPOnly: true,
		Secure:   h.cfg.IsProduction(),
		SameSite: sameSite,
	})
}

// clearSessionCookie expires the session cookie. With a client-held
// credential this is all logout does; the credential itself stays valid
// until its fixed expiry.
func (h *Handler) clearSessionCookie(c fiber.Ctx) {
	sameSite := fiber.CookieSameSiteLaxMode
	if h.cfg.IsProduction() {
		sameSite = fiber.CookieSameSiteNoneMode
	}

	c.Cookie(&fiber.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		Domain:   h.cfg.CookieDomain(),
		MaxAge:   -1,
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		Secure:   h.cfg.IsProduction(),
		SameSite: sameSite,
	})
}

func (h *Handler) writeStateCookie(c fiber.Ctx, state string) {
	c.Cookie(&fiber.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/",
		MaxAge:   int(stateCookieMaxAge.Seconds()),
		Expires:  time.Now().Add(stateCookieMaxAge),
		HTTPOnly: true,
		Secure:   h.cfg.IsProduction(),
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func (h *Handler) clearStateCookie(c fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     stateCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		Secure:   h.cfg.IsProduction(),
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// sessionFromRequest extracts the session credential from the request.
// The cookie is canonical; a Bearer header is accepted for non-browser
// clients.
func sessionFromRequest(c fiber.Ctx) string {
	if cookie := c.Cookies(SessionCookieName); cookie != "" {
		return cookie
	}

	authHeader := c.Get(fiber.HeaderAuthorization)
	if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
		return authHeader[7:]
	}
	return ""
}
