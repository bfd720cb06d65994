package fiber

import (
	"net/http"

	"github.com/gofiber/fiber/v3"

	"github.com/teamo-dev/teamo/core"
	"github.com/teamo-dev/teamo/crypto"
	"github.com/teamo-dev/teamo/services"
)

// register handles local email/password signup.
func (h *Handler) register(c fiber.Ctx) error {
	var input services.RegisterInput
	if err := c.Bind().Body(&input); err != nil {
		return c.Status(http.StatusBadRequest).JSON(core.ErrorResponse{
			Message:   "invalid request body",
			ErrorCode: core.CodeValidationError,
		})
	}

	user, err := h.accounts.Register(c.Context(), input)
	if err != nil {
		return h.respondError(c, err)
	}

	credential, err := h.sessions.Issue(user)
	if err != nil {
		return h.respondError(c, err)
	}
	h.writeSessionCookie(c, credential)

	return c.Status(http.StatusCreated).JSON(fiber.Map{"user": user})
}

type loginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// login handles local email/password authentication.
func (h *Handler) login(c fiber.Ctx) error {
	var input loginInput
	if err := c.Bind().Body(&input); err != nil {
		return c.Status(http.StatusBadRequest).JSON(core.ErrorResponse{
			Message:   "invalid request body",
			ErrorCode: core.CodeValidationError,
		})
	}

	user, err := h.accounts.Verify(c.Context(), input.Email, input.Password)
	if err != nil {
		return h.respondError(c, err)
	}

	credential, err := h.sessions.Issue(user)
	if err != nil {
		return h.respondError(c, err)
	}
	h.writeSessionCookie(c, credential)

	return c.Status(http.StatusOK).JSON(fiber.Map{"user": user})
}

// logout deletes the client's credential cookie. Nothing is revoked server-
// side; there is nothing server-side to revoke.
func (h *Handler) logout(c fiber.Ctx) error {
	h.clearSessionCookie(c)
	return c.Status(http.StatusOK).JSON(fiber.Map{"message": "logged out"})
}

// providerRedirect starts the federated login flow by sending the browser to
// the provider's authorization endpoint with a fresh state value.
func (h *Handler) providerRedirect(c fiber.Ctx) error {
	provider, ok := h.providers.Provider(c.Params("provider"))
	if !ok {
		return h.respondError(c, core.ErrNotFound)
	}

	state, err := crypto.GenerateState(0)
	if err != nil {
		return h.respondError(c, err)
	}
	h.writeStateCookie(c, state)

	return c.Redirect().To(provider.AuthCodeURL(state))
}

// providerCallback completes the federated login flow: state check, code
// exchange, identity normalization, account login-or-create, session issue.
func (h *Handler) providerCallback(c fiber.Ctx) error {
	provider, ok := h.providers.Provider(c.Params("provider"))
	if !ok {
		return h.respondError(c, core.ErrNotFound)
	}

	state := c.Query("state")
	expected := c.Cookies(stateCookieName)
	h.clearStateCookie(c)
	if !crypto.StateEqual(state, expected) {
		return c.Status(http.StatusBadRequest).JSON(core.ErrorResponse{
			Message:   "oauth state mismatch",
			ErrorCode: core.CodeValidationError,
		})
	}

	code := c.Query("code")
	if code == "" {
		// Provider denied or user cancelled; send them back to the frontend.
		return c.Redirect().To(h.cfg.FrontendOrigin + "?auth=failure")
	}

	identity, err := provider.Identity(c.Context(), code)
	if err != nil {
		return h.respondError(c, err)
	}

	user, created, err := h.accounts.LoginOrCreate(c.Context(), identity)
	if err != nil {
		return h.respondError(c, err)
	}
	if created {
		h.logger.Info("first federated login", "user_id", user.ID, "provider", provider.Name())
	}

	credential, err := h.sessions.Issue(user)
	if err != nil {
		return h.respondError(c, err)
	}
	h.writeSessionCookie(c, credential)

	return c.Redirect().To(h.cfg.FrontendOrigin)
}

// currentUser returns the authenticated user for the session credential.
func (h *Handler) currentUser(c fiber.Ctx) error {
	user, ok := CurrentUser(c)
	if !ok {
		return h.respondError(c, core.ErrInvalidToken)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"user": user})
}
