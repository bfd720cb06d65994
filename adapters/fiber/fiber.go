// Package fiber exposes the auth core over HTTP: the public auth routes plus
// the two-stage guard middleware every gated route passes through.
package fiber

import (
	"log/slog"

	"github.com/gofiber/fiber/v3"

	"github.com/teamo-dev/teamo/config"
	"github.com/teamo-dev/teamo/core"
	"github.com/teamo-dev/teamo/federation"
	"github.com/teamo-dev/teamo/services"
)

// Handler wires the auth services to Fiber routes.
type Handler struct {
	accounts  *services.AccountService
	sessions  *services.SessionManager
	members   core.MembershipStore
	roleCache core.RoleCache
	providers *federation.Registry
	cfg       *config.Config
	logger    *slog.Logger
}

func New(
	accounts *services.AccountService,
	sessions *services.SessionManager,
	members core.MembershipStore,
	roleCache core.RoleCache,
	providers *federation.Registry,
	cfg *config.Config,
	logger *slog.Logger,
) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		accounts:  accounts,
		sessions:  sessions,
		members:   members,
		roleCache: roleCache,
		providers: providers,
		cfg:       cfg,
		logger:    logger,
	}
}

// Register mounts the auth surface under the configured base path.
// Everything under /auth is public; /user/current demonstrates a session-
// gated route. Business routes mount their own groups and declare the
// permission they require via RequirePermission.
func (h *Handler) Register(app *fiber.App) {
	api := app.Group(h.cfg.BasePath)

	auth := api.Group("/auth")
	auth.Post("/register", h.register)
	auth.Post("/login", h.login)
	auth.Post("/logout", h.logout)
	auth.Get("/:provider", h.providerRedirect)
	auth.Get("/:provider/callback", h.providerCallback)

	user := api.Group("/user", h.RequireSession)
	user.Get("/current", h.currentUser)
}
