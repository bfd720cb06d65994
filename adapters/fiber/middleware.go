package fiber

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/teamo-dev/teamo/core"
)

// Locals keys for request-scoped identity. The values are set once by the
// guard middleware and read-only afterwards.
const (
	localsUserKey = "auth.user"
	localsRoleKey = "auth.role"
)

// RequireSession is stage one of the guard: it resolves the session
// credential and attaches the authenticated user to the request. Requests
// without a valid, unexpired credential are rejected before any handler runs.
func (h *Handler) RequireSession(c fiber.Ctx) error {
	credential := sessionFromRequest(c)

	user, err := h.sessions.Resolve(c.Context(), credential)
	if err != nil {
		return h.respondError(c, err)
	}

	c.Locals(localsUserKey, user)
	return c.Next()
}

// RequirePermission is stage two: given the permission a route declares, it
// resolves the caller's role in the workspace named by the :workspaceId route
// parameter and rejects the request unless the role grants the permission.
// Routes that declare no permission simply don't install this middleware.
//
// Must run after RequireSession; without an authenticated user it rejects.
func (h *Handler) RequirePermission(perm core.Permission) fiber.Handler {
	return func(c fiber.Ctx) error {
		user, ok := CurrentUser(c)
		if !ok {
			return h.respondError(c, core.ErrInvalidToken)
		}

		workspaceID := c.Params("workspaceId")
		if workspaceID == "" {
			return h.respondError(c, core.ErrNotFound)
		}

		role, err := h.memberRole(c, user.ID, workspaceID)
		if err != nil {
			if errors.Is(err, core.ErrNotFound) {
				// Not a member at all: same rejection as missing permission.
				return h.respondError(c, core.ErrUnauthorized)
			}
			return h.respondError(c, err)
		}

		if !core.HasPermission(role, perm) {
			return h.respondError(c, core.ErrUnauthorized)
		}

		c.Locals(localsRoleKey, role)
		return c.Next()
	}
}

// memberRole resolves the caller's workspace role, going through the role
// cache when one is configured. Cache failures fall through to storage.
func (h *Handler) memberRole(c fiber.Ctx, userID, workspaceID string) (core.Role, error) {
	key := core.MembershipCacheKey(userID, workspaceID)

	if h.roleCache != nil {
		if role, err := h.roleCache.Get(key); err == nil {
			return role, nil
		}
	}

	role, err := h.members.MemberRole(c.Context(), userID, workspaceID)
	if err != nil {
		return "", err
	}

	if h.roleCache != nil {
		_ = h.roleCache.Set(key, role)
	}
	return role, nil
}

// CurrentUser returns the authenticated user attached by RequireSession.
func CurrentUser(c fiber.Ctx) (*core.User, bool) {
	user, ok := c.Locals(localsUserKey).(*core.User)
	return user, ok
}

// CurrentRole returns the workspace role attached by RequirePermission.
func CurrentRole(c fiber.Ctx) (core.Role, bool) {
	role, ok := c.Locals(localsRoleKey).(core.Role)
	return role, ok
}
