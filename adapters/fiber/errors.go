package fiber

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v3"

	"github.com/teamo-dev/teamo/core"
)

// respondError translates an internal error into the wire error payload.
// Internal detail never crosses the boundary: anything unrecognized becomes a
// generic 500 and is logged server-side by the caller.
func (h *Handler) respondError(c fiber.Ctx, err error) error {
	status, code := classify(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", "path", c.Path(), "error", err)
		message = "internal server error"
	}

	return c.Status(status).JSON(core.ErrorResponse{
		Message:   message,
		ErrorCode: code,
	})
}

// classify maps core sentinels to HTTP status and error code.
func classify(err error) (int, core.ErrorCode) {
	switch {
	case errors.Is(err, core.ErrInvalidToken),
		errors.Is(err, core.ErrSessionExpired):
		return http.StatusUnauthorized, core.CodeInvalidToken

	case errors.Is(err, core.ErrInvalidCredentials):
		return http.StatusUnauthorized, core.CodeUnauthorizedAccess

	case errors.Is(err, core.ErrUnauthorized):
		return http.StatusForbidden, core.CodeUnauthorizedAccess

	case errors.Is(err, core.ErrIdentityIncomplete),
		errors.Is(err, core.ErrEmailRequired),
		errors.Is(err, core.ErrPasswordRequired),
		errors.Is(err, core.ErrPasswordTooShort),
		errors.Is(err, core.ErrPasswordTooLong),
		errors.Is(err, core.ErrInvalidEmail):
		return http.StatusBadRequest, core.CodeValidationError

	case errors.Is(err, core.ErrEmailExists):
		return http.StatusConflict, core.CodeEmailExists

	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound, core.CodeResourceNotFound

	default:
		return http.StatusInternalServerError, core.CodeInternalError
	}
}
