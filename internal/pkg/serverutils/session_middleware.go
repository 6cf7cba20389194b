package serverutils

import (
	"errors"

	"subbridge-be/internal/repository/contract"
	"subbridge-be/pkg/store"

	"github.com/gofiber/fiber/v2"
)

// SessionLocalKey is where the middleware parks the resolved session.
const SessionLocalKey = "session"

// SessionMiddleware resolves the opaque session cookie into a server-side
// session and rejects requests that don't carry a live one.
func SessionMiddleware(sessions contract.SessionRepository, cookieName string) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		sessionId := ctx.Cookies(cookieName)
		if sessionId == "" {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(401, "Missing session"))
		}

		session, err := sessions.Get(ctx.Context(), sessionId)
		if err != nil {
			if errors.Is(err, contract.ErrSessionNotFound) {
				return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(401, "Invalid or expired session"))
			}
			return ctx.Status(fiber.StatusInternalServerError).JSON(ErrorResponse(500, "Session lookup failed"))
		}

		ctx.Locals(SessionLocalKey, session)
		return ctx.Next()
	}
}

// SessionFromCtx returns the session placed by SessionMiddleware, or nil.
func SessionFromCtx(ctx *fiber.Ctx) *store.Session {
	session, _ := ctx.Locals(SessionLocalKey).(*store.Session)
	return session
}
