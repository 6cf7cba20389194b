package serverutils

import (
	"context"

	"github.com/gofiber/fiber/v2"
)

// AccessCheck answers whether a user currently holds a paid plan.
type AccessCheck func(ctx context.Context, userId string) bool

// RequirePaidAccess gates feature routes behind an active paid subscription.
// It must run after SessionMiddleware. The check fails closed: any lookup
// problem denies access.
func RequirePaidAccess(hasPaidAccess AccessCheck) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		session := SessionFromCtx(ctx)
		if session == nil {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(401, "Missing session"))
		}

		if !hasPaidAccess(ctx.Context(), session.UserId) {
			return ctx.Status(fiber.StatusForbidden).JSON(ErrorResponse(403, "Paid subscription required"))
		}

		return ctx.Next()
	}
}
