package controller

import (
	"time"

	"subbridge-be/internal/dto"
	"subbridge-be/internal/pkg/serverutils"
	"subbridge-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type SessionController struct {
	sessionService service.ISessionService
	billingService service.IBillingService
	cookieName     string
	cookieTTL      time.Duration
	secureCookies  bool
}

func NewSessionController(
	sessionService service.ISessionService,
	billingService service.IBillingService,
	cookieName string,
	cookieTTL time.Duration,
	secureCookies bool,
) *SessionController {
	return &SessionController{
		sessionService: sessionService,
		billingService: billingService,
		cookieName:     cookieName,
		cookieTTL:      cookieTTL,
		secureCookies:  secureCookies,
	}
}

func (c *SessionController) RegisterRoutes(r fiber.Router, requireSession fiber.Handler) {
	r.Post("/bridge-session", c.BridgeSession)
	r.Post("/logout", c.Logout)
	r.Get("/session", requireSession, c.CurrentSession)
	r.Get("/dashboard", requireSession, c.Dashboard)
}

// BridgeSession turns an identity-provider login result into a server-side
// session and sets the opaque session cookie.
func (c *SessionController) BridgeSession(ctx *fiber.Ctx) error {
	var req dto.BridgeSessionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateRequest(&req); err != nil {
		return err
	}

	session, err := c.sessionService.Bridge(ctx.Context(), &req)
	if err != nil {
		return err
	}

	ctx.Cookie(&fiber.Cookie{
		Name:     c.cookieName,
		Value:    session.Id,
		Expires:  time.Now().Add(c.cookieTTL),
		HTTPOnly: true,
		Secure:   c.secureCookies,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	return ctx.Status(fiber.StatusOK).JSON(serverutils.SuccessResponse("Session established", dto.SessionResponse{
		UserId:   session.UserId,
		Email:    session.Email,
		Audience: session.Audience,
	}))
}

func (c *SessionController) Logout(ctx *fiber.Ctx) error {
	sessionId := ctx.Cookies(c.cookieName)
	if sessionId != "" {
		if err := c.sessionService.Logout(ctx.Context(), sessionId); err != nil {
			return err
		}
	}

	ctx.Cookie(&fiber.Cookie{
		Name:     c.cookieName,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		Secure:   c.secureCookies,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	return ctx.Status(fiber.StatusOK).JSON(serverutils.SuccessResponse[any]("Logged out", nil))
}

func (c *SessionController) CurrentSession(ctx *fiber.Ctx) error {
	session := serverutils.SessionFromCtx(ctx)

	return ctx.Status(fiber.StatusOK).JSON(serverutils.SuccessResponse("Session active", dto.SessionResponse{
		UserId:   session.UserId,
		Email:    session.Email,
		Audience: session.Audience,
	}))
}

// Dashboard is the canonical session-gated page: who you are plus what your
// subscription currently entitles you to.
func (c *SessionController) Dashboard(ctx *fiber.Ctx) error {
	session := serverutils.SessionFromCtx(ctx)

	plan, err := c.billingService.EffectivePlan(ctx.Context(), session.UserId)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not resolve subscription state")
	}

	return ctx.Status(fiber.StatusOK).JSON(serverutils.SuccessResponse("Dashboard", dto.DashboardResponse{
		Email:      session.Email,
		Plan:       string(plan),
		PaidAccess: plan.Paid(),
	}))
}
