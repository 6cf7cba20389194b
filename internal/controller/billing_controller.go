package controller

import (
	"encoding/json"
	"fmt"
	"net/url"

	"subbridge-be/internal/dto"
	"subbridge-be/internal/pkg/logger"
	"subbridge-be/internal/pkg/serverutils"
	"subbridge-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

// SignatureHeader carries the provider's HMAC signature over the raw body.
const SignatureHeader = "Paypal-Transmission-Sig"

type BillingController struct {
	billingService service.IBillingService
	verifier       service.WebhookVerifier
	clientURL      string
	logger         logger.ILogger
}

func NewBillingController(
	billingService service.IBillingService,
	verifier service.WebhookVerifier,
	clientURL string,
	log logger.ILogger,
) *BillingController {
	return &BillingController{
		billingService: billingService,
		verifier:       verifier,
		clientURL:      clientURL,
		logger:         log,
	}
}

func (c *BillingController) RegisterRoutes(r fiber.Router, requireSession fiber.Handler) {
	r.Get("/pricing", requireSession, c.Pricing)
	r.Get("/subscriptions", requireSession, c.ListSubscriptions)
	r.Post("/start-subscription", requireSession, c.StartSubscription)
	r.Post("/webhook", c.Webhook)
	r.Get("/payment-return", c.PaymentReturn)
	r.Get("/payment-cancel", c.PaymentCancel)
}

func (c *BillingController) Pricing(ctx *fiber.Ctx) error {
	session := serverutils.SessionFromCtx(ctx)

	plan, err := c.billingService.EffectivePlan(ctx.Context(), session.UserId)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not resolve subscription state")
	}

	return ctx.Status(fiber.StatusOK).JSON(serverutils.SuccessResponse("Pricing", dto.PricingResponse{
		CurrentPlan: string(plan),
		PaidAccess:  plan.Paid(),
		Plans:       c.billingService.PlanCatalog(),
	}))
}

func (c *BillingController) ListSubscriptions(ctx *fiber.Ctx) error {
	session := serverutils.SessionFromCtx(ctx)

	subs, err := c.billingService.ListSubscriptions(ctx.Context(), session.UserId)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not list subscriptions")
	}

	return ctx.Status(fiber.StatusOK).JSON(serverutils.SuccessResponse("Subscriptions", subs))
}

func (c *BillingController) StartSubscription(ctx *fiber.Ctx) error {
	session := serverutils.SessionFromCtx(ctx)

	var req dto.StartSubscriptionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateRequest(&req); err != nil {
		return err
	}

	resp, err := c.billingService.StartSubscription(ctx.Context(), session.UserId, session.Email, &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusOK).JSON(serverutils.SuccessResponse("Subscription started", *resp))
}

// Webhook receives provider notifications. The contract with the provider is
// asymmetric: reject only requests that fail authentication or cannot be
// parsed at all; everything that clears those gates is acknowledged with 200
// no matter what the reconciler decides, so the provider stops retrying.
func (c *BillingController) Webhook(ctx *fiber.Ctx) error {
	raw := ctx.Body()

	if err := c.verifier.Verify(raw, ctx.Get(SignatureHeader)); err != nil {
		c.logger.Warn("BillingController", "Webhook signature rejected", map[string]interface{}{
			"error": err.Error(),
		})
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "signature verification failed"))
	}

	var evt dto.ProviderWebhookEvent
	if err := json.Unmarshal(raw, &evt); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "unparseable event payload"))
	}

	c.billingService.ProcessWebhookEvent(ctx.Context(), raw, &evt)

	return ctx.Status(fiber.StatusOK).JSON(serverutils.SuccessResponse[any]("received", nil))
}

// PaymentReturn is where the provider sends the user's browser after they
// approve the agreement. Execution finalizes the agreement; the subscription
// itself activates only when the provider's webhook lands.
func (c *BillingController) PaymentReturn(ctx *fiber.Ctx) error {
	token := ctx.Query("token")
	if token == "" {
		return c.redirectWithNotice(ctx, "missing approval token")
	}

	agreementId, err := c.billingService.ExecuteAgreement(ctx.Context(), token)
	if err != nil {
		return c.redirectWithNotice(ctx, "payment could not be completed")
	}

	c.logger.Info("BillingController", "Payment return handled", map[string]interface{}{
		"agreement_id": agreementId,
	})

	return c.redirectWithNotice(ctx, "payment approved, your subscription will activate shortly")
}

func (c *BillingController) PaymentCancel(ctx *fiber.Ctx) error {
	return c.redirectWithNotice(ctx, "payment cancelled")
}

func (c *BillingController) redirectWithNotice(ctx *fiber.Ctx, notice string) error {
	target := fmt.Sprintf("%s/pricing?notice=%s", c.clientURL, url.QueryEscape(notice))
	return ctx.Redirect(target, fiber.StatusFound)
}
