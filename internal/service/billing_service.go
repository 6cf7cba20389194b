package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"subbridge-be/internal/dto"
	"subbridge-be/internal/entity"
	"subbridge-be/internal/pkg/logger"
	"subbridge-be/internal/repository/contract"
	"subbridge-be/pkg/events"
	"subbridge-be/pkg/paypal"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Provider webhook event types the reconciler understands. Anything else is
// acknowledged and recorded as ignored.
const (
	EventSubscriptionActivated = "BILLING.SUBSCRIPTION.ACTIVATED"
	EventSubscriptionCancelled = "BILLING.SUBSCRIPTION.CANCELLED"
	EventSubscriptionExpired   = "BILLING.SUBSCRIPTION.EXPIRED"
	EventSubscriptionSuspended = "BILLING.SUBSCRIPTION.SUSPENDED"
	EventPaymentSaleCompleted  = "PAYMENT.SALE.COMPLETED"
)

// BillingConfig carries the deployment-specific pieces of the billing flow.
// PlanMap translates provider plan ids into our plan names.
type BillingConfig struct {
	ReturnURL string
	CancelURL string
	PlanMap   map[string]entity.PlanName
}

// IBillingService owns the subscription lifecycle: starting agreements at the
// provider, executing them after approval, and reconciling the local record
// from the provider's webhook stream.
type IBillingService interface {
	StartSubscription(ctx context.Context, userId, email string, req *dto.StartSubscriptionRequest) (*dto.StartSubscriptionResponse, error)
	ExecuteAgreement(ctx context.Context, token string) (string, error)

	// ProcessWebhookEvent never returns an error: whatever happens inside,
	// the delivery must be acknowledged so the provider stops retrying.
	ProcessWebhookEvent(ctx context.Context, raw []byte, evt *dto.ProviderWebhookEvent)

	EffectivePlan(ctx context.Context, userId string) (entity.PlanName, error)
	HasPaidAccess(ctx context.Context, userId string) bool
	ListSubscriptions(ctx context.Context, userId string) ([]dto.SubscriptionSummary, error)
	PlanCatalog() []dto.PlanOption
}

type billingService struct {
	subscriptions contract.SubscriptionRepository
	auditTrail    contract.WebhookEventRepository
	provider      paypal.API
	publisher     IPublisherService
	config        BillingConfig
	logger        logger.ILogger
}

func NewBillingService(
	subscriptions contract.SubscriptionRepository,
	auditTrail contract.WebhookEventRepository,
	provider paypal.API,
	publisher IPublisherService,
	config BillingConfig,
	log logger.ILogger,
) IBillingService {
	return &billingService{
		subscriptions: subscriptions,
		auditTrail:    auditTrail,
		provider:      provider,
		publisher:     publisher,
		config:        config,
		logger:        log,
	}
}

// --- Checkout path ---

func (s *billingService) StartSubscription(ctx context.Context, userId, email string, req *dto.StartSubscriptionRequest) (*dto.StartSubscriptionResponse, error) {
	agreement, err := s.provider.CreateBillingAgreement(ctx, &paypal.AgreementRequest{
		PlanId:      req.PlanId,
		Name:        fmt.Sprintf("%s subscription", req.PlanName),
		Description: fmt.Sprintf("Recurring %s plan", req.PlanName),
		ReturnURL:   s.config.ReturnURL,
		CancelURL:   s.config.CancelURL,
	})
	if err != nil {
		s.logger.Error("BillingService", "Provider agreement creation failed", map[string]interface{}{
			"user_id": userId,
			"plan_id": req.PlanId,
			"error":   err.Error(),
		})
		return nil, fiber.NewError(fiber.StatusBadGateway, "Payment provider unavailable")
	}

	record := &entity.SubscriptionRecord{
		AgreementId: agreement.Id,
		UserId:      userId,
		PlanName:    entity.PlanName(req.PlanName),
		Status:      entity.StatusPendingApproval,
	}
	if err := s.subscriptions.UpsertPending(ctx, record); err != nil {
		// The agreement exists at the provider but we lost the local record.
		// Surface the failure; the user can retry and the upsert is idempotent.
		s.logger.Error("BillingService", "Pending record write failed", map[string]interface{}{
			"agreement_id": agreement.Id,
			"error":        err.Error(),
		})
		return nil, fmt.Errorf("persist pending subscription: %w", err)
	}

	s.publish(events.BaseEvent{
		Type: events.TypeSubscriptionCreated,
		Data: map[string]interface{}{
			"agreement_id": agreement.Id,
			"user_id":      userId,
			"email":        email,
			"plan_name":    req.PlanName,
			"approve_url":  agreement.ApproveURL,
		},
		OccurredAt: time.Now(),
	})

	s.logger.Info("BillingService", "Subscription started", map[string]interface{}{
		"agreement_id": agreement.Id,
		"user_id":      userId,
		"plan_name":    req.PlanName,
	})

	return &dto.StartSubscriptionResponse{
		AgreementId: agreement.Id,
		ApproveUrl:  agreement.ApproveURL,
	}, nil
}

// ExecuteAgreement finalizes an approved agreement at the provider. It does
// NOT touch the local record: activation is owned exclusively by the webhook
// stream, which may already have arrived or may still be in flight.
func (s *billingService) ExecuteAgreement(ctx context.Context, token string) (string, error) {
	agreement, err := s.provider.ExecuteBillingAgreement(ctx, token)
	if err != nil {
		s.logger.Error("BillingService", "Agreement execution failed", map[string]interface{}{
			"token": token,
			"error": err.Error(),
		})
		return "", fiber.NewError(fiber.StatusBadGateway, "Payment provider rejected the agreement")
	}

	s.logger.Info("BillingService", "Agreement executed", map[string]interface{}{
		"agreement_id": agreement.Id,
		"state":        agreement.State,
	})

	return agreement.Id, nil
}

// --- Reconciliation path ---

func (s *billingService) ProcessWebhookEvent(ctx context.Context, raw []byte, evt *dto.ProviderWebhookEvent) {
	agreementId := evt.Resource.Id

	var outcome entity.EventOutcome
	switch evt.EventType {
	case EventSubscriptionActivated:
		outcome = s.applyActivation(ctx, agreementId, evt.Resource.PlanId)
	case EventSubscriptionCancelled, EventSubscriptionExpired, EventSubscriptionSuspended:
		outcome = s.applyClosure(ctx, agreementId, evt.EventType)
	case EventPaymentSaleCompleted:
		// Informational: a recurring charge went through. No state transition.
		outcome = entity.OutcomeIgnored
	default:
		s.logger.Info("BillingService", "Unhandled webhook event type", map[string]interface{}{
			"event_type": evt.EventType,
		})
		outcome = entity.OutcomeIgnored
	}

	s.audit(ctx, evt.EventType, agreementId, raw, outcome)
}

func (s *billingService) applyActivation(ctx context.Context, agreementId, planId string) entity.EventOutcome {
	if agreementId == "" {
		s.logger.Warn("BillingService", "Activation event without agreement id", nil)
		return entity.OutcomeIgnored
	}

	plan := s.planFor(planId)
	if plan == entity.PlanUnknown {
		s.logger.Warn("BillingService", "Activation with unmapped plan id", map[string]interface{}{
			"agreement_id": agreementId,
			"plan_id":      planId,
		})
	}

	rows, err := s.subscriptions.ApplyActivation(ctx, agreementId, plan)
	if err != nil {
		s.logger.Error("BillingService", "Activation write failed", map[string]interface{}{
			"agreement_id": agreementId,
			"error":        err.Error(),
		})
		return entity.OutcomeIgnored
	}

	if rows > 0 {
		s.publish(events.BaseEvent{
			Type: events.TypeSubscriptionActivated,
			Data: map[string]interface{}{
				"agreement_id": agreementId,
				"plan_name":    string(plan),
			},
			OccurredAt: time.Now(),
		})
		return entity.OutcomeApplied
	}

	return s.classifyNoop(ctx, agreementId)
}

func (s *billingService) applyClosure(ctx context.Context, agreementId, eventType string) entity.EventOutcome {
	if agreementId == "" {
		s.logger.Warn("BillingService", "Closure event without agreement id", map[string]interface{}{
			"event_type": eventType,
		})
		return entity.OutcomeIgnored
	}

	status := terminalStatusFor(eventType)

	rows, err := s.subscriptions.ApplyStatus(ctx, agreementId, status)
	if err != nil {
		s.logger.Error("BillingService", "Status write failed", map[string]interface{}{
			"agreement_id": agreementId,
			"status":       string(status),
			"error":        err.Error(),
		})
		return entity.OutcomeIgnored
	}

	if rows > 0 {
		s.publish(events.BaseEvent{
			Type: events.TypeSubscriptionClosed,
			Data: map[string]interface{}{
				"agreement_id": agreementId,
				"status":       string(status),
			},
			OccurredAt: time.Now(),
		})
		return entity.OutcomeApplied
	}

	return s.classifyNoop(ctx, agreementId)
}

// classifyNoop decides why a state write changed zero rows: a replayed
// delivery we already applied, or an agreement we never created.
func (s *billingService) classifyNoop(ctx context.Context, agreementId string) entity.EventOutcome {
	record, err := s.subscriptions.FindByAgreementId(ctx, agreementId)
	if err != nil {
		s.logger.Error("BillingService", "Noop classification lookup failed", map[string]interface{}{
			"agreement_id": agreementId,
			"error":        err.Error(),
		})
		return entity.OutcomeIgnored
	}
	if record == nil {
		s.logger.Warn("BillingService", "Webhook for unknown agreement", map[string]interface{}{
			"agreement_id": agreementId,
		})
		return entity.OutcomeAnomaly
	}
	return entity.OutcomeIgnored
}

func terminalStatusFor(eventType string) entity.SubscriptionStatus {
	switch eventType {
	case EventSubscriptionCancelled:
		return entity.StatusCancelled
	case EventSubscriptionExpired:
		return entity.StatusExpired
	case EventSubscriptionSuspended:
		return entity.StatusSuspended
	default:
		return entity.StatusInactive
	}
}

// --- Access gate ---

func (s *billingService) EffectivePlan(ctx context.Context, userId string) (entity.PlanName, error) {
	record, err := s.subscriptions.FindLatestActive(ctx, userId)
	if err != nil {
		return entity.PlanFree, fmt.Errorf("find active subscription: %w", err)
	}
	if record == nil {
		return entity.PlanFree, nil
	}
	return record.PlanName, nil
}

// HasPaidAccess fails closed: when the store cannot answer, the user is
// treated as free-tier rather than granted paid access.
func (s *billingService) HasPaidAccess(ctx context.Context, userId string) bool {
	plan, err := s.EffectivePlan(ctx, userId)
	if err != nil {
		s.logger.Error("BillingService", "Access check failed, denying paid access", map[string]interface{}{
			"user_id": userId,
			"error":   err.Error(),
		})
		return false
	}
	return plan.Paid()
}

func (s *billingService) ListSubscriptions(ctx context.Context, userId string) ([]dto.SubscriptionSummary, error) {
	records, err := s.subscriptions.ListByUser(ctx, userId)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}

	out := make([]dto.SubscriptionSummary, len(records))
	for i, rec := range records {
		out[i] = dto.SubscriptionSummary{
			AgreementId: rec.AgreementId,
			PlanName:    string(rec.PlanName),
			Status:      string(rec.Status),
			CreatedAt:   rec.CreatedAt.Format(time.RFC3339),
			UpdatedAt:   rec.UpdatedAt.Format(time.RFC3339),
		}
	}
	return out, nil
}

func (s *billingService) PlanCatalog() []dto.PlanOption {
	options := make([]dto.PlanOption, 0, len(s.config.PlanMap))
	for planId, planName := range s.config.PlanMap {
		options = append(options, dto.PlanOption{
			PlanId:   planId,
			PlanName: string(planName),
		})
	}
	sort.Slice(options, func(i, j int) bool {
		return options[i].PlanName < options[j].PlanName
	})
	return options
}

// --- Helpers ---

func (s *billingService) planFor(planId string) entity.PlanName {
	if plan, ok := s.config.PlanMap[planId]; ok {
		return plan
	}
	return entity.PlanUnknown
}

func (s *billingService) publish(event events.BaseEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishEvent(event); err != nil {
		s.logger.Warn("BillingService", "Event publish failed", map[string]interface{}{
			"event_type": event.EventType(),
			"error":      err.Error(),
		})
	}
}

func (s *billingService) audit(ctx context.Context, eventType, agreementId string, raw []byte, outcome entity.EventOutcome) {
	if s.auditTrail == nil {
		return
	}
	err := s.auditTrail.Record(ctx, &entity.WebhookEvent{
		Id:          uuid.New(),
		EventType:   eventType,
		AgreementId: agreementId,
		Payload:     raw,
		Outcome:     outcome,
		ReceivedAt:  time.Now(),
	})
	if err != nil {
		s.logger.Warn("BillingService", "Audit write failed", map[string]interface{}{
			"event_type": eventType,
			"error":      err.Error(),
		})
	}
}
