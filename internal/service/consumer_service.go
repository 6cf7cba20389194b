package service

import (
	"context"
	"encoding/json"
	"fmt"

	"subbridge-be/internal/pkg/logger"
	"subbridge-be/internal/pkg/mailer"
	"subbridge-be/pkg/events"
	"subbridge-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill/message"
)

// ConsumerService drains the in-process billing topic and performs the side
// effects that must stay off the request path: notification emails and
// forwarding to the NATS bus for downstream consumers.
type ConsumerService struct {
	subscriber    message.Subscriber
	natsPublisher *nats.Publisher
	emailService  mailer.IEmailService
	logger        logger.ILogger
}

func NewConsumerService(
	subscriber message.Subscriber,
	natsPublisher *nats.Publisher,
	emailService mailer.IEmailService,
	log logger.ILogger,
) *ConsumerService {
	return &ConsumerService{
		subscriber:    subscriber,
		natsPublisher: natsPublisher,
		emailService:  emailService,
		logger:        log,
	}
}

func (s *ConsumerService) Start(ctx context.Context) error {
	messages, err := s.subscriber.Subscribe(ctx, BillingTopic)
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", BillingTopic, err)
	}

	go func() {
		for msg := range messages {
			s.processMessage(ctx, msg)
		}
	}()

	s.logger.Info("ConsumerService", "Billing event consumer started", nil)
	return nil
}

func (s *ConsumerService) processMessage(ctx context.Context, msg *message.Message) {
	var event events.BaseEvent
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		s.logger.Error("ConsumerService", "Undecodable event message", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err.Error(),
		})
		// A malformed message will never decode; drop it.
		msg.Ack()
		return
	}

	switch event.Type {
	case events.TypeSubscriptionCreated:
		s.sendPendingMail(event)
	case events.TypeSubscriptionActivated, events.TypeSubscriptionClosed:
		// Forward-only events, nothing local to do.
	}

	s.forwardToBus(ctx, event)
	msg.Ack()
}

func (s *ConsumerService) sendPendingMail(event events.BaseEvent) {
	if s.emailService == nil {
		return
	}

	email, _ := event.Data["email"].(string)
	planName, _ := event.Data["plan_name"].(string)
	approveURL, _ := event.Data["approve_url"].(string)
	if email == "" || approveURL == "" {
		return
	}

	if err := s.emailService.SendAgreementPending(email, planName, approveURL); err != nil {
		s.logger.Warn("ConsumerService", "Pending-approval mail failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func (s *ConsumerService) forwardToBus(ctx context.Context, event events.BaseEvent) {
	if s.natsPublisher == nil {
		return
	}
	if err := s.natsPublisher.Publish(ctx, event); err != nil {
		s.logger.Warn("ConsumerService", "NATS forward failed", map[string]interface{}{
			"event_type": event.Type,
			"error":      err.Error(),
		})
	}
}
