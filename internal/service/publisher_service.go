package service

import (
	"encoding/json"
	"fmt"

	"subbridge-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

// BillingTopic is the in-process topic billing lifecycle events flow through
// before side effects (emails, the NATS bus) happen off the request path.
const BillingTopic = "billing_events"

type IPublisherService interface {
	PublishEvent(event events.Event) error
}

type publisherService struct {
	publisher message.Publisher
}

func NewPublisherService(publisher message.Publisher) IPublisherService {
	return &publisherService{publisher: publisher}
}

func (s *publisherService) PublishEvent(event events.Event) error {
	payload := events.BaseEvent{
		Type:       event.EventType(),
		Data:       event.Payload(),
		OccurredAt: event.Timestamp(),
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", event.EventType(), err)
	}

	msg := message.NewMessage(watermill.NewUUID(), data)
	return s.publisher.Publish(BillingTopic, msg)
}
