package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"subbridge-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEmailService struct {
	mu    sync.Mutex
	calls []string
}

func (f *fakeEmailService) SendAgreementPending(toEmail, planName, approveURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, toEmail)
	return nil
}

func (f *fakeEmailService) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func TestConsumer_SendsPendingMailOnSubscriptionCreated(t *testing.T) {
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer pubSub.Close()

	emails := &fakeEmailService{}
	consumer := NewConsumerService(pubSub, nil, emails, nopLogger{})
	require.NoError(t, consumer.Start(context.Background()))

	publisher := NewPublisherService(pubSub)
	require.NoError(t, publisher.PublishEvent(events.BaseEvent{
		Type: events.TypeSubscriptionCreated,
		Data: map[string]interface{}{
			"agreement_id": "I-ABC",
			"email":        "u@example.com",
			"plan_name":    "pro",
			"approve_url":  "https://provider.example/approve",
		},
		OccurredAt: time.Now(),
	}))

	assert.Eventually(t, func() bool {
		return emails.callCount() == 1
	}, time.Second, 10*time.Millisecond)
}

func TestConsumer_IgnoresEventsWithoutMailData(t *testing.T) {
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer pubSub.Close()

	emails := &fakeEmailService{}
	consumer := NewConsumerService(pubSub, nil, emails, nopLogger{})
	require.NoError(t, consumer.Start(context.Background()))

	publisher := NewPublisherService(pubSub)
	require.NoError(t, publisher.PublishEvent(events.BaseEvent{
		Type:       events.TypeSubscriptionActivated,
		Data:       map[string]interface{}{"agreement_id": "I-ABC"},
		OccurredAt: time.Now(),
	}))

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 0, emails.callCount())
}
