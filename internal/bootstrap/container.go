package bootstrap

import (
	"context"

	"subbridge-be/internal/config"
	"subbridge-be/internal/controller"
	"subbridge-be/internal/entity"
	"subbridge-be/internal/pkg/logger"
	"subbridge-be/internal/pkg/mailer"
	"subbridge-be/internal/repository/contract"
	"subbridge-be/internal/repository/implementation"
	"subbridge-be/internal/repository/memory"
	redisrepo "subbridge-be/internal/repository/redis"
	"subbridge-be/internal/service"
	"subbridge-be/pkg/nats"
	"subbridge-be/pkg/paypal"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Container wires every component of the application together.
type Container struct {
	Config *config.Config
	Logger logger.ILogger

	SessionRepository contract.SessionRepository

	SessionService  service.ISessionService
	BillingService  service.IBillingService
	ConsumerService *service.ConsumerService

	SessionController *controller.SessionController
	BillingController *controller.BillingController

	NatsPublisher *nats.Publisher
}

func NewContainer(cfg *config.Config, db *gorm.DB, log logger.ILogger) *Container {
	// Repositories
	subscriptionRepo := implementation.NewSubscriptionRepository(db)
	webhookEventRepo := implementation.NewWebhookEventRepository(db)
	sessionRepo := buildSessionRepository(cfg, log)

	// Provider client
	providerClient := paypal.NewClient(paypal.Config{
		BaseURL:  cfg.PayPal.BaseURL,
		ClientId: cfg.PayPal.ClientId,
		Secret:   cfg.PayPal.Secret,
	})

	// In-process event bus + NATS fan-out
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	publisherService := service.NewPublisherService(pubSub)

	natsPublisher, err := nats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Warn("Bootstrap", "NATS unavailable, bus forwarding disabled", map[string]interface{}{
			"url":   cfg.App.NatsURL,
			"error": err.Error(),
		})
		natsPublisher = nil
	}

	var emailService mailer.IEmailService
	if cfg.SMTP.Host != "" {
		emailService = mailer.NewEmailService(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Email, cfg.SMTP.Password, cfg.SMTP.Email)
	} else {
		log.Warn("Bootstrap", "SMTP not configured, notification mails disabled", nil)
	}

	// Services
	billingService := service.NewBillingService(
		subscriptionRepo,
		webhookEventRepo,
		providerClient,
		publisherService,
		service.BillingConfig{
			ReturnURL: cfg.App.BaseURL + "/payment-return",
			CancelURL: cfg.App.BaseURL + "/payment-cancel",
			PlanMap:   buildPlanMap(cfg),
		},
		log,
	)

	sessionService := service.NewSessionService(sessionRepo, buildTokenVerifier(cfg, log), log)
	consumerService := service.NewConsumerService(pubSub, natsPublisher, emailService, log)

	// Controllers
	secureCookies := cfg.App.Environment == "production"
	sessionController := controller.NewSessionController(
		sessionService, billingService,
		cfg.Session.CookieName, cfg.Session.TTL, secureCookies,
	)
	billingController := controller.NewBillingController(
		billingService, buildWebhookVerifier(cfg, log), cfg.App.ClientURL, log,
	)

	return &Container{
		Config:            cfg,
		Logger:            log,
		SessionRepository: sessionRepo,
		SessionService:    sessionService,
		BillingService:    billingService,
		ConsumerService:   consumerService,
		SessionController: sessionController,
		BillingController: billingController,
		NatsPublisher:     natsPublisher,
	}
}

func buildSessionRepository(cfg *config.Config, log logger.ILogger) contract.SessionRepository {
	if cfg.Session.Backend == "redis" {
		opts, err := goredis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			log.Warn("Bootstrap", "Invalid redis URL, falling back to in-memory sessions", map[string]interface{}{
				"error": err.Error(),
			})
			return memory.NewSessionRepository(cfg.Session.TTL)
		}

		client := goredis.NewClient(opts)
		if err := client.Ping(context.Background()).Err(); err != nil {
			log.Warn("Bootstrap", "Redis unreachable, falling back to in-memory sessions", map[string]interface{}{
				"error": err.Error(),
			})
			return memory.NewSessionRepository(cfg.Session.TTL)
		}

		return redisrepo.NewSessionRepository(client, cfg.Session.TTL)
	}

	return memory.NewSessionRepository(cfg.Session.TTL)
}

func buildTokenVerifier(cfg *config.Config, log logger.ILogger) service.TokenVerifier {
	if cfg.Identity.JWTSecret == "" {
		log.Warn("Bootstrap", "No identity JWT secret configured, access tokens will NOT be verified", nil)
		return service.NewNoopTokenVerifier()
	}
	return service.NewJWTTokenVerifier(cfg.Identity.JWTSecret, cfg.Identity.Audience)
}

func buildWebhookVerifier(cfg *config.Config, log logger.ILogger) service.WebhookVerifier {
	if cfg.PayPal.WebhookSecret == "" {
		log.Warn("Bootstrap", "No webhook secret configured, webhook signatures will NOT be verified", nil)
		return service.NewAllowAllWebhookVerifier()
	}
	return service.NewHMACWebhookVerifier(cfg.PayPal.WebhookSecret)
}

func buildPlanMap(cfg *config.Config) map[string]entity.PlanName {
	planMap := make(map[string]entity.PlanName)
	if cfg.PayPal.ProPlanId != "" {
		planMap[cfg.PayPal.ProPlanId] = entity.PlanPro
	}
	if cfg.PayPal.PremiumPlanId != "" {
		planMap[cfg.PayPal.PremiumPlanId] = entity.PlanPremium
	}
	return planMap
}
