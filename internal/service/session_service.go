package service

import (
	"context"
	"fmt"
	"time"

	"subbridge-be/internal/dto"
	"subbridge-be/internal/pkg/logger"
	"subbridge-be/internal/repository/contract"
	"subbridge-be/pkg/store"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// ISessionService bridges identity-provider authentication into server-side
// sessions. The client authenticates with the provider directly and hands us
// the result; we verify it and mint an opaque session id.
type ISessionService interface {
	Bridge(ctx context.Context, req *dto.BridgeSessionRequest) (*store.Session, error)
	Current(ctx context.Context, sessionId string) (*store.Session, error)
	Logout(ctx context.Context, sessionId string) error
}

type sessionService struct {
	sessions contract.SessionRepository
	verifier TokenVerifier
	logger   logger.ILogger
}

func NewSessionService(
	sessions contract.SessionRepository,
	verifier TokenVerifier,
	log logger.ILogger,
) ISessionService {
	return &sessionService{
		sessions: sessions,
		verifier: verifier,
		logger:   log,
	}
}

func (s *sessionService) Bridge(ctx context.Context, req *dto.BridgeSessionRequest) (*store.Session, error) {
	if err := s.verifier.Verify(req.AccessToken, req.User); err != nil {
		s.logger.Warn("SessionService", "Rejected session bridge", map[string]interface{}{
			"user_id": req.User.Id,
			"error":   err.Error(),
		})
		return nil, fiber.NewError(fiber.StatusUnauthorized, "Access token rejected")
	}

	session := &store.Session{
		Id:          uuid.NewString(),
		UserId:      req.User.Id,
		Email:       req.User.Email,
		Audience:    req.User.Audience,
		AccessToken: req.AccessToken,
		CreatedAt:   time.Now(),
	}

	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	s.logger.Info("SessionService", "Session bridged", map[string]interface{}{
		"user_id": session.UserId,
	})

	return session, nil
}

func (s *sessionService) Current(ctx context.Context, sessionId string) (*store.Session, error) {
	return s.sessions.Get(ctx, sessionId)
}

func (s *sessionService) Logout(ctx context.Context, sessionId string) error {
	// Deleting an already-gone session is a successful logout.
	if err := s.sessions.Delete(ctx, sessionId); err != nil {
		s.logger.Warn("SessionService", "Session delete failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
	return nil
}
