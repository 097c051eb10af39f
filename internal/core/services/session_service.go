package services

import (
	"context"
	"time"

	"clipgate/internal/core/domain"
	"clipgate/internal/core/ports"

	"go.uber.org/zap"
)

// SessionService covers the read and lifecycle operations on stored
// sessions.
type SessionService struct {
	sessions ports.StreamSessionRepository
	events   ports.EventPublisher
	metrics  ports.MetricsRecorder
	logger   *zap.SugaredLogger
	now      func() time.Time
}

var _ ports.SessionService = (*SessionService)(nil)

func NewSessionService(sessions ports.StreamSessionRepository, events ports.EventPublisher, metrics ports.MetricsRecorder, logger *zap.SugaredLogger) *SessionService {
	return &SessionService{
		sessions: sessions,
		events:   events,
		metrics:  metrics,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *SessionService) Get(ctx context.Context, id domain.SessionID) (*domain.StreamSession, error) {
	return s.sessions.GetByID(ctx, id)
}

func (s *SessionService) ListByUser(ctx context.Context, userID domain.UserID) ([]*domain.StreamSession, error) {
	return s.sessions.ListByUser(ctx, userID)
}

// End deactivates the session. Ending an already ended session is a
// no-op at the storage layer and still publishes no duplicate event.
func (s *SessionService) End(ctx context.Context, id domain.SessionID) error {
	session, err := s.sessions.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !session.Active {
		return nil
	}

	if err := s.sessions.End(ctx, id); err != nil {
		return err
	}

	s.metrics.SessionEnded()
	s.events.Publish(domain.SessionEvent{
		Type:      domain.EventSessionEnded,
		SessionID: id,
		UserID:    session.UserID,
		At:        s.now(),
	})
	return nil
}
