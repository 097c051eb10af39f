// Package memory keeps repository state in process. Used when no
// database is configured and as the test double for the services.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"clipgate/internal/core/domain"
)

// StreamSessionRepository stores sessions in a map guarded by a mutex.
type StreamSessionRepository struct {
	mu       sync.Mutex
	sessions map[domain.SessionID]*domain.StreamSession
	now      func() time.Time
}

func NewStreamSessionRepository() *StreamSessionRepository {
	return &StreamSessionRepository{
		sessions: make(map[domain.SessionID]*domain.StreamSession),
		now:      time.Now,
	}
}

// CreateWithinLimits counts and inserts under one lock, mirroring the
// transactional guarantee of the SQL implementation.
func (r *StreamSessionRepository) CreateWithinLimits(_ context.Context, session *domain.StreamSession, limits domain.PlanLimits, period domain.BillingPeriod) (*domain.StreamSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	active, created := 0, 0
	for _, s := range r.sessions {
		if s.UserID != session.UserID {
			continue
		}
		if s.Active {
			active++
		}
		if period.Contains(s.CreatedAt) {
			created++
		}
	}
	// Strictly-greater-than, matching the SQL implementation: a user
	// at exactly the limit is still admitted for one more.
	if active > limits.MaxActiveStreams {
		return nil, domain.ErrActiveStreamLimit
	}
	if created > limits.MaxStreams {
		return nil, domain.ErrStreamLimit
	}

	stored := *session
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = r.now()
	}
	r.sessions[stored.ID] = &stored

	result := stored
	return &result, nil
}

func (r *StreamSessionRepository) GetByID(_ context.Context, id domain.SessionID) (*domain.StreamSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	copied := *session
	return &copied, nil
}

func (r *StreamSessionRepository) ListByUser(_ context.Context, userID domain.UserID) ([]*domain.StreamSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var sessions []*domain.StreamSession
	for _, s := range r.sessions {
		if s.UserID == userID {
			copied := *s
			sessions = append(sessions, &copied)
		}
	}
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].CreatedAt.After(sessions[j].CreatedAt)
	})
	return sessions, nil
}

func (r *StreamSessionRepository) End(_ context.Context, id domain.SessionID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[id]
	if !ok {
		return domain.ErrSessionNotFound
	}
	session.Active = false
	session.IsLive = false
	return nil
}

func (r *StreamSessionRepository) CountActive(_ context.Context, userID domain.UserID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for _, s := range r.sessions {
		if s.UserID == userID && s.Active {
			count++
		}
	}
	return count, nil
}

func (r *StreamSessionRepository) CountCreatedBetween(_ context.Context, userID domain.UserID, period domain.BillingPeriod) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for _, s := range r.sessions {
		if s.UserID == userID && period.Contains(s.CreatedAt) {
			count++
		}
	}
	return count, nil
}
