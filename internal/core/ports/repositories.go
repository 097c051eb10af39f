package ports

import (
	"context"

	"clipgate/internal/core/domain"
)

// StreamSessionRepository persists stream sessions.
//
// CreateWithinLimits is the atomic conditional insert: the count
// comparisons and the insert happen under one transaction (or one lock
// for in-memory stores), so two concurrent requests for the same user
// cannot both slip under a limit.
type StreamSessionRepository interface {
	CreateWithinLimits(ctx context.Context, session *domain.StreamSession, limits domain.PlanLimits, period domain.BillingPeriod) (*domain.StreamSession, error)
	GetByID(ctx context.Context, id domain.SessionID) (*domain.StreamSession, error)
	ListByUser(ctx context.Context, userID domain.UserID) ([]*domain.StreamSession, error)
	End(ctx context.Context, id domain.SessionID) error
	CountActive(ctx context.Context, userID domain.UserID) (int, error)
	CountCreatedBetween(ctx context.Context, userID domain.UserID, period domain.BillingPeriod) (int, error)
}

// SubscriptionRepository reads the subscription snapshot and plan
// limits used by the quota gate.
type SubscriptionRepository interface {
	GetByUser(ctx context.Context, userID domain.UserID) (*domain.Subscription, error)
	GetPlanLimits(ctx context.Context, planID domain.PlanID) (domain.PlanLimits, error)
}
