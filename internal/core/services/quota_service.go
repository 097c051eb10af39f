package services

import (
	"context"
	"fmt"

	"clipgate/internal/core/domain"
	"clipgate/internal/core/ports"
	"clipgate/pkg/cache"

	"go.uber.org/zap"
)

// QuotaService gates admissions against the user's plan limits. Usage
// counts are read fresh on every call; only plan limits are cached,
// since plans change rarely.
type QuotaService struct {
	sessions      ports.StreamSessionRepository
	subscriptions ports.SubscriptionRepository
	planCache     *cache.Cache[domain.PlanLimits]
	logger        *zap.SugaredLogger
}

var _ ports.QuotaService = (*QuotaService)(nil)

func NewQuotaService(sessions ports.StreamSessionRepository, subscriptions ports.SubscriptionRepository, planCache *cache.Cache[domain.PlanLimits], logger *zap.SugaredLogger) *QuotaService {
	return &QuotaService{
		sessions:      sessions,
		subscriptions: subscriptions,
		planCache:     planCache,
		logger:        logger,
	}
}

// Check admits the request unless a count already exceeds its limit.
// The comparison is strictly-greater-than, so a user at exactly the
// limit is still admitted for one more. The final word belongs to the
// conditional insert; this pre-check exists to reject early without
// touching the platforms.
func (s *QuotaService) Check(ctx context.Context, userID domain.UserID) error {
	limits, period, err := s.Limits(ctx, userID)
	if err != nil {
		return err
	}

	active, err := s.sessions.CountActive(ctx, userID)
	if err != nil {
		return fmt.Errorf("count active sessions: %w", err)
	}
	if active > limits.MaxActiveStreams {
		return domain.ErrActiveStreamLimit
	}

	created, err := s.sessions.CountCreatedBetween(ctx, userID, period)
	if err != nil {
		return fmt.Errorf("count period sessions: %w", err)
	}
	if created > limits.MaxStreams {
		return domain.ErrStreamLimit
	}

	return nil
}

// Limits resolves the user's plan limits and current billing period.
func (s *QuotaService) Limits(ctx context.Context, userID domain.UserID) (domain.PlanLimits, domain.BillingPeriod, error) {
	sub, err := s.subscriptions.GetByUser(ctx, userID)
	if err != nil {
		return domain.PlanLimits{}, domain.BillingPeriod{}, err
	}

	limits, err := s.planCache.GetOrLoad(ctx, string(sub.PlanID), func(ctx context.Context) (domain.PlanLimits, error) {
		return s.subscriptions.GetPlanLimits(ctx, sub.PlanID)
	})
	if err != nil {
		return domain.PlanLimits{}, domain.BillingPeriod{}, err
	}

	return limits, sub.Period(), nil
}

// Usage reports current counts against the plan ceilings.
func (s *QuotaService) Usage(ctx context.Context, userID domain.UserID) (*domain.UsageSummary, error) {
	sub, err := s.subscriptions.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	limits, err := s.planCache.GetOrLoad(ctx, string(sub.PlanID), func(ctx context.Context) (domain.PlanLimits, error) {
		return s.subscriptions.GetPlanLimits(ctx, sub.PlanID)
	})
	if err != nil {
		return nil, err
	}

	active, err := s.sessions.CountActive(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("count active sessions: %w", err)
	}
	created, err := s.sessions.CountCreatedBetween(ctx, userID, sub.Period())
	if err != nil {
		return nil, fmt.Errorf("count period sessions: %w", err)
	}

	return &domain.UsageSummary{
		UserID:        userID,
		ActiveStreams: active,
		PeriodStreams: created,
		MaxActive:     limits.MaxActiveStreams,
		MaxStreams:    limits.MaxStreams,
		PeriodStart:   sub.CurrentPeriodStart,
		PeriodEnd:     sub.CurrentPeriodEnd,
		PlanID:        sub.PlanID,
	}, nil
}
