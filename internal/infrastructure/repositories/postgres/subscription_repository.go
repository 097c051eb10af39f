package postgres

import (
	"context"
	"errors"
	"fmt"

	"clipgate/internal/core/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SubscriptionRepository reads subscriptions and plan limits.
type SubscriptionRepository struct {
	pool *pgxpool.Pool
}

func NewSubscriptionRepository(pool *pgxpool.Pool) *SubscriptionRepository {
	return &SubscriptionRepository{pool: pool}
}

func (r *SubscriptionRepository) GetByUser(ctx context.Context, userID domain.UserID) (*domain.Subscription, error) {
	sub := &domain.Subscription{}
	err := r.pool.QueryRow(ctx, `
		SELECT user_id, plan_id, current_period_start, current_period_end
		FROM subscriptions WHERE user_id = $1`,
		string(userID)).Scan(&sub.UserID, &sub.PlanID, &sub.CurrentPeriodStart, &sub.CurrentPeriodEnd)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrSubscriptionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query subscription: %w", err)
	}
	return sub, nil
}

func (r *SubscriptionRepository) GetPlanLimits(ctx context.Context, planID domain.PlanID) (domain.PlanLimits, error) {
	var limits domain.PlanLimits
	err := r.pool.QueryRow(ctx, `
		SELECT max_active_streams, max_streams, max_total_seconds_processed
		FROM plans WHERE id = $1`,
		string(planID)).Scan(&limits.MaxActiveStreams, &limits.MaxStreams, &limits.MaxTotalSecondsProcessed)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.PlanLimits{}, domain.ErrPlanNotFound
	}
	if err != nil {
		return domain.PlanLimits{}, fmt.Errorf("query plan: %w", err)
	}
	return limits, nil
}
