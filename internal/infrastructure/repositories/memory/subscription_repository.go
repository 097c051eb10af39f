package memory

import (
	"context"
	"sync"

	"clipgate/internal/core/domain"
)

// SubscriptionRepository serves subscriptions and plans from memory.
// Seed it at startup (or in tests) with Put calls.
type SubscriptionRepository struct {
	mu            sync.RWMutex
	subscriptions map[domain.UserID]*domain.Subscription
	plans         map[domain.PlanID]domain.PlanLimits
}

func NewSubscriptionRepository() *SubscriptionRepository {
	return &SubscriptionRepository{
		subscriptions: make(map[domain.UserID]*domain.Subscription),
		plans:         make(map[domain.PlanID]domain.PlanLimits),
	}
}

func (r *SubscriptionRepository) PutSubscription(sub *domain.Subscription) {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *sub
	r.subscriptions[sub.UserID] = &copied
}

func (r *SubscriptionRepository) PutPlan(id domain.PlanID, limits domain.PlanLimits) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.plans[id] = limits
}

func (r *SubscriptionRepository) GetByUser(_ context.Context, userID domain.UserID) (*domain.Subscription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sub, ok := r.subscriptions[userID]
	if !ok {
		return nil, domain.ErrSubscriptionNotFound
	}
	copied := *sub
	return &copied, nil
}

func (r *SubscriptionRepository) GetPlanLimits(_ context.Context, planID domain.PlanID) (domain.PlanLimits, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	limits, ok := r.plans[planID]
	if !ok {
		return domain.PlanLimits{}, domain.ErrPlanNotFound
	}
	return limits, nil
}
