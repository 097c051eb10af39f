package domain

import "time"

type PlanID string

// Subscription is the read-only view of a user's plan membership used
// for quota decisions.
type Subscription struct {
	UserID             UserID
	PlanID             PlanID
	CurrentPeriodStart time.Time
	CurrentPeriodEnd   time.Time
}

// Period returns the current billing window.
func (s *Subscription) Period() BillingPeriod {
	return BillingPeriod{Start: s.CurrentPeriodStart, End: s.CurrentPeriodEnd}
}

// BillingPeriod scopes the "created streams" quota count.
type BillingPeriod struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the period, inclusive.
func (p BillingPeriod) Contains(t time.Time) bool {
	return !t.Before(p.Start) && !t.After(p.End)
}

// PlanLimits are the per-plan usage ceilings.
type PlanLimits struct {
	MaxActiveStreams         int
	MaxStreams               int
	MaxTotalSecondsProcessed int
}

// UsageSummary reports current usage against plan limits.
type UsageSummary struct {
	UserID        UserID    `json:"user_id"`
	ActiveStreams int       `json:"active_streams"`
	PeriodStreams int       `json:"period_streams"`
	MaxActive     int       `json:"max_active_streams"`
	MaxStreams    int       `json:"max_streams"`
	PeriodStart   time.Time `json:"period_start"`
	PeriodEnd     time.Time `json:"period_end"`
	PlanID        PlanID    `json:"plan_id"`
}
