package domain

import "errors"

var (
	ErrSessionNotFound      = errors.New("stream session not found")
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrPlanNotFound         = errors.New("plan not found")

	// Quota gate rejections. The distinction matters to callers: the
	// response body names which limit was hit.
	ErrActiveStreamLimit = errors.New("active stream limit reached")
	ErrStreamLimit       = errors.New("created stream limit reached")
)
