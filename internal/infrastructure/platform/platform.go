// Package platform holds pieces shared by the upstream API clients.
package platform

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"clipgate/pkg/circuitbreaker"
	apperrors "clipgate/pkg/errors"
)

// StatusError reports a non-2xx answer from a platform API.
type StatusError struct {
	Platform   string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s API returned status %d", e.Platform, e.StatusCode)
}

// Retryable classifies upstream errors for the retry policy. Network
// failures, timeouts, 5xx and 429 are transient; other 4xx answers,
// missing credentials and an open breaker are not.
func Retryable(err error) bool {
	if apperrors.HasCode(err, apperrors.ErrCodeConfiguration) {
		return false
	}
	if errors.Is(err, circuitbreaker.ErrOpen) {
		return false
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		if statusErr.StatusCode >= http.StatusInternalServerError {
			return true
		}
		return statusErr.StatusCode == http.StatusTooManyRequests
	}
	return true
}

// Metrics is implemented by the Prometheus collector.
type Metrics interface {
	ObserveUpstream(platform, outcome string, duration time.Duration)
	RecordTokenRefresh(platform string)
}

// NopMetrics is used when monitoring is disabled and in tests.
type NopMetrics struct{}

func (NopMetrics) ObserveUpstream(string, string, time.Duration) {}
func (NopMetrics) RecordTokenRefresh(string)                     {}

// FormatClock renders a duration as H:MM:SS, or M:SS when under an
// hour ("1:02:03", "5:09", "0:45").
func FormatClock(d time.Duration) string {
	total := int(d.Seconds())
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
