package platform

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"clipgate/pkg/circuitbreaker"
	apperrors "clipgate/pkg/errors"
)

func TestRetryable(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"network error", errors.New("dial tcp: connection refused"), true},
		{"server error", &StatusError{Platform: "twitch", StatusCode: 502}, true},
		{"rate limited", &StatusError{Platform: "twitch", StatusCode: 429}, true},
		{"unauthorized", &StatusError{Platform: "twitch", StatusCode: 401}, false},
		{"bad request", &StatusError{Platform: "youtube", StatusCode: 400}, false},
		{"missing credentials", apperrors.NewConfiguration("no client id"), false},
		{"wrapped config error", fmt.Errorf("token: %w", apperrors.NewConfiguration("no key")), false},
		{"breaker open", fmt.Errorf("call: %w", circuitbreaker.ErrOpen), false},
	}

	for _, tc := range cases {
		if got := Retryable(tc.err); got != tc.want {
			t.Errorf("%s: Retryable = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestFormatClock(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want string
	}{
		{45 * time.Second, "0:45"},
		{5*time.Minute + 9*time.Second, "5:09"},
		{time.Hour + 2*time.Minute + 3*time.Second, "1:02:03"},
		{0, "0:00"},
		{10 * time.Hour, "10:00:00"},
	}

	for _, tc := range cases {
		if got := FormatClock(tc.d); got != tc.want {
			t.Errorf("FormatClock(%v) = %q, want %q", tc.d, got, tc.want)
		}
	}
}
