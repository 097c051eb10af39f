package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

var errTransient = errors.New("transient failure")

func fastPolicy() Policy {
	return Policy{
		MaxAttempts:  3,
		InitialDelay: 5 * time.Millisecond,
		MaxDelay:     20 * time.Millisecond,
		Multiplier:   2.0,
	}
}

func TestDo_SuccessOnFirstAttempt(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), fastPolicy(), func() error {
		attempts++
		return nil
	})

	if err != nil {
		t.Errorf("expected no error, got: %v", err)
	}
	if attempts != 1 {
		t.Errorf("expected 1 attempt, got: %d", attempts)
	}
}

func TestDo_SuccessAfterRetries(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), fastPolicy(), func() error {
		attempts++
		if attempts < 3 {
			return errTransient
		}
		return nil
	})

	if err != nil {
		t.Errorf("expected no error, got: %v", err)
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got: %d", attempts)
	}
}

func TestDo_AttemptsExhausted(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), fastPolicy(), func() error {
		attempts++
		return errTransient
	})

	if err == nil {
		t.Fatal("expected error after exhausting attempts, got nil")
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got: %d", attempts)
	}
	if !errors.Is(err, errTransient) {
		t.Errorf("expected original error in chain, got: %v", err)
	}
}

func TestDo_NonRetryableStopsImmediately(t *testing.T) {
	errFatal := errors.New("bad credentials")
	p := fastPolicy()
	p.Retryable = func(err error) bool { return !errors.Is(err, errFatal) }

	attempts := 0
	err := Do(context.Background(), p, func() error {
		attempts++
		return errFatal
	})

	if !errors.Is(err, errFatal) {
		t.Errorf("expected fatal error, got: %v", err)
	}
	if attempts != 1 {
		t.Errorf("expected 1 attempt, got: %d", attempts)
	}
}

func TestDo_ContextCancelledDuringBackoff(t *testing.T) {
	p := fastPolicy()
	p.InitialDelay = time.Second

	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err := Do(ctx, p, func() error {
		attempts++
		return errTransient
	})

	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got: %v", err)
	}
	if attempts != 1 {
		t.Errorf("expected 1 attempt before cancellation, got: %d", attempts)
	}
}

func TestDoWithResult_ReturnsValue(t *testing.T) {
	attempts := 0
	got, err := DoWithResult(context.Background(), fastPolicy(), func() (string, error) {
		attempts++
		if attempts < 2 {
			return "", errTransient
		}
		return "ok", nil
	})

	if err != nil {
		t.Errorf("expected no error, got: %v", err)
	}
	if got != "ok" {
		t.Errorf("expected %q, got %q", "ok", got)
	}
}

func TestDelay_BackoffSequence(t *testing.T) {
	p := Policy{
		MaxAttempts:  3,
		InitialDelay: time.Second,
		MaxDelay:     8 * time.Second,
		Multiplier:   2.0,
	}

	cases := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 1 * time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
		{4, 8 * time.Second}, // capped
		{10, 8 * time.Second},
	}

	for _, tc := range cases {
		if got := p.Delay(tc.attempt); got != tc.want {
			t.Errorf("Delay(%d) = %v, want %v", tc.attempt, got, tc.want)
		}
	}
}

func TestDo_OnRetryObservesDelays(t *testing.T) {
	p := fastPolicy()
	var delays []time.Duration
	p.OnRetry = func(attempt int, delay time.Duration, err error) {
		delays = append(delays, delay)
	}

	_ = Do(context.Background(), p, func() error { return errTransient })

	want := []time.Duration{5 * time.Millisecond, 10 * time.Millisecond}
	if len(delays) != len(want) {
		t.Fatalf("expected %d backoff sleeps, got %d", len(want), len(delays))
	}
	for i := range want {
		if delays[i] != want[i] {
			t.Errorf("backoff %d = %v, want %v", i, delays[i], want[i])
		}
	}
}
