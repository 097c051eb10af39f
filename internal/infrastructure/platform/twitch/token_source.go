package twitch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"clipgate/internal/infrastructure/platform"
	apperrors "clipgate/pkg/errors"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Tokens are treated as expired one minute early so a token never dies
// mid-request.
const tokenExpirySafetyMargin = 60 * time.Second

// TokenStore is an optional shared slot for the app token, so multiple
// replicas reuse one client-credentials grant.
type TokenStore interface {
	Load(ctx context.Context) (token string, expiresAt time.Time, ok bool)
	Save(ctx context.Context, token string, expiresAt time.Time) error
}

// AppTokenSource caches a single Twitch app access token and refreshes
// it with a client-credentials grant when missing or expired.
// Concurrent refreshes collapse into one in-flight grant.
type AppTokenSource struct {
	clientID     string
	clientSecret string
	tokenURL     string
	timeout      time.Duration

	httpClient *http.Client
	store      TokenStore
	metrics    platform.Metrics
	logger     *zap.SugaredLogger
	now        func() time.Time

	mu        sync.Mutex
	token     string
	expiresAt time.Time
	group     singleflight.Group
}

func NewAppTokenSource(clientID, clientSecret, tokenURL string, timeout time.Duration, logger *zap.SugaredLogger) *AppTokenSource {
	return &AppTokenSource{
		clientID:     clientID,
		clientSecret: clientSecret,
		tokenURL:     tokenURL,
		timeout:      timeout,
		httpClient:   &http.Client{},
		metrics:      platform.NopMetrics{},
		logger:       logger,
		now:          time.Now,
	}
}

// SetStore attaches a shared token slot (for example Redis-backed).
func (s *AppTokenSource) SetStore(store TokenStore) {
	s.store = store
}

// SetMetrics attaches the monitoring collector.
func (s *AppTokenSource) SetMetrics(m platform.Metrics) {
	if m != nil {
		s.metrics = m
	}
}

// Token returns a valid app access token, reusing the cached one when
// it has not expired.
func (s *AppTokenSource) Token(ctx context.Context) (string, error) {
	if token, ok := s.cached(); ok {
		return token, nil
	}

	v, err, _ := s.group.Do("app_token", func() (interface{}, error) {
		// A concurrent caller may have refreshed while we waited.
		if token, ok := s.cached(); ok {
			return token, nil
		}
		if s.store != nil {
			if token, expiresAt, ok := s.store.Load(ctx); ok && s.now().Before(expiresAt) {
				s.setSlot(token, expiresAt)
				return token, nil
			}
		}
		return s.grant(ctx)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// Invalidate drops the cached token so the next call re-grants. Called
// when the API answers 401 with a token that looked valid locally.
func (s *AppTokenSource) Invalidate() {
	s.mu.Lock()
	s.token = ""
	s.expiresAt = time.Time{}
	s.mu.Unlock()
}

func (s *AppTokenSource) cached() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token != "" && s.now().Before(s.expiresAt) {
		return s.token, true
	}
	return "", false
}

func (s *AppTokenSource) setSlot(token string, expiresAt time.Time) {
	s.mu.Lock()
	s.token = token
	s.expiresAt = expiresAt
	s.mu.Unlock()
}

func (s *AppTokenSource) grant(ctx context.Context) (string, error) {
	if s.clientID == "" || s.clientSecret == "" {
		return "", apperrors.NewConfiguration("twitch client credentials are not configured")
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	form := url.Values{
		"client_id":     {s.clientID},
		"client_secret": {s.clientSecret},
		"grant_type":    {"client_credentials"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &platform.StatusError{Platform: "twitch", StatusCode: resp.StatusCode}
	}

	var body struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if body.AccessToken == "" {
		return "", fmt.Errorf("token response missing access_token")
	}

	expiresAt := s.now().Add(time.Duration(body.ExpiresIn)*time.Second - tokenExpirySafetyMargin)
	s.setSlot(body.AccessToken, expiresAt)
	s.metrics.RecordTokenRefresh("twitch")

	if s.store != nil {
		if err := s.store.Save(ctx, body.AccessToken, expiresAt); err != nil {
			s.logger.Warnw("failed to persist app token to shared store", "error", err)
		}
	}

	return body.AccessToken, nil
}
