package twitch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"clipgate/internal/core/domain"
	"clipgate/internal/infrastructure/platform"
	"clipgate/pkg/circuitbreaker"
	"clipgate/pkg/retry"

	"go.uber.org/zap"
)

// Thumbnail URLs come back templated; Helix streams use {width}x{height},
// VODs use %{width}x%{height}.
var thumbnailReplacer = strings.NewReplacer(
	"%{width}", "640",
	"%{height}", "360",
	"{width}", "640",
	"{height}", "360",
)

type Config struct {
	ClientID       string
	ClientSecret   string
	TokenURL       string
	APIBaseURL     string
	TokenTimeout   time.Duration
	RequestTimeout time.Duration
}

// Client looks up live streams and VODs on the Helix API with cached
// app-token auth, bounded retry and an optional circuit breaker.
type Client struct {
	cfg        Config
	httpClient *http.Client
	tokens     *AppTokenSource
	policy     retry.Policy
	breaker    *circuitbreaker.Breaker
	metrics    platform.Metrics
	logger     *zap.SugaredLogger
}

func NewClient(cfg Config, policy retry.Policy, breaker *circuitbreaker.Breaker, logger *zap.SugaredLogger) *Client {
	c := &Client{
		cfg:        cfg,
		httpClient: &http.Client{},
		tokens:     NewAppTokenSource(cfg.ClientID, cfg.ClientSecret, cfg.TokenURL, cfg.TokenTimeout, logger),
		policy:     policy,
		breaker:    breaker,
		metrics:    platform.NopMetrics{},
		logger:     logger,
	}
	c.policy.Retryable = platform.Retryable
	c.policy.OnRetry = func(attempt int, delay time.Duration, err error) {
		logger.Warnw("retrying twitch request", "attempt", attempt, "delay", delay, "error", err)
	}
	return c
}

// TokenSource exposes the app token source for wiring a shared store.
func (c *Client) TokenSource() *AppTokenSource {
	return c.tokens
}

// SetMetrics attaches the monitoring collector.
func (c *Client) SetMetrics(m platform.Metrics) {
	if m != nil {
		c.metrics = m
		c.tokens.SetMetrics(m)
	}
}

type streamData struct {
	ID           string    `json:"id"`
	UserName     string    `json:"user_name"`
	Title        string    `json:"title"`
	ViewerCount  int       `json:"viewer_count"`
	StartedAt    time.Time `json:"started_at"`
	ThumbnailURL string    `json:"thumbnail_url"`
}

type videoData struct {
	ID           string    `json:"id"`
	UserName     string    `json:"user_name"`
	Title        string    `json:"title"`
	CreatedAt    time.Time `json:"created_at"`
	ViewCount    int64     `json:"view_count"`
	Duration     string    `json:"duration"`
	ThumbnailURL string    `json:"thumbnail_url"`
}

// LookupStream fetches the live stream for a login name. An offline
// channel yields Found=false without error.
func (c *Client) LookupStream(ctx context.Context, login string) (domain.LookupResult, error) {
	data, err := c.helixGet(ctx, "streams", url.Values{"user_login": {login}})
	if err != nil {
		return domain.LookupResult{}, err
	}
	if len(data) == 0 {
		return domain.LookupResult{Found: false}, nil
	}

	var stream streamData
	if err := json.Unmarshal(data[0], &stream); err != nil {
		return domain.LookupResult{}, fmt.Errorf("parse stream data: %w", err)
	}
	return domain.LookupResult{
		Found: true,
		Meta: domain.SourceMetadata{
			Title:        stream.Title,
			ChannelName:  stream.UserName,
			ThumbnailURL: thumbnailReplacer.Replace(stream.ThumbnailURL),
			StartedAt:    stream.StartedAt,
			ViewerCount:  stream.ViewerCount,
		},
	}, nil
}

// LookupVideo fetches a VOD by id. An unknown id yields Found=false
// without error.
func (c *Client) LookupVideo(ctx context.Context, id string) (domain.LookupResult, error) {
	data, err := c.helixGet(ctx, "videos", url.Values{"id": {id}})
	if err != nil {
		return domain.LookupResult{}, err
	}
	if len(data) == 0 {
		return domain.LookupResult{Found: false}, nil
	}

	var video videoData
	if err := json.Unmarshal(data[0], &video); err != nil {
		return domain.LookupResult{}, fmt.Errorf("parse video data: %w", err)
	}

	meta := domain.SourceMetadata{
		Title:        video.Title,
		ChannelName:  video.UserName,
		ThumbnailURL: thumbnailReplacer.Replace(video.ThumbnailURL),
		StartedAt:    video.CreatedAt,
		ViewCount:    video.ViewCount,
	}
	// Helix reports durations like "3h8m33s".
	if d, err := time.ParseDuration(video.Duration); err == nil {
		meta.Duration = platform.FormatClock(d)
	}

	return domain.LookupResult{Found: true, Meta: meta}, nil
}

// helixGet performs a Helix GET under the retry policy. Each attempt
// acquires a token, so an invalidated token heals on the next attempt.
func (c *Client) helixGet(ctx context.Context, endpoint string, query url.Values) ([]json.RawMessage, error) {
	return retry.DoWithResult(ctx, c.policy, func() ([]json.RawMessage, error) {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return nil, err
		}

		reqCtx, cancel := context.WithTimeout(ctx, c.cfg.RequestTimeout)
		defer cancel()

		req, err := http.NewRequestWithContext(reqCtx, http.MethodGet,
			fmt.Sprintf("%s/%s?%s", c.cfg.APIBaseURL, endpoint, query.Encode()), nil)
		if err != nil {
			return nil, fmt.Errorf("build helix request: %w", err)
		}
		req.Header.Set("Client-ID", c.cfg.ClientID)
		req.Header.Set("Authorization", "Bearer "+token)

		var out struct {
			Data []json.RawMessage `json:"data"`
		}
		start := time.Now()
		err = c.send(req, &out)
		c.metrics.ObserveUpstream("twitch", outcome(err), time.Since(start))
		if err != nil {
			return nil, err
		}
		return out.Data, nil
	})
}

func (c *Client) send(req *http.Request, out interface{}) error {
	call := func() error {
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("twitch request failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusUnauthorized {
			c.tokens.Invalidate()
		}
		if resp.StatusCode != http.StatusOK {
			return &platform.StatusError{Platform: "twitch", StatusCode: resp.StatusCode}
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode twitch response: %w", err)
		}
		return nil
	}

	if c.breaker != nil {
		return c.breaker.Do(call)
	}
	return call()
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
