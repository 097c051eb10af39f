package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"clipgate/internal/core/domain"
	"clipgate/internal/infrastructure/platform"
	"clipgate/pkg/circuitbreaker"
	apperrors "clipgate/pkg/errors"
	"clipgate/pkg/retry"

	"go.uber.org/zap"
)

type Config struct {
	APIKey         string
	APIBaseURL     string
	RequestTimeout time.Duration
}

// Client fetches video metadata from the YouTube Data API v3 with
// bounded retry and an optional circuit breaker.
type Client struct {
	cfg        Config
	httpClient *http.Client
	policy     retry.Policy
	breaker    *circuitbreaker.Breaker
	metrics    platform.Metrics
	logger     *zap.SugaredLogger
}

func NewClient(cfg Config, policy retry.Policy, breaker *circuitbreaker.Breaker, logger *zap.SugaredLogger) *Client {
	c := &Client{
		cfg:        cfg,
		httpClient: &http.Client{},
		policy:     policy,
		breaker:    breaker,
		metrics:    platform.NopMetrics{},
		logger:     logger,
	}
	c.policy.Retryable = platform.Retryable
	c.policy.OnRetry = func(attempt int, delay time.Duration, err error) {
		logger.Warnw("retrying youtube request", "attempt", attempt, "delay", delay, "error", err)
	}
	return c
}

// SetMetrics attaches the monitoring collector.
func (c *Client) SetMetrics(m platform.Metrics) {
	if m != nil {
		c.metrics = m
	}
}

type videoItem struct {
	Snippet struct {
		Title        string    `json:"title"`
		ChannelTitle string    `json:"channelTitle"`
		PublishedAt  time.Time `json:"publishedAt"`
		Thumbnails   map[string]struct {
			URL string `json:"url"`
		} `json:"thumbnails"`
	} `json:"snippet"`
	ContentDetails struct {
		Duration string `json:"duration"`
	} `json:"contentDetails"`
	Statistics struct {
		ViewCount string `json:"viewCount"`
	} `json:"statistics"`
}

// thumbnailPreference orders variants from best to worst.
var thumbnailPreference = []string{"maxres", "high", "medium", "default"}

// LookupVideo fetches a video by id. An unknown or private id yields
// Found=false without error.
func (c *Client) LookupVideo(ctx context.Context, id string) (domain.LookupResult, error) {
	if c.cfg.APIKey == "" {
		return domain.LookupResult{}, apperrors.NewConfiguration("youtube api key is not configured")
	}

	query := url.Values{
		"part": {"snippet,contentDetails,statistics"},
		"id":   {id},
		"key":  {c.cfg.APIKey},
	}

	items, err := retry.DoWithResult(ctx, c.policy, func() ([]videoItem, error) {
		reqCtx, cancel := context.WithTimeout(ctx, c.cfg.RequestTimeout)
		defer cancel()

		req, err := http.NewRequestWithContext(reqCtx, http.MethodGet,
			fmt.Sprintf("%s/videos?%s", c.cfg.APIBaseURL, query.Encode()), nil)
		if err != nil {
			return nil, fmt.Errorf("build youtube request: %w", err)
		}

		var out struct {
			Items []videoItem `json:"items"`
		}
		start := time.Now()
		err = c.send(req, &out)
		c.metrics.ObserveUpstream("youtube", outcome(err), time.Since(start))
		if err != nil {
			return nil, err
		}
		return out.Items, nil
	})
	if err != nil {
		return domain.LookupResult{}, err
	}
	if len(items) == 0 {
		return domain.LookupResult{Found: false}, nil
	}

	item := items[0]
	meta := domain.SourceMetadata{
		Title:        item.Snippet.Title,
		ChannelName:  item.Snippet.ChannelTitle,
		StartedAt:    item.Snippet.PublishedAt,
		ThumbnailURL: bestThumbnail(item),
	}
	if count, err := strconv.ParseInt(item.Statistics.ViewCount, 10, 64); err == nil {
		meta.ViewCount = count
	}
	if d, err := parseISODuration(item.ContentDetails.Duration); err == nil {
		meta.Duration = platform.FormatClock(d)
	} else {
		c.logger.Warnw("unparseable video duration", "video_id", id, "duration", item.ContentDetails.Duration)
	}

	return domain.LookupResult{Found: true, Meta: meta}, nil
}

func bestThumbnail(item videoItem) string {
	for _, key := range thumbnailPreference {
		if thumb, ok := item.Snippet.Thumbnails[key]; ok && thumb.URL != "" {
			return thumb.URL
		}
	}
	return ""
}

func (c *Client) send(req *http.Request, out interface{}) error {
	call := func() error {
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("youtube request failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return &platform.StatusError{Platform: "youtube", StatusCode: resp.StatusCode}
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode youtube response: %w", err)
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
