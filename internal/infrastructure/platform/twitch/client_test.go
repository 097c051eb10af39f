package twitch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"clipgate/pkg/retry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func fastPolicy() retry.Policy {
	p := retry.Default()
	p.InitialDelay = time.Millisecond
	p.MaxDelay = 5 * time.Millisecond
	return p
}

// newTestClient wires a client against a handler serving both the token
// and the Helix endpoints.
func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := Config{
		ClientID:       "cid",
		ClientSecret:   "secret",
		TokenURL:       srv.URL + "/oauth2/token",
		APIBaseURL:     srv.URL + "/helix",
		TokenTimeout:   15 * time.Second,
		RequestTimeout: 10 * time.Second,
	}
	return NewClient(cfg, fastPolicy(), nil, zap.NewNop().Sugar()), srv
}

func serveToken(w http.ResponseWriter) {
	json.NewEncoder(w).Encode(map[string]interface{}{
		"access_token": "tok-abc",
		"expires_in":   3600,
	})
}

func TestLookupStreamLive(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth2/token", func(w http.ResponseWriter, r *http.Request) { serveToken(w) })
	mux.HandleFunc("/helix/streams", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "cid", r.Header.Get("Client-ID"))
		assert.Equal(t, "Bearer tok-abc", r.Header.Get("Authorization"))
		assert.Equal(t, "somecaster", r.URL.Query().Get("user_login"))
		w.Write([]byte(`{"data":[{
			"id":"123",
			"user_name":"SomeCaster",
			"title":"speedrun attempts",
			"viewer_count":4821,
			"started_at":"2026-08-30T18:04:05Z",
			"thumbnail_url":"https://static-cdn.jtvnw.net/previews-ttv/live_user_somecaster-{width}x{height}.jpg"
		}]}`))
	})

	client, _ := newTestClient(t, mux)

	res, err := client.LookupStream(context.Background(), "somecaster")
	require.NoError(t, err)
	require.True(t, res.Found)
	assert.Equal(t, "speedrun attempts", res.Meta.Title)
	assert.Equal(t, "SomeCaster", res.Meta.ChannelName)
	assert.Equal(t, 4821, res.Meta.ViewerCount)
	assert.Equal(t, "https://static-cdn.jtvnw.net/previews-ttv/live_user_somecaster-640x360.jpg", res.Meta.ThumbnailURL)
	assert.Equal(t, time.Date(2026, 8, 30, 18, 4, 5, 0, time.UTC), res.Meta.StartedAt)
}

func TestLookupStreamOffline(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth2/token", func(w http.ResponseWriter, r *http.Request) { serveToken(w) })
	mux.HandleFunc("/helix/streams", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[]}`))
	})

	client, _ := newTestClient(t, mux)

	res, err := client.LookupStream(context.Background(), "sleepycaster")
	require.NoError(t, err)
	assert.False(t, res.Found)
}

func TestLookupVideo(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth2/token", func(w http.ResponseWriter, r *http.Request) { serveToken(w) })
	mux.HandleFunc("/helix/videos", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1122334455", r.URL.Query().Get("id"))
		w.Write([]byte(`{"data":[{
			"id":"1122334455",
			"user_name":"SomeCaster",
			"title":"yesterday's run",
			"created_at":"2026-08-29T10:00:00Z",
			"view_count":9001,
			"duration":"1h2m3s",
			"thumbnail_url":"https://static-cdn.jtvnw.net/cf_vods/thumb-%{width}x%{height}.jpg"
		}]}`))
	})

	client, _ := newTestClient(t, mux)

	res, err := client.LookupVideo(context.Background(), "1122334455")
	require.NoError(t, err)
	require.True(t, res.Found)
	assert.Equal(t, "yesterday's run", res.Meta.Title)
	assert.Equal(t, int64(9001), res.Meta.ViewCount)
	assert.Equal(t, "1:02:03", res.Meta.Duration)
	assert.Equal(t, "https://static-cdn.jtvnw.net/cf_vods/thumb-640x360.jpg", res.Meta.ThumbnailURL)
}

func TestLookupVideoNotFound(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth2/token", func(w http.ResponseWriter, r *http.Request) { serveToken(w) })
	mux.HandleFunc("/helix/videos", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[]}`))
	})

	client, _ := newTestClient(t, mux)

	res, err := client.LookupVideo(context.Background(), "000")
	require.NoError(t, err)
	assert.False(t, res.Found)
}

func TestServerErrorRetriedThenSucceeds(t *testing.T) {
	var calls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth2/token", func(w http.ResponseWriter, r *http.Request) { serveToken(w) })
	mux.HandleFunc("/helix/streams", func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"data":[]}`))
	})

	client, _ := newTestClient(t, mux)

	res, err := client.LookupStream(context.Background(), "somecaster")
	require.NoError(t, err)
	assert.False(t, res.Found)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestServerErrorExhaustsRetries(t *testing.T) {
	var calls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth2/token", func(w http.ResponseWriter, r *http.Request) { serveToken(w) })
	mux.HandleFunc("/helix/streams", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	client, _ := newTestClient(t, mux)

	_, err := client.LookupStream(context.Background(), "somecaster")
	require.Error(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestUnauthorizedInvalidatesTokenAndRecovers(t *testing.T) {
	var grants, calls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&grants, 1)
		serveToken(w)
	})
	mux.HandleFunc("/helix/streams", func(w http.ResponseWriter, r *http.Request) {
		// First call rejects the token as if it had been revoked.
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{"data":[]}`))
	})

	client, _ := newTestClient(t, mux)
	// Unauthorized is normally terminal; a revoked token is the one
	// case where a second attempt with a fresh grant makes sense.
	client.policy.Retryable = func(error) bool { return true }

	res, err := client.LookupStream(context.Background(), "somecaster")
	require.NoError(t, err)
	assert.False(t, res.Found)
	assert.Equal(t, int32(2), atomic.LoadInt32(&grants))
}
