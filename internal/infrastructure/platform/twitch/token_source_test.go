package twitch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	apperrors "clipgate/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func tokenServer(t *testing.T, grants *int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.FormValue("grant_type"))
		atomic.AddInt32(grants, 1)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "tok-abc",
			"expires_in":   3600,
		})
	}))
}

func newTestSource(tokenURL string) *AppTokenSource {
	return NewAppTokenSource("cid", "secret", tokenURL, 15*time.Second, zap.NewNop().Sugar())
}

func TestTokenReusedWhileValid(t *testing.T) {
	var grants int32
	srv := tokenServer(t, &grants)
	defer srv.Close()

	src := newTestSource(srv.URL)

	for i := 0; i < 5; i++ {
		tok, err := src.Token(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "tok-abc", tok)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&grants))
}

func TestTokenRefreshedAfterExpiry(t *testing.T) {
	var grants int32
	srv := tokenServer(t, &grants)
	defer srv.Close()

	src := newTestSource(srv.URL)
	current := time.Now()
	src.now = func() time.Time { return current }

	_, err := src.Token(context.Background())
	require.NoError(t, err)

	// 3600s grant minus the 60s safety margin: still valid at +3539s,
	// expired at +3540s.
	current = current.Add(3539 * time.Second)
	_, err = src.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&grants))

	current = current.Add(time.Second)
	_, err = src.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&grants))
}

func TestTokenMissingCredentials(t *testing.T) {
	src := NewAppTokenSource("", "", "http://unused", 15*time.Second, zap.NewNop().Sugar())

	_, err := src.Token(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeConfiguration))
}

func TestTokenConcurrentCallersSingleGrant(t *testing.T) {
	var grants int32
	srv := tokenServer(t, &grants)
	defer srv.Close()

	src := newTestSource(srv.URL)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tok, err := src.Token(context.Background())
			assert.NoError(t, err)
			assert.Equal(t, "tok-abc", tok)
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), atomic.LoadInt32(&grants))
}

func TestTokenInvalidateForcesRegrant(t *testing.T) {
	var grants int32
	srv := tokenServer(t, &grants)
	defer srv.Close()

	src := newTestSource(srv.URL)

	_, err := src.Token(context.Background())
	require.NoError(t, err)

	src.Invalidate()

	_, err = src.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&grants))
}

type memStore struct {
	mu        sync.Mutex
	token     string
	expiresAt time.Time
	saves     int
}

func (s *memStore) Load(context.Context) (string, time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token == "" {
		return "", time.Time{}, false
	}
	return s.token, s.expiresAt, true
}

func (s *memStore) Save(_ context.Context, token string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.expiresAt = expiresAt
	s.saves++
	return nil
}

func TestTokenLoadedFromSharedStore(t *testing.T) {
	store := &memStore{token: "shared-tok", expiresAt: time.Now().Add(time.Hour)}

	src := newTestSource("http://unreachable.invalid")
	src.SetStore(store)

	tok, err := src.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "shared-tok", tok)
}

func TestTokenSavedToSharedStore(t *testing.T) {
	var grants int32
	srv := tokenServer(t, &grants)
	defer srv.Close()

	store := &memStore{}
	src := newTestSource(srv.URL)
	src.SetStore(store)

	_, err := src.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-abc", store.token)
	assert.Equal(t, 1, store.saves)
}
