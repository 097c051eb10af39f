package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"clipgate/internal/core/domain"
	"clipgate/internal/core/services"
	"clipgate/internal/infrastructure/middleware"
	"clipgate/internal/infrastructure/repositories/memory"
	"clipgate/pkg/cache"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type nopPublisher struct{}

func (nopPublisher) Publish(domain.SessionEvent) {}

type nopMetrics struct{}

func (nopMetrics) RecordIngest(domain.SourceType, string) {}
func (nopMetrics) RecordQuotaRejection(string)            {}
func (nopMetrics) SessionStarted()                        {}
func (nopMetrics) SessionEnded()                          {}

func newSessionRouter(t *testing.T) (*gin.Engine, *memory.StreamSessionRepository) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop().Sugar()

	sessions := memory.NewStreamSessionRepository()
	subs := memory.NewSubscriptionRepository()
	subs.PutPlan("pro", domain.PlanLimits{MaxActiveStreams: 5, MaxStreams: 50})
	subs.PutSubscription(&domain.Subscription{
		UserID:             testUser,
		PlanID:             "pro",
		CurrentPeriodStart: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		CurrentPeriodEnd:   time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
	})

	quota := services.NewQuotaService(sessions, subs, cache.New[domain.PlanLimits](time.Minute), logger)
	svc := services.NewSessionService(sessions, nopPublisher{}, nopMetrics{}, logger)

	r := gin.New()
	r.Use(middleware.Recovery(logger), middleware.ErrorHandler(logger))
	NewSessionHandler(svc, quota, logger).Register(r.Group("/api/v1"))
	return r, sessions
}

func seedSession(t *testing.T, repo *memory.StreamSessionRepository, id string) {
	t.Helper()
	_, err := repo.CreateWithinLimits(context.Background(), &domain.StreamSession{
		ID:        domain.SessionID(id),
		UserID:    testUser,
		Title:     "test stream",
		Active:    true,
		CreatedAt: time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC),
	}, domain.PlanLimits{MaxActiveStreams: 100, MaxStreams: 100}, domain.BillingPeriod{
		Start: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
}

func get(t *testing.T, r *gin.Engine, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestListSessions(t *testing.T) {
	r, repo := newSessionRouter(t)
	seedSession(t, repo, "s1")
	seedSession(t, repo, "s2")

	w := get(t, r, "/api/v1/sessions?user_id="+testUser)
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Equal(t, "success", body["confirmation"])
	data := body["data"].(map[string]interface{})
	assert.Len(t, data["sessions"], 2)
}

func TestListSessionsEmpty(t *testing.T) {
	r, _ := newSessionRouter(t)

	w := get(t, r, "/api/v1/sessions?user_id="+testUser)
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	data := body["data"].(map[string]interface{})
	sessions, ok := data["sessions"].([]interface{})
	require.True(t, ok, "sessions must be an array, not null")
	assert.Empty(t, sessions)
}

func TestListSessionsMissingUserID(t *testing.T) {
	r, _ := newSessionRouter(t)

	w := get(t, r, "/api/v1/sessions")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetSession(t *testing.T) {
	r, repo := newSessionRouter(t)
	seedSession(t, repo, "s1")

	w := get(t, r, "/api/v1/sessions/s1")
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	data := body["data"].(map[string]interface{})
	session := data["session"].(map[string]interface{})
	assert.Equal(t, "s1", session["id"])
}

func TestGetSessionNotFound(t *testing.T) {
	r, _ := newSessionRouter(t)

	w := get(t, r, "/api/v1/sessions/nope")
	require.Equal(t, http.StatusNotFound, w.Code)

	body := decode(t, w)
	assert.Equal(t, "fail", body["confirmation"])
	assert.Equal(t, "NOT_FOUND", body["code"])
}

func TestEndSession(t *testing.T) {
	r, repo := newSessionRouter(t)
	seedSession(t, repo, "s1")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/sessions/s1/end", nil))
	require.Equal(t, http.StatusOK, w.Code)

	stored, err := repo.GetByID(context.Background(), "s1")
	require.NoError(t, err)
	assert.False(t, stored.Active)
}

func TestEndSessionNotFound(t *testing.T) {
	r, _ := newSessionRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/sessions/nope/end", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUsage(t *testing.T) {
	r, repo := newSessionRouter(t)
	seedSession(t, repo, "s1")

	w := get(t, r, "/api/v1/users/"+testUser+"/usage")
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	data := body["data"].(map[string]interface{})
	usage := data["usage"].(map[string]interface{})
	assert.Equal(t, float64(1), usage["active_streams"])
	assert.Equal(t, float64(5), usage["max_active_streams"])
	assert.Equal(t, float64(50), usage["max_streams"])
	assert.Equal(t, "pro", usage["plan_id"])
}

func TestUsageUnknownUser(t *testing.T) {
	r, _ := newSessionRouter(t)

	w := get(t, r, "/api/v1/users/22222222-2222-2222-2222-222222222222/usage")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestEnvelopeShape(t *testing.T) {
	r, repo := newSessionRouter(t)
	seedSession(t, repo, "s1")

	w := get(t, r, "/api/v1/sessions/s1")
	var body struct {
		Confirmation string          `json:"confirmation"`
		Message      string          `json:"message"`
		Data         json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "success", body.Confirmation)
	assert.NotEmpty(t, body.Message)
	assert.NotEmpty(t, body.Data)
}
