package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"clipgate/internal/core/domain"
	"clipgate/internal/core/services"
	handlers "clipgate/internal/handlers/http"
	"clipgate/internal/handlers/ws"
	"clipgate/internal/infrastructure/middleware"
	"clipgate/internal/infrastructure/monitoring"
	"clipgate/internal/infrastructure/platform/twitch"
	"clipgate/internal/infrastructure/platform/youtube"
	"clipgate/internal/infrastructure/repositories"
	"clipgate/pkg/cache"
	"clipgate/pkg/circuitbreaker"
	"clipgate/pkg/config"
	"clipgate/pkg/logger"
	"clipgate/pkg/retry"
	"clipgate/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	// Missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := loadConfig()
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer log.Sync()
	sugar := log.Sugar()

	tp, err := tracing.Init(tracing.Config{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: cfg.Tracing.ServiceName,
		JaegerURL:   cfg.Tracing.JaegerURL,
		Environment: cfg.Tracing.Environment,
		SampleRate:  cfg.Tracing.SampleRate,
	})
	if err != nil {
		sugar.Fatalw("failed to initialize tracing", "error", err)
	}

	ctx := context.Background()

	store, err := repositories.New(ctx, cfg.Database, sugar)
	if err != nil {
		sugar.Fatalw("failed to initialize storage", "error", err)
	}
	defer store.Close()

	collector := monitoring.NewCollector()

	policy := retry.Policy{
		MaxAttempts:  cfg.Ingest.Retry.MaxAttempts,
		InitialDelay: cfg.Ingest.Retry.InitialDelay,
		MaxDelay:     cfg.Ingest.Retry.MaxDelay,
		Multiplier:   cfg.Ingest.Retry.Multiplier,
	}

	twitchClient := twitch.NewClient(twitch.Config{
		ClientID:       cfg.Twitch.ClientID,
		ClientSecret:   cfg.Twitch.ClientSecret,
		TokenURL:       cfg.Twitch.TokenURL,
		APIBaseURL:     cfg.Twitch.APIBaseURL,
		TokenTimeout:   cfg.Twitch.TokenTimeout,
		RequestTimeout: cfg.Twitch.RequestTimeout,
	}, policy, newBreaker(cfg, "twitch", sugar), sugar)
	twitchClient.SetMetrics(collector)

	youtubeClient := youtube.NewClient(youtube.Config{
		APIKey:         cfg.YouTube.APIKey,
		APIBaseURL:     cfg.YouTube.APIBaseURL,
		RequestTimeout: cfg.YouTube.RequestTimeout,
	}, policy, newBreaker(cfg, "youtube", sugar), sugar)
	youtubeClient.SetMetrics(collector)

	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			sugar.Warnw("redis unreachable, app token stays process-local", "error", err)
		} else {
			twitchClient.TokenSource().SetStore(twitch.NewRedisTokenStore(rdb))
			defer rdb.Close()
		}
	}

	hub := ws.NewHub(sugar)
	planCache := cache.New[domain.PlanLimits](cfg.Quota.PlanCacheTTL)
	quotaSvc := services.NewQuotaService(store.Sessions, store.Subscriptions, planCache, sugar)
	ingestSvc := services.NewIngestService(store.Sessions, quotaSvc, twitchClient, youtubeClient, hub, collector, sugar)
	sessionSvc := services.NewSessionService(store.Sessions, hub, collector, sugar)

	router := buildRouter(cfg, sugar, store, hub, ingestSvc, sessionSvc, quotaSvc)

	srv := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		sugar.Infow("server listening", "address", cfg.Server.Address)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			sugar.Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	sugar.Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		sugar.Errorw("forced shutdown", "error", err)
	}
	if err := tp.Shutdown(shutdownCtx); err != nil {
		sugar.Errorw("tracer shutdown failed", "error", err)
	}
	sugar.Infow("server stopped")
}

func loadConfig() (*config.Config, error) {
	path := os.Getenv("CLIPGATE_CONFIG")
	if path == "" {
		for _, candidate := range []string{"configs/config.yaml", "config.yaml"} {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
	}
	return config.Load(path)
}

func newBreaker(cfg *config.Config, name string, sugar *zap.SugaredLogger) *circuitbreaker.Breaker {
	if !cfg.Ingest.Breaker.Enabled {
		return nil
	}
	b := circuitbreaker.New(name, circuitbreaker.Settings{
		FailureThreshold: cfg.Ingest.Breaker.FailureThreshold,
		OpenTimeout:      cfg.Ingest.Breaker.OpenTimeout,
		HalfOpenProbes:   cfg.Ingest.Breaker.HalfOpenProbes,
	})
	b.OnStateChange(func(name string, from, to circuitbreaker.State) {
		sugar.Warnw("circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
	})
	return b
}

func buildRouter(cfg *config.Config, sugar *zap.SugaredLogger, store *repositories.Store, hub *ws.Hub,
	ingestSvc *services.IngestService, sessionSvc *services.SessionService, quotaSvc *services.QuotaService) *gin.Engine {

	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.Recovery(sugar), middleware.ErrorHandler(sugar))
	if cfg.Tracing.Enabled {
		r.Use(middleware.Tracing())
	}
	if cfg.RateLimiting.Enabled {
		r.Use(middleware.NewRateLimiter(cfg.RateLimiting).Handler())
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := store.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	if cfg.Monitoring.PrometheusEnabled {
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}
	r.GET("/ws/events", gin.WrapH(hub))

	api := r.Group("/api/v1")
	if cfg.Auth.Enabled {
		api.Use(middleware.Auth(cfg.Auth.JWTSecret))
	}
	handlers.NewIngestHandler(ingestSvc, sugar).Register(api)
	handlers.NewSessionHandler(sessionSvc, quotaSvc, sugar).Register(api)

	return r
}
