// Package repositories selects the storage backend from configuration.
package repositories

import (
	"context"

	"clipgate/internal/core/ports"
	"clipgate/internal/infrastructure/repositories/memory"
	"clipgate/internal/infrastructure/repositories/postgres"
	"clipgate/pkg/config"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Store bundles the repositories behind one lifecycle.
type Store struct {
	Sessions      ports.StreamSessionRepository
	Subscriptions ports.SubscriptionRepository

	pool *pgxpool.Pool
}

// New connects to postgres when the database is enabled, otherwise
// falls back to in-memory storage.
func New(ctx context.Context, cfg config.DatabaseConfig, logger *zap.SugaredLogger) (*Store, error) {
	if !cfg.Enabled {
		logger.Warnw("database disabled, using in-memory repositories")
		return &Store{
			Sessions:      memory.NewStreamSessionRepository(),
			Subscriptions: memory.NewSubscriptionRepository(),
		}, nil
	}

	pool, err := postgres.Connect(ctx, cfg.DSN, logger)
	if err != nil {
		return nil, err
	}
	return &Store{
		Sessions:      postgres.NewStreamSessionRepository(pool),
		Subscriptions: postgres.NewSubscriptionRepository(pool),
		pool:          pool,
	}, nil
}

// HealthCheck reports storage reachability for the readiness probe.
func (s *Store) HealthCheck(ctx context.Context) error {
	if s.pool == nil {
		return nil
	}
	return s.pool.Ping(ctx)
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}
