package postgres

import (
	"context"
	"errors"
	"fmt"

	"clipgate/internal/core/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// StreamSessionRepository stores stream sessions in the stream_sessions
// table.
type StreamSessionRepository struct {
	pool *pgxpool.Pool
}

func NewStreamSessionRepository(pool *pgxpool.Pool) *StreamSessionRepository {
	return &StreamSessionRepository{pool: pool}
}

const sessionColumns = `id, user_id, title, source_link, start_time, auto_upload,
	thumbnail_url, source, is_live, active, created_at`

// CreateWithinLimits recounts the user's usage and inserts the session
// in one transaction. A per-user advisory lock serializes concurrent
// admissions so two requests cannot both pass the same limit.
func (r *StreamSessionRepository) CreateWithinLimits(ctx context.Context, session *domain.StreamSession, limits domain.PlanLimits, period domain.BillingPeriod) (*domain.StreamSession, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, string(session.UserID)); err != nil {
		return nil, fmt.Errorf("acquire user lock: %w", err)
	}

	var active int
	err = tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM stream_sessions WHERE user_id = $1 AND active = true`,
		string(session.UserID)).Scan(&active)
	if err != nil {
		return nil, fmt.Errorf("count active sessions: %w", err)
	}
	// Strictly-greater-than: a user at exactly the limit is still
	// admitted for one more. Longstanding billing behavior.
	if active > limits.MaxActiveStreams {
		return nil, domain.ErrActiveStreamLimit
	}

	var created int
	err = tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM stream_sessions WHERE user_id = $1 AND created_at BETWEEN $2 AND $3`,
		string(session.UserID), period.Start, period.End).Scan(&created)
	if err != nil {
		return nil, fmt.Errorf("count period sessions: %w", err)
	}
	if created > limits.MaxStreams {
		return nil, domain.ErrStreamLimit
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO stream_sessions (id, user_id, title, source_link, start_time, auto_upload,
			thumbnail_url, source, is_live, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+sessionColumns,
		string(session.ID), string(session.UserID), session.Title, session.SourceLink,
		session.StartTime, session.AutoUpload, session.ThumbnailURL, session.Source,
		session.IsLive, session.Active,
	).Scan(scanTargets(session)...)
	if err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return session, nil
}

func (r *StreamSessionRepository) GetByID(ctx context.Context, id domain.SessionID) (*domain.StreamSession, error) {
	session := &domain.StreamSession{}
	err := r.pool.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM stream_sessions WHERE id = $1`,
		string(id)).Scan(scanTargets(session)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query session: %w", err)
	}
	return session, nil
}

func (r *StreamSessionRepository) ListByUser(ctx context.Context, userID domain.UserID) ([]*domain.StreamSession, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+sessionColumns+` FROM stream_sessions WHERE user_id = $1 ORDER BY created_at DESC`,
		string(userID))
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*domain.StreamSession
	for rows.Next() {
		session := &domain.StreamSession{}
		if err := rows.Scan(scanTargets(session)...); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}

func (r *StreamSessionRepository) End(ctx context.Context, id domain.SessionID) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE stream_sessions SET active = false, is_live = false WHERE id = $1`,
		string(id))
	if err != nil {
		return fmt.Errorf("end session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}

func (r *StreamSessionRepository) CountActive(ctx context.Context, userID domain.UserID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM stream_sessions WHERE user_id = $1 AND active = true`,
		string(userID)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count active sessions: %w", err)
	}
	return count, nil
}

func (r *StreamSessionRepository) CountCreatedBetween(ctx context.Context, userID domain.UserID, period domain.BillingPeriod) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM stream_sessions WHERE user_id = $1 AND created_at BETWEEN $2 AND $3`,
		string(userID), period.Start, period.End).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count period sessions: %w", err)
	}
	return count, nil
}

func scanTargets(s *domain.StreamSession) []interface{} {
	return []interface{}{
		&s.ID, &s.UserID, &s.Title, &s.SourceLink, &s.StartTime, &s.AutoUpload,
		&s.ThumbnailURL, &s.Source, &s.IsLive, &s.Active, &s.CreatedAt,
	}
}
