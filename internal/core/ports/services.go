package ports

import (
	"context"

	"clipgate/internal/core/domain"
)

// IngestRequest is a validated request to register one stream or video.
type IngestRequest struct {
	Source     domain.SourceType
	UserID     domain.UserID
	Identifier string // twitch username or video URL, depending on Source
	AutoUpload bool
}

// IngestResult pairs the persisted session with the metadata fetched
// from the platform.
type IngestResult struct {
	Session *domain.StreamSession
	Meta    domain.SourceMetadata
}

type IngestService interface {
	Ingest(ctx context.Context, req IngestRequest) (*IngestResult, error)
}

// QuotaService is the usage quota gate: read-only admission checks and
// usage reporting. It never mutates state.
type QuotaService interface {
	Check(ctx context.Context, userID domain.UserID) error
	Usage(ctx context.Context, userID domain.UserID) (*domain.UsageSummary, error)
	Limits(ctx context.Context, userID domain.UserID) (domain.PlanLimits, domain.BillingPeriod, error)
}

type SessionService interface {
	Get(ctx context.Context, id domain.SessionID) (*domain.StreamSession, error)
	ListByUser(ctx context.Context, userID domain.UserID) ([]*domain.StreamSession, error)
	End(ctx context.Context, id domain.SessionID) error
}

// EventPublisher fans session lifecycle events out to dashboard clients.
type EventPublisher interface {
	Publish(event domain.SessionEvent)
}

// MetricsRecorder is implemented by the Prometheus collector; services
// depend on this interface so tests can pass a no-op.
type MetricsRecorder interface {
	RecordIngest(source domain.SourceType, outcome string)
	RecordQuotaRejection(reason string)
	SessionStarted()
	SessionEnded()
}
