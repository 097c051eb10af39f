package services

import (
	"context"
	"errors"
	"net/http"
	"time"

	"clipgate/internal/core/domain"
	"clipgate/internal/core/ports"
	apperrors "clipgate/pkg/errors"
	"clipgate/pkg/validation"
	"clipgate/pkg/videolink"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Quota rejection messages are part of the API contract.
const (
	msgActiveLimit = "Maximum limit reached for active streams"
	msgStreamLimit = "Maximum limit reached for created streams"
)

// variant describes how one ingestion source is validated, resolved and
// looked up. All three pipelines share the same body; only these hooks
// differ.
type variant struct {
	resolve        func(identifier string) (string, *apperrors.AppError)
	fetch          func(ctx context.Context, id string) (domain.LookupResult, error)
	notFoundStatus int
	notFoundMsg    string
	statusKey      string
}

// IngestService runs the admission pipeline: validate, quota pre-check,
// fetch metadata from the platform, persist within limits, notify.
type IngestService struct {
	sessions ports.StreamSessionRepository
	quota    ports.QuotaService
	twitch   ports.TwitchClient
	youtube  ports.YouTubeClient
	events   ports.EventPublisher
	metrics  ports.MetricsRecorder
	logger   *zap.SugaredLogger
	now      func() time.Time

	variants map[domain.SourceType]variant
}

var _ ports.IngestService = (*IngestService)(nil)

func NewIngestService(sessions ports.StreamSessionRepository, quota ports.QuotaService, twitch ports.TwitchClient, youtube ports.YouTubeClient, events ports.EventPublisher, metrics ports.MetricsRecorder, logger *zap.SugaredLogger) *IngestService {
	s := &IngestService{
		sessions: sessions,
		quota:    quota,
		twitch:   twitch,
		youtube:  youtube,
		events:   events,
		metrics:  metrics,
		logger:   logger,
		now:      time.Now,
	}
	s.variants = map[domain.SourceType]variant{
		domain.SourceTwitchLive: {
			resolve: func(identifier string) (string, *apperrors.AppError) {
				if err := validation.ValidateTwitchUsername(identifier); err != nil {
					return "", apperrors.NewInvalidInput(err.Error())
				}
				return identifier, nil
			},
			fetch:          s.twitch.LookupStream,
			notFoundStatus: http.StatusUnprocessableEntity,
			notFoundMsg:    "Stream is not live",
			statusKey:      "stream_status",
		},
		domain.SourceTwitchVOD: {
			resolve: func(identifier string) (string, *apperrors.AppError) {
				id, ok := videolink.TwitchVODID(identifier)
				if !ok {
					return "", apperrors.NewInvalidURL("invalid twitch video url")
				}
				return id, nil
			},
			fetch:          s.twitch.LookupVideo,
			notFoundStatus: http.StatusNotFound,
			notFoundMsg:    "Video not found",
			statusKey:      "video_status",
		},
		domain.SourceYouTubeVOD: {
			resolve: func(identifier string) (string, *apperrors.AppError) {
				id, ok := videolink.YouTubeVideoID(identifier)
				if !ok {
					return "", apperrors.NewInvalidURL("invalid youtube video url")
				}
				return id, nil
			},
			fetch:          s.youtube.LookupVideo,
			notFoundStatus: http.StatusNotFound,
			notFoundMsg:    "Video not found",
			statusKey:      "video_status",
		},
	}
	return s
}

func (s *IngestService) Ingest(ctx context.Context, req ports.IngestRequest) (*ports.IngestResult, error) {
	v, ok := s.variants[req.Source]
	if !ok {
		return nil, apperrors.NewInvalidInput("unknown ingestion source")
	}
	if err := validation.ValidateUserID(string(req.UserID)); err != nil {
		return nil, apperrors.NewInvalidInput(err.Error())
	}

	if err := s.quota.Check(ctx, req.UserID); err != nil {
		return nil, s.rejected(req, err)
	}

	id, appErr := v.resolve(req.Identifier)
	if appErr != nil {
		s.metrics.RecordIngest(req.Source, "invalid")
		return nil, appErr
	}

	result, err := v.fetch(ctx, id)
	if err != nil {
		s.metrics.RecordIngest(req.Source, "upstream_error")
		if appErr := apperrors.Get(err); appErr != nil {
			return nil, appErr
		}
		s.logger.Errorw("metadata fetch failed", "source", req.Source, "identifier", id, "error", err)
		return nil, apperrors.NewUpstreamUnavailable("failed to fetch source metadata").WithCause(err)
	}
	if !result.Found {
		s.metrics.RecordIngest(req.Source, "not_found")
		return nil, apperrors.NewResourceUnavailable(v.notFoundMsg, v.notFoundStatus).
			WithContext("status_key", v.statusKey)
	}

	session := s.buildSession(req, id, result.Meta)

	limits, period, err := s.quota.Limits(ctx, req.UserID)
	if err != nil {
		return nil, s.rejected(req, err)
	}
	stored, err := s.sessions.CreateWithinLimits(ctx, session, limits, period)
	if err != nil {
		// The insert recounts under a lock, so a race lost here still
		// produces the right quota answer.
		if errors.Is(err, domain.ErrActiveStreamLimit) || errors.Is(err, domain.ErrStreamLimit) {
			return nil, s.rejected(req, err)
		}
		s.logger.Errorw("failed to persist session", "source", req.Source, "user_id", req.UserID, "error", err)
		return nil, apperrors.NewPersistence("failed to store stream session").WithCause(err)
	}

	s.metrics.RecordIngest(req.Source, "ok")
	s.metrics.SessionStarted()
	s.events.Publish(domain.SessionEvent{
		Type:      domain.EventSessionCreated,
		SessionID: stored.ID,
		UserID:    stored.UserID,
		Source:    req.Source,
		At:        s.now(),
	})

	return &ports.IngestResult{Session: stored, Meta: result.Meta}, nil
}

func (s *IngestService) buildSession(req ports.IngestRequest, resolvedID string, meta domain.SourceMetadata) *domain.StreamSession {
	live := req.Source.Live()
	start := meta.StartedAt
	if start.IsZero() {
		start = s.now()
	}

	sourceLink := req.Identifier
	if req.Source == domain.SourceTwitchLive {
		sourceLink = "https://twitch.tv/" + resolvedID
	}

	return &domain.StreamSession{
		ID:           domain.SessionID(uuid.NewString()),
		UserID:       req.UserID,
		Title:        meta.Title,
		SourceLink:   sourceLink,
		StartTime:    start,
		AutoUpload:   req.AutoUpload,
		ThumbnailURL: meta.ThumbnailURL,
		Source:       req.Source.Platform(),
		IsLive:       live,
		Active:       true,
		CreatedAt:    s.now(),
	}
}

// rejected maps quota and subscription errors onto API errors and
// records the rejection.
func (s *IngestService) rejected(req ports.IngestRequest, err error) error {
	switch {
	case errors.Is(err, domain.ErrActiveStreamLimit):
		s.metrics.RecordQuotaRejection("active_streams")
		s.publishRejected(req, "active_streams")
		return apperrors.NewQuotaExceeded(msgActiveLimit).WithContext("reason", "active_streams")
	case errors.Is(err, domain.ErrStreamLimit):
		s.metrics.RecordQuotaRejection("created_streams")
		s.publishRejected(req, "created_streams")
		return apperrors.NewQuotaExceeded(msgStreamLimit).WithContext("reason", "created_streams")
	case errors.Is(err, domain.ErrSubscriptionNotFound), errors.Is(err, domain.ErrPlanNotFound):
		return apperrors.NewNotFound("subscription").WithCause(err)
	default:
		s.logger.Errorw("quota check failed", "user_id", req.UserID, "error", err)
		return apperrors.NewInternal("failed to check usage limits").WithCause(err)
	}
}

func (s *IngestService) publishRejected(req ports.IngestRequest, reason string) {
	s.events.Publish(domain.SessionEvent{
		Type:   domain.EventSessionRejected,
		UserID: req.UserID,
		Source: req.Source,
		Reason: reason,
		At:     s.now(),
	})
}
