package ports

import (
	"context"

	"clipgate/internal/core/domain"
)

// TwitchClient looks up live streams and VODs on the Helix API.
type TwitchClient interface {
	LookupStream(ctx context.Context, login string) (domain.LookupResult, error)
	LookupVideo(ctx context.Context, id string) (domain.LookupResult, error)
}

// YouTubeClient looks up videos on the YouTube Data API.
type YouTubeClient interface {
	LookupVideo(ctx context.Context, id string) (domain.LookupResult, error)
}
