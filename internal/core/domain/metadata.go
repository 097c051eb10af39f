package domain

import "time"

// SourceMetadata is the normalized shape of a platform lookup, uniform
// across Twitch live streams, Twitch VODs and YouTube videos.
type SourceMetadata struct {
	Title        string    `json:"title"`
	ChannelName  string    `json:"channel_name"`
	ThumbnailURL string    `json:"thumbnail_url"`
	StartedAt    time.Time `json:"started_at"`
	ViewerCount  int       `json:"viewer_count,omitempty"` // live only
	ViewCount    int64     `json:"view_count,omitempty"`   // VODs only
	Duration     string    `json:"duration,omitempty"`     // VODs only, display form
}

// LookupResult wraps a platform lookup. An absent resource (channel not
// live, unknown video id) is a normal outcome, not an error.
type LookupResult struct {
	Found bool
	Meta  SourceMetadata
}
