package domain

import "time"

type SessionID string
type UserID string

// SourceType identifies the ingestion variant.
type SourceType string

const (
	SourceTwitchLive SourceType = "twitch_live"
	SourceTwitchVOD  SourceType = "twitch_vod"
	SourceYouTubeVOD SourceType = "youtube_vod"
)

// Platform returns the persisted source column value.
func (s SourceType) Platform() string {
	switch s {
	case SourceTwitchLive, SourceTwitchVOD:
		return "twitch"
	case SourceYouTubeVOD:
		return "youtube"
	default:
		return string(s)
	}
}

// Live reports whether the variant ingests a live broadcast.
func (s SourceType) Live() bool {
	return s == SourceTwitchLive
}

// StreamSession is one admitted ingestion: a live stream or VOD a user
// registered with the platform. Created exactly once per admitted
// request; only End mutates it afterwards.
type StreamSession struct {
	ID           SessionID `json:"id"`
	UserID       UserID    `json:"user_id"`
	Title        string    `json:"title"`
	SourceLink   string    `json:"source_link"`
	StartTime    time.Time `json:"start_time"`
	AutoUpload   bool      `json:"auto_upload"`
	ThumbnailURL string    `json:"thumbnail_url"`
	Source       string    `json:"source"`
	IsLive       bool      `json:"is_live"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
}
