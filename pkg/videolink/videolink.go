// Package videolink extracts platform resource identifiers from user
// supplied video URLs. All extractors fail closed: a malformed or
// unrecognized URL yields ok=false, never a panic or error.
package videolink

import (
	"net/url"
	"regexp"
	"strings"
)

var videoIDRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// TwitchVODID returns the numeric VOD identifier from a twitch.tv
// /videos/ URL.
func TwitchVODID(raw string) (string, bool) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	host := strings.ToLower(u.Hostname())
	if host != "twitch.tv" && !strings.HasSuffix(host, ".twitch.tv") {
		return "", false
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i, seg := range segments {
		if seg == "videos" && i+1 < len(segments) {
			return checkID(segments[i+1])
		}
	}
	return "", false
}

// YouTubeVideoID returns the video identifier from any of the four
// supported URL shapes: youtu.be/<id>, watch?v=<id>, /embed/<id>, /v/<id>.
func YouTubeVideoID(raw string) (string, bool) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	host := strings.ToLower(u.Hostname())

	if host == "youtu.be" {
		return checkID(firstSegment(u.Path))
	}

	if host != "youtube.com" && !strings.HasSuffix(host, ".youtube.com") {
		return "", false
	}

	switch {
	case u.Path == "/watch":
		return checkID(u.Query().Get("v"))
	case strings.HasPrefix(u.Path, "/embed/"):
		return checkID(strings.TrimPrefix(u.Path, "/embed/"))
	case strings.HasPrefix(u.Path, "/v/"):
		return checkID(strings.TrimPrefix(u.Path, "/v/"))
	}
	return "", false
}

func firstSegment(path string) string {
	trimmed := strings.Trim(path, "/")
	if i := strings.IndexByte(trimmed, '/'); i >= 0 {
		return trimmed[:i]
	}
	return trimmed
}

func checkID(id string) (string, bool) {
	id = firstSegment(id)
	if id == "" || !videoIDRegex.MatchString(id) {
		return "", false
	}
	return id, true
}
