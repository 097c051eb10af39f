package validation

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var (
	// TwitchLoginRegex matches Twitch login names.
	TwitchLoginRegex = regexp.MustCompile(`^[a-zA-Z0-9_]{3,25}$`)

	// SessionIDRegex matches stream session identifiers.
	SessionIDRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
)

// ValidateUserID checks that id is a well-formed UUID.
func ValidateUserID(id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("user_id is required")
	}
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("user_id must be a valid UUID")
	}
	return nil
}

// ValidateTwitchUsername checks a Twitch login name.
func ValidateTwitchUsername(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("twitch_username is required")
	}
	if !TwitchLoginRegex.MatchString(name) {
		return fmt.Errorf("invalid twitch username format")
	}
	return nil
}

// ValidateSessionID checks a stream session identifier.
func ValidateSessionID(id string) error {
	if id == "" {
		return fmt.Errorf("session ID is required")
	}
	if len(id) > 100 {
		return fmt.Errorf("session ID is too long (max 100 characters)")
	}
	if !SessionIDRegex.MatchString(id) {
		return fmt.Errorf("invalid session ID format")
	}
	return nil
}

// ValidateHTTPURL checks that raw parses as an http(s) URL with a host.
func ValidateHTTPURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("URL is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL format: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid URL scheme (must be http or https)")
	}
	if u.Host == "" {
		return fmt.Errorf("URL must have a host")
	}
	return nil
}
