package twitch

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"vodgrep/internal/extract"
	"vodgrep/internal/httputil"
	"vodgrep/internal/media"
)

// ResolveChannel looks up a channel by login name.
// A name with no account behind it is a *NotFoundError.
func (s *Session) ResolveChannel(ctx context.Context, name string) (media.Channel, error) {
	name = strings.TrimSpace(name)
	if err := httputil.ValidateLogin(name); err != nil {
		return media.Channel{}, &NotFoundError{Channel: name, Err: err}
	}

	q := url.Values{}
	q.Set("login", strings.ToLower(name))
	body, err := s.Fetch(ctx, http.MethodGet, s.apiURL(q, "helix", "users"), true)
	if err != nil {
		return media.Channel{}, fmt.Errorf("looking up channel %q: %w", name, err)
	}

	doc := extract.Parse(body)
	rawID, ok := doc.First("id")
	if !ok {
		return media.Channel{}, &NotFoundError{Channel: name}
	}
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil || id <= 0 {
		return media.Channel{}, &NotFoundError{Channel: name}
	}

	rawCreated, _ := doc.First("created_at")
	created, err := parseCreatedAt(rawCreated)
	if err != nil {
		return media.Channel{}, fmt.Errorf("channel %q: %w", name, err)
	}

	if login, ok := doc.First("login"); ok && login != "" {
		name = login
	}

	return media.Channel{Name: name, ID: id, CreatedAt: created}, nil
}

const dateLayout = "2006-01-02"

// parseCreatedAt keeps the calendar date of an RFC 3339 timestamp and drops
// the time of day.
func parseCreatedAt(raw string) (time.Time, error) {
	if len(raw) < len(dateLayout) {
		return time.Time{}, fmt.Errorf("creation date %q is malformed", raw)
	}
	t, err := time.ParseInLocation(dateLayout, raw[:len(dateLayout)], time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("creation date %q is malformed: %w", raw, err)
	}
	return t, nil
}
