// Package media defines shared types for the vodgrep application.
package media

import (
	"fmt"
	"time"
)

// BroadcastType is the kind of stored video a broadcast is.
type BroadcastType int

const (
	Unknown BroadcastType = iota
	Archive
	Highlight
)

func (b BroadcastType) String() string {
	switch b {
	case Archive:
		return "archive"
	case Highlight:
		return "highlight"
	default:
		return "unknown"
	}
}

// ParseBroadcastType maps the API's type field onto a BroadcastType.
// Anything other than archive or highlight (e.g. "upload") is Unknown.
func ParseBroadcastType(s string) BroadcastType {
	switch s {
	case "archive":
		return Archive
	case "highlight":
		return Highlight
	default:
		return Unknown
	}
}

// Channel is a resolved broadcaster account.
type Channel struct {
	Name      string
	ID        int64
	CreatedAt time.Time // Day granularity, UTC
}

func (c Channel) String() string {
	return c.Name
}

// Broadcast is a stored video on a channel.
type Broadcast struct {
	ID    int64
	Title string
	Type  BroadcastType
}

func (b Broadcast) String() string {
	return b.Title
}

// Clip is a single clip search hit.
type Clip struct {
	Title     string `json:"title"`
	ViewCount int    `json:"view_count"`
	URL       string `json:"url"`
}

// Comment is a single chat message replayed alongside a broadcast.
type Comment struct {
	Offset float64 `json:"offset_seconds"` // Seconds into the broadcast
	Author string  `json:"author"`
	Body   string  `json:"body"`
}

// Timestamp renders the offset as HH:MM:SS, truncating fractional seconds.
func (c Comment) Timestamp() string {
	return FormatOffset(c.Offset)
}

// FormatOffset renders seconds as HH:MM:SS. Fractions are truncated, not
// rounded; hours are not capped at 99.
func FormatOffset(seconds float64) string {
	s := int(seconds)
	if s < 0 {
		s = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", s/3600, s%3600/60, s%60)
}
