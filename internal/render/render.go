// Package render writes clips, comments and manifests either as plain text
// lines or as one JSON object per line.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"vodgrep/internal/media"
)

// UseColor resolves a color mode (auto, always, never) for w.
// Auto colors only terminals, and respects NO_COLOR.
func UseColor(w io.Writer, mode string) bool {
	switch strings.ToLower(mode) {
	case "always":
		return true
	case "never":
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Renderer writes records to an output stream. It is safe for concurrent use.
type Renderer struct {
	mu    sync.Mutex
	w     io.Writer
	json  bool
	color bool

	title  lipgloss.Style
	accent lipgloss.Style
	muted  lipgloss.Style
	link   lipgloss.Style
}

// New returns a Renderer writing format ("text" or "json") to w.
func New(w io.Writer, format, colorMode string) *Renderer {
	lr := lipgloss.NewRenderer(w)
	color := UseColor(w, colorMode)
	if color && strings.ToLower(colorMode) == "always" {
		lr.SetColorProfile(termenv.ANSI256)
	}

	return &Renderer{
		w:      w,
		json:   strings.EqualFold(format, "json"),
		color:  color,
		title:  lr.NewStyle().Bold(true),
		accent: lr.NewStyle().Foreground(lipgloss.Color("13")),
		muted:  lr.NewStyle().Foreground(lipgloss.Color("8")),
		link:   lr.NewStyle().Foreground(lipgloss.Color("12")),
	}
}

func (r *Renderer) paint(s lipgloss.Style, text string) string {
	if !r.color {
		return text
	}
	return s.Render(text)
}

type clipRecord struct {
	Kind string `json:"kind"`
	media.Clip
}

type commentRecord struct {
	Kind      string `json:"kind"`
	VideoID   int64  `json:"video_id"`
	Timestamp string `json:"timestamp"`
	media.Comment
}

type manifestRecord struct {
	Kind      string `json:"kind"`
	VideoID   int64  `json:"video_id"`
	Title     string `json:"title"`
	Type      string `json:"broadcast_type"`
	URL       string `json:"url,omitempty"`
	Available bool   `json:"available"`
}

// Heading announces the broadcast whose records follow. JSON output has no
// headings.
func (r *Renderer) Heading(b media.Broadcast) error {
	if r.json {
		return nil
	}
	return r.line("\n" + r.paint(r.title, fmt.Sprintf("Working on %d", b.ID)))
}

// Clip writes "<title> @ <n> views: <url>".
func (r *Renderer) Clip(c media.Clip) error {
	if r.json {
		return r.object(clipRecord{Kind: "clip", Clip: c})
	}
	return r.line(fmt.Sprintf("%s @ %s views: %s",
		r.paint(r.title, c.Title),
		r.paint(r.accent, fmt.Sprint(c.ViewCount)),
		r.paint(r.link, c.URL)))
}

// Comment writes "[HH:MM:SS][author]:body".
func (r *Renderer) Comment(videoID int64, c media.Comment) error {
	if r.json {
		return r.object(commentRecord{Kind: "comment", VideoID: videoID, Timestamp: c.Timestamp(), Comment: c})
	}
	return r.line(fmt.Sprintf("[%s][%s]:%s",
		r.paint(r.muted, c.Timestamp()),
		r.paint(r.accent, c.Author),
		c.Body))
}

// Manifest writes the playlist URL of b, or "manifest unavailable".
func (r *Renderer) Manifest(b media.Broadcast, url string, ok bool) error {
	if r.json {
		rec := manifestRecord{Kind: "manifest", VideoID: b.ID, Title: b.Title, Type: b.Type.String(), Available: ok}
		if ok {
			rec.URL = url
		}
		return r.object(rec)
	}
	if !ok {
		return r.line(r.paint(r.muted, "manifest unavailable"))
	}
	return r.line(r.paint(r.link, url))
}

func (r *Renderer) line(s string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, err := fmt.Fprintln(r.w, s)
	return err
}

func (r *Renderer) object(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding record: %w", err)
	}
	return r.line(string(data))
}
