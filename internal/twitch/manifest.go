package twitch

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"vodgrep/internal/media"
)

const storyboardMarker = "storyboards"

// ManifestURL derives the HLS playlist URL of a broadcast from the storyboard
// preview the API reports for it. ok is false when the broadcast's type has no
// known playlist layout or the preview URL is missing.
func (s *Session) ManifestURL(ctx context.Context, b media.Broadcast) (string, bool, error) {
	if b.Type == media.Unknown {
		return "", false, nil
	}

	doc, err := s.videoDetail(ctx, b.ID)
	if err != nil {
		return "", false, &InvalidIDError{ID: b.ID, Err: err}
	}

	preview, _ := doc.First("animated_preview_url")
	u, ok := ManifestFromPreview(preview, b)
	return u, ok, nil
}

// ManifestFromPreview keeps everything in previewURL up to the storyboards
// directory and appends the playlist path for b's type:
//
//	archive:   <prefix>chunked/index-dvr.m3u8
//	highlight: <prefix>chunked/highlight-<id>.m3u8
func ManifestFromPreview(previewURL string, b media.Broadcast) (string, bool) {
	idx := strings.Index(previewURL, storyboardMarker)
	if idx <= 0 {
		return "", false
	}
	prefix := previewURL[:idx] + "chunked/"

	switch b.Type {
	case media.Archive:
		return prefix + "index-dvr.m3u8", true
	case media.Highlight:
		return fmt.Sprintf("%shighlight-%d.m3u8", prefix, b.ID), true
	default:
		return "", false
	}
}

// Manifest is the outcome of deriving one broadcast's playlist URL.
type Manifest struct {
	Broadcast media.Broadcast
	URL       string
	Available bool
	Err       error
}

// ManifestURLs derives playlist URLs for many broadcasts at once, bounded by
// the session's concurrency. Results keep the order of bs.
func (s *Session) ManifestURLs(ctx context.Context, bs []media.Broadcast) []Manifest {
	out := make([]Manifest, len(bs))

	var g errgroup.Group
	g.SetLimit(s.opts.concurrency)
	for i, b := range bs {
		g.Go(func() error {
			u, ok, err := s.ManifestURL(ctx, b)
			out[i] = Manifest{Broadcast: b, URL: u, Available: ok, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	return out
}
