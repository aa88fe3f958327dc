package twitch

import (
	"context"
	"fmt"
	"iter"
	"net/url"
	"strconv"
	"time"

	"vodgrep/internal/extract"
	"vodgrep/internal/filter"
	"vodgrep/internal/media"
)

// window is one [start, end) span of a clip search.
type window struct {
	start, end time.Time
}

// monthWindows splits the time between a channel's creation date and now into
// contiguous one-month spans, newest first. The oldest span starts exactly at
// created.
func monthWindows(now, created time.Time) []window {
	now = now.UTC()
	created = created.UTC().Truncate(24 * time.Hour)

	var ws []window
	end := now
	for end.After(created) {
		start := end.AddDate(0, -1, 0)
		if start.Before(created) {
			start = created
		}
		ws = append(ws, window{start: start, end: end})
		end = start
	}
	return ws
}

// SearchClips yields a channel's clips whose title matches f, newest month
// first. Within a month the API's own order is kept. A failed request is
// yielded and ends the sequence.
func (s *Session) SearchClips(ctx context.Context, ch media.Channel, f filter.Filter) iter.Seq2[media.Clip, error] {
	if f == nil {
		f = filter.All
	}

	return func(yield func(media.Clip, error) bool) {
		if ch.CreatedAt.IsZero() {
			yield(media.Clip{}, fmt.Errorf("searching clips for %s: channel has no creation date", ch.Name))
			return
		}
		base := s.apiURL(nil, "helix", "clips")

		for _, w := range monthWindows(s.opts.now(), ch.CreatedAt) {
			q := url.Values{}
			q.Set("broadcaster_id", strconv.FormatInt(ch.ID, 10))
			q.Set("first", "100")
			q.Set("started_at", w.start.Format(time.RFC3339))
			q.Set("ended_at", w.end.Format(time.RFC3339))

			for doc, err := range s.pages(ctx, helixPaging, base, q) {
				if err != nil {
					yield(media.Clip{}, fmt.Errorf("searching clips for %s: %w", ch.Name, err))
					return
				}
				for _, clip := range clipsFromPage(doc) {
					if !f.Match(clip.Title) {
						continue
					}
					if !yield(clip, nil) {
						return
					}
				}
			}
		}
	}
}

// clipsFromPage reads one clip per data[] record. Records without both a url
// and a title are dropped; a missing view count reads as zero.
func clipsFromPage(doc *extract.Document) []media.Clip {
	records := doc.Records("data")
	clips := make([]media.Clip, 0, len(records))
	for _, rec := range records {
		u, okURL := rec.First("url")
		title, okTitle := rec.First("title")
		if !okURL || !okTitle {
			continue
		}
		clip := media.Clip{Title: title, URL: u}
		if views, ok := rec.First("view_count"); ok {
			clip.ViewCount, _ = strconv.Atoi(views)
		}
		clips = append(clips, clip)
	}
	return clips
}
