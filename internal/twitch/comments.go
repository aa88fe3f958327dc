package twitch

import (
	"context"
	"fmt"
	"iter"
	"net/url"
	"strconv"

	"vodgrep/internal/extract"
	"vodgrep/internal/filter"
	"vodgrep/internal/media"
)

// Comments yields the replayed chat of a broadcast whose bodies match f, in
// playback order. A failed page is yielded as an error and ends the sequence.
func (s *Session) Comments(ctx context.Context, broadcastID int64, f filter.Filter) iter.Seq2[media.Comment, error] {
	if f == nil {
		f = filter.All
	}

	return func(yield func(media.Comment, error) bool) {
		q := url.Values{}
		q.Set("client_id", s.opts.legacyClientID)
		base := s.apiURL(nil, "v5", "videos", strconv.FormatInt(broadcastID, 10), "comments")

		for doc, err := range s.pages(ctx, legacyPaging, base, q) {
			if err != nil {
				yield(media.Comment{}, fmt.Errorf("fetching comments for video %d: %w", broadcastID, err))
				return
			}
			for _, c := range commentsFromPage(doc) {
				if !f.Match(c.Body) {
					continue
				}
				if !yield(c, nil) {
					return
				}
			}
		}
	}
}

// commentsFromPage reads one comment per comments[] record. Records missing
// an offset, author name or body are dropped.
func commentsFromPage(doc *extract.Document) []media.Comment {
	records := doc.Records("comments")
	comments := make([]media.Comment, 0, len(records))
	for _, rec := range records {
		offset, okOffset := rec.First("content_offset_seconds")
		name, okName := rec.First("display_name")
		body, okBody := rec.First("body")
		if !okOffset || !okName || !okBody {
			continue
		}
		secs, err := strconv.ParseFloat(offset, 64)
		if err != nil {
			continue
		}
		comments = append(comments, media.Comment{Offset: secs, Author: name, Body: body})
	}
	return comments
}
