package twitch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"golang.org/x/sync/errgroup"

	"vodgrep/internal/extract"
	"vodgrep/internal/media"
)

// ListBroadcasts returns the first page of a channel's stored videos, each
// resolved to its type and title, in the order the API listed them.
//
// Videos that fail to resolve are left out and reported together in the
// returned error; the broadcasts that did resolve are returned regardless.
func (s *Session) ListBroadcasts(ctx context.Context, ch media.Channel) ([]media.Broadcast, error) {
	q := url.Values{}
	q.Set("user_id", strconv.FormatInt(ch.ID, 10))
	q.Set("first", "100")

	var ids []int64
	for doc, err := range s.pages(ctx, singlePage, s.apiURL(nil, "helix", "videos"), q) {
		if err != nil {
			return nil, fmt.Errorf("listing broadcasts for %s: %w", ch.Name, err)
		}
		for _, raw := range doc.All("id") {
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || id <= 0 {
				continue
			}
			ids = append(ids, id)
		}
	}

	resolved := make([]media.Broadcast, len(ids))
	errs := make([]error, len(ids))

	var g errgroup.Group
	g.SetLimit(s.opts.concurrency)
	for i, id := range ids {
		g.Go(func() error {
			resolved[i], errs[i] = s.ResolveBroadcast(ctx, id)
			return nil
		})
	}
	_ = g.Wait()

	out := make([]media.Broadcast, 0, len(ids))
	for i, b := range resolved {
		if errs[i] == nil {
			out = append(out, b)
		}
	}

	return out, errors.Join(errs...)
}

// ResolveBroadcast looks up a single video by id.
// Any failure to find it, including a failed request, is an *InvalidIDError.
func (s *Session) ResolveBroadcast(ctx context.Context, id int64) (media.Broadcast, error) {
	doc, err := s.videoDetail(ctx, id)
	if err != nil {
		return media.Broadcast{}, &InvalidIDError{ID: id, Err: err}
	}

	rawType, ok := doc.First("type")
	if !ok {
		return media.Broadcast{}, &InvalidIDError{ID: id}
	}
	title, _ := doc.First("title")

	return media.Broadcast{
		ID:    id,
		Title: title,
		Type:  media.ParseBroadcastType(rawType),
	}, nil
}

func (s *Session) videoDetail(ctx context.Context, id int64) (*extract.Document, error) {
	if id <= 0 {
		return nil, errors.New("video ID must be positive")
	}

	q := url.Values{}
	q.Set("id", strconv.FormatInt(id, 10))
	body, err := s.Fetch(ctx, http.MethodGet, s.apiURL(q, "helix", "videos"), true)
	if err != nil {
		return nil, err
	}
	return extract.Parse(body), nil
}
