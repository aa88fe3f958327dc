package twitch

import (
	"context"
	"iter"
	"net/http"
	"net/url"

	"vodgrep/internal/extract"
)

// pageStrategy describes how an endpoint hands out its next-page token.
type pageStrategy struct {
	cursorField  string // Response field carrying the next cursor, empty for one page only
	cursorParam  string // Query parameter the cursor is sent back in
	clientHeader bool   // Whether the Client-Id header is sent
}

var (
	// Helix: pagination.cursor, sent back as ?after=.
	helixPaging = pageStrategy{cursorField: "cursor", cursorParam: "after", clientHeader: true}

	// Legacy v5 comments: _next, sent back as ?cursor=. The endpoint rejects
	// the session's own Client-Id header.
	legacyPaging = pageStrategy{cursorField: "_next", cursorParam: "cursor"}

	singlePage = pageStrategy{clientHeader: true}
)

// pages fetches base with query, then follows cursors until a page has none,
// the cursor repeats, or the consumer stops. A failed fetch is yielded once
// and ends the sequence.
func (s *Session) pages(ctx context.Context, ps pageStrategy, base string, query url.Values) iter.Seq2[*extract.Document, error] {
	return func(yield func(*extract.Document, error) bool) {
		cursor := ""
		for {
			q := url.Values{}
			for k, v := range query {
				q[k] = v
			}
			if cursor != "" {
				q.Set(ps.cursorParam, cursor)
			}

			u := base
			if len(q) > 0 {
				u += "?" + q.Encode()
			}

			body, err := s.Fetch(ctx, http.MethodGet, u, ps.clientHeader)
			if err != nil {
				yield(nil, err)
				return
			}

			doc := extract.Parse(body)
			if !yield(doc, nil) {
				return
			}

			if ps.cursorField == "" {
				return
			}
			next, ok := doc.First(ps.cursorField)
			if !ok || next == "" || next == cursor {
				return
			}
			cursor = next
		}
	}
}
