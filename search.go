package clipdex

import (
	"context"
	"strings"
)

// Operation names used in errors, logs and metric labels.
const (
	opQuery           = "query"
	opSimilar         = "similar"
	opMovieClips      = "movie_clips"
	opSubmit          = "submit"
	opQueryImage      = "query_image"
	opUpdateBookmarks = "update_bookmarks"
	opBookmarks       = "bookmarks"
)

type refRequest struct {
	Query any `json:"query"`
}

// Query runs a text search. The query string must not be empty.
func (c *Client) Query(ctx context.Context, q TextQuery) (Results, error) {
	if strings.TrimSpace(q.Query) == "" {
		return nil, invalidInput(opQuery, "query is empty")
	}
	return c.postJSON(ctx, opQuery, pathQuery, q)
}

// Similar returns items that look like ref. ref is usually an Item from an
// earlier result and is sent as-is.
func (c *Client) Similar(ctx context.Context, ref any) (Results, error) {
	if nilRef(ref) {
		return nil, invalidInput(opSimilar, "reference item is nil")
	}
	return c.postJSON(ctx, opSimilar, pathSimilar, refRequest{Query: ref})
}

// MovieClips returns every clip of the movie ref belongs to.
func (c *Client) MovieClips(ctx context.Context, ref any) (Results, error) {
	if nilRef(ref) {
		return nil, invalidInput(opMovieClips, "reference item is nil")
	}
	return c.postJSON(ctx, opMovieClips, pathMovieClips, refRequest{Query: ref})
}

// nilRef reports whether ref would encode as JSON null.
func nilRef(ref any) bool {
	switch v := ref.(type) {
	case nil:
		return true
	case Item:
		return v == nil
	case map[string]any:
		return v == nil
	case *Item:
		return v == nil || *v == nil
	default:
		return false
	}
}
