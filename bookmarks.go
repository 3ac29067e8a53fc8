package clipdex

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"
)

type bookmarksRequest struct {
	Bookmarks []string `json:"bookmarks"`
}

// UpdateBookmarks replaces the server-side bookmark set with ids.
func (c *Client) UpdateBookmarks(ctx context.Context, ids []string) error {
	if ids == nil {
		ids = []string{}
	}
	payload, err := json.Marshal(bookmarksRequest{Bookmarks: ids})
	if err != nil {
		return fmt.Errorf("clipdex: %s: encode request: %w", opUpdateBookmarks, err)
	}
	return c.send(ctx, opUpdateBookmarks, http.MethodPost, pathUpdateBookmarks, func(r *resty.Request) {
		r.SetHeader("Content-Type", contentTypeJSON).SetBody(payload)
	}, nil)
}

// Bookmarks returns the items currently bookmarked on the server.
func (c *Client) Bookmarks(ctx context.Context) (Results, error) {
	var out Results
	if err := c.send(ctx, opBookmarks, http.MethodGet, pathBookmarks, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
