package clipdex

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"
)

// Submit reports movie/frame as the answer. The response body is ignored.
// Path segments are sent unescaped.
func (c *Client) Submit(ctx context.Context, movie string, frame int) error {
	if strings.TrimSpace(movie) == "" {
		return invalidInput(opSubmit, "movie is empty")
	}
	return c.send(ctx, opSubmit, http.MethodGet, pathSubmit, func(r *resty.Request) {
		r.SetRawPathParams(map[string]string{
			"movie": movie,
			"frame": strconv.Itoa(frame),
		})
	}, nil)
}
