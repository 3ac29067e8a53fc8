package clipdex

import (
	"net/url"
	"strings"
)

// ScreenshotURL returns the URL serving the thumbnail stored at path on the
// backend host. The backend route takes the path as one segment with "/"
// replaced by "|".
func (c *Client) ScreenshotURL(path string) string {
	seg := strings.ReplaceAll(path, "/", "|")
	return c.baseURL + pathScreenshot + url.PathEscape(seg)
}
