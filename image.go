package clipdex

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"net/http"

	"github.com/go-resty/resty/v2"
)

const dataURLPrefix = "data:image/png;base64,"

// EncodeDataURL renders img as a PNG data URL.
func EncodeDataURL(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("encode png: %w", err)
	}
	return dataURLPrefix + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// QueryImage searches by image. The image goes out as form field imageBase64
// and the sub-query as a JSON string in field subquery.
func (c *Client) QueryImage(ctx context.Context, q ImageQuery) (Results, error) {
	if q.Image == nil {
		return nil, invalidInput(opQueryImage, "image is nil")
	}

	dataURL, err := EncodeDataURL(q.Image)
	if err != nil {
		return nil, fmt.Errorf("clipdex: %s: %w", opQueryImage, err)
	}
	sub, err := json.Marshal(q.SubQuery)
	if err != nil {
		return nil, fmt.Errorf("clipdex: %s: encode subquery: %w", opQueryImage, err)
	}

	var out Results
	err = c.send(ctx, opQueryImage, http.MethodPost, pathQueryImage, func(r *resty.Request) {
		r.SetFormData(map[string]string{
			"subquery":    string(sub),
			"imageBase64": dataURL,
		})
	}, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}
