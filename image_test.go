package clipdex

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"strings"
	"testing"
)

func testImage() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	return img
}

func TestEncodeDataURL(t *testing.T) {
	u, err := EncodeDataURL(testImage())
	if err != nil {
		t.Fatalf("EncodeDataURL: %v", err)
	}
	if !strings.HasPrefix(u, "data:image/png;base64,") {
		t.Fatalf("data URL prefix: %q", u[:30])
	}

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(u, "data:image/png;base64,"))
	if err != nil {
		t.Fatalf("base64: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("png: %v", err)
	}
	if img.Bounds().Dx() != 4 || img.Bounds().Dy() != 3 {
		t.Errorf("bounds = %v", img.Bounds())
	}
	if r, _, _, _ := img.At(1, 1).RGBA(); r != 0xffff {
		t.Errorf("pixel (1,1) red = %x, want ffff", r)
	}
}

func TestQueryImage_FormFields(t *testing.T) {
	env := newTestEnv(t)

	sub := []Item{{"id": "1"}}
	res, err := env.client.QueryImage(t.Context(), ImageQuery{SubQuery: sub, Image: testImage()})
	if err != nil {
		t.Fatalf("QueryImage: %v", err)
	}
	if len(res) != 1 || res[0].String("id") != "1" {
		t.Errorf("results = %v, want only entry 1", res)
	}

	req := env.onlyRequest(t)
	if req.Method != http.MethodPost || req.Path != "/query-image/" {
		t.Errorf("request = %s %s", req.Method, req.Path)
	}
	if !strings.HasPrefix(req.ContentType, "application/x-www-form-urlencoded") {
		t.Errorf("content-type = %q", req.ContentType)
	}
	if got := req.Form.Get("subquery"); got != `[{"id":"1"}]` {
		t.Errorf("subquery = %q", got)
	}
	want, _ := EncodeDataURL(testImage())
	if got := req.Form.Get("imageBase64"); got != want {
		t.Errorf("imageBase64 does not match the encoded image")
	}
}

func TestQueryImage_NilSubQuery(t *testing.T) {
	env := newTestEnv(t)

	res, err := env.client.QueryImage(t.Context(), ImageQuery{Image: testImage()})
	if err != nil {
		t.Fatalf("QueryImage: %v", err)
	}
	if len(res) != 3 {
		t.Errorf("results = %d, want 3", len(res))
	}
	if got := env.onlyRequest(t).Form.Get("subquery"); got != "null" {
		t.Errorf("subquery = %q, want null", got)
	}
}

func TestQueryImage_NilImage(t *testing.T) {
	env := newTestEnv(t)

	if _, err := env.client.QueryImage(t.Context(), ImageQuery{}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("error = %v, want ErrInvalidInput", err)
	}
	if n := len(env.backend.Requests()); n != 0 {
		t.Errorf("backend received %d requests, want 0", n)
	}
}
