package clipdex

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/clipdex/internal/version"
)

const (
	headerRequestID = "X-Request-ID"
	contentTypeJSON = "application/json;charset=UTF-8"
)

// Backend endpoints.
const (
	pathQuery           = "/query/"
	pathSimilar         = "/similar/"
	pathMovieClips      = "/get-movie-clips/"
	pathSubmit          = "/submit/{movie}/{frame}/"
	pathQueryImage      = "/query-image/"
	pathUpdateBookmarks = "/update-bookmarks/"
	pathBookmarks       = "/get-bookmarks/"
	pathScreenshot      = "/screenshot/"
)

// Client talks to the retrieval backend. It holds no per-request state and
// is safe for concurrent use.
type Client struct {
	http    *resty.Client
	baseURL string
	obs     *observer
}

// New creates a Client. WithBaseURL is required.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.baseURL == "" {
		return nil, errors.New("clipdex: backend base URL required (use WithBaseURL)")
	}
	u, err := url.Parse(cfg.baseURL)
	if err != nil {
		return nil, fmt.Errorf("clipdex: parse base URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("clipdex: base URL %q must be absolute", cfg.baseURL)
	}

	logger := cfg.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	obs, err := newObserver(logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	return &Client{
		http:    newRestyClient(cfg, logger),
		baseURL: strings.TrimRight(cfg.baseURL, "/"),
		obs:     obs,
	}, nil
}

func newRestyClient(cfg *clientConfig, logger *zap.Logger) *resty.Client {
	var c *resty.Client
	if cfg.httpClient != nil {
		c = resty.NewWithClient(cfg.httpClient)
	} else {
		c = resty.New()
	}
	c.SetBaseURL(cfg.baseURL)
	c.SetLogger(logger.Sugar())
	c.SetHeader("User-Agent", "clipdex/"+version.Version)
	if cfg.timeout > 0 {
		c.SetTimeout(cfg.timeout)
	}
	if len(cfg.headers) > 0 {
		c.SetHeaders(cfg.headers)
	}
	return c
}

// BaseURL returns the backend root without a trailing slash.
func (c *Client) BaseURL() string { return c.baseURL }

// send executes one request and, when out is non-nil, decodes the JSON body into it.
// Every failure produces exactly one diagnostic entry through the observer.
func (c *Client) send(
	ctx context.Context, op, method, path string,
	prepare func(*resty.Request), out any,
) (err error) {
	start := time.Now()
	reqID := uuid.NewString()
	target := path
	defer func() { c.obs.observe(op, method, target, reqID, start, err) }()

	req := c.http.R().
		SetContext(ctx).
		SetHeader(headerRequestID, reqID)
	if prepare != nil {
		prepare(req)
	}
	target = resolvePath(path, req.PathParams, req.RawPathParams)

	resp, err := req.Execute(method, path)
	if err != nil {
		return &RequestError{Op: op, Method: method, Path: target, Err: err}
	}
	if !resp.IsSuccess() {
		return &RequestError{
			Op:         op,
			Method:     method,
			Path:       target,
			StatusCode: resp.StatusCode(),
			Status:     resp.Status(),
			Body:       readBodySnippet(resp.Body()),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return &RequestError{
			Op:         op,
			Method:     method,
			Path:       target,
			StatusCode: resp.StatusCode(),
			Status:     resp.Status(),
			Body:       readBodySnippet(resp.Body()),
			Err:        fmt.Errorf("decode response: %w", err),
		}
	}
	return nil
}

// resolvePath fills {name} placeholders the same way resty does: escaped
// values from params, verbatim values from raw.
func resolvePath(path string, params, raw map[string]string) string {
	if len(params) == 0 && len(raw) == 0 {
		return path
	}
	pairs := make([]string, 0, 2*(len(params)+len(raw)))
	for k, v := range params {
		pairs = append(pairs, "{"+k+"}", url.PathEscape(v))
	}
	for k, v := range raw {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(path)
}

// postJSON sends body as application/json and decodes a result list.
func (c *Client) postJSON(ctx context.Context, op, path string, body any) (Results, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("clipdex: %s: encode request: %w", op, err)
	}

	var out Results
	err = c.send(ctx, op, http.MethodPost, path, func(r *resty.Request) {
		r.SetHeader("Content-Type", contentTypeJSON).SetBody(payload)
	}, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}
