// Package stub serves a fake retrieval backend with canned entries. It
// implements every route the client calls, records each request and can be
// told to answer a route with an arbitrary status.
package stub

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/kailas-cloud/clipdex/internal/metrics"
)

// Route patterns.
const (
	RouteQuery           = "/query/"
	RouteSimilar         = "/similar/"
	RouteMovieClips      = "/get-movie-clips/"
	RouteSubmit          = "/submit/{movie}/{frame}/"
	RouteQueryImage      = "/query-image/"
	RouteUpdateBookmarks = "/update-bookmarks/"
	RouteBookmarks       = "/get-bookmarks/"
)

const maxBodySize = 16 << 20

var dataURLRe = regexp.MustCompile(`^data:image/.+;base64,`)

// Entry is one indexed frame as the backend returns it.
type Entry = map[string]any

// Request is one call received by the stub.
type Request struct {
	Method      string
	Path        string
	Route       string
	ContentType string
	Header      http.Header
	Body        []byte
	Form        url.Values
}

// Reply overrides a route's response. A string Body is written as text,
// anything else as JSON.
type Reply struct {
	Status int
	Body   any
}

// Config holds the stub settings. Zero values are usable.
type Config struct {
	Logger  *zap.Logger
	Metrics *metrics.HTTP
	Entries []Entry // defaults to SampleEntries()
}

// Server is the fake backend.
type Server struct {
	mu        sync.Mutex
	requests  []Request
	replies   map[string]Reply
	bookmarks []string

	entries []Entry
	logger  *zap.Logger
	router  chi.Router
}

// New builds a stub server.
func New(cfg Config) *Server {
	s := &Server{
		replies: make(map[string]Reply),
		entries: cfg.Entries,
		logger:  cfg.Logger,
	}
	if s.entries == nil {
		s.entries = SampleEntries()
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}

	r := chi.NewRouter()
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware())
	}
	r.Post(RouteQuery, s.handle(RouteQuery, s.query))
	r.Post(RouteSimilar, s.handle(RouteSimilar, s.similar))
	r.Post(RouteMovieClips, s.handle(RouteMovieClips, s.movieClips))
	r.Get(RouteSubmit, s.handle(RouteSubmit, s.submit))
	r.Post(RouteQueryImage, s.handle(RouteQueryImage, s.queryImage))
	r.Post(RouteUpdateBookmarks, s.handle(RouteUpdateBookmarks, s.updateBookmarks))
	r.Get(RouteBookmarks, s.handle(RouteBookmarks, s.getBookmarks))
	s.router = r
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// SetReply makes route answer with reply until Reset.
func (s *Server) SetReply(route string, reply Reply) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replies[route] = reply
}

// Requests returns a copy of the recorded requests in arrival order.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.requests)
}

// Reset drops recorded requests, replies and bookmarks.
func (s *Server) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = nil
	s.replies = make(map[string]Reply)
	s.bookmarks = nil
}

type handlerFunc func(w http.ResponseWriter, r *http.Request, body []byte)

// handle records the request and applies any reply override before calling fn.
func (s *Server) handle(route string, fn handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
		if err != nil {
			writeText(w, http.StatusBadRequest, "read body: "+err.Error())
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(body))

		var form url.Values
		if strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded") {
			if err := r.ParseForm(); err != nil {
				writeText(w, http.StatusBadRequest, "parse form: "+err.Error())
				return
			}
			form = r.PostForm
		}

		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method:      r.Method,
			Path:        r.URL.Path,
			Route:       route,
			ContentType: r.Header.Get("Content-Type"),
			Header:      r.Header.Clone(),
			Body:        body,
			Form:        form,
		})
		reply, overridden := s.replies[route]
		s.mu.Unlock()

		s.logger.Debug("stub request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("request_id", r.Header.Get("X-Request-ID")),
		)

		if overridden {
			writeReply(w, reply)
			return
		}
		fn(w, r, body)
	}
}

func (s *Server) query(w http.ResponseWriter, _ *http.Request, body []byte) {
	var req struct {
		Query     string          `json:"query"`
		SubQuery  json.RawMessage `json:"subquery"`
		Embedding bool            `json:"embedding"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		writeText(w, http.StatusBadRequest, "invalid body: "+err.Error())
		return
	}

	res := s.restrict(req.SubQuery)
	if !req.Embedding {
		res = matchLabels(res, req.Query)
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) similar(w http.ResponseWriter, _ *http.Request, body []byte) {
	var req struct {
		Query struct {
			ID any `json:"id"`
		} `json:"query"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		writeText(w, http.StatusBadRequest, "invalid body: "+err.Error())
		return
	}
	id := fmt.Sprint(req.Query.ID)
	if !slices.ContainsFunc(s.entries, func(e Entry) bool { return fmt.Sprint(e["id"]) == id }) {
		writeText(w, http.StatusNotFound, "not found")
		return
	}
	writeJSON(w, http.StatusOK, s.entries)
}

func (s *Server) movieClips(w http.ResponseWriter, _ *http.Request, body []byte) {
	var req struct {
		Query struct {
			Location struct {
				Movie string `json:"movie"`
			} `json:"location"`
		} `json:"query"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		writeText(w, http.StatusBadRequest, "invalid body: "+err.Error())
		return
	}
	res := []Entry{}
	for _, e := range s.entries {
		if loc, ok := e["location"].(map[string]any); ok && loc["movie"] == req.Query.Location.Movie {
			res = append(res, e)
		}
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) submit(w http.ResponseWriter, r *http.Request, _ []byte) {
	if _, err := strconv.Atoi(chi.URLParam(r, "frame")); err != nil {
		writeText(w, http.StatusNotFound, "frame must be an integer")
		return
	}
	s.logger.Info("answer submitted",
		zap.String("movie", chi.URLParam(r, "movie")),
		zap.String("frame", chi.URLParam(r, "frame")),
	)
	writeText(w, http.StatusOK, "Submitted")
}

func (s *Server) queryImage(w http.ResponseWriter, r *http.Request, _ []byte) {
	data := r.PostForm.Get("imageBase64")
	if !dataURLRe.MatchString(data) {
		writeText(w, http.StatusBadRequest, "imageBase64 must be an image data URL")
		return
	}
	if _, err := base64.StdEncoding.DecodeString(dataURLRe.ReplaceAllString(data, "")); err != nil {
		writeText(w, http.StatusBadRequest, "imageBase64: "+err.Error())
		return
	}
	var sub json.RawMessage
	if err := json.Unmarshal([]byte(r.PostForm.Get("subquery")), &sub); err != nil {
		writeText(w, http.StatusBadRequest, "subquery must be JSON: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.restrict(sub))
}

func (s *Server) updateBookmarks(w http.ResponseWriter, _ *http.Request, body []byte) {
	var req struct {
		Bookmarks []any `json:"bookmarks"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		writeText(w, http.StatusBadRequest, "invalid body: "+err.Error())
		return
	}
	ids := make([]string, len(req.Bookmarks))
	for i, b := range req.Bookmarks {
		ids[i] = fmt.Sprint(b)
	}

	s.mu.Lock()
	s.bookmarks = ids
	s.mu.Unlock()
	writeText(w, http.StatusOK, "OK")
}

func (s *Server) getBookmarks(w http.ResponseWriter, _ *http.Request, _ []byte) {
	s.mu.Lock()
	ids := slices.Clone(s.bookmarks)
	s.mu.Unlock()

	res := []Entry{}
	for _, e := range s.entries {
		if slices.Contains(ids, fmt.Sprint(e["id"])) {
			res = append(res, e)
		}
	}
	writeJSON(w, http.StatusOK, res)
}

// restrict keeps entries whose id appears in a sub-query list of {"id": ...}
// objects. Anything else (empty string, null, empty list) means no restriction.
func (s *Server) restrict(sub json.RawMessage) []Entry {
	var refs []struct {
		ID any `json:"id"`
	}
	if len(sub) == 0 || json.Unmarshal(sub, &refs) != nil || len(refs) == 0 {
		return slices.Clone(s.entries)
	}
	ids := make([]string, len(refs))
	for i, r := range refs {
		ids[i] = fmt.Sprint(r.ID)
	}
	res := []Entry{}
	for _, e := range s.entries {
		if slices.Contains(ids, fmt.Sprint(e["id"])) {
			res = append(res, e)
		}
	}
	return res
}

// matchLabels keeps entries that match every comma-separated token of q.
// A token matches when it is a substring of any label.
func matchLabels(entries []Entry, q string) []Entry {
	var tokens []string
	for _, t := range strings.Split(q, ",") {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			tokens = append(tokens, t)
		}
	}

	res := []Entry{}
	for _, e := range entries {
		labels := stringsOf(e["labels"])
		all := true
		for _, t := range tokens {
			if !slices.ContainsFunc(labels, func(l string) bool { return strings.Contains(l, t) }) {
				all = false
				break
			}
		}
		if all {
			res = append(res, e)
		}
	}
	return res
}

func stringsOf(v any) []string {
	switch vv := v.(type) {
	case []string:
		return vv
	case []any:
		out := make([]string, 0, len(vv))
		for _, x := range vv {
			out = append(out, fmt.Sprint(x))
		}
		return out
	default:
		return nil
	}
}

// SampleEntries returns a small fixed index of two movies.
func SampleEntries() []Entry {
	return []Entry{
		sampleEntry("1", "trailer_01", 120, "a dog runs across a street", "dog", "street", "car"),
		sampleEntry("2", "trailer_01", 480, "two people talk in a car", "person", "car"),
		sampleEntry("3", "trailer_02", 60, "a cat sleeps on a sofa", "cat", "sofa"),
	}
}

func sampleEntry(id, movie string, frame int, caption string, labels ...string) Entry {
	return Entry{
		"id":        id,
		"caption":   caption,
		"labels":    labels,
		"thumbnail": fmt.Sprintf("data/thumbnails/%s/%d.jpg", movie, frame),
		"location": map[string]any{
			"movie":     movie,
			"frame_pos": frame,
		},
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeText(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, msg)
}

func writeReply(w http.ResponseWriter, reply Reply) {
	status := reply.Status
	if status == 0 {
		status = http.StatusOK
	}
	if msg, ok := reply.Body.(string); ok {
		writeText(w, status, msg)
		return
	}
	writeJSON(w, status, reply.Body)
}
