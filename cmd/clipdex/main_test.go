package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kailas-cloud/clipdex/internal/stub"
)

func setupBackend(t *testing.T) *stub.Server {
	t.Helper()
	backend := stub.New(stub.Config{})
	srv := httptest.NewServer(backend.Handler())
	t.Cleanup(srv.Close)

	t.Setenv("ENV", "local")
	t.Setenv("CLIPDEX_BACKEND_URL", srv.URL)
	t.Setenv("LOG_LEVEL", "error")
	return backend
}

func TestRun_NoArgs(t *testing.T) {
	if err := run(nil, &bytes.Buffer{}); !errors.Is(err, errUsage) {
		t.Fatalf("err = %v, want errUsage", err)
	}
}

func TestRun_Version(t *testing.T) {
	var out bytes.Buffer
	if err := run([]string{"version"}, &out); err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.HasPrefix(out.String(), "dev") {
		t.Errorf("output = %q", out.String())
	}
}

func TestRun_Card(t *testing.T) {
	var out bytes.Buffer
	err := run([]string{"card", "-kind", "movie", "-cid", "7", "-thumb", "thumb.png", "-caption", "A caption"}, &out)
	if err != nil {
		t.Fatalf("card: %v", err)
	}
	for _, want := range []string{`id="movie-7"`, `id="movie-7-similar"`, `id="movie-7-movie"`, "A caption"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %s", want)
		}
	}
}

func TestRun_Query(t *testing.T) {
	backend := setupBackend(t)

	var out bytes.Buffer
	if err := run([]string{"query", "-q", "dog", "-embedding"}, &out); err != nil {
		t.Fatalf("query: %v", err)
	}
	var res []map[string]any
	if err := json.Unmarshal(out.Bytes(), &res); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out.String())
	}
	if len(res) != 3 {
		t.Errorf("results = %d, want 3", len(res))
	}
	reqs := backend.Requests()
	if len(reqs) != 1 || string(reqs[0].Body) != `{"subquery":"","query":"dog","embedding":true}` {
		t.Errorf("requests = %+v", reqs)
	}
}

func TestRun_QueryWithinEarlierResults(t *testing.T) {
	backend := setupBackend(t)

	var out bytes.Buffer
	args := []string{"query", "-q", "car", "-sub", `[{"id":"2"}]`}
	if err := run(args, &out); err != nil {
		t.Fatalf("query: %v", err)
	}
	var res []map[string]any
	if err := json.Unmarshal(out.Bytes(), &res); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out.String())
	}
	if len(res) != 1 || res[0]["id"] != "2" {
		t.Errorf("results = %v, want only entry 2", res)
	}
	reqs := backend.Requests()
	if len(reqs) != 1 || string(reqs[0].Body) != `{"subquery":[{"id":"2"}],"query":"car","embedding":false}` {
		t.Errorf("requests = %+v", reqs)
	}
}

func TestRun_Submit(t *testing.T) {
	backend := setupBackend(t)

	var out bytes.Buffer
	if err := run([]string{"submit", "-movie", "trailer_01", "-frame", "480"}, &out); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if reqs := backend.Requests(); len(reqs) != 1 || reqs[0].Path != "/submit/trailer_01/480/" {
		t.Errorf("requests = %+v", reqs)
	}
}

func TestRun_Bookmarks(t *testing.T) {
	setupBackend(t)

	var out bytes.Buffer
	if err := run([]string{"bookmarks", "-set", "1, 2"}, &out); err != nil {
		t.Fatalf("bookmarks: %v", err)
	}
	var res []map[string]any
	if err := json.Unmarshal(out.Bytes(), &res); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if len(res) != 2 {
		t.Errorf("bookmarks = %d, want 2", len(res))
	}
}

func TestRun_BackendFailure(t *testing.T) {
	backend := setupBackend(t)
	backend.SetReply(stub.RouteMovieClips, stub.Reply{Status: 500, Body: "boom"})

	err := run([]string{"clips", "-movie", "trailer_01"}, &bytes.Buffer{})
	if err == nil || !strings.Contains(err.Error(), "500") {
		t.Fatalf("err = %v, want 500 failure", err)
	}
}

func TestRun_UnknownCommand(t *testing.T) {
	setupBackend(t)
	if err := run([]string{"frobnicate"}, &bytes.Buffer{}); !errors.Is(err, errUsage) {
		t.Fatalf("err = %v, want errUsage", err)
	}
}

func TestSplitIDs(t *testing.T) {
	got := splitIDs(" 1, ,2,3 ")
	if strings.Join(got, "|") != "1|2|3" {
		t.Errorf("splitIDs = %v", got)
	}
	if got := splitIDs(""); len(got) != 0 {
		t.Errorf("splitIDs(\"\") = %v", got)
	}
}
