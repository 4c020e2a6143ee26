package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/sdfexpand/pkg/cache"
	errs "github.com/matzehuels/sdfexpand/pkg/errors"
	"github.com/matzehuels/sdfexpand/pkg/pipeline"
)

const rateChangeGraph = `{
  "actors": ["A", "B"],
  "channels": [
    {"source": "A", "target": "B", "production": 2, "consumption": 3, "initial_tokens": 1}
  ]
}`

const rateChangeTOML = `actors = ["A", "B"]

[[channels]]
source = "A"
target = "B"
production = 2
consumption = 3
initial_tokens = 1
`

const disconnectedGraph = `{
  "actors": ["A", "B", "C"],
  "channels": [
    {"source": "A", "target": "B", "production": 1, "consumption": 1}
  ]
}`

func newTestServer(t *testing.T, cfg Config) *httptest.Server {
	t.Helper()
	logger := log.New(io.Discard)
	cfg.Logger = logger
	runner := pipeline.NewRunner(cache.NewNullCache(), nil, logger)
	srv := httptest.NewServer(New(runner, cfg).Handler())
	t.Cleanup(func() {
		srv.Close()
		runner.Close()
	})
	return srv
}

func post(t *testing.T, srv *httptest.Server, path, contentType, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequestWithContext(t.Context(), http.MethodPost, srv.URL+path, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, Config{})
	req, _ := http.NewRequestWithContext(t.Context(), http.MethodGet, srv.URL+"/health", nil)
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	h := decode[healthResponse](t, resp)
	if h.Status != "ok" || h.Service != "sdfexpand" {
		t.Errorf("health = %+v", h)
	}
}

func TestTopology(t *testing.T) {
	srv := newTestServer(t, Config{})
	resp := post(t, srv, "/v1/topology", "application/json", rateChangeGraph)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	got := decode[topologyResponse](t, resp)
	if len(got.Actors) != 2 || got.Actors[0] != "A" || got.Actors[1] != "B" {
		t.Errorf("actors = %v", got.Actors)
	}
	if len(got.Matrix) != 1 || got.Matrix[0][0] != 2 || got.Matrix[0][1] != -3 {
		t.Errorf("matrix = %v, want [[2 -3]]", got.Matrix)
	}
}

func TestRepetitions(t *testing.T) {
	tests := []struct {
		name        string
		path        string
		contentType string
		body        string
	}{
		{"json", "/v1/repetitions", "application/json", rateChangeGraph},
		{"no content type", "/v1/repetitions", "", rateChangeGraph},
		{"toml content type", "/v1/repetitions", "application/toml; charset=utf-8", rateChangeTOML},
		{"toml query", "/v1/repetitions?input=toml", "text/plain", rateChangeTOML},
	}

	srv := newTestServer(t, Config{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, srv, tt.path, tt.contentType, tt.body)
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("status = %d, want 200", resp.StatusCode)
			}
			got := decode[repetitionsResponse](t, resp)
			if len(got.Vector) != 2 || got.Vector[0] != 3 || got.Vector[1] != 2 {
				t.Errorf("vector = %v, want [3 2]", got.Vector)
			}
			if got.Firings != 5 {
				t.Errorf("firings = %d, want 5", got.Firings)
			}
			if got.Actors[1].Actor != "B" || got.Actors[1].Firings != 2 {
				t.Errorf("actors[1] = %+v", got.Actors[1])
			}
			if got.Cached {
				t.Error("null cache reported a hit")
			}
		})
	}
}

func TestExpand(t *testing.T) {
	type channel struct {
		Source string `json:"source"`
		Target string `json:"target"`
		Delay  int64  `json:"delay"`
		Tokens int    `json:"tokens"`
	}
	type expansion struct {
		Actors   []struct{ ID string } `json:"actors"`
		Channels []channel             `json:"channels"`
	}

	srv := newTestServer(t, Config{})

	resp := post(t, srv, "/v1/expand?workers=2", "application/json", rateChangeGraph)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	got := decode[expansion](t, resp)
	if len(got.Actors) != 5 {
		t.Errorf("firings = %d, want 5", len(got.Actors))
	}
	if len(got.Channels) != 6 {
		t.Errorf("channels = %d, want 6", len(got.Channels))
	}

	resp = post(t, srv, "/v1/expand?merge=true", "application/json", rateChangeGraph)
	merged := decode[expansion](t, resp)
	if len(merged.Channels) != 4 {
		t.Fatalf("merged channels = %d, want 4", len(merged.Channels))
	}
	var delayed *channel
	for i, c := range merged.Channels {
		if c.Delay > 0 {
			delayed = &merged.Channels[i]
		}
	}
	if delayed == nil || delayed.Source != "0-2" || delayed.Target != "1-0" || delayed.Delay != 1 {
		t.Errorf("delayed edge = %+v, want 0-2 -> 1-0 delay 1", delayed)
	}
}

func TestRenderDOT(t *testing.T) {
	srv := newTestServer(t, Config{})

	tests := []struct {
		name  string
		query string
		want  string
	}{
		{"sdf", "format=dot&detailed=true", "×3"},
		{"hsdf", "format=dot&view=hsdf", "cluster_0"},
		{"hsdf merged", "format=dot&view=hsdf&merge=1", "digraph G {"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, srv, "/v1/render?"+tt.query, "application/json", rateChangeGraph)
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("status = %d, want 200", resp.StatusCode)
			}
			if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/vnd.graphviz") {
				t.Errorf("Content-Type = %q", ct)
			}
			if got := resp.Header.Get("X-Cache"); got != "MISS" {
				t.Errorf("X-Cache = %q, want MISS", got)
			}
			body, _ := io.ReadAll(resp.Body)
			if !strings.Contains(string(body), tt.want) {
				t.Errorf("body missing %q:\n%s", tt.want, body)
			}
		})
	}
}

func TestErrors(t *testing.T) {
	srv := newTestServer(t, Config{})

	tests := []struct {
		name        string
		path        string
		contentType string
		body        string
		status      int
		code        errs.Code
	}{
		{"bad json", "/v1/topology", "application/json", `{"actors": [`, http.StatusBadRequest, errs.ErrCodeInvalidFormat},
		{"unknown field", "/v1/topology", "application/json", `{"actorz": []}`, http.StatusBadRequest, errs.ErrCodeInvalidFormat},
		{"unknown actor", "/v1/topology", "application/json", `{"actors":["A"],"channels":[{"source":"A","target":"Z","production":1,"consumption":1}]}`, http.StatusBadRequest, errs.ErrCodeUnknownActor},
		{"bad content type", "/v1/topology", "image/png", `{}`, http.StatusBadRequest, errs.ErrCodeInvalidFormat},
		{"bad input param", "/v1/topology?input=xml", "", `{}`, http.StatusBadRequest, errs.ErrCodeInvalidFormat},
		{"disconnected", "/v1/repetitions", "application/json", disconnectedGraph, http.StatusUnprocessableEntity, errs.ErrCodeStructural},
		{"disconnected expand", "/v1/expand", "application/json", disconnectedGraph, http.StatusUnprocessableEntity, errs.ErrCodeStructural},
		{"bad merge", "/v1/expand?merge=maybe", "application/json", rateChangeGraph, http.StatusBadRequest, errs.ErrCodeInvalidInput},
		{"bad workers", "/v1/expand?workers=0", "application/json", rateChangeGraph, http.StatusBadRequest, errs.ErrCodeInvalidInput},
		{"bad view", "/v1/render?view=tower", "application/json", rateChangeGraph, http.StatusBadRequest, errs.ErrCodeInvalidInput},
		{"bad format", "/v1/render?format=gif", "application/json", rateChangeGraph, http.StatusBadRequest, errs.ErrCodeInvalidInput},
		{"bad scale", "/v1/render?scale=big", "application/json", rateChangeGraph, http.StatusBadRequest, errs.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, srv, tt.path, tt.contentType, tt.body)
			if resp.StatusCode != tt.status {
				body, _ := io.ReadAll(resp.Body)
				t.Fatalf("status = %d, want %d: %s", resp.StatusCode, tt.status, body)
			}
			got := decode[errorResponse](t, resp)
			if got.Code != tt.code {
				t.Errorf("code = %q, want %q (%s)", got.Code, tt.code, got.Message)
			}
			if tt.status == http.StatusUnprocessableEntity && got.Hint == "" {
				t.Error("structural error without a hint")
			}
		})
	}
}

func TestLimits(t *testing.T) {
	t.Run("body size", func(t *testing.T) {
		srv := newTestServer(t, Config{MaxBodyBytes: 32})
		resp := post(t, srv, "/v1/topology", "application/json", rateChangeGraph)
		if resp.StatusCode != http.StatusRequestEntityTooLarge {
			t.Fatalf("status = %d, want 413", resp.StatusCode)
		}
		if got := decode[errorResponse](t, resp); got.Message != "request body too large" {
			t.Errorf("message = %q", got.Message)
		}
	})

	t.Run("token count", func(t *testing.T) {
		srv := newTestServer(t, Config{MaxTokens: 5})
		for _, path := range []string{"/v1/expand", "/v1/render?view=hsdf&format=dot"} {
			resp := post(t, srv, path, "application/json", rateChangeGraph)
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("%s: status = %d, want 400", path, resp.StatusCode)
				continue
			}
			if got := decode[errorResponse](t, resp); !strings.Contains(got.Message, "6 tokens") {
				t.Errorf("%s: message = %q", path, got.Message)
			}
		}

		// The SDF view never expands.
		resp := post(t, srv, "/v1/render?format=dot", "application/json", rateChangeGraph)
		if resp.StatusCode != http.StatusOK {
			t.Errorf("sdf render status = %d, want 200", resp.StatusCode)
		}
	})
}

func TestRequestFormat(t *testing.T) {
	tests := []struct {
		query       string
		contentType string
		want        string
		wantErr     bool
	}{
		{"", "", "json", false},
		{"", "application/json", "json", false},
		{"", "application/x-yaml", "yaml", false},
		{"", "text/toml; charset=utf-8", "toml", false},
		{"?input=yaml", "application/json", "yaml", false},
		{"?input=ini", "", "", true},
		{"", "text/html", "", true},
		{"", ";;;", "", true},
	}
	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodPost, "/v1/topology"+tt.query, nil)
		if tt.contentType != "" {
			r.Header.Set("Content-Type", tt.contentType)
		}
		got, err := requestFormat(r)
		if (err != nil) != tt.wantErr {
			t.Errorf("requestFormat(%q, %q) error = %v, wantErr %v", tt.query, tt.contentType, err, tt.wantErr)
			continue
		}
		if string(got) != tt.want {
			t.Errorf("requestFormat(%q, %q) = %q, want %q", tt.query, tt.contentType, got, tt.want)
		}
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{errs.New(errs.ErrCodeInvalidInput, "x"), http.StatusBadRequest},
		{errs.New(errs.ErrCodeInvalidRate, "x"), http.StatusBadRequest},
		{errs.New(errs.ErrCodeStructural, "x"), http.StatusUnprocessableEntity},
		{errs.New(errs.ErrCodeSign, "x"), http.StatusUnprocessableEntity},
		{errs.New(errs.ErrCodeFileNotFound, "x"), http.StatusNotFound},
		{errs.New(errs.ErrCodeUnsupported, "x"), http.StatusNotImplemented},
		{errs.New(errs.ErrCodeInternal, "x"), http.StatusInternalServerError},
		{io.ErrUnexpectedEOF, http.StatusInternalServerError},
		{errs.Wrap(errs.ErrCodeInvalidFormat, &http.MaxBytesError{Limit: 1}, "decode json"), http.StatusRequestEntityTooLarge},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestConfigDefaults(t *testing.T) {
	var c Config
	c.setDefaults()
	if c.Addr != DefaultAddr || c.MaxBodyBytes != DefaultMaxBodyBytes || c.MaxTokens != DefaultMaxTokens {
		t.Errorf("defaults = %+v", c)
	}
	if c.Workers != pipeline.DefaultWorkers || c.RequestTimeout != DefaultRequestTimeout || c.Logger == nil {
		t.Errorf("defaults = %+v", c)
	}
}
