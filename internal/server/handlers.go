package server

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"os"
	"strconv"
	"time"

	errs "github.com/matzehuels/sdfexpand/pkg/errors"
	"github.com/matzehuels/sdfexpand/pkg/hsdf"
	sdfio "github.com/matzehuels/sdfexpand/pkg/io"
	"github.com/matzehuels/sdfexpand/pkg/pipeline"
	"github.com/matzehuels/sdfexpand/pkg/sdf"
)

type healthResponse struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Hostname  string `json:"hostname"`
	Timestamp string `json:"ts"`
}

type topologyResponse struct {
	Actors []string  `json:"actors"`
	Matrix [][]int64 `json:"matrix"`
}

type repetitionsResponse struct {
	Vector  []int64       `json:"vector"`
	Actors  []actorFiring `json:"actors"`
	Firings int64         `json:"firings"`
	Cached  bool          `json:"cached"`
}

type actorFiring struct {
	Index   int    `json:"index"`
	Actor   string `json:"actor"`
	Firings int64  `json:"firings"`
}

type errorResponse struct {
	Code    errs.Code `json:"code"`
	Message string    `json:"message"`
	Hint    string    `json:"hint,omitempty"`
}

var contentTypes = map[string]string{
	pipeline.FormatSVG: "image/svg+xml",
	pipeline.FormatPNG: "image/png",
	pipeline.FormatPDF: "application/pdf",
	pipeline.FormatDOT: "text/vnd.graphviz; charset=utf-8",
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	host, _ := os.Hostname()
	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "ok",
		Service:   "sdfexpand",
		Hostname:  host,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
	})
}

func (s *Server) handleTopology(w http.ResponseWriter, r *http.Request) {
	g, err := s.decodeGraph(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, topologyResponse{Actors: g.Actors(), Matrix: g.TopologyMatrix()})
}

func (s *Server) handleRepetitions(w http.ResponseWriter, r *http.Request) {
	g, err := s.decodeGraph(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	a, hit, err := s.runner.AnalyzeWithCacheInfo(r.Context(), g, pipeline.Options{})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := repetitionsResponse{
		Vector:  a.Repetitions,
		Actors:  make([]actorFiring, g.ActorCount()),
		Firings: a.Repetitions.Total(),
		Cached:  hit,
	}
	for i, name := range g.Actors() {
		resp.Actors[i] = actorFiring{Index: i, Actor: name, Firings: a.Repetitions.Of(i)}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleExpand(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	merge, err := boolParam(q.Get("merge"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	workers, err := intParam(q.Get("workers"), s.cfg.Workers)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	g, err := s.decodeGraph(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	a, _, err := s.runner.AnalyzeWithCacheInfo(r.Context(), g, pipeline.Options{})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	h, channels, err := s.expand(r, g, a.Repetitions, workers)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := sdfio.WriteHSDFJSON(h, channels, w, sdfio.HSDFOptions{Merge: merge}); err != nil {
		s.logger.Error("write hsdf", "err", err)
	}
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := pipeline.Options{
		View:    q.Get("view"),
		Formats: []string{pipeline.FormatSVG},
	}
	if f := q.Get("format"); f != "" {
		opts.Formats = []string{f}
	}
	var err error
	if opts.Merge, err = boolParam(q.Get("merge")); err != nil {
		s.writeError(w, r, err)
		return
	}
	if opts.Detailed, err = boolParam(q.Get("detailed")); err != nil {
		s.writeError(w, r, err)
		return
	}
	if v := q.Get("scale"); v != "" {
		if opts.Scale, err = strconv.ParseFloat(v, 64); err != nil {
			s.writeError(w, r, errs.New(errs.ErrCodeInvalidInput, "scale must be a number, got %q", v))
			return
		}
	}
	if err := opts.ValidateForRender(); err != nil {
		s.writeError(w, r, err)
		return
	}

	g, err := s.decodeGraph(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	a, _, err := s.runner.AnalyzeWithCacheInfo(r.Context(), g, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var h *hsdf.Graph
	if opts.IsHSDF() {
		if h, _, err = s.expand(r, g, a.Repetitions, s.cfg.Workers); err != nil {
			s.writeError(w, r, err)
			return
		}
	}

	artifacts, hit, err := s.runner.RenderWithCacheInfo(r.Context(), g, a.Repetitions, h, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	format := opts.Formats[0]
	w.Header().Set("Content-Type", contentTypes[format])
	w.Header().Set("X-Cache", cacheStatus(hit))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(artifacts[format])
}

// expand collects the HSDF channels of g, refusing expansions larger than
// the configured token limit.
func (s *Server) expand(r *http.Request, g *sdf.Graph, reps sdf.Repetitions, workers int) (*hsdf.Graph, []hsdf.Channel, error) {
	if n := hsdf.New(g, reps).ChannelCount(); n > s.cfg.MaxTokens {
		return nil, nil, errs.New(errs.ErrCodeInvalidInput, "expansion has %d tokens, server limit is %d", n, s.cfg.MaxTokens)
	}
	return s.runner.Expand(r.Context(), g, reps, workers)
}

// decodeGraph reads the graph document from the request body.
func (s *Server) decodeGraph(w http.ResponseWriter, r *http.Request) (*sdf.Graph, error) {
	format, err := requestFormat(r)
	if err != nil {
		return nil, err
	}
	body := http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	defer body.Close()
	return sdfio.Read(body, format)
}

// requestFormat picks the graph format from ?input= or Content-Type.
func requestFormat(r *http.Request) (sdfio.Format, error) {
	if f := r.URL.Query().Get("input"); f != "" {
		switch sdfio.Format(f) {
		case sdfio.FormatJSON, sdfio.FormatTOML, sdfio.FormatYAML:
			return sdfio.Format(f), nil
		}
		return "", errs.New(errs.ErrCodeInvalidFormat, "unsupported graph format %q (want json, toml or yaml)", f)
	}
	ct := r.Header.Get("Content-Type")
	if ct == "" {
		return sdfio.FormatJSON, nil
	}
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return "", errs.Wrap(errs.ErrCodeInvalidFormat, err, "bad Content-Type %q", ct)
	}
	switch mt {
	case "application/json", "text/json":
		return sdfio.FormatJSON, nil
	case "application/toml", "text/toml":
		return sdfio.FormatTOML, nil
	case "application/yaml", "application/x-yaml", "text/yaml", "text/x-yaml":
		return sdfio.FormatYAML, nil
	}
	return "", errs.New(errs.ErrCodeInvalidFormat, "unsupported Content-Type %q", mt)
}

// statusFor maps an error to its HTTP status.
func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	switch errs.GetCode(err) {
	case errs.ErrCodeInvalidInput, errs.ErrCodeInvalidFormat, errs.ErrCodeInvalidRate,
		errs.ErrCodeInvalidPath, errs.ErrCodeUnknownActor:
		return http.StatusBadRequest
	case errs.ErrCodeStructural, errs.ErrCodeSign:
		return http.StatusUnprocessableEntity
	case errs.ErrCodeFileNotFound:
		return http.StatusNotFound
	case errs.ErrCodeUnsupported:
		return http.StatusNotImplemented
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	code := errs.GetCode(err)
	msg := errs.UserMessage(err)
	switch {
	case status == http.StatusRequestEntityTooLarge:
		code, msg = errs.ErrCodeInvalidInput, "request body too large"
	case status == http.StatusInternalServerError:
		s.logger.Error("request failed", "path", r.URL.Path, "err", err)
		if code == "" {
			code, msg = errs.ErrCodeInternal, "internal error"
		}
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg, Hint: errs.Hint(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func boolParam(v string) (bool, error) {
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, errs.New(errs.ErrCodeInvalidInput, "expected a boolean, got %q", v)
	}
	return b, nil
}

func intParam(v string, def int) (int, error) {
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, errs.New(errs.ErrCodeInvalidInput, "expected a positive integer, got %q", v)
	}
	return n, nil
}

func cacheStatus(hit bool) string {
	if hit {
		return "HIT"
	}
	return "MISS"
}
