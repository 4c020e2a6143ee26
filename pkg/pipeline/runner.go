package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/sdfexpand/pkg/cache"
	"github.com/matzehuels/sdfexpand/pkg/hsdf"
	sdfio "github.com/matzehuels/sdfexpand/pkg/io"
	"github.com/matzehuels/sdfexpand/pkg/observability"
	"github.com/matzehuels/sdfexpand/pkg/sdf"
)

// Cache key types reported to cache hooks.
const (
	keyTypeAnalysis = "analysis"
	keyTypeArtifact = "artifact"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache and logger; it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Analysis is the result of the analyze stage.
type Analysis struct {
	Topology    sdf.Matrix
	Repetitions sdf.Repetitions
}

// Execute runs load → analyze → expand → render with caching.
//
// Expansion runs when opts.Expand is set or an HSDF diagram is requested;
// rendering runs when opts.Formats is non-empty.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{
		RunID:     uuid.New(),
		Artifacts: make(map[string][]byte),
	}
	opts.Logger = opts.Logger.With("run", shortID(result.RunID))

	// Stage 1: Load
	loadStart := time.Now()
	g, err := r.Load(ctx, opts.Path)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	result.Graph = g
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.Actors = g.ActorCount()
	result.Stats.Channels = g.ChannelCount()
	if result.GraphHash, err = GraphHash(g); err != nil {
		return nil, fmt.Errorf("hash graph: %w", err)
	}

	opts.Logger.Info("loaded graph",
		"actors", g.ActorCount(),
		"channels", g.ChannelCount(),
		"duration", result.Stats.LoadTime)

	// Stage 2: Analyze
	analyzeStart := time.Now()
	a, hit, err := r.AnalyzeWithCacheInfo(ctx, g, opts)
	if err != nil {
		return nil, fmt.Errorf("analyze: %w", err)
	}
	result.Topology = a.Topology
	result.Repetitions = a.Repetitions
	result.Stats.AnalyzeTime = time.Since(analyzeStart)
	result.Stats.Firings = a.Repetitions.Total()
	result.CacheInfo.AnalysisHit = hit

	opts.Logger.Info("solved repetitions",
		"vector", a.Repetitions.String(),
		"firings", result.Stats.Firings,
		"cached", hit,
		"duration", result.Stats.AnalyzeTime)

	// Stage 3: Expand
	if opts.NeedsExpansion() {
		expandStart := time.Now()
		h, channels, err := r.expand(ctx, g, a.Repetitions, opts.Workers, opts.Logger)
		if err != nil {
			return nil, fmt.Errorf("expand: %w", err)
		}
		result.HSDF = h
		result.Channels = channels
		result.Stats.Tokens = int64(len(channels))
		result.Stats.ExpandTime = time.Since(expandStart)

		opts.Logger.Info("expanded to hsdf",
			"firings", h.ActorCount(),
			"channels", len(channels),
			"duration", result.Stats.ExpandTime)
	}

	// Stage 4: Render
	if len(opts.Formats) > 0 {
		renderStart := time.Now()
		artifacts, hit, err := r.RenderWithCacheInfo(ctx, g, a.Repetitions, result.HSDF, opts)
		if err != nil {
			return nil, fmt.Errorf("render: %w", err)
		}
		result.Artifacts = artifacts
		result.Stats.RenderTime = time.Since(renderStart)
		result.CacheInfo.RenderHit = hit

		opts.Logger.Info("rendered outputs",
			"view", opts.View,
			"formats", opts.Formats,
			"cached", hit,
			"duration", result.Stats.RenderTime)
	}

	return result, nil
}

// Load reads and validates the graph file at path.
func (r *Runner) Load(ctx context.Context, path string) (*sdf.Graph, error) {
	start := time.Now()
	observability.Pipeline().OnLoadStart(ctx, path)

	g, err := sdfio.Import(path)
	if err != nil {
		observability.Pipeline().OnLoadComplete(ctx, path, 0, 0, time.Since(start), err)
		return nil, err
	}
	observability.Pipeline().OnLoadComplete(ctx, path, g.ActorCount(), g.ChannelCount(), time.Since(start), nil)
	return g, nil
}

// GraphHash returns the content hash of g's canonical JSON encoding.
// Two files describing the same graph in different formats hash equally.
func GraphHash(g *sdf.Graph) (string, error) {
	var buf bytes.Buffer
	if err := sdfio.WriteJSON(g, &buf); err != nil {
		return "", err
	}
	return cache.Hash(buf.Bytes()), nil
}

// AnalyzeWithCacheInfo computes the topology matrix and repetitions vector,
// reusing a cached vector when one exists and still balances the matrix.
func (r *Runner) AnalyzeWithCacheInfo(ctx context.Context, g *sdf.Graph, opts Options) (Analysis, bool, error) {
	r.applyLogger(&opts)
	start := time.Now()
	observability.Pipeline().OnAnalyzeStart(ctx, g.ActorCount())

	a := Analysis{Topology: g.TopologyMatrix()}

	hash, err := GraphHash(g)
	if err != nil {
		return Analysis{}, false, err
	}
	cacheKey := r.Keyer.AnalysisKey(hash)

	if !opts.Refresh {
		if reps, ok := r.cachedRepetitions(ctx, cacheKey, g.ActorCount(), a.Topology); ok {
			a.Repetitions = reps
			observability.Pipeline().OnAnalyzeComplete(ctx, reps.Total(), time.Since(start), nil)
			return a, true, nil
		}
	}

	reps, err := sdf.SolveRepetitions(g.ActorCount(), a.Topology)
	observability.Pipeline().OnAnalyzeComplete(ctx, reps.Total(), time.Since(start), err)
	if err != nil {
		return Analysis{}, false, err
	}
	a.Repetitions = reps

	if data, err := json.Marshal([]int64(reps)); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, cache.AnalysisTTL); err != nil {
			opts.Logger.Warn("cache write failed", "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, keyTypeAnalysis, len(data))
		}
	}
	return a, false, nil
}

// Analyze is a convenience wrapper that calls AnalyzeWithCacheInfo and discards the cache hit info.
func (r *Runner) Analyze(ctx context.Context, g *sdf.Graph) (Analysis, error) {
	a, _, err := r.AnalyzeWithCacheInfo(ctx, g, Options{})
	return a, err
}

func (r *Runner) cachedRepetitions(ctx context.Context, key string, actors int, m sdf.Matrix) (sdf.Repetitions, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, keyTypeAnalysis)
		return nil, false
	}
	var reps sdf.Repetitions
	if err := json.Unmarshal(data, &reps); err != nil || len(reps) != actors || !reps.Balances(m) {
		observability.Cache().OnCacheMiss(ctx, keyTypeAnalysis)
		return nil, false
	}
	if slices.ContainsFunc(reps, func(x int64) bool { return x <= 0 }) {
		observability.Cache().OnCacheMiss(ctx, keyTypeAnalysis)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, keyTypeAnalysis)
	return reps, true
}

// Expand builds the HSDF view of g under reps and collects its channels with
// up to workers concurrent tasks.
func (r *Runner) Expand(ctx context.Context, g *sdf.Graph, reps sdf.Repetitions, workers int) (*hsdf.Graph, []hsdf.Channel, error) {
	return r.expand(ctx, g, reps, workers, r.Logger)
}

func (r *Runner) expand(ctx context.Context, g *sdf.Graph, reps sdf.Repetitions, workers int, logger *log.Logger) (*hsdf.Graph, []hsdf.Channel, error) {
	start := time.Now()
	observability.Pipeline().OnExpandStart(ctx, g.ChannelCount(), workers)

	h := hsdf.New(g, reps)
	if err := h.Validate(); err != nil {
		observability.Pipeline().OnExpandComplete(ctx, 0, time.Since(start), err)
		return nil, nil, err
	}
	logger.Debug("expanding", "tokens", h.ChannelCount(), "workers", workers)

	channels, err := hsdf.CollectChannels(ctx, h, workers)
	observability.Pipeline().OnExpandComplete(ctx, int64(len(channels)), time.Since(start), err)
	if err != nil {
		return nil, nil, err
	}
	return h, channels, nil
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
// h may be nil for the SDF view.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, g *sdf.Graph, reps sdf.Repetitions, h *hsdf.Graph, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	start := time.Now()
	observability.Pipeline().OnRenderStart(ctx, opts.View, opts.Formats)

	hash, err := GraphHash(g)
	if err != nil {
		return nil, false, fmt.Errorf("hash graph for cache key: %w", err)
	}

	if !opts.Refresh {
		artifacts := make(map[string][]byte, len(opts.Formats))
		for _, format := range opts.Formats {
			data, hit, err := r.Cache.Get(ctx, r.Keyer.ArtifactKey(hash, opts.ArtifactKeyOpts(format)))
			if err != nil || !hit {
				observability.Cache().OnCacheMiss(ctx, keyTypeArtifact)
				break
			}
			observability.Cache().OnCacheHit(ctx, keyTypeArtifact)
			artifacts[format] = data
		}
		if len(artifacts) == len(opts.Formats) {
			observability.Pipeline().OnRenderComplete(ctx, opts.View, opts.Formats, time.Since(start), nil)
			return artifacts, true, nil
		}
	}

	rendered, err := Render(ctx, g, reps, h, opts)
	observability.Pipeline().OnRenderComplete(ctx, opts.View, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		key := r.Keyer.ArtifactKey(hash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, key, data, cache.ArtifactTTL); err != nil {
			opts.Logger.Warn("cache write failed", "format", format, "err", err)
			continue
		}
		observability.Cache().OnCacheSet(ctx, keyTypeArtifact, len(data))
	}
	return rendered, false, nil
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, g *sdf.Graph, reps sdf.Repetitions, h *hsdf.Graph, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, g, reps, h, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

func shortID(id uuid.UUID) string {
	return id.String()[:8]
}
