// Package pipeline runs the load → analyze → expand → render stages shared
// by every sdfexpand command.
//
// # Architecture
//
// The pipeline consists of four stages:
//
//  1. Load: Read an SDF graph file (JSON, TOML or YAML)
//  2. Analyze: Build the topology matrix and solve the repetitions vector
//  3. Expand: Enumerate the HSDF channels, in parallel across SDF channels
//  4. Render: Produce DOT, SVG, PNG or PDF diagrams of either graph
//
// Each stage can be run on its own or through [Runner.Execute]. Analysis
// results and rendered artifacts are cached by the content hash of the
// graph, so repeated runs over an unchanged file skip the solver and
// Graphviz.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Path:    "filter.toml",
//	    View:    pipeline.ViewHSDF,
//	    Formats: []string{"svg"},
//	    Merge:   true,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/sdfexpand/pkg/cache"
	errs "github.com/matzehuels/sdfexpand/pkg/errors"
	"github.com/matzehuels/sdfexpand/pkg/hsdf"
	"github.com/matzehuels/sdfexpand/pkg/sdf"
)

// =============================================================================
// Default Values - Single Source of Truth for the CLI
// =============================================================================

const (
	// DefaultWorkers bounds the number of SDF channels expanded concurrently.
	DefaultWorkers = 8

	// DefaultScale is the PNG resolution multiplier.
	DefaultScale = 2.0

	// DefaultMaxEdges is the largest HSDF diagram, in drawn edges, that
	// Render will hand to Graphviz.
	DefaultMaxEdges = 5000

	// DefaultView is the default diagram view.
	DefaultView = ViewSDF
)

// Diagram views.
const (
	ViewSDF  = "sdf"
	ViewHSDF = "hsdf"
)

// Format constants for output formats.
const (
	FormatSVG = "svg"
	FormatPNG = "png"
	FormatPDF = "pdf"
	FormatDOT = "dot"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG: true,
	FormatPNG: true,
	FormatPDF: true,
	FormatDOT: true,
}

// ValidViews is the set of supported diagram views.
var ValidViews = map[string]bool{
	ViewSDF:  true,
	ViewHSDF: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for a pipeline run.
type Options struct {
	// Load options
	Path string `json:"path"`

	// Expand options
	Expand  bool `json:"expand,omitempty"` // Expand even when no HSDF diagram is requested
	Workers int  `json:"workers,omitempty"`

	// Render options
	View     string   `json:"view,omitempty"`
	Formats  []string `json:"formats,omitempty"`
	Merge    bool     `json:"merge,omitempty"`
	Detailed bool     `json:"detailed,omitempty"`
	Scale    float64  `json:"scale,omitempty"`
	MaxEdges int      `json:"max_edges,omitempty"`

	// Refresh bypasses cached analysis results and artifacts.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID identifies this run in log output.
	RunID uuid.UUID

	// Graph is the loaded SDF graph.
	Graph *sdf.Graph

	// GraphHash is the content hash of the graph, independent of file format.
	GraphHash string

	// Topology is the graph's topology matrix.
	Topology sdf.Matrix

	// Repetitions is the solved repetitions vector.
	Repetitions sdf.Repetitions

	// HSDF is the expansion, or nil when the run did not expand.
	HSDF *hsdf.Graph

	// Channels holds every HSDF channel in enumeration order when expanded.
	Channels []hsdf.Channel

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Actors      int
	Channels    int
	Firings     int64 // HSDF actor count
	Tokens      int64 // HSDF channel count
	LoadTime    time.Duration
	AnalyzeTime time.Duration
	ExpandTime  time.Duration
	RenderTime  time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	AnalysisHit bool // Whether the repetitions vector came from cache
	RenderHit   bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errs.New(errs.ErrCodeInvalidInput, "invalid format: %q (must be one of: svg, png, pdf, dot)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateView checks that a diagram view is valid.
func ValidateView(view string) error {
	if !ValidViews[view] {
		return errs.New(errs.ErrCodeInvalidInput, "invalid view: %q (must be one of: sdf, hsdf)", view)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the
// full pipeline. It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := errs.ValidatePath(o.Path); err != nil {
		return err
	}
	if o.Workers < 0 {
		return errs.New(errs.ErrCodeInvalidInput, "workers must not be negative, got %d", o.Workers)
	}
	if o.Workers == 0 {
		o.Workers = DefaultWorkers
	}
	o.setRenderDefaults()
	if err := o.validateRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// setRenderDefaults fills in render defaults. Formats stay empty; an empty
// format list means nothing is rendered.
func (o *Options) setRenderDefaults() {
	if o.View == "" {
		o.View = DefaultView
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.MaxEdges == 0 {
		o.MaxEdges = DefaultMaxEdges
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.setRenderDefaults()
	return o.validateRender()
}

func (o *Options) validateRender() error {
	if err := ValidateView(o.View); err != nil {
		return err
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Scale < 0 {
		return errs.New(errs.ErrCodeInvalidInput, "scale must be positive, got %.2f", o.Scale)
	}
	if o.MaxEdges < 0 {
		return errs.New(errs.ErrCodeInvalidInput, "max edges must not be negative, got %d", o.MaxEdges)
	}
	return nil
}

// IsHSDF reports whether the requested diagram is of the expansion.
func (o *Options) IsHSDF() bool {
	return o.View == ViewHSDF
}

// NeedsExpansion reports whether a run must expand the graph.
func (o *Options) NeedsExpansion() bool {
	return o.Expand || (o.IsHSDF() && len(o.Formats) > 0)
}

// ArtifactKeyOpts returns cache key options for one rendered format.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	opts := cache.ArtifactKeyOpts{
		View:     o.View,
		Format:   format,
		Merge:    o.Merge && o.IsHSDF(),
		Detailed: o.Detailed && !o.IsHSDF(),
	}
	if format == FormatPNG {
		opts.Scale = o.Scale
	}
	return opts
}
