package pipeline

import (
	"context"
	"fmt"

	errs "github.com/matzehuels/sdfexpand/pkg/errors"
	"github.com/matzehuels/sdfexpand/pkg/hsdf"
	"github.com/matzehuels/sdfexpand/pkg/render"
	"github.com/matzehuels/sdfexpand/pkg/render/nodelink"
	"github.com/matzehuels/sdfexpand/pkg/sdf"
)

// DOT returns the Graphviz source for the requested view.
//
// The SDF view needs only g; reps is used when opts.Detailed is set. The
// HSDF view needs h and fails when the diagram would exceed opts.MaxEdges.
func DOT(g *sdf.Graph, reps sdf.Repetitions, h *hsdf.Graph, opts Options) (string, error) {
	if !opts.IsHSDF() {
		return nodelink.ToDOT(g, nodelink.Options{Detailed: opts.Detailed, Repetitions: reps}), nil
	}
	if h == nil {
		return "", errs.New(errs.ErrCodeInternal, "hsdf view requested without an expansion")
	}

	size, what := h.ChannelCount(), "edges"
	if opts.Merge {
		size, what = h.ActorCount(), "firings"
	}
	if opts.MaxEdges > 0 && size > int64(opts.MaxEdges) {
		hint := "render with --merge or raise --max-edges"
		if opts.Merge {
			hint = "raise --max-edges"
		}
		return "", errs.New(errs.ErrCodeInvalidInput, "hsdf diagram has %d %s, limit is %d; %s", size, what, opts.MaxEdges, hint)
	}
	return nodelink.HSDFToDOT(h, nodelink.Options{Merge: opts.Merge}), nil
}

// Render generates output artifacts in the requested formats.
// SVG is rendered at most once and shared by the PNG and PDF conversions.
func Render(ctx context.Context, g *sdf.Graph, reps sdf.Repetitions, h *hsdf.Graph, opts Options) (map[string][]byte, error) {
	dot, err := DOT(g, reps, h, opts)
	if err != nil {
		return nil, err
	}

	var svg []byte
	getSVG := func() ([]byte, error) {
		if svg == nil {
			out, err := nodelink.RenderSVG(ctx, dot)
			if err != nil {
				return nil, err
			}
			svg = out
		}
		return svg, nil
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatDOT:
			data = []byte(dot)
		case FormatSVG:
			data, err = getSVG()
		case FormatPNG:
			if data, err = getSVG(); err == nil {
				data, err = render.ToPNG(ctx, data, opts.Scale)
			}
		case FormatPDF:
			if data, err = getSVG(); err == nil {
				data, err = render.ToPDF(ctx, data)
			}
		default:
			return nil, errs.New(errs.ErrCodeUnsupported, "unsupported format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}
