// Package render converts rendered SVG diagrams to other output formats.
//
// # Overview
//
// Diagrams of SDF graphs and their HSDF expansions are produced as SVG by
// the [nodelink] subpackage. This package turns that SVG into PDF or PNG
// using the external rsvg-convert tool (from librsvg):
//
//	svg, err := nodelink.RenderSVG(ctx, dot)
//	pdf, err := render.ToPDF(ctx, svg)
//	png, err := render.ToPNG(ctx, svg, 2.0) // 2x scale
//
// When rsvg-convert is not installed the conversion fails with an
// UNSUPPORTED error carrying installation instructions.
//
// [nodelink]: github.com/matzehuels/sdfexpand/pkg/render/nodelink
package render
