// Package nodelink renders SDF graphs and their HSDF expansions as
// node-link diagrams.
//
// # Overview
//
// Diagrams are produced with Graphviz. [ToDOT] draws an SDF graph with one
// box per actor and one arrow per channel; the rates sit at the arrow ends
// and the initial token count in the middle. [HSDFToDOT] draws the
// homogeneous expansion with one box per firing and one arrow per token,
// labelled with the token's delay.
//
// # Usage
//
//	dot := nodelink.ToDOT(g, nodelink.Options{Detailed: true, Repetitions: r})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// For PDF or PNG output:
//
//	pdf, err := nodelink.RenderPDF(ctx, dot)
//	png, err := nodelink.RenderPNG(ctx, dot, 2.0) // 2x scale
//
// # Options
//
//   - Detailed: SDF actor labels include their repetition count
//   - Repetitions: the vector used by Detailed
//   - Merge: HSDF arrows with the same endpoints and delay collapse into
//     one arrow labelled "delay ×count"
//
// Expansions grow with the repetitions vector, so merging is usually what
// you want for anything beyond small graphs.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package nodelink
