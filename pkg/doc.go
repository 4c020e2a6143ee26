// Package pkg provides the libraries behind sdfexpand, a toolkit for
// synchronous dataflow (SDF) graphs.
//
// # Overview
//
// An SDF graph is a set of actors connected by FIFO channels. Each time an
// actor fires it consumes a fixed number of tokens from every input channel
// and produces a fixed number on every output channel. sdfexpand answers
// two questions about such a graph:
//
//  1. How often must each actor fire so that every channel returns to its
//     initial token count? This is the repetitions vector.
//  2. What does one such iteration look like as a homogeneous graph, where
//     every firing is a node and every token is an edge?
//
// # Architecture
//
//	graph file (JSON, TOML, YAML)
//	         ↓
//	    [io] package (decode + validate)
//	         ↓
//	    [sdf] package (topology matrix, repetitions vector)
//	         ↓
//	    [hsdf] package (token routing, delays)
//	         ↓
//	    [render/nodelink] package (DOT, SVG) → [render] (PNG, PDF)
//
// [pipeline] chains these stages and caches results through [cache].
//
// # Quick Start
//
//	import (
//	    sdfio "github.com/matzehuels/sdfexpand/pkg/io"
//	    "github.com/matzehuels/sdfexpand/pkg/hsdf"
//	    "github.com/matzehuels/sdfexpand/pkg/sdf"
//	)
//
//	g, _ := sdfio.Import("cd2dat.toml")
//	reps, _ := sdf.RepetitionsVector(g)   // [147 147 98 28 32 160]
//	h := hsdf.New(g, reps)
//	for ch := range h.Channels() {
//	    fmt.Println(ch.Source.Label(), "->", ch.Target.Label(), ch.Delay)
//	}
//
// # Main Packages
//
// [sdf] - Graph model, topology matrix and the exact rational solver for the
// repetitions vector. [sdf/linalg] holds the big.Rat row reduction.
//
// [hsdf] - Lazy HSDF expansion. Channels are produced by iterators and can
// be collected concurrently with [hsdf.CollectChannels].
//
// [io] - Graph file formats and the HSDF JSON export.
//
// [render/nodelink] - Graphviz diagrams of SDF graphs and their expansions.
//
// [render] - SVG to PDF/PNG conversion via rsvg-convert.
//
// [pipeline] - Load → analyze → expand → render, shared by every command.
//
// [cache] - File or Redis backed cache for repetitions vectors and rendered
// diagrams.
//
// [observability] - Hooks for logging or metrics around pipeline stages.
//
// [errors] - Coded errors; distinguishes structural from rate failures.
//
// # Testing
//
//	go test ./pkg/...          # All tests
//	go test ./pkg/sdf/...      # Specific package
//	go test -run Example ./... # Examples only
//
// [sdf]: https://pkg.go.dev/github.com/matzehuels/sdfexpand/pkg/sdf
// [sdf/linalg]: https://pkg.go.dev/github.com/matzehuels/sdfexpand/pkg/sdf/linalg
// [hsdf]: https://pkg.go.dev/github.com/matzehuels/sdfexpand/pkg/hsdf
// [hsdf.CollectChannels]: https://pkg.go.dev/github.com/matzehuels/sdfexpand/pkg/hsdf#CollectChannels
// [io]: https://pkg.go.dev/github.com/matzehuels/sdfexpand/pkg/io
// [render]: https://pkg.go.dev/github.com/matzehuels/sdfexpand/pkg/render
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/sdfexpand/pkg/render/nodelink
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/sdfexpand/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/sdfexpand/pkg/cache
// [observability]: https://pkg.go.dev/github.com/matzehuels/sdfexpand/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/sdfexpand/pkg/errors
package pkg
