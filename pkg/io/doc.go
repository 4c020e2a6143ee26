// Package io reads and writes SDF graph files and exports HSDF expansions.
//
// # Overview
//
// Graphs are described in a small declarative format that can be written as
// JSON, TOML or YAML. The format is chosen from the file extension by
// [Import] and [Export], or explicitly with [Read] and [Write].
//
// # File Format
//
// A graph has a list of actor names and a list of channels:
//
//	{
//	  "name": "downsampler",
//	  "actors": ["src", "fir", "sink"],
//	  "channels": [
//	    {"source": "src", "target": "fir", "production": 2, "consumption": 3},
//	    {"source": "fir", "target": "sink", "production": 1, "consumption": 1, "initial_tokens": 4}
//	  ]
//	}
//
// The same graph in TOML:
//
//	name = "downsampler"
//	actors = ["src", "fir", "sink"]
//
//	[[channels]]
//	source = "src"
//	target = "fir"
//	production = 2
//	consumption = 3
//
// Channel fields:
//   - source, target: actor names; a name resolves to the first actor with it
//   - source_index, target_index: optional actor indices that take precedence
//     over names, needed when actor names repeat
//   - production, consumption: positive token rates
//   - initial_tokens: non-negative, defaults to 0
//
// An optional "meta" object is copied into the graph metadata.
//
// # Validation
//
// Reading validates actor names, rates, initial tokens and actor references.
// Errors name the offending actor or channel and wrap the underlying
// [sdf] sentinel errors, so errors.Is works on the result.
//
// # HSDF Export
//
// [WriteHSDFJSON] writes the homogeneous expansion of a graph: the
// repetitions vector, one entry per firing, and one entry per token (or per
// merged edge when [HSDFOptions].Merge is set).
//
// [sdf]: github.com/matzehuels/sdfexpand/pkg/sdf
package io
