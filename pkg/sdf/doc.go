// Package sdf models Synchronous Dataflow (SDF) graphs and computes their
// repetitions vector.
//
// # Overview
//
// An SDF graph is a set of actors connected by channels. Every firing of a
// channel's source produces a fixed number of tokens on it, every firing of
// its target consumes a fixed number, and the channel may hold initial
// tokens before anything fires. Analysis starts from the balance equations
// of the graph: how often must each actor fire per iteration so that every
// channel returns to its initial token count?
//
// # Building Graphs
//
// Create a graph with [New], add actors with [Graph.AddActor] and channels
// with [Graph.AddChannel] (by actor name) or [Graph.Connect] (by index):
//
//	g := sdf.New(nil)
//	g.AddActor("A")
//	g.AddActor("B")
//	g.AddChannel("A", 2, "B", 3, 0)
//
// Actor identity is positional. Two actors may share a name; name lookups
// resolve to the first actor with that name. Channels referring to unknown
// actors, non-positive rates and negative initial token counts are rejected
// when they are added.
//
// # Topology Matrix
//
// [Topology] builds the channels × actors matrix of signed rates: row c holds
// +production at the source column and -consumption at the target column.
// Self-loops sum both contributions in a single cell.
//
// # Repetitions Vector
//
// [RepetitionsVector] solves the balance equations exactly. The topology
// matrix must have rank n-1 so that its null space is one-dimensional; the
// null space basis vector is scaled to the smallest positive integer vector.
// Failures carry distinct error codes:
//
//   - [errors.ErrCodeStructural] wrapping [ErrRankMismatch]: the graph is
//     disconnected, empty, or has contradictory rates.
//   - [errors.ErrCodeSign] wrapping [ErrMixedSigns]: the only balanced
//     solution needs a zero or negative firing count.
//
// # Concurrency
//
// Graph is not safe for concurrent mutation. Once built, a graph is only read
// by the analysis functions in this package and by package hsdf, so a
// finished graph may be shared freely between goroutines.
//
// [errors.ErrCodeStructural]: github.com/matzehuels/sdfexpand/pkg/errors.ErrCodeStructural
// [errors.ErrCodeSign]: github.com/matzehuels/sdfexpand/pkg/errors.ErrCodeSign
package sdf
