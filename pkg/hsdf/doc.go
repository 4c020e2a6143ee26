// Package hsdf expands an SDF graph into its homogeneous (HSDF) form.
//
// # Overview
//
// In the homogeneous form every actor fires exactly once per iteration. An
// SDF actor that fires r times per iteration becomes r HSDF actors, one per
// firing, and every token that travels along an SDF channel becomes an HSDF
// channel from the firing that produces it to the firing that consumes it.
//
// # Token Routing
//
// For an SDF channel with production p, consumption c, initial tokens d0 and
// target repetition count rt, token k of source firing i has absolute number
//
//	t = d0 + i*p + k
//
// One iteration of the target consumes c*rt tokens, so the channel behaves
// like a circular buffer of that size. Token t is consumed by target firing
//
//	j = (t mod c*rt) div c
//
// and the consumer lies t div c*rt iterations ahead, which becomes the delay
// on the HSDF channel. d0 is split into whole buffer cycles and a remainder
// before adding i*p + k, so the routing is exact for any d0 that fits in an
// int64. [Channel.Token] holds i*p + k, the token's production index. Several tokens of one firing may reach the same
// consumer; each is reported as its own channel. Use [Aggregate] to merge
// them.
//
// # Enumeration
//
// [Graph.Actors] and [Graph.Channels] return [iter.Seq] values. Sequences
// are lazy, finite and restartable: ranging over one twice yields the same
// elements in the same order, and nothing is materialized until iterated.
// For large graphs [CollectChannels] expands channels in parallel and returns
// the same order as [Graph.Channels].
//
// # Concurrency
//
// A Graph only reads the SDF graph and repetitions vector it was created
// from. Any number of goroutines may iterate it concurrently as long as the
// SDF graph is not modified.
package hsdf
