package hsdf

import "iter"

// Edge is a group of HSDF channels that share source, target and delay.
type Edge struct {
	Source Actor
	Target Actor
	Delay  int64
	Tokens int // Number of merged channels
}

type edgeKey struct {
	src, dst Actor
	delay    int64
}

// Aggregate merges channels with equal source, target and delay into edges.
// Edges are returned in order of first appearance in seq.
func Aggregate(seq iter.Seq[Channel]) []Edge {
	var edges []Edge
	index := make(map[edgeKey]int)
	for c := range seq {
		k := edgeKey{src: c.Source, dst: c.Target, delay: c.Delay}
		if i, ok := index[k]; ok {
			edges[i].Tokens++
			continue
		}
		index[k] = len(edges)
		edges = append(edges, Edge{Source: c.Source, Target: c.Target, Delay: c.Delay, Tokens: 1})
	}
	return edges
}
