package hsdf

import (
	"errors"
	"fmt"
	"iter"
	"math"
	"slices"

	errs "github.com/matzehuels/sdfexpand/pkg/errors"
	"github.com/matzehuels/sdfexpand/pkg/sdf"
)

// ErrTooManyTokens means an SDF channel carries more tokens per iteration
// than an int64 can count.
var ErrTooManyTokens = errors.New("tokens per iteration overflow int64")

// Actor is one firing of an SDF actor.
type Actor struct {
	Index  int    // Index of the SDF actor
	Name   string // Name of the SDF actor
	Firing int64  // Firing number in [0, repetitions[Index])
}

// ID returns an identifier that is unique within the expansion even when SDF
// actor names repeat, e.g. "0-2".
func (a Actor) ID() string { return fmt.Sprintf("%d-%d", a.Index, a.Firing) }

// Label returns the display label, e.g. "A(2)".
func (a Actor) Label() string { return fmt.Sprintf("%s(%d)", a.Name, a.Firing) }

// Channel carries a single token from the firing that produces it to the
// firing that consumes it.
type Channel struct {
	Source Actor
	Target Actor
	Delay  int64 // Iterations between production and consumption

	Origin int   // Index of the SDF channel the token travels on
	Token  int64 // Production index on that channel within the iteration
}

// Graph is the homogeneous expansion of an SDF graph.
type Graph struct {
	sdf  *sdf.Graph
	reps sdf.Repetitions
}

// New returns the expansion of g for the repetitions vector r.
//
// r is trusted: it must be the repetitions vector of g, as returned by
// [sdf.RepetitionsVector]. Use [Expand] to compute it.
func New(g *sdf.Graph, r sdf.Repetitions) *Graph {
	return &Graph{sdf: g, reps: slices.Clone(r)}
}

// Expand computes the repetitions vector of g and returns its expansion.
// Errors are those of [sdf.RepetitionsVector], plus an
// [errs.ErrCodeInternal] error wrapping ErrTooManyTokens when a channel's
// per-iteration token count does not fit in an int64.
func Expand(g *sdf.Graph) (*Graph, error) {
	r, err := sdf.RepetitionsVector(g)
	if err != nil {
		return nil, err
	}
	h := &Graph{sdf: g, reps: r}
	if err := h.Validate(); err != nil {
		return nil, err
	}
	return h, nil
}

// Validate checks that every SDF channel's per-iteration token count fits
// in an int64. Channels that fail it are skipped by [Graph.ChannelsOf].
func (h *Graph) Validate() error {
	for i, c := range h.sdf.Channels() {
		if _, ok := mul(h.reps[c.Source], c.Production); !ok {
			return errs.Wrap(errs.ErrCodeInternal, ErrTooManyTokens,
				"channel %d: %d firings × %d tokens", i, h.reps[c.Source], c.Production)
		}
	}
	return nil
}

// SDF returns the graph that was expanded.
func (h *Graph) SDF() *sdf.Graph { return h.sdf }

// Repetitions returns a copy of the repetitions vector.
func (h *Graph) Repetitions() sdf.Repetitions { return slices.Clone(h.reps) }

// ActorCount returns the number of HSDF actors.
func (h *Graph) ActorCount() int64 { return h.reps.Total() }

// ChannelCount returns the number of HSDF channels: one per token produced
// in an iteration, summed over all SDF channels. A count that does not fit
// in an int64 is reported as math.MaxInt64.
func (h *Graph) ChannelCount() int64 {
	var n int64
	for i := range h.sdf.ChannelCount() {
		c := h.channelCount(i)
		if c > math.MaxInt64-n {
			return math.MaxInt64
		}
		n += c
	}
	return n
}

// channelCount returns the tokens SDF channel i carries per iteration,
// saturating at math.MaxInt64.
func (h *Graph) channelCount(i int) int64 {
	c := h.sdf.Channel(i)
	n, ok := mul(h.reps[c.Source], c.Production)
	if !ok {
		return math.MaxInt64
	}
	return n
}

// mul returns a*b for non-negative a and b, and false if it overflows.
func mul(a, b int64) (int64, bool) {
	if a != 0 && b > math.MaxInt64/a {
		return 0, false
	}
	return a * b, true
}

// Actors yields every firing of every SDF actor: actors in index order, and
// firings of each actor in increasing order.
func (h *Graph) Actors() iter.Seq[Actor] {
	return func(yield func(Actor) bool) {
		for i := range h.sdf.ActorCount() {
			for a := range h.FiringsOf(i) {
				if !yield(a) {
					return
				}
			}
		}
	}
}

// FiringsOf yields the firings of SDF actor i in increasing order.
func (h *Graph) FiringsOf(i int) iter.Seq[Actor] {
	return func(yield func(Actor) bool) {
		name := h.sdf.Actor(i)
		for k := range h.reps[i] {
			if !yield(Actor{Index: i, Name: name, Firing: k}) {
				return
			}
		}
	}
}

// Channels yields one channel per token, SDF channel by SDF channel. See
// [Graph.ChannelsOf] for the order within an SDF channel.
func (h *Graph) Channels() iter.Seq[Channel] {
	return func(yield func(Channel) bool) {
		for i := range h.sdf.ChannelCount() {
			for c := range h.ChannelsOf(i) {
				if !yield(c) {
					return
				}
			}
		}
	}
}

// ChannelsOf yields the tokens of SDF channel i ordered by source firing,
// then by token within the firing. A channel whose per-iteration token
// count does not fit in an int64 yields nothing; [Graph.Validate] reports
// such channels.
//
// Initial tokens are split into whole buffer cycles and a remainder up
// front, so routing never overflows however many initial tokens there are.
func (h *Graph) ChannelsOf(i int) iter.Seq[Channel] {
	return func(yield func(Channel) bool) {
		c := h.sdf.Channel(i)
		src, dst := h.sdf.Actor(c.Source), h.sdf.Actor(c.Target)
		capacity, ok := mul(c.Consumption, h.reps[c.Target])
		if !ok {
			return
		}
		if _, ok := mul(h.reps[c.Source], c.Production); !ok {
			return
		}
		base, rem := c.InitialTokens/capacity, c.InitialTokens%capacity

		for f := range h.reps[c.Source] {
			for k := range c.Production {
				n := f*c.Production + k
				pos, delay := rem+n, base
				if n >= capacity-rem {
					pos, delay = n-(capacity-rem), base+1
				}
				ch := Channel{
					Source: Actor{Index: c.Source, Name: src, Firing: f},
					Target: Actor{Index: c.Target, Name: dst, Firing: pos / c.Consumption},
					Delay:  delay,
					Origin: i,
					Token:  n,
				}
				if !yield(ch) {
					return
				}
			}
		}
	}
}
