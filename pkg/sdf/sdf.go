package sdf

import (
	"errors"
	"slices"

	errs "github.com/matzehuels/sdfexpand/pkg/errors"
)

var (
	// ErrInvalidActorName is returned by [Graph.AddActor] for an empty name.
	ErrInvalidActorName = errors.New("actor name must not be empty")

	// ErrUnknownSourceActor is returned by [Graph.AddChannel] when the source
	// name does not match any actor.
	ErrUnknownSourceActor = errors.New("unknown source actor")

	// ErrUnknownTargetActor is returned by [Graph.AddChannel] when the target
	// name does not match any actor.
	ErrUnknownTargetActor = errors.New("unknown target actor")

	// ErrActorIndexOutOfRange is returned by [Graph.Connect] and
	// [Graph.Validate] when a channel endpoint is not a valid actor index.
	ErrActorIndexOutOfRange = errors.New("actor index out of range")

	// ErrNonPositiveRate is returned when a production or consumption rate is
	// zero or negative.
	ErrNonPositiveRate = errors.New("rate must be positive")

	// ErrNegativeTokens is returned when a channel has negative initial tokens.
	ErrNegativeTokens = errors.New("initial tokens must be non-negative")
)

// Metadata stores arbitrary key-value pairs attached to a graph, such as a
// display name or the file it was loaded from.
type Metadata map[string]any

// Channel is a directed edge between two actors, identified by index.
type Channel struct {
	Source        int   // Producing actor index
	Target        int   // Consuming actor index
	Production    int64 // Tokens produced per source firing (> 0)
	Consumption   int64 // Tokens consumed per target firing (> 0)
	InitialTokens int64 // Tokens on the channel before any firing (>= 0)
}

// IsSelfLoop reports whether the channel starts and ends at the same actor.
func (c Channel) IsSelfLoop() bool { return c.Source == c.Target }

// Graph is an SDF graph: an ordered sequence of actors and an ordered
// sequence of channels between them.
//
// The zero value is not usable - use New to create a graph.
type Graph struct {
	actors   []string
	channels []Channel
	meta     Metadata
}

// New creates an empty graph with optional graph-level metadata.
// A nil metadata map is replaced by an empty one.
func New(meta Metadata) *Graph {
	if meta == nil {
		meta = Metadata{}
	}
	return &Graph{meta: meta}
}

// Meta returns the graph-level metadata map. It is never nil.
func (g *Graph) Meta() Metadata { return g.meta }

// AddActor appends an actor and returns its index.
// Names need not be unique; actor identity is the returned index.
func (g *Graph) AddActor(name string) (int, error) {
	if name == "" {
		return -1, errs.Wrap(errs.ErrCodeInvalidInput, ErrInvalidActorName, "add actor")
	}
	g.actors = append(g.actors, name)
	return len(g.actors) - 1, nil
}

// AddChannel appends a channel from the first actor named source to the
// first actor named target.
//
// Unknown names fail with an [errs.ErrCodeUnknownActor] error wrapping
// ErrUnknownSourceActor or ErrUnknownTargetActor. Rates and initial tokens
// are validated as in [Graph.Connect].
func (g *Graph) AddChannel(source string, production int64, target string, consumption int64, initialTokens int64) error {
	src, ok := g.Index(source)
	if !ok {
		return errs.Wrap(errs.ErrCodeUnknownActor, ErrUnknownSourceActor, "%q is not an actor", source)
	}
	dst, ok := g.Index(target)
	if !ok {
		return errs.Wrap(errs.ErrCodeUnknownActor, ErrUnknownTargetActor, "%q is not an actor", target)
	}
	return g.Connect(Channel{
		Source:        src,
		Target:        dst,
		Production:    production,
		Consumption:   consumption,
		InitialTokens: initialTokens,
	})
}

// Connect appends a channel given by actor indices.
// It returns an error if an index is out of range, a rate is not positive,
// or the initial token count is negative.
func (g *Graph) Connect(c Channel) error {
	if err := g.checkChannel(c); err != nil {
		return err
	}
	g.channels = append(g.channels, c)
	return nil
}

func (g *Graph) checkChannel(c Channel) error {
	n := len(g.actors)
	if c.Source < 0 || c.Source >= n {
		return errs.Wrap(errs.ErrCodeUnknownActor, ErrActorIndexOutOfRange, "source index %d (have %d actors)", c.Source, n)
	}
	if c.Target < 0 || c.Target >= n {
		return errs.Wrap(errs.ErrCodeUnknownActor, ErrActorIndexOutOfRange, "target index %d (have %d actors)", c.Target, n)
	}
	if c.Production <= 0 {
		return errs.Wrap(errs.ErrCodeInvalidRate, ErrNonPositiveRate, "production rate %d", c.Production)
	}
	if c.Consumption <= 0 {
		return errs.Wrap(errs.ErrCodeInvalidRate, ErrNonPositiveRate, "consumption rate %d", c.Consumption)
	}
	if c.InitialTokens < 0 {
		return errs.Wrap(errs.ErrCodeInvalidRate, ErrNegativeTokens, "initial tokens %d", c.InitialTokens)
	}
	return nil
}

// Validate re-checks every channel against the graph's invariants.
// Graphs built only through AddChannel and Connect are always valid.
func (g *Graph) Validate() error {
	for i, c := range g.channels {
		if err := g.checkChannel(c); err != nil {
			return errs.Wrap(errs.GetCode(err), err, "channel %d", i)
		}
	}
	return nil
}

// Actors returns a copy of the actor names in index order.
func (g *Graph) Actors() []string { return slices.Clone(g.actors) }

// Actor returns the name of the actor at index i.
func (g *Graph) Actor(i int) string { return g.actors[i] }

// Index returns the index of the first actor named name.
func (g *Graph) Index(name string) (int, bool) {
	i := slices.Index(g.actors, name)
	return i, i >= 0
}

// Channels returns a copy of the channels in insertion order.
func (g *Graph) Channels() []Channel { return slices.Clone(g.channels) }

// Channel returns the channel at index i.
func (g *Graph) Channel(i int) Channel { return g.channels[i] }

// ActorCount returns the number of actors.
func (g *Graph) ActorCount() int { return len(g.actors) }

// ChannelCount returns the number of channels.
func (g *Graph) ChannelCount() int { return len(g.channels) }

// TopologyMatrix returns the topology matrix of the graph. See [Topology].
func (g *Graph) TopologyMatrix() Matrix { return Topology(len(g.actors), g.channels) }
