package nodelink

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/matzehuels/sdfexpand/pkg/hsdf"
	"github.com/matzehuels/sdfexpand/pkg/sdf"
)

// Options configures node-link diagram generation.
type Options struct {
	// Detailed appends each actor's repetition count to its SDF label.
	// It has no effect when Repetitions is nil.
	Detailed bool

	// Repetitions is the graph's repetitions vector, used by Detailed.
	Repetitions sdf.Repetitions

	// Merge aggregates parallel HSDF arrows that share a delay.
	Merge bool
}

func header(buf *bytes.Buffer) {
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=16, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [fontsize=12];\n")
	buf.WriteString("  ranksep=0.6;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")
}

// ToDOT converts an SDF graph to Graphviz DOT.
//
// Nodes are keyed by actor index so that actors sharing a name stay distinct.
// Each channel becomes an edge with label = initial tokens,
// taillabel = production rate and headlabel = consumption rate.
func ToDOT(g *sdf.Graph, opts Options) string {
	var buf bytes.Buffer
	header(&buf)

	detailed := opts.Detailed && len(opts.Repetitions) == g.ActorCount()
	for i, name := range g.Actors() {
		label := name
		if detailed {
			label = fmt.Sprintf("%s\n×%d", name, opts.Repetitions[i])
		}
		fmt.Fprintf(&buf, "  %q [label=%q];\n", strconv.Itoa(i), label)
	}

	buf.WriteString("\n")
	for _, c := range g.Channels() {
		attrs := []string{
			fmt.Sprintf("label=%q", strconv.FormatInt(c.InitialTokens, 10)),
			fmt.Sprintf("taillabel=%q", strconv.FormatInt(c.Production, 10)),
			fmt.Sprintf("headlabel=%q", strconv.FormatInt(c.Consumption, 10)),
		}
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", strconv.Itoa(c.Source), strconv.Itoa(c.Target), strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

// HSDFToDOT converts an HSDF expansion to Graphviz DOT.
//
// Firings of the same SDF actor are grouped into a cluster. Every token is
// an edge labelled with its delay; delayed tokens are drawn dashed. With
// opts.Merge set, edges sharing source, target and delay are drawn once and
// labelled "delay ×count" when they carry more than one token.
func HSDFToDOT(h *hsdf.Graph, opts Options) string {
	var buf bytes.Buffer
	header(&buf)

	g := h.SDF()
	for i := range g.ActorCount() {
		fmt.Fprintf(&buf, "  subgraph \"cluster_%d\" {\n", i)
		fmt.Fprintf(&buf, "    label=%q;\n", g.Actor(i))
		buf.WriteString("    style=\"rounded,dashed\";\n")
		buf.WriteString("    color=grey;\n")
		for a := range h.FiringsOf(i) {
			fmt.Fprintf(&buf, "    %q [label=%q];\n", a.ID(), a.Label())
		}
		buf.WriteString("  }\n")
	}

	buf.WriteString("\n")
	if opts.Merge {
		for _, e := range hsdf.Aggregate(h.Channels()) {
			writeToken(&buf, e.Source, e.Target, e.Delay, e.Tokens)
		}
	} else {
		for c := range h.Channels() {
			writeToken(&buf, c.Source, c.Target, c.Delay, 1)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func writeToken(buf *bytes.Buffer, src, dst hsdf.Actor, delay int64, tokens int) {
	label := strconv.FormatInt(delay, 10)
	if tokens > 1 {
		label = fmt.Sprintf("%d ×%d", delay, tokens)
	}
	attrs := []string{fmt.Sprintf("label=%q", label)}
	if delay > 0 {
		attrs = append(attrs, "style=dashed")
	}
	fmt.Fprintf(buf, "  %q -> %q [%s];\n", src.ID(), dst.ID(), strings.Join(attrs, ", "))
}
