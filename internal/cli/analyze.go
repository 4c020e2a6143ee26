package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/sdfexpand/pkg/pipeline"
	"github.com/matzehuels/sdfexpand/pkg/sdf"
)

// repetitionsCommand creates the repetitions command.
func (c *CLI) repetitionsCommand() *cobra.Command {
	var (
		noCache bool
		vector  bool
	)

	cmd := &cobra.Command{
		Use:     "repetitions <graph>",
		Aliases: []string{"reps"},
		Short:   "Solve the repetitions vector of an SDF graph",
		Long: `Solve the balance equations of an SDF graph and print how often each actor
fires per graph iteration.

The graph file may be JSON, TOML or YAML. The solution is cached by the
content hash of the graph; use --no-cache to solve from scratch.`,
		Example: `  sdfexpand repetitions filter.toml
  sdfexpand reps --vector pipeline.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRepetitions(cmd.Context(), cmd.OutOrStdout(), args[0], noCache, vector)
		},
	}

	cmd.Flags().BoolVar(&noCache, "no-cache", false, "skip the analysis cache")
	cmd.Flags().BoolVar(&vector, "vector", false, "print only the vector, e.g. [3 2]")

	return cmd
}

func (c *CLI) runRepetitions(ctx context.Context, w io.Writer, path string, noCache, vector bool) error {
	runner, err := c.newRunner(noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	result, err := runner.Execute(ctx, pipeline.Options{Path: path, Refresh: noCache})
	if err != nil {
		return err
	}

	if vector {
		fmt.Fprintln(w, result.Repetitions.String())
		return nil
	}

	fmt.Fprintln(w, repetitionsTable(result.Graph, result.Repetitions))
	printStats(graphStats{
		actors:   result.Stats.Actors,
		channels: result.Stats.Channels,
		firings:  result.Stats.Firings,
		cached:   result.CacheInfo.AnalysisHit,
	})
	printNextStep("Expand to HSDF", fmt.Sprintf("%s expand %s", appName, path))
	return nil
}

// repetitionsTable lists each actor with its firing count.
func repetitionsTable(g *sdf.Graph, reps sdf.Repetitions) string {
	rows := make([][]string, 0, g.ActorCount())
	for i, name := range g.Actors() {
		rows = append(rows, []string{strconv.Itoa(i), name, strconv.FormatInt(reps.Of(i), 10)})
	}
	return renderTable([]string{"#", "Actor", "Firings"}, rows, func(col int) bool {
		return col != 1
	})
}

// topologyCommand creates the topology command.
func (c *CLI) topologyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "topology <graph>",
		Short: "Print the topology matrix of an SDF graph",
		Long: `Print the channels × actors topology matrix of an SDF graph.

Row c holds the production rate of channel c at its source actor and the
negated consumption rate at its target actor. The matrix is printed for any
well-formed graph, including graphs whose balance equations have no
solution.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runTopology(cmd.Context(), cmd.OutOrStdout(), args[0])
		},
	}
	return cmd
}

func (c *CLI) runTopology(ctx context.Context, w io.Writer, path string) error {
	runner, err := c.newRunner(true)
	if err != nil {
		return err
	}
	defer runner.Close()

	g, err := runner.Load(ctx, path)
	if err != nil {
		return err
	}

	fmt.Fprintln(w, topologyTable(g, g.TopologyMatrix()))
	printStats(graphStats{actors: g.ActorCount(), channels: g.ChannelCount()})
	return nil
}

// topologyTable renders m with one row per channel and one column per actor.
func topologyTable(g *sdf.Graph, m sdf.Matrix) string {
	headers := append([]string{"Channel"}, g.Actors()...)
	rows := make([][]string, 0, m.Rows())
	for i, row := range m {
		ch := g.Channel(i)
		cells := make([]string, 0, len(row)+1)
		cells = append(cells, fmt.Sprintf("%s → %s", g.Actor(ch.Source), g.Actor(ch.Target)))
		for _, v := range row {
			cells = append(cells, strconv.FormatInt(v, 10))
		}
		rows = append(rows, cells)
	}
	return renderTable(headers, rows, func(col int) bool {
		return col > 0
	})
}
