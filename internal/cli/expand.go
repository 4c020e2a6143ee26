package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	sdfio "github.com/matzehuels/sdfexpand/pkg/io"
	"github.com/matzehuels/sdfexpand/pkg/pipeline"
)

// expandOpts holds the command-line flags for the expand command.
type expandOpts struct {
	output  string // output file path; stdout when empty
	workers int    // SDF channels expanded concurrently
	merge   bool   // collapse parallel token edges into one edge per firing pair
	noCache bool   // skip the analysis cache
}

// expandCommand creates the expand command.
func (c *CLI) expandCommand() *cobra.Command {
	opts := expandOpts{workers: pipeline.DefaultWorkers}

	cmd := &cobra.Command{
		Use:   "expand <graph>",
		Short: "Expand an SDF graph into its HSDF equivalent",
		Long: `Expand an SDF graph into the homogeneous SDF graph of one iteration.

Actor A with repetition count r becomes the firings A(0) … A(r-1). Every
token produced in the iteration becomes one HSDF channel from the firing
that produces it to the firing that consumes it, with a delay equal to the
number of iterations it waits. Initial tokens are routed to the firings of
the next iteration.

The result is written as JSON to stdout or to the file given by -o.`,
		Example: `  sdfexpand expand filter.toml
  sdfexpand expand filter.toml --merge -o filter_hsdf.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runExpand(cmd.Context(), cmd.OutOrStdout(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", opts.workers, "channels expanded concurrently")
	cmd.Flags().BoolVar(&opts.merge, "merge", false, "merge parallel token edges")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "skip the analysis cache")

	return cmd
}

func (c *CLI) runExpand(ctx context.Context, w io.Writer, path string, opts expandOpts) error {
	logger := loggerFromContext(ctx)
	runner, err := c.newRunner(opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Expanding "+path+"...")
	spinner.Start()
	result, err := runner.Execute(ctx, pipeline.Options{
		Path:    path,
		Expand:  true,
		Workers: opts.workers,
		Refresh: opts.noCache,
	})
	spinner.Stop()
	if err != nil {
		return err
	}

	prog := newProgress(logger)
	out, err := openOutput(opts.output, w)
	if err != nil {
		return err
	}
	err = sdfio.WriteHSDFJSON(result.HSDF, result.Channels, out, sdfio.HSDFOptions{Merge: opts.merge})
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("write hsdf: %w", err)
	}

	// Status lines would corrupt JSON written to stdout.
	if opts.output == "" {
		return nil
	}
	prog.done(fmt.Sprintf("Wrote %d channels", len(result.Channels)))
	printSuccess("Expanded %s", path)
	printFile(opts.output)
	printStats(graphStats{
		actors:   result.Stats.Actors,
		channels: result.Stats.Channels,
		firings:  result.Stats.Firings,
		tokens:   result.Stats.Tokens,
		cached:   result.CacheInfo.AnalysisHit,
	})
	printNextStep("Draw it", fmt.Sprintf("%s render %s --view hsdf --merge", appName, path))
	return nil
}
