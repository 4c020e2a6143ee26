package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	errs "github.com/matzehuels/sdfexpand/pkg/errors"
	"github.com/matzehuels/sdfexpand/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output   string   // output file path, or base path for multiple formats
	view     string   // diagram view: "sdf" or "hsdf"
	formats  []string // output formats: "svg", "png", "pdf", "dot"
	merge    bool     // merge parallel token edges in the hsdf view
	detailed bool     // annotate actors with repetition counts in the sdf view
	scale    float64  // PNG resolution multiplier
	maxEdges int      // refuse hsdf diagrams with more drawn edges
	workers  int      // SDF channels expanded concurrently
	noCache  bool     // skip the analysis and artifact cache
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	opts := renderOpts{
		view:     pipeline.DefaultView,
		scale:    pipeline.DefaultScale,
		maxEdges: pipeline.DefaultMaxEdges,
		workers:  pipeline.DefaultWorkers,
	}

	cmd := &cobra.Command{
		Use:   "render <graph>",
		Short: "Render an SDF graph or its HSDF expansion",
		Long: `Render a diagram of an SDF graph (--view sdf) or of its HSDF expansion
(--view hsdf) through Graphviz.

Output files are named after the input unless -o is given. With several
formats, -o is used as a base path and each format gets its own extension.
PNG and PDF output require rsvg-convert on the PATH.`,
		Example: `  sdfexpand render filter.toml
  sdfexpand render filter.toml --view hsdf --merge -f svg,png
  sdfexpand render filter.toml -f dot -o -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			return c.runRender(cmd.Context(), cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file or base path (\"-\" for stdout with one format)")
	cmd.Flags().StringVar(&opts.view, "view", opts.view, "diagram view: sdf, hsdf")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output formats: svg, png, pdf, dot (comma-separated)")
	cmd.Flags().BoolVar(&opts.merge, "merge", false, "merge parallel token edges (hsdf view)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show repetition counts (sdf view)")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "PNG resolution multiplier")
	cmd.Flags().IntVar(&opts.maxEdges, "max-edges", opts.maxEdges, "largest hsdf diagram to draw, in edges")
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", opts.workers, "channels expanded concurrently")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "skip the analysis and artifact cache")

	_ = cmd.RegisterFlagCompletionFunc("format", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return formatList(), cobra.ShellCompDirectiveNoFileComp
	})
	_ = cmd.RegisterFlagCompletionFunc("view", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{pipeline.ViewSDF, pipeline.ViewHSDF}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func (c *CLI) runRender(ctx context.Context, cmd *cobra.Command, input string, opts renderOpts) error {
	if opts.output == "-" && len(opts.formats) != 1 {
		return errs.New(errs.ErrCodeInvalidInput, "writing to stdout needs exactly one format, got %d", len(opts.formats))
	}
	if opts.merge && opts.view != pipeline.ViewHSDF {
		printWarning("--merge only applies to --view %s", pipeline.ViewHSDF)
	}
	if opts.detailed && opts.view == pipeline.ViewHSDF {
		printWarning("--detailed only applies to --view %s", pipeline.ViewSDF)
	}

	runner, err := c.newRunner(opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Rendering "+input+"...")
	spinner.Start()
	result, err := runner.Execute(ctx, pipeline.Options{
		Path:     input,
		Workers:  opts.workers,
		View:     opts.view,
		Formats:  opts.formats,
		Merge:    opts.merge,
		Detailed: opts.detailed,
		Scale:    opts.scale,
		MaxEdges: opts.maxEdges,
		Refresh:  opts.noCache,
	})
	spinner.Stop()
	if err != nil {
		return err
	}

	if opts.output == "-" {
		_, err := cmd.OutOrStdout().Write(result.Artifacts[opts.formats[0]])
		return err
	}

	paths, err := writeArtifacts(artifactWriteParams{
		artifacts: result.Artifacts,
		formats:   opts.formats,
		input:     input,
		output:    opts.output,
		view:      opts.view,
	})
	if err != nil {
		return err
	}

	printSuccess("Rendered %s view of %s", opts.view, input)
	for _, p := range paths {
		printFile(p)
	}
	stats := graphStats{
		actors:   result.Stats.Actors,
		channels: result.Stats.Channels,
		cached:   result.CacheInfo.RenderHit,
	}
	if result.HSDF != nil {
		stats.firings = result.Stats.Firings
		stats.tokens = result.Stats.Tokens
	}
	printStats(stats)
	return nil
}

// artifactWriteParams describes rendered artifacts and where they go.
type artifactWriteParams struct {
	artifacts map[string][]byte
	formats   []string
	input     string
	output    string
	view      string
}

// writeArtifacts writes each requested format to disk and returns the
// paths in format order.
func writeArtifacts(p artifactWriteParams) ([]string, error) {
	base := basePath(p.output, p.input)
	if p.output == "" && p.view == pipeline.ViewHSDF {
		base += "_hsdf"
	}

	paths := make([]string, 0, len(p.formats))
	for _, format := range p.formats {
		data, ok := p.artifacts[format]
		if !ok {
			return paths, errs.New(errs.ErrCodeInternal, "no %s artifact was rendered", format)
		}
		path := base + "." + format
		if len(p.formats) == 1 && p.output != "" && hasFormatExt(p.output) {
			path = p.output
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return paths, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// basePath returns the output path without its format extension. When
// output is empty it is derived from input.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	if hasFormatExt(output) {
		return strings.TrimSuffix(output, filepath.Ext(output))
	}
	return output
}

// hasFormatExt reports whether path ends in a known render format extension.
func hasFormatExt(path string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	return pipeline.ValidFormats[ext]
}

// formatList returns the valid formats in a stable order, for messages.
func formatList() []string {
	formats := make([]string, 0, len(pipeline.ValidFormats))
	for f := range pipeline.ValidFormats {
		formats = append(formats, f)
	}
	slices.Sort(formats)
	return formats
}
