package cli

import (
	"context"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/sdfexpand/internal/server"
	"github.com/matzehuels/sdfexpand/pkg/pipeline"
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr      string
	maxBody   int64
	maxTokens int64
	workers   int
	timeout   time.Duration
	noCache   bool
	redisURL  string
}

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	opts := serveOpts{
		addr:      server.DefaultAddr,
		maxBody:   server.DefaultMaxBodyBytes,
		maxTokens: server.DefaultMaxTokens,
		workers:   pipeline.DefaultWorkers,
		timeout:   server.DefaultRequestTimeout,
		redisURL:  os.Getenv(redisURLEnv),
	}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the analysis pipeline over HTTP",
		Long: `Start an HTTP server exposing topology, repetitions, expand and render.

Requests carry a graph document in the body (JSON by default; TOML or YAML
via Content-Type or ?input=). Results share the same cache as the CLI
unless --no-cache is given; set --redis-url or ` + redisURLEnv + ` to share
a Redis cache between servers.`,
		Example: `  sdfexpand serve --addr :9000
  curl --data-binary @filter.json localhost:9000/v1/repetitions`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", opts.addr, "listen address")
	cmd.Flags().Int64Var(&opts.maxBody, "max-body", opts.maxBody, "maximum request body in bytes")
	cmd.Flags().Int64Var(&opts.maxTokens, "max-tokens", opts.maxTokens, "maximum HSDF channels per request")
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", opts.workers, "channels expanded concurrently")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", opts.timeout, "per-request timeout")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVar(&opts.redisURL, "redis-url", opts.redisURL, "Redis cache URL (default: file cache)")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts serveOpts) error {
	cache, err := newCache(opts.noCache, opts.redisURL)
	if err != nil {
		return err
	}
	runner := pipeline.NewRunner(cache, nil, c.Logger)
	defer runner.Close()

	srv := server.New(runner, server.Config{
		Addr:           opts.addr,
		MaxBodyBytes:   opts.maxBody,
		MaxTokens:      opts.maxTokens,
		Workers:        opts.workers,
		RequestTimeout: opts.timeout,
		Logger:         c.Logger,
	})
	return srv.ListenAndServe(ctx)
}
