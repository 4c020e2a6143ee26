package hsdf

import (
	"context"
	"slices"

	"golang.org/x/sync/errgroup"
)

// cancelCheckInterval is how many tokens a worker routes between checks of
// the context.
const cancelCheckInterval = 4096

// maxPrealloc caps the slice capacity reserved per SDF channel up front.
const maxPrealloc = 1 << 20

// CollectChannels materializes h.Channels() using up to workers goroutines,
// one task per SDF channel. workers <= 0 means no limit.
//
// The result has exactly the order of [Graph.Channels]. If ctx is cancelled
// the partial result is discarded and ctx.Err() is returned.
func CollectChannels(ctx context.Context, h *Graph, workers int) ([]Channel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	g, gctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}

	parts := make([][]Channel, h.sdf.ChannelCount())
	for i := range parts {
		g.Go(func() error {
			out := make([]Channel, 0, min(h.channelCount(i), maxPrealloc))
			for c := range h.ChannelsOf(i) {
				if len(out)%cancelCheckInterval == 0 {
					if err := gctx.Err(); err != nil {
						return err
					}
				}
				out = append(out, c)
			}
			parts[i] = out
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return slices.Concat(parts...), nil
}
