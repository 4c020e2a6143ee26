package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks writes pipeline and cache events to a logger at debug level.
// It implements both [PipelineHooks] and [CacheHooks].
type LogHooks struct {
	logger *log.Logger
}

// NewLogHooks returns hooks that log through logger.
func NewLogHooks(logger *log.Logger) *LogHooks {
	return &LogHooks{logger: logger.WithPrefix("hooks")}
}

func (h *LogHooks) done(msg string, duration time.Duration, err error, kv ...any) {
	kv = append(kv, "took", duration.Round(time.Microsecond))
	if err != nil {
		h.logger.Debug(msg+" failed", append(kv, "err", err)...)
		return
	}
	h.logger.Debug(msg, kv...)
}

func (h *LogHooks) OnLoadStart(_ context.Context, path string) {
	h.logger.Debug("load", "path", path)
}

func (h *LogHooks) OnLoadComplete(_ context.Context, path string, actors, channels int, d time.Duration, err error) {
	h.done("loaded", d, err, "path", path, "actors", actors, "channels", channels)
}

func (h *LogHooks) OnAnalyzeStart(_ context.Context, actors int) {
	h.logger.Debug("analyze", "actors", actors)
}

func (h *LogHooks) OnAnalyzeComplete(_ context.Context, firings int64, d time.Duration, err error) {
	h.done("analyzed", d, err, "firings", firings)
}

func (h *LogHooks) OnExpandStart(_ context.Context, channels, workers int) {
	h.logger.Debug("expand", "channels", channels, "workers", workers)
}

func (h *LogHooks) OnExpandComplete(_ context.Context, tokens int64, d time.Duration, err error) {
	h.done("expanded", d, err, "tokens", tokens)
}

func (h *LogHooks) OnRenderStart(_ context.Context, view string, formats []string) {
	h.logger.Debug("render", "view", view, "formats", formats)
}

func (h *LogHooks) OnRenderComplete(_ context.Context, view string, formats []string, d time.Duration, err error) {
	h.done("rendered", d, err, "view", view, "formats", formats)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

var (
	_ PipelineHooks = (*LogHooks)(nil)
	_ CacheHooks    = (*LogHooks)(nil)
)
