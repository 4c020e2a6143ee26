package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/sdfexpand/pkg/cache"
	errs "github.com/matzehuels/sdfexpand/pkg/errors"
	"github.com/matzehuels/sdfexpand/pkg/hsdf"
	sdfio "github.com/matzehuels/sdfexpand/pkg/io"
	"github.com/matzehuels/sdfexpand/pkg/sdf"
)

const pairJSON = `{
  "actors": ["A", "B"],
  "channels": [{"source": "A", "target": "B", "production": 2, "consumption": 3}]
}`

const pairTOML = `
actors = ["A", "B"]

[[channels]]
source = "A"
target = "B"
production = 2
consumption = 3
`

func writeGraph(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func quietLogger() *log.Logger {
	return log.NewWithOptions(os.Stderr, log.Options{Level: log.ErrorLevel})
}

func newFileRunner(t *testing.T) *Runner {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return NewRunner(c, nil, quietLogger())
}

func TestNewRunnerDefaults(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	if r.Cache == nil || r.Keyer == nil || r.Logger == nil {
		t.Errorf("NewRunner(nil, nil, nil) = %+v, want non-nil fields", r)
	}
	if err := r.Close(); err != nil {
		t.Errorf("Close() error: %v", err)
	}
}

func TestExecuteHSDF(t *testing.T) {
	r := NewRunner(nil, nil, quietLogger())
	res, err := r.Execute(context.Background(), Options{
		Path:    writeGraph(t, "pair.json", pairJSON),
		View:    ViewHSDF,
		Formats: []string{FormatDOT},
		Workers: 2,
	})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}

	if res.RunID == uuid.Nil {
		t.Error("RunID should be set")
	}
	if !slices.Equal(res.Repetitions, sdf.Repetitions{3, 2}) {
		t.Errorf("Repetitions = %v, want [3 2]", res.Repetitions)
	}
	if res.HSDF == nil || len(res.Channels) != 6 {
		t.Fatalf("expected 6 expanded channels, got %d", len(res.Channels))
	}
	if res.Stats.Actors != 2 || res.Stats.Channels != 1 || res.Stats.Firings != 5 || res.Stats.Tokens != 6 {
		t.Errorf("Stats = %+v", res.Stats)
	}
	if got := len(res.Topology); got != 1 || !slices.Equal(res.Topology[0], []int64{2, -3}) {
		t.Errorf("Topology = %v, want [[2 -3]]", res.Topology)
	}
	dot := string(res.Artifacts[FormatDOT])
	if strings.Count(dot, " -> ") != 6 {
		t.Errorf("hsdf dot should have 6 edges:\n%s", dot)
	}
}

func TestExecuteWithoutExpansion(t *testing.T) {
	r := NewRunner(nil, nil, quietLogger())
	res, err := r.Execute(context.Background(), Options{Path: writeGraph(t, "pair.toml", pairTOML)})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if res.HSDF != nil || res.Channels != nil {
		t.Error("Execute() should not expand without a request")
	}
	if len(res.Artifacts) != 0 {
		t.Errorf("Execute() should not render without formats, got %d artifacts", len(res.Artifacts))
	}
}

func TestExecuteCaching(t *testing.T) {
	r := newFileRunner(t)
	opts := Options{
		Path:    writeGraph(t, "pair.json", pairJSON),
		Formats: []string{FormatDOT},
	}

	first, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if first.CacheInfo.AnalysisHit || first.CacheInfo.RenderHit {
		t.Errorf("first run CacheInfo = %+v, want misses", first.CacheInfo)
	}

	second, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if !second.CacheInfo.AnalysisHit || !second.CacheInfo.RenderHit {
		t.Errorf("second run CacheInfo = %+v, want hits", second.CacheInfo)
	}
	if !slices.Equal(first.Repetitions, second.Repetitions) {
		t.Errorf("cached repetitions %v differ from computed %v", second.Repetitions, first.Repetitions)
	}
	if string(first.Artifacts[FormatDOT]) != string(second.Artifacts[FormatDOT]) {
		t.Error("cached artifact differs from rendered artifact")
	}
	if first.RunID == second.RunID {
		t.Error("each run should get its own RunID")
	}

	opts.Refresh = true
	third, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if third.CacheInfo.AnalysisHit || third.CacheInfo.RenderHit {
		t.Errorf("refresh run CacheInfo = %+v, want misses", third.CacheInfo)
	}
}

func TestAnalyzeIgnoresBadCachedVector(t *testing.T) {
	ctx := context.Background()
	r := newFileRunner(t)
	g, err := sdfio.ReadJSON(strings.NewReader(pairJSON))
	if err != nil {
		t.Fatal(err)
	}
	hash, err := GraphHash(g)
	if err != nil {
		t.Fatal(err)
	}

	for _, bad := range []string{`[1, 1]`, `[3]`, `[-3, -2]`, `not json`} {
		if err := r.Cache.Set(ctx, r.Keyer.AnalysisKey(hash), []byte(bad), 0); err != nil {
			t.Fatal(err)
		}
		a, hit, err := r.AnalyzeWithCacheInfo(ctx, g, Options{})
		if err != nil {
			t.Fatalf("AnalyzeWithCacheInfo() error: %v", err)
		}
		if hit {
			t.Errorf("cached %s should not be used", bad)
		}
		if !slices.Equal(a.Repetitions, sdf.Repetitions{3, 2}) {
			t.Errorf("Repetitions = %v, want [3 2]", a.Repetitions)
		}
	}
}

func TestExecuteErrors(t *testing.T) {
	disconnected := `{"actors": ["A", "B"], "channels": []}`
	inconsistent := `{"actors": ["A", "B"], "channels": [
		{"source": "A", "target": "B", "production": 1, "consumption": 1},
		{"source": "B", "target": "A", "production": 2, "consumption": 1}
	]}`

	tests := []struct {
		name   string
		path   string
		code   errs.Code
		target error
	}{
		{"missing file", filepath.Join(t.TempDir(), "nope.json"), errs.ErrCodeFileNotFound, nil},
		{"disconnected", writeGraph(t, "d.json", disconnected), errs.ErrCodeStructural, sdf.ErrRankMismatch},
		{"inconsistent", writeGraph(t, "i.json", inconsistent), errs.ErrCodeStructural, sdf.ErrRankMismatch},
	}
	r := NewRunner(nil, nil, quietLogger())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Execute(context.Background(), Options{Path: tt.path})
			if !errs.Is(err, tt.code) {
				t.Fatalf("Execute() error = %v, want code %s", err, tt.code)
			}
			if tt.target != nil && !errors.Is(err, tt.target) {
				t.Errorf("errors.Is(%v, %v) = false", err, tt.target)
			}
		})
	}
}

func TestExecuteCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewRunner(nil, nil, quietLogger())
	_, err := r.Execute(ctx, Options{Path: writeGraph(t, "pair.json", pairJSON), Expand: true})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Execute() error = %v, want context.Canceled", err)
	}
}

func TestGraphHashFormatIndependent(t *testing.T) {
	fromJSON, err := sdfio.Import(writeGraph(t, "pair.json", pairJSON))
	if err != nil {
		t.Fatal(err)
	}
	fromTOML, err := sdfio.Import(writeGraph(t, "pair.toml", pairTOML))
	if err != nil {
		t.Fatal(err)
	}

	a, err := GraphHash(fromJSON)
	if err != nil {
		t.Fatal(err)
	}
	b, err := GraphHash(fromTOML)
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Errorf("GraphHash differs between formats: %s vs %s", a, b)
	}
}

func TestRunnerExpand(t *testing.T) {
	g, err := sdfio.ReadJSON(strings.NewReader(pairJSON))
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(nil, nil, quietLogger())
	h, channels, err := r.Expand(context.Background(), g, sdf.Repetitions{3, 2}, 4)
	if err != nil {
		t.Fatalf("Expand() error: %v", err)
	}
	if h.ActorCount() != 5 || len(channels) != 6 {
		t.Errorf("Expand() = %d firings, %d channels; want 5, 6", h.ActorCount(), len(channels))
	}
}

func TestRunnerExpandTooManyTokens(t *testing.T) {
	g := sdf.New(nil)
	for _, a := range []string{"A", "B"} {
		if _, err := g.AddActor(a); err != nil {
			t.Fatal(err)
		}
	}
	if err := g.AddChannel("A", 1<<62, "B", 3, 0); err != nil {
		t.Fatal(err)
	}

	r := NewRunner(nil, nil, quietLogger())
	_, _, err := r.Expand(context.Background(), g, sdf.Repetitions{3, 1 << 62}, 2)
	if !errors.Is(err, hsdf.ErrTooManyTokens) {
		t.Errorf("Expand() error = %v, want ErrTooManyTokens", err)
	}
}

func TestRunnerExpandHugeInitialTokens(t *testing.T) {
	g, err := sdfio.ReadJSON(strings.NewReader(`{
  "actors": ["A", "B"],
  "channels": [{"source": "A", "target": "B", "production": 1, "consumption": 2, "initial_tokens": 9223372036854775807}]
}`))
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(nil, nil, quietLogger())
	_, channels, err := r.Expand(context.Background(), g, sdf.Repetitions{2, 1}, 2)
	if err != nil {
		t.Fatalf("Expand() error: %v", err)
	}
	// 2^63-1 = 2*(2^62-1) + 1: the first token sits in the second half of
	// buffer cycle 2^62-1, the second starts cycle 2^62.
	want := []int64{1<<62 - 1, 1 << 62}
	if len(channels) != len(want) {
		t.Fatalf("Expand() = %d channels, want %d", len(channels), len(want))
	}
	for i, c := range channels {
		if c.Delay != want[i] || c.Target.Firing != 0 {
			t.Errorf("token %d -> B(%d) delay %d, want B(0) delay %d", i, c.Target.Firing, c.Delay, want[i])
		}
	}
}
