package pipeline

import (
	"context"
	"strings"
	"testing"

	errs "github.com/matzehuels/sdfexpand/pkg/errors"
	"github.com/matzehuels/sdfexpand/pkg/hsdf"
	sdfio "github.com/matzehuels/sdfexpand/pkg/io"
	"github.com/matzehuels/sdfexpand/pkg/sdf"
)

func expandPair(t *testing.T) (*sdf.Graph, *hsdf.Graph) {
	t.Helper()
	g, err := sdfio.ReadJSON(strings.NewReader(pairJSON))
	if err != nil {
		t.Fatal(err)
	}
	h, err := hsdf.Expand(g)
	if err != nil {
		t.Fatal(err)
	}
	return g, h
}

func TestDOT(t *testing.T) {
	g, h := expandPair(t)

	dot, err := DOT(g, sdf.Repetitions{3, 2}, nil, Options{View: ViewSDF, Detailed: true})
	if err != nil {
		t.Fatalf("DOT(sdf) error: %v", err)
	}
	if !strings.Contains(dot, `×3`) {
		t.Errorf("detailed sdf dot missing repetition count:\n%s", dot)
	}

	if _, err := DOT(g, nil, nil, Options{View: ViewHSDF}); !errs.Is(err, errs.ErrCodeInternal) {
		t.Errorf("DOT(hsdf, nil) error = %v, want %s", err, errs.ErrCodeInternal)
	}

	dot, err = DOT(g, nil, h, Options{View: ViewHSDF, MaxEdges: 6})
	if err != nil {
		t.Fatalf("DOT(hsdf) error: %v", err)
	}
	if strings.Count(dot, " -> ") != 6 {
		t.Errorf("hsdf dot should have 6 edges:\n%s", dot)
	}
}

func TestDOTMaxEdges(t *testing.T) {
	g, h := expandPair(t)

	_, err := DOT(g, nil, h, Options{View: ViewHSDF, MaxEdges: 5})
	if !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Fatalf("DOT() error = %v, want %s", err, errs.ErrCodeInvalidInput)
	}
	if !strings.Contains(err.Error(), "--merge") {
		t.Errorf("error %q should suggest --merge", err)
	}

	if _, err := DOT(g, nil, h, Options{View: ViewHSDF, Merge: true, MaxEdges: 5}); err != nil {
		t.Errorf("merged diagram of 5 firings should fit a limit of 5: %v", err)
	}
	if _, err := DOT(g, nil, h, Options{View: ViewHSDF, Merge: true, MaxEdges: 4}); err == nil {
		t.Error("merged diagram of 5 firings should exceed a limit of 4")
	}
}

func TestRender(t *testing.T) {
	g, h := expandPair(t)
	ctx := context.Background()

	artifacts, err := Render(ctx, g, nil, h, Options{View: ViewHSDF, Merge: true, Formats: []string{FormatDOT, FormatSVG}})
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if !strings.HasPrefix(string(artifacts[FormatDOT]), "digraph G {") {
		t.Errorf("dot artifact = %q", artifacts[FormatDOT])
	}
	if !strings.Contains(string(artifacts[FormatSVG]), "<svg") {
		t.Error("svg artifact missing <svg> tag")
	}

	if _, err := Render(ctx, g, nil, nil, Options{View: ViewSDF, Formats: []string{"gif"}}); !errs.Is(err, errs.ErrCodeUnsupported) {
		t.Errorf("Render(gif) error = %v, want %s", err, errs.ErrCodeUnsupported)
	}
}
