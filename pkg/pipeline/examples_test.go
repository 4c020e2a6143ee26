package pipeline

import (
	"context"
	"path/filepath"
	"slices"
	"testing"

	"github.com/matzehuels/sdfexpand/pkg/cache"
	"github.com/matzehuels/sdfexpand/pkg/sdf"
)

func TestExampleGraphs(t *testing.T) {
	tests := []struct {
		file     string
		reps     sdf.Repetitions
		channels int
	}{
		{"rate_change.json", sdf.Repetitions{3, 2}, 6},
		{"cd2dat.toml", sdf.Repetitions{147, 147, 98, 28, 32, 160}, 1021},
		{"feedback.yaml", sdf.Repetitions{2, 3, 2}, 21},
	}

	runner := NewRunner(cache.NewNullCache(), nil, nil)
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			result, err := runner.Execute(context.Background(), Options{
				Path:   filepath.Join("..", "..", "examples", "graphs", tt.file),
				Expand: true,
			})
			if err != nil {
				t.Fatalf("Execute error: %v", err)
			}
			if !slices.Equal(result.Repetitions, tt.reps) {
				t.Errorf("repetitions = %v, want %v", result.Repetitions, tt.reps)
			}
			if len(result.Channels) != tt.channels {
				t.Errorf("got %d hsdf channels, want %d", len(result.Channels), tt.channels)
			}
			if result.HSDF.ActorCount() != tt.reps.Total() {
				t.Errorf("ActorCount = %d, want %d", result.HSDF.ActorCount(), tt.reps.Total())
			}
		})
	}
}
