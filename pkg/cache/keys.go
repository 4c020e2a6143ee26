package cache

import "fmt"

// Keyer builds cache keys for the pipeline stages.
type Keyer interface {
	// AnalysisKey addresses the repetitions vector of a graph.
	AnalysisKey(graphHash string) string

	// ArtifactKey addresses one rendered output of a graph.
	ArtifactKey(graphHash string, opts ArtifactKeyOpts) string
}

// ArtifactKeyOpts holds the render options that change an artifact's bytes.
type ArtifactKeyOpts struct {
	View     string  `json:"view"`
	Format   string  `json:"format"`
	Merge    bool    `json:"merge"`
	Detailed bool    `json:"detailed"`
	Scale    float64 `json:"scale,omitempty"`
}

// DefaultKeyer produces "<kind>:<sha256>" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard key scheme.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// AnalysisKey implements Keyer.
func (DefaultKeyer) AnalysisKey(graphHash string) string {
	return fmt.Sprintf("analysis:%s", graphHash)
}

// ArtifactKey implements Keyer.
func (DefaultKeyer) ArtifactKey(graphHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", graphHash, opts)
}
