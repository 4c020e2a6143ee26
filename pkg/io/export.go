package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	errs "github.com/matzehuels/sdfexpand/pkg/errors"
	"github.com/matzehuels/sdfexpand/pkg/hsdf"
	"github.com/matzehuels/sdfexpand/pkg/sdf"
)

// WriteJSON encodes g as an indented JSON graph file.
// The output can be read back with [ReadJSON].
func WriteJSON(g *sdf.Graph, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(fromGraph(g)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteTOML encodes g as a TOML graph file.
func WriteTOML(g *sdf.Graph, w io.Writer) error {
	if err := toml.NewEncoder(w).Encode(fromGraph(g)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteYAML encodes g as a YAML graph file.
func WriteYAML(g *sdf.Graph, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(fromGraph(g)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return enc.Close()
}

// Write encodes g in the given format.
func Write(g *sdf.Graph, w io.Writer, format Format) error {
	switch format {
	case FormatJSON:
		return WriteJSON(g, w)
	case FormatTOML:
		return WriteTOML(g, w)
	case FormatYAML:
		return WriteYAML(g, w)
	}
	return errs.New(errs.ErrCodeInvalidFormat, "unsupported graph format %q", format)
}

// Export writes g to path, choosing the encoder from the file extension.
// Nothing is written when encoding fails.
func Export(g *sdf.Graph, path string) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := Write(g, &buf, format); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// HSDFOptions configures [WriteHSDFJSON].
type HSDFOptions struct {
	// Merge collapses channels with the same endpoints and delay into one
	// entry carrying a token count.
	Merge bool
}

type hsdfFile struct {
	Repetitions []repetitionEntry `json:"repetitions"`
	Actors      []firingEntry     `json:"actors"`
	Channels    []tokenEntry      `json:"channels"`
}

type repetitionEntry struct {
	Index   int    `json:"index"`
	Actor   string `json:"actor"`
	Firings int64  `json:"firings"`
}

type firingEntry struct {
	ID     string `json:"id"`
	Actor  string `json:"actor"`
	Index  int    `json:"index"`
	Firing int64  `json:"firing"`
}

type tokenEntry struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Delay  int64  `json:"delay"`
	Origin *int   `json:"origin,omitempty"`
	Token  *int64 `json:"token,omitempty"`
	Tokens int    `json:"tokens,omitempty"`
}

// WriteHSDFJSON encodes the expansion h as JSON.
//
// Firings are identified by "<actor index>-<firing>" IDs. Without merging,
// each channel entry records the SDF channel it came from and the token's
// production index on that channel within the iteration. channels may be
// nil, in which case they are generated from h; callers that already
// collected them (for example with [hsdf.CollectChannels]) can pass them in.
func WriteHSDFJSON(h *hsdf.Graph, channels []hsdf.Channel, w io.Writer, opts HSDFOptions) error {
	g := h.SDF()
	reps := h.Repetitions()

	out := hsdfFile{
		Repetitions: make([]repetitionEntry, len(reps)),
		Actors:      make([]firingEntry, 0, h.ActorCount()),
	}
	for i, r := range reps {
		out.Repetitions[i] = repetitionEntry{Index: i, Actor: g.Actor(i), Firings: r}
	}
	for a := range h.Actors() {
		out.Actors = append(out.Actors, firingEntry{ID: a.ID(), Actor: a.Name, Index: a.Index, Firing: a.Firing})
	}

	seq := h.Channels()
	if channels != nil {
		seq = func(yield func(hsdf.Channel) bool) {
			for _, c := range channels {
				if !yield(c) {
					return
				}
			}
		}
	}

	if opts.Merge {
		for _, e := range hsdf.Aggregate(seq) {
			out.Channels = append(out.Channels, tokenEntry{
				Source: e.Source.ID(),
				Target: e.Target.ID(),
				Delay:  e.Delay,
				Tokens: e.Tokens,
			})
		}
	} else {
		for c := range seq {
			out.Channels = append(out.Channels, tokenEntry{
				Source: c.Source.ID(),
				Target: c.Target.ID(),
				Delay:  c.Delay,
				Origin: &c.Origin,
				Token:  &c.Token,
			})
		}
	}
	if out.Channels == nil {
		out.Channels = []tokenEntry{}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportHSDFJSON writes the expansion h to a JSON file at path.
// This is a convenience wrapper around [WriteHSDFJSON] for file-based output.
func ExportHSDFJSON(h *hsdf.Graph, channels []hsdf.Channel, path string, opts HSDFOptions) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteHSDFJSON(h, channels, f, opts)
}
