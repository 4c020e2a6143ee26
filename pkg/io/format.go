package io

import (
	"fmt"
	"path/filepath"
	"strings"

	errs "github.com/matzehuels/sdfexpand/pkg/errors"
	"github.com/matzehuels/sdfexpand/pkg/sdf"
)

// Format identifies a graph file encoding.
type Format string

// Supported graph file formats.
const (
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// FormatFromPath infers the format from a file extension.
// .json, .toml, .yaml and .yml are recognized, case-insensitively.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", errs.New(errs.ErrCodeInvalidFormat, "unsupported graph file extension %q (want .json, .toml, .yaml or .yml)", filepath.Ext(path))
}

type graphFile struct {
	Name     string         `json:"name,omitempty" toml:"name,omitempty" yaml:"name,omitempty"`
	Actors   []string       `json:"actors" toml:"actors" yaml:"actors"`
	Channels []channelFile  `json:"channels" toml:"channels" yaml:"channels"`
	Meta     map[string]any `json:"meta,omitempty" toml:"meta,omitempty" yaml:"meta,omitempty"`
}

type channelFile struct {
	Source        string `json:"source" toml:"source" yaml:"source"`
	Target        string `json:"target" toml:"target" yaml:"target"`
	SourceIndex   *int   `json:"source_index,omitempty" toml:"source_index,omitempty" yaml:"source_index,omitempty"`
	TargetIndex   *int   `json:"target_index,omitempty" toml:"target_index,omitempty" yaml:"target_index,omitempty"`
	Production    int64  `json:"production" toml:"production" yaml:"production"`
	Consumption   int64  `json:"consumption" toml:"consumption" yaml:"consumption"`
	InitialTokens int64  `json:"initial_tokens,omitempty" toml:"initial_tokens,omitempty" yaml:"initial_tokens,omitempty"`
}

const metaName = "name"

func (f *graphFile) toGraph() (*sdf.Graph, error) {
	meta := sdf.Metadata{}
	for k, v := range f.Meta {
		meta[k] = v
	}
	if f.Name != "" {
		meta[metaName] = f.Name
	}

	g := sdf.New(meta)
	for i, name := range f.Actors {
		if err := errs.ValidateActorName(name); err != nil {
			return nil, fmt.Errorf("actor %d: %w", i, err)
		}
		if _, err := g.AddActor(name); err != nil {
			return nil, fmt.Errorf("actor %d: %w", i, err)
		}
	}

	for i, c := range f.Channels {
		src, err := resolve(g, c.Source, c.SourceIndex, sdf.ErrUnknownSourceActor)
		if err != nil {
			return nil, fmt.Errorf("channel %d (%s->%s): %w", i, c.Source, c.Target, err)
		}
		dst, err := resolve(g, c.Target, c.TargetIndex, sdf.ErrUnknownTargetActor)
		if err != nil {
			return nil, fmt.Errorf("channel %d (%s->%s): %w", i, c.Source, c.Target, err)
		}
		err = g.Connect(sdf.Channel{
			Source:        src,
			Target:        dst,
			Production:    c.Production,
			Consumption:   c.Consumption,
			InitialTokens: c.InitialTokens,
		})
		if err != nil {
			return nil, fmt.Errorf("channel %d (%s->%s): %w", i, c.Source, c.Target, err)
		}
	}
	return g, nil
}

func resolve(g *sdf.Graph, name string, index *int, unknown error) (int, error) {
	if index != nil {
		if *index < 0 || *index >= g.ActorCount() {
			return 0, errs.Wrap(errs.ErrCodeUnknownActor, sdf.ErrActorIndexOutOfRange, "actor index %d", *index)
		}
		if name != "" && g.Actor(*index) != name {
			return 0, errs.New(errs.ErrCodeInvalidInput, "actor index %d is %q, not %q", *index, g.Actor(*index), name)
		}
		return *index, nil
	}
	i, ok := g.Index(name)
	if !ok {
		return 0, errs.Wrap(errs.ErrCodeUnknownActor, unknown, "%q is not an actor", name)
	}
	return i, nil
}

func fromGraph(g *sdf.Graph) graphFile {
	actors := g.Actors()
	counts := make(map[string]int, len(actors))
	for _, a := range actors {
		counts[a]++
	}

	out := graphFile{
		Actors:   actors,
		Channels: make([]channelFile, g.ChannelCount()),
	}
	meta := make(map[string]any, len(g.Meta()))
	for k, v := range g.Meta() {
		if k == MetaSource {
			continue
		}
		if k == metaName {
			if s, ok := v.(string); ok {
				out.Name = s
				continue
			}
		}
		meta[k] = v
	}
	if len(meta) > 0 {
		out.Meta = meta
	}

	for i, c := range g.Channels() {
		cf := channelFile{
			Source:        actors[c.Source],
			Target:        actors[c.Target],
			Production:    c.Production,
			Consumption:   c.Consumption,
			InitialTokens: c.InitialTokens,
		}
		if counts[cf.Source] > 1 {
			cf.SourceIndex = &c.Source
		}
		if counts[cf.Target] > 1 {
			cf.TargetIndex = &c.Target
		}
		out.Channels[i] = cf
	}
	return out
}
