package io

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	errs "github.com/matzehuels/sdfexpand/pkg/errors"
	"github.com/matzehuels/sdfexpand/pkg/sdf"
)

// MetaSource is the metadata key [Import] sets to the path a graph was read from.
const MetaSource = "source"

// ReadJSON decodes a JSON graph file from r.
//
// Unknown fields are rejected so that misspelled keys such as "intial_tokens"
// do not silently default to zero. See the package documentation for the
// format.
//
// The returned graph is independent of r. ReadJSON does not close r.
func ReadJSON(r io.Reader) (*sdf.Graph, error) {
	var data graphFile
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&data); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode json")
	}
	return data.toGraph()
}

// ReadTOML decodes a TOML graph file from r.
// Keys that do not belong to the format are rejected.
func ReadTOML(r io.Reader) (*sdf.Graph, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	var data graphFile
	md, err := toml.Decode(string(raw), &data)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode toml")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errs.New(errs.ErrCodeInvalidFormat, "decode toml: unknown key %q", undecoded[0].String())
	}
	return data.toGraph()
}

// ReadYAML decodes a YAML graph file from r.
// Keys that do not belong to the format are rejected.
func ReadYAML(r io.Reader) (*sdf.Graph, error) {
	var data graphFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&data); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode yaml")
	}
	return data.toGraph()
}

// Read decodes a graph in the given format.
func Read(r io.Reader, format Format) (*sdf.Graph, error) {
	switch format {
	case FormatJSON:
		return ReadJSON(r)
	case FormatTOML:
		return ReadTOML(r)
	case FormatYAML:
		return ReadYAML(r)
	}
	return nil, errs.New(errs.ErrCodeInvalidFormat, "unsupported graph format %q", format)
}

// Import reads the graph file at path, choosing the decoder from the file
// extension. The path is recorded under [MetaSource] in the graph metadata.
//
// A missing file fails with [errs.ErrCodeFileNotFound]; decode and
// validation errors are wrapped with the path for context.
func Import(path string) (*sdf.Graph, error) {
	if err := errs.ValidatePath(path); err != nil {
		return nil, err
	}
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "graph file %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	g, err := Read(bytes.NewReader(raw), format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	g.Meta()[MetaSource] = path
	return g, nil
}
