// Package flowfile reads and writes flows as standalone JSON or YAML files,
// the format the flowctl command works with.
package flowfile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"campaign-flow/pkg/flowgraph"
)

// Format is a flow file encoding.
type Format string

const (
	JSON Format = "json"
	YAML Format = "yaml"
)

// File is a flow on disk.
type File struct {
	Name  string           `json:"name"`
	Nodes []flowgraph.Node `json:"nodes"`
	Edges []flowgraph.Edge `json:"edges"`
}

// Graph returns the flow's graph.
func (f *File) Graph() flowgraph.Graph {
	return flowgraph.Graph{Nodes: f.Nodes, Edges: f.Edges}
}

// FormatFor picks a format from a file extension. Unknown extensions are
// detected from content on read and written as JSON.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML
	case ".json":
		return JSON
	}
	return ""
}

// Read loads the flow file at path.
func Read(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read flow: %w", err)
	}
	return Decode(data, FormatFor(path))
}

// Decode parses a flow. An empty format is detected from content: a leading
// '{' means JSON, anything else YAML.
func Decode(data []byte, format Format) (*File, error) {
	if format == "" {
		format = YAML
		if bytes.HasPrefix(bytes.TrimSpace(data), []byte("{")) {
			format = JSON
		}
	}

	if format == YAML {
		// Node data is keyed by node type, so YAML goes through the JSON
		// decoder rather than a second set of unmarshalers.
		var doc any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse flow yaml: %w", err)
		}
		converted, err := json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("parse flow yaml: %w", err)
		}
		data = converted
	}

	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse flow %s: %w", format, err)
	}
	if f.Nodes == nil {
		f.Nodes = []flowgraph.Node{}
	}
	if f.Edges == nil {
		f.Edges = []flowgraph.Edge{}
	}
	return &f, nil
}

// Encode serialises f. JSON output is indented.
func Encode(f *File, format Format) ([]byte, error) {
	out := *f
	if out.Nodes == nil {
		out.Nodes = []flowgraph.Node{}
	}
	if out.Edges == nil {
		out.Edges = []flowgraph.Edge{}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode flow: %w", err)
	}
	if format != YAML {
		return append(data, '\n'), nil
	}

	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("encode flow yaml: %w", err)
	}
	restyle(&node)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&node); err != nil {
		return nil, fmt.Errorf("encode flow yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode flow yaml: %w", err)
	}
	return buf.Bytes(), nil
}

// Write saves f to path in the format its extension names.
func Write(path string, f *File) error {
	data, err := Encode(f, FormatFor(path))
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write flow: %w", err)
	}
	return nil
}

// restyle switches the JSON flow style to block style. The encoder still
// quotes strings that would otherwise read back as another type.
func restyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		restyle(c)
	}
}
