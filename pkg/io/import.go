package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hsnlab/SLAMBUC/pkg/tree"
)

// ReadJSON decodes a JSON call tree from r.
//
// Nodes are added before edges, so edges may appear in any order. The
// decoded tree is validated from its root; ReadJSON returns an error if
//   - the JSON is malformed
//   - a node is invalid or duplicated
//   - an edge references an unknown node, gives a node a second caller or
//     carries a non-positive rate or negative data
//   - a function is not reachable from the platform
//
// Errors wrap the tree package's sentinel errors, so errors.Is works on
// them. ReadJSON does not close r.
func ReadJSON(r io.Reader) (*tree.Tree, error) {
	return decode(r, "")
}

func decode(r io.Reader, fallback string) (*tree.Tree, error) {
	var data document
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return data.build(fallback)
}

func (data document) build(fallback string) (*tree.Tree, error) {
	if data.Name == "" {
		data.Name = fallback
	}
	t := tree.New(data.Name)
	for _, n := range data.Nodes {
		if err := t.AddNode(tree.Node(n)); err != nil {
			return nil, fmt.Errorf("node %d: %w", n.ID, err)
		}
	}
	for _, e := range data.Edges {
		if err := t.AddEdge(tree.Edge(e)); err != nil {
			return nil, fmt.Errorf("edge %d->%d: %w", e.From, e.To, err)
		}
	}
	if err := t.Validate(t.Root()); err != nil {
		return nil, fmt.Errorf("tree %q: %w", data.Name, err)
	}
	return t, nil
}

// ImportFile reads a tree file, choosing YAML for .yaml and .yml
// extensions and JSON otherwise.
func ImportFile(path string) (*tree.Tree, error) {
	if isYAML(path) {
		return ImportYAML(path)
	}
	return ImportJSON(path)
}

// ImportJSON reads the JSON file at path and returns the decoded tree. The
// tree is named after the file when the document carries no name.
func ImportJSON(path string) (*tree.Tree, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	t, err := decode(f, fileName(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

func fileName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}
