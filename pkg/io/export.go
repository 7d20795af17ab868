package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/hsnlab/SLAMBUC/pkg/tree"
)

type document struct {
	Name  string `json:"name,omitempty" yaml:"name,omitempty"`
	Nodes []node `json:"nodes" yaml:"nodes"`
	Edges []edge `json:"edges" yaml:"edges"`
}

type node struct {
	ID      tree.NodeID `json:"id" yaml:"id"`
	Runtime int64       `json:"runtime" yaml:"runtime"`
	Memory  int64       `json:"memory" yaml:"memory"`
}

type edge struct {
	From tree.NodeID `json:"from" yaml:"from"`
	To   tree.NodeID `json:"to" yaml:"to"`
	Rate int64       `json:"rate" yaml:"rate"`
	Data int64       `json:"data" yaml:"data"`
}

// newDocument flattens t. Nodes come in ID order and edges in pre-order,
// which keeps every caller's callees in their left-to-right order.
// Functions not reachable from the root are written without their edges.
func newDocument(t *tree.Tree) document {
	ids := t.Nodes()
	out := document{
		Name:  t.Name(),
		Nodes: make([]node, 0, len(ids)),
		Edges: make([]edge, 0, len(ids)),
	}
	for _, id := range ids {
		n, _ := t.Node(id)
		out.Nodes = append(out.Nodes, node(n))
	}
	if root := t.Root(); root != tree.Platform {
		for s := range t.LeftRight(root) {
			if s.Completes() {
				continue
			}
			e, _ := t.InEdge(s.V)
			out.Edges = append(out.Edges, edge(e))
		}
	}
	return out
}

// WriteJSON encodes t as indented JSON and writes it to w.
func WriteJSON(t *tree.Tree, w io.Writer) error {
	out := newDocument(t)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes t to a JSON file at path.
func ExportJSON(t *tree.Tree, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(t, f)
}
