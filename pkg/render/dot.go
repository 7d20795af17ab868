package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/hsnlab/SLAMBUC/pkg/partition"
	"github.com/hsnlab/SLAMBUC/pkg/tree"
)

// Options configures the diagram.
type Options struct {
	// Detailed adds runtime and memory to node labels and rate and data to
	// edge labels. When false, only IDs are shown.
	Detailed bool
}

const (
	pathColor  = "#d62728"
	blockColor = "#1f77b4"
	pathFill   = "#fde0dd"
)

// ToDOT converts a tree and its partition to Graphviz DOT. path is the
// critical path in root-first order; it may be empty.
func ToDOT(t *tree.Tree, res partition.Result, path []tree.NodeID, opts Options) string {
	onPath := tree.NewNodeSet(path...)
	blockOf := make(map[tree.NodeID]int)
	for i, blk := range res.Partition {
		for _, v := range blk {
			blockOf[v] = i
		}
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "digraph %q {\n", t.Name())
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14];\n")
	buf.WriteString("  ranksep=0.4;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")
	buf.WriteString("  P [label=\"platform\", shape=plaintext, style=\"\"];\n")

	if len(res.Partition) == 0 {
		for _, v := range t.Nodes() {
			writeNode(&buf, "  ", t, v, onPath.Contains(v), opts)
		}
	}
	for i, blk := range res.Partition {
		fmt.Fprintf(&buf, "\n  subgraph cluster_%d {\n", i)
		fmt.Fprintf(&buf, "    label=%q;\n", fmt.Sprintf("block %d", i+1))
		fmt.Fprintf(&buf, "    style=\"rounded,dashed\";\n    color=%q;\n", blockColor)
		for _, v := range blk {
			writeNode(&buf, "    ", t, v, onPath.Contains(v), opts)
		}
		buf.WriteString("  }\n")
	}

	buf.WriteString("\n")
	for _, e := range t.Edges() {
		attrs := []string{}
		if opts.Detailed {
			attrs = append(attrs, fmt.Sprintf("label=%q", fmt.Sprintf("r=%d d=%d", e.Rate, e.Data)))
		}
		if onPath.Contains(e.To) && (e.From == tree.Platform || onPath.Contains(e.From)) {
			attrs = append(attrs, fmt.Sprintf("color=%q", pathColor), "penwidth=2")
		}
		if len(res.Partition) > 0 && e.From != tree.Platform && blockOf[e.From] != blockOf[e.To] {
			attrs = append(attrs, "style=dashed")
		}
		fmt.Fprintf(&buf, "  %s -> %s", nodeName(e.From), nodeName(e.To))
		if len(attrs) > 0 {
			fmt.Fprintf(&buf, " [%s]", strings.Join(attrs, ", "))
		}
		buf.WriteString(";\n")
	}
	buf.WriteString("}\n")
	return buf.String()
}

func nodeName(v tree.NodeID) string {
	if v == tree.Platform {
		return "P"
	}
	return fmt.Sprintf("n%d", v)
}

func writeNode(buf *bytes.Buffer, indent string, t *tree.Tree, v tree.NodeID, critical bool, opts Options) {
	label := fmt.Sprintf("%d", v)
	if opts.Detailed {
		label = fmt.Sprintf("%d\nt=%d m=%d", v, t.Runtime(v), t.Memory(v))
	}
	attrs := []string{fmt.Sprintf("label=%q", label)}
	if critical {
		attrs = append(attrs, fmt.Sprintf("color=%q", pathColor), fmt.Sprintf("fillcolor=%q", pathFill), "penwidth=2")
	}
	fmt.Fprintf(buf, "%s%s [%s];\n", indent, nodeName(v), strings.Join(attrs, ", "))
}
