package render

import (
	"context"
	"strings"
	"testing"

	"github.com/hsnlab/SLAMBUC/pkg/errors"
	"github.com/hsnlab/SLAMBUC/pkg/partition"
	"github.com/hsnlab/SLAMBUC/pkg/tree"
)

func chain(t *testing.T) *tree.Tree {
	t.Helper()
	tr := tree.New("chain")
	for id := tree.NodeID(1); id <= 3; id++ {
		if err := tr.AddNode(tree.Node{ID: id, Runtime: 10, Memory: 2}); err != nil {
			t.Fatal(err)
		}
	}
	for _, e := range []tree.Edge{
		{From: tree.Platform, To: 1, Rate: 1},
		{From: 1, To: 2, Rate: 1, Data: 3},
		{From: 2, To: 3, Rate: 2},
	} {
		if err := tr.AddEdge(e); err != nil {
			t.Fatal(err)
		}
	}
	return tr
}

func TestToDOT(t *testing.T) {
	tr := chain(t)
	res := partition.Result{Feasible: true, Partition: [][]tree.NodeID{{1, 2}, {3}}}
	dot := ToDOT(tr, res, []tree.NodeID{1, 2}, Options{Detailed: true})

	for _, want := range []string{
		`digraph "chain" {`,
		"subgraph cluster_0 {",
		"subgraph cluster_1 {",
		`label="block 2"`,
		`n1 [label="1\nt=10 m=2", color="#d62728"`,
		`n3 [label="3\nt=10 m=2"];`,
		`P -> n1 [label="r=1 d=0", color="#d62728", penwidth=2];`,
		`n1 -> n2 [label="r=1 d=3", color="#d62728", penwidth=2];`,
		`n2 -> n3 [label="r=2 d=0", style=dashed];`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT() missing %q:\n%s", want, dot)
		}
	}
}

func TestToDOTInfeasible(t *testing.T) {
	dot := ToDOT(chain(t), partition.Infeasible(), nil, Options{})
	if strings.Contains(dot, "cluster") {
		t.Errorf("infeasible result should not draw clusters:\n%s", dot)
	}
	if !strings.Contains(dot, `n2 [label="2"];`) || !strings.Contains(dot, "n2 -> n3;") {
		t.Errorf("ToDOT() lost plain nodes or edges:\n%s", dot)
	}
}

func TestRenderFormats(t *testing.T) {
	dot := ToDOT(chain(t), partition.Infeasible(), nil, Options{})
	out, err := Render(context.Background(), dot, FormatDOT)
	if err != nil || string(out) != dot {
		t.Errorf("Render(dot) = %q, %v", out, err)
	}
	if _, err := Render(context.Background(), dot, "pdf"); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("Render(pdf) error = %v, want %s", err, errors.ErrCodeInvalidFormat)
	}
}

func TestRenderSVG(t *testing.T) {
	res := partition.Result{Feasible: true, Partition: [][]tree.NodeID{{1, 2, 3}}}
	svg, err := Render(context.Background(), ToDOT(chain(t), res, []tree.NodeID{1}, Options{}), FormatSVG)
	if err != nil {
		t.Fatalf("Render(svg) error = %v", err)
	}
	if !strings.Contains(string(svg), "<svg") {
		t.Errorf("Render(svg) did not produce SVG: %.200s", svg)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="10pt" viewBox="0.00 0.00 120.50 80.00"><g/></svg>`)
	got := string(normalizeViewBox(in))
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 120.50 80.00" width="120" height="80"><g/></svg>`
	if got != want {
		t.Errorf("normalizeViewBox() = %s, want %s", got, want)
	}
}
