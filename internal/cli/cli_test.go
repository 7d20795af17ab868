package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hsnlab/SLAMBUC/pkg/errors"
	pkgio "github.com/hsnlab/SLAMBUC/pkg/io"
	"github.com/hsnlab/SLAMBUC/pkg/partition"
	"github.com/hsnlab/SLAMBUC/pkg/pipeline"
	"github.com/hsnlab/SLAMBUC/pkg/store"
	"github.com/hsnlab/SLAMBUC/pkg/tree"
)

const chainJSON = `{
  "name": "chain",
  "nodes": [
    {"id": 1, "runtime": 10, "memory": 2},
    {"id": 2, "runtime": 10, "memory": 2},
    {"id": 3, "runtime": 10, "memory": 2}
  ],
  "edges": [
    {"from": 0, "to": 1, "rate": 1, "data": 0},
    {"from": 1, "to": 2, "rate": 1, "data": 0},
    {"from": 2, "to": 3, "rate": 1, "data": 0}
  ]
}`

// workspace holds a config with file backends under a temp dir and the
// chain tree.
type workspace struct {
	dir    string
	config string
	tree   string
}

func newWorkspace(t *testing.T, partitionSection string) workspace {
	t.Helper()
	dir := t.TempDir()
	w := workspace{
		dir:    dir,
		config: filepath.Join(dir, "config.toml"),
		tree:   filepath.Join(dir, "chain.json"),
	}
	cfg := partitionSection + `
[cache]
backend = "file"
dir = "` + filepath.Join(dir, "cache") + `"

[store]
backend = "file"
dir = "` + filepath.Join(dir, "runs") + `"
`
	if err := os.WriteFile(w.config, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(w.tree, []byte(chainJSON), 0o644); err != nil {
		t.Fatal(err)
	}
	return w
}

// run executes the command line and returns its standard output.
func (w workspace) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRoot(New(io.Discard, LogInfo))
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(append(args, "--config", w.config))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func (w workspace) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := w.run(t, args...)
	if err != nil {
		t.Fatalf("%v: %v", args, err)
	}
	return out
}

func decodeResult(t *testing.T, out string) pipeline.Result {
	t.Helper()
	var res pipeline.Result
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	return res
}

func TestPartitionCommand(t *testing.T) {
	w := newWorkspace(t, "")
	tests := []struct {
		name    string
		args    []string
		cost    int64
		latency int64
		blocks  int
	}{
		{"memory split", []string{"-M", "4", "--cp-end", "3", "--delay", "5"}, 30, 35, 2},
		{"unbounded", []string{"--cp-end", "deepest", "--delay", "5"}, 30, 30, 1},
		{"bottom-up", []string{"--alg", "btree", "-M", "4", "--cp-end", "3", "--delay", "5"}, 30, 35, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"partition", w.tree, "--json", "--no-cache"}, tt.args...)
			res := decodeResult(t, w.mustRun(t, args...)).Result
			if !res.Feasible || res.Cost != tt.cost || res.Latency != tt.latency || len(res.Partition) != tt.blocks {
				t.Errorf("result = %+v, want cost %d latency %d in %d blocks", res, tt.cost, tt.latency, tt.blocks)
			}
		})
	}
}

func TestPartitionUsesConfig(t *testing.T) {
	w := newWorkspace(t, "[partition]\nalgorithm = \"ltree\"\nM = 4\ndelay = 5\n")

	res := decodeResult(t, w.mustRun(t, "partition", w.tree, "--cp-end", "3", "--json")).Result
	if res.Latency != 35 || len(res.Partition) != 2 {
		t.Errorf("config limits ignored: %+v", res)
	}

	res = decodeResult(t, w.mustRun(t, "partition", w.tree, "--cp-end", "3", "-M", "0", "--json")).Result
	if res.Latency != 30 || len(res.Partition) != 1 {
		t.Errorf("-M 0 did not lift the configured limit: %+v", res)
	}
}

func TestPartitionInfeasible(t *testing.T) {
	w := newWorkspace(t, "")
	out := w.mustRun(t, "partition", w.tree, "-M", "1")
	if !strings.Contains(out, "No partition of chain satisfies the limits") {
		t.Errorf("output = %q", out)
	}
}

func TestPartitionErrors(t *testing.T) {
	w := newWorkspace(t, "")
	tests := []struct {
		name string
		args []string
		want errors.Code
	}{
		{"unknown algorithm", []string{"partition", w.tree, "--alg", "simplex"}, errors.ErrCodeUnknownAlgorithm},
		{"bad cp end", []string{"partition", w.tree, "--cp-end", "leaf"}, errors.ErrCodeInvalidParams},
		{"unreachable cp end", []string{"partition", w.tree, "--root", "2", "--cp-end", "1"}, errors.ErrCodeUnreachablePath},
		{"bad format", []string{"partition", w.tree, "--format", "pdf"}, errors.ErrCodeInvalidFormat},
		{"greedy approximation", []string{"partition", w.tree, "--alg", "greedy", "--epsilon", "0.5"}, errors.ErrCodeInvalidParams},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := w.run(t, tt.args...); !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %s", err, tt.want)
			}
		})
	}
}

func TestPartitionDiagram(t *testing.T) {
	w := newWorkspace(t, "")
	out := filepath.Join(w.dir, "chain.dot")
	w.mustRun(t, "partition", w.tree, "-M", "4", "--format", "dot", "-o", out)
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "digraph") {
		t.Errorf("diagram = %q", data)
	}
}

func TestRunsLifecycle(t *testing.T) {
	w := newWorkspace(t, "")
	res := decodeResult(t, w.mustRun(t, "partition", w.tree, "-M", "4", "--cp-end", "3", "--save", "--json"))
	if res.RunID == "" {
		t.Fatal("partition --save returned no run id")
	}

	var runs []store.Run
	if err := json.Unmarshal([]byte(w.mustRun(t, "runs", "list", "--json")), &runs); err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].ID != res.RunID || runs[0].Request.M != 4 {
		t.Errorf("runs list = %+v", runs)
	}

	if out := w.mustRun(t, "runs", "show", res.RunID); !strings.Contains(out, "block 2") {
		t.Errorf("runs show = %q", out)
	}

	diagram := filepath.Join(w.dir, "run.dot")
	w.mustRun(t, "render", res.RunID, w.tree, "--format", "dot", "-o", diagram)
	if data, err := os.ReadFile(diagram); err != nil || !strings.Contains(string(data), "cluster") {
		t.Errorf("render wrote %q, %v", data, err)
	}

	w.mustRun(t, "runs", "delete", res.RunID)
	if _, err := w.run(t, "runs", "show", res.RunID); !errors.Is(err, errors.ErrCodeRunNotFound) {
		t.Errorf("show deleted run error = %v", err)
	}
}

func TestRenderRejectsOtherTree(t *testing.T) {
	w := newWorkspace(t, "")
	res := decodeResult(t, w.mustRun(t, "partition", w.tree, "--save", "--json"))

	other := filepath.Join(w.dir, "other.json")
	w.mustRun(t, "generate", "--nodes", "4", "-o", other)
	if _, err := w.run(t, "render", res.RunID, other); !errors.Is(err, errors.ErrCodeInvalidTree) {
		t.Errorf("render on another tree error = %v, want %s", err, errors.ErrCodeInvalidTree)
	}
}

func TestCompareCommand(t *testing.T) {
	w := newWorkspace(t, "")
	out := w.mustRun(t, "compare", w.tree, "-M", "4", "--cp-end", "3", "--alg", "ltree,greedy", "--json")
	var cmp pipeline.Comparison
	if err := json.Unmarshal([]byte(out), &cmp); err != nil {
		t.Fatal(err)
	}
	if len(cmp.Entries) != 2 {
		t.Fatalf("entries = %+v", cmp.Entries)
	}
	if best, ok := cmp.Best(); !ok || best.Result.Cost != 30 {
		t.Errorf("Best() = %+v, %v", best, ok)
	}

	table := w.mustRun(t, "compare", w.tree, "-M", "4")
	for _, alg := range partition.Algorithms() {
		if !strings.Contains(table, alg) {
			t.Errorf("table misses %s:\n%s", alg, table)
		}
	}
}

func TestStressCommand(t *testing.T) {
	w := newWorkspace(t, "")
	out := w.mustRun(t, "stress", "--trees", "8", "--nodes", "6", "-M", "6", "--seed", "3", "--json")
	var report pipeline.StressReport
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatal(err)
	}
	if report.Trees != 8 || !report.OK() {
		t.Errorf("report = %+v", report)
	}
}

func TestGenerateCommand(t *testing.T) {
	w := newWorkspace(t, "")
	first := w.mustRun(t, "generate", "--nodes", "7", "--seed", "9")
	if second := w.mustRun(t, "generate", "--nodes", "7", "--seed", "9"); first != second {
		t.Error("generate is not deterministic for a fixed seed")
	}
	tr, err := pkgio.ReadJSON(strings.NewReader(first))
	if err != nil {
		t.Fatal(err)
	}
	if tr.Len() != 7 || tr.Root() != 1 {
		t.Errorf("generated %d functions rooted at %d", tr.Len(), tr.Root())
	}

	yamlPath := filepath.Join(w.dir, "tree.yaml")
	w.mustRun(t, "generate", "--nodes", "5", "-o", yamlPath)
	if tr, err := pkgio.ImportFile(yamlPath); err != nil || tr.Len() != 5 {
		t.Errorf("ImportFile(%s) = %v, %v", yamlPath, tr, err)
	}
}

func TestCacheCommands(t *testing.T) {
	w := newWorkspace(t, "")
	if out := w.mustRun(t, "cache", "path"); strings.TrimSpace(out) != filepath.Join(w.dir, "cache") {
		t.Errorf("cache path = %q", out)
	}
	w.mustRun(t, "partition", w.tree, "--json")
	if out := w.mustRun(t, "cache", "clear"); !strings.Contains(out, "Cleared 1 cached entries") {
		t.Errorf("cache clear = %q", out)
	}
	if out := w.mustRun(t, "cache", "clear"); !strings.Contains(out, "Cache is empty") {
		t.Errorf("second cache clear = %q", out)
	}
}

func TestMissingConfig(t *testing.T) {
	root := newRoot(New(io.Discard, LogInfo))
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"cache", "path", "--config", filepath.Join(t.TempDir(), "absent.toml")})
	if err := root.Execute(); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("error = %v, want %s", err, errors.ErrCodeFileNotFound)
	}
}

func TestCPEnd(t *testing.T) {
	tr, err := pkgio.ReadJSON(strings.NewReader(chainJSON))
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		in   string
		want tree.NodeID
	}{
		{"", tree.Platform},
		{"2", 2},
		{"deepest", 3},
	}
	for _, tt := range tests {
		got, err := cpEnd(tr, tree.Platform, tt.in)
		if err != nil || got != tt.want {
			t.Errorf("cpEnd(%q) = %d, %v, want %d", tt.in, got, err, tt.want)
		}
	}
	if _, err := cpEnd(tr, tree.Platform, "-1"); !errors.Is(err, errors.ErrCodeInvalidParams) {
		t.Errorf("cpEnd(-1) error = %v", err)
	}
}

func TestWriteArtifacts(t *testing.T) {
	dir := t.TempDir()
	artifacts := map[string][]byte{"dot": []byte("digraph {}"), "svg": []byte("<svg/>")}

	paths, err := writeArtifacts(artifacts, []string{"dot", "svg"}, filepath.Join(dir, "app"))
	if err != nil {
		t.Fatal(err)
	}
	want := []string{filepath.Join(dir, "app.dot"), filepath.Join(dir, "app.svg")}
	if strings.Join(paths, ",") != strings.Join(want, ",") {
		t.Errorf("paths = %v, want %v", paths, want)
	}

	paths, _ = writeArtifacts(artifacts, []string{"svg"}, filepath.Join(dir, "diagram.svg"))
	if len(paths) != 1 || paths[0] != filepath.Join(dir, "diagram.svg") {
		t.Errorf("single format paths = %v", paths)
	}
}
