package tree

import (
	"errors"
	"math/rand/v2"
	"slices"
	"testing"
)

// sample builds
//
//	platform -> 1 -> 2 -> 4
//	                   -> 5
//	              -> 3
func sample(t *testing.T) *Tree {
	t.Helper()
	tr := New("sample")
	for id := NodeID(1); id <= 5; id++ {
		if err := tr.AddNode(Node{ID: id, Runtime: int64(id), Memory: 1}); err != nil {
			t.Fatalf("AddNode(%d) error = %v", id, err)
		}
	}
	edges := []Edge{
		{From: Platform, To: 1, Rate: 1},
		{From: 1, To: 2, Rate: 2, Data: 1},
		{From: 1, To: 3, Rate: 1, Data: 2},
		{From: 2, To: 4, Rate: 4, Data: 3},
		{From: 2, To: 5, Rate: 2, Data: 4},
	}
	for _, e := range edges {
		if err := tr.AddEdge(e); err != nil {
			t.Fatalf("AddEdge(%+v) error = %v", e, err)
		}
	}
	return tr
}

func TestAddNode(t *testing.T) {
	tests := []struct {
		name    string
		node    Node
		wantErr error
	}{
		{"valid", Node{ID: 9, Runtime: 1, Memory: 1}, nil},
		{"platform id", Node{ID: Platform, Runtime: 1, Memory: 1}, ErrInvalidNode},
		{"negative id", Node{ID: -1, Runtime: 1, Memory: 1}, ErrInvalidNode},
		{"zero runtime", Node{ID: 9, Runtime: 0, Memory: 1}, ErrInvalidNode},
		{"zero memory", Node{ID: 9, Runtime: 1, Memory: 0}, ErrInvalidNode},
		{"duplicate", Node{ID: 1, Runtime: 1, Memory: 1}, ErrDuplicateNode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := sample(t)
			err := tr.AddNode(tt.node)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("AddNode() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestAddEdge(t *testing.T) {
	tests := []struct {
		name    string
		edge    Edge
		wantErr error
	}{
		{"unknown source", Edge{From: 42, To: 3, Rate: 1}, ErrUnknownNode},
		{"unknown target", Edge{From: 1, To: 42, Rate: 1}, ErrUnknownNode},
		{"platform target", Edge{From: 1, To: Platform, Rate: 1}, ErrUnknownNode},
		{"second parent", Edge{From: 3, To: 4, Rate: 1}, ErrMultipleParents},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := sample(t)
			if err := tr.AddEdge(tt.edge); !errors.Is(err, tt.wantErr) {
				t.Errorf("AddEdge() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	t.Run("rate and data", func(t *testing.T) {
		tr := New("x")
		_ = tr.AddNode(Node{ID: 1, Runtime: 1, Memory: 1})
		if err := tr.AddEdge(Edge{From: Platform, To: 1, Rate: 0}); !errors.Is(err, ErrInvalidRate) {
			t.Errorf("AddEdge(rate=0) error = %v, want %v", err, ErrInvalidRate)
		}
		if err := tr.AddEdge(Edge{From: Platform, To: 1, Rate: 1, Data: -1}); !errors.Is(err, ErrInvalidData) {
			t.Errorf("AddEdge(data=-1) error = %v, want %v", err, ErrInvalidData)
		}
	})
}

func TestAccessors(t *testing.T) {
	tr := sample(t)

	if got := tr.Len(); got != 5 {
		t.Errorf("Len() = %d, want 5", got)
	}
	if got := tr.Nodes(); !slices.Equal(got, []NodeID{1, 2, 3, 4, 5}) {
		t.Errorf("Nodes() = %v, want [1 2 3 4 5]", got)
	}
	if got := tr.Children(2); !slices.Equal(got, []NodeID{4, 5}) {
		t.Errorf("Children(2) = %v, want [4 5]", got)
	}
	if p, ok := tr.Parent(4); !ok || p != 2 {
		t.Errorf("Parent(4) = %d, %v, want 2, true", p, ok)
	}
	if got := tr.Rate(4); got != 4 {
		t.Errorf("Rate(4) = %d, want 4", got)
	}
	if got := tr.Data(5); got != 4 {
		t.Errorf("Data(5) = %d, want 4", got)
	}
	if got := tr.Root(); got != 1 {
		t.Errorf("Root() = %d, want 1", got)
	}
	if got := tr.LastChild(1); got != 3 {
		t.Errorf("LastChild(1) = %d, want 3", got)
	}
	if got := tr.LastChild(3); got != Platform {
		t.Errorf("LastChild(3) = %d, want platform", got)
	}
	if got := len(tr.Edges()); got != 5 {
		t.Errorf("len(Edges()) = %d, want 5", got)
	}
}

func TestValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		if err := sample(t).Validate(1); err != nil {
			t.Errorf("Validate() error = %v", err)
		}
	})

	t.Run("detached root", func(t *testing.T) {
		if err := sample(t).Validate(2); !errors.Is(err, ErrDetachedRoot) {
			t.Errorf("Validate(2) error = %v, want %v", err, ErrDetachedRoot)
		}
	})

	t.Run("unknown root", func(t *testing.T) {
		if err := sample(t).Validate(99); !errors.Is(err, ErrUnknownNode) {
			t.Errorf("Validate(99) error = %v, want %v", err, ErrUnknownNode)
		}
	})

	t.Run("unreachable node", func(t *testing.T) {
		tr := sample(t)
		_ = tr.AddNode(Node{ID: 6, Runtime: 1, Memory: 1})
		if err := tr.Validate(1); !errors.Is(err, ErrUnreachableNode) {
			t.Errorf("Validate() error = %v, want %v", err, ErrUnreachableNode)
		}
	})

	t.Run("detached cycle", func(t *testing.T) {
		tr := sample(t)
		_ = tr.AddNode(Node{ID: 6, Runtime: 1, Memory: 1})
		_ = tr.AddNode(Node{ID: 7, Runtime: 1, Memory: 1})
		_ = tr.AddEdge(Edge{From: 6, To: 7, Rate: 1})
		_ = tr.AddEdge(Edge{From: 7, To: 6, Rate: 1})
		if err := tr.Validate(1); !errors.Is(err, ErrUnreachableNode) {
			t.Errorf("Validate() error = %v, want %v", err, ErrUnreachableNode)
		}
	})
}

func TestPostOrder(t *testing.T) {
	tr := sample(t)
	var nodes, parents []NodeID
	for p, v := range tr.PostOrder(1) {
		parents = append(parents, p)
		nodes = append(nodes, v)
	}
	if want := []NodeID{4, 5, 2, 3, 1}; !slices.Equal(nodes, want) {
		t.Errorf("PostOrder nodes = %v, want %v", nodes, want)
	}
	if want := []NodeID{2, 2, 1, 1, Platform}; !slices.Equal(parents, want) {
		t.Errorf("PostOrder parents = %v, want %v", parents, want)
	}

	var sub []NodeID
	for _, v := range tr.PostOrder(2) {
		sub = append(sub, v)
	}
	if want := []NodeID{4, 5, 2}; !slices.Equal(sub, want) {
		t.Errorf("PostOrder(2) = %v, want %v", sub, want)
	}

	for range tr.PostOrder(99) {
		t.Fatal("PostOrder(unknown) yielded a node")
	}
}

func TestLeftRight(t *testing.T) {
	tr := sample(t)
	var got []Step
	for s := range tr.LeftRight(1) {
		got = append(got, s)
	}
	want := []Step{
		{Parent: Platform, V: 1},
		{Parent: 1, V: 2},
		{Parent: 2, V: 4},
		{Parent: 1, V: 2, B: 4},
		{Parent: 2, Prior: 4, V: 5},
		{Parent: 1, Prior: 4, V: 2, B: 5},
		{Parent: Platform, V: 1, B: 2},
		{Parent: 1, Prior: 2, V: 3},
		{Parent: Platform, Prior: 2, V: 1, B: 3},
	}
	if !slices.Equal(got, want) {
		t.Errorf("LeftRight() =\n%v\nwant\n%v", got, want)
	}

	// Early termination must not panic.
	for range tr.LeftRight(1) {
		break
	}
}

func TestHeights(t *testing.T) {
	levels := sample(t).Heights(1)
	want := [][]NodeID{{4, 5, 3}, {2}, {1}}
	if len(levels) != len(want) {
		t.Fatalf("Heights() = %v, want %v", levels, want)
	}
	for i := range want {
		if !slices.Equal(levels[i], want[i]) {
			t.Errorf("Heights()[%d] = %v, want %v", i, levels[i], want[i])
		}
	}
}

func TestCriticalPath(t *testing.T) {
	tr := sample(t)
	tests := []struct {
		name       string
		root, tail NodeID
		want       []NodeID
		wantErr    error
	}{
		{"full chain", 1, 4, []NodeID{1, 2, 4}, nil},
		{"no tail", 1, Platform, []NodeID{1}, nil},
		{"tail is root", 1, 1, []NodeID{1}, nil},
		{"inner root", 2, 5, []NodeID{2, 5}, nil},
		{"unreachable tail", 2, 3, nil, ErrEmptyPath},
		{"unknown tail", 1, 42, nil, ErrUnknownNode},
		{"platform root", Platform, 3, nil, ErrUnknownNode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tr.CriticalPath(tt.root, tt.tail)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("CriticalPath() error = %v, want %v", err, tt.wantErr)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("CriticalPath() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNodeSet(t *testing.T) {
	s := NewNodeSet(3, 1, 2, 3)
	if !s.Equal(NodeSet{1, 2, 3}) {
		t.Fatalf("NewNodeSet() = %v, want {1,2,3}", s)
	}
	if !s.Contains(2) || s.Contains(4) {
		t.Errorf("Contains() wrong for %v", s)
	}
	if got := s.With(0).With(5); !got.Equal(NodeSet{0, 1, 2, 3, 5}) {
		t.Errorf("With() = %v", got)
	}
	if got := s.Without(2); !got.Equal(NodeSet{1, 3}) {
		t.Errorf("Without() = %v", got)
	}
	if got := s.Union(NewNodeSet(2, 7, 0)); !got.Equal(NodeSet{0, 1, 2, 3, 7}) {
		t.Errorf("Union() = %v", got)
	}
	if !s.Equal(NodeSet{1, 2, 3}) {
		t.Errorf("receiver modified: %v", s)
	}
	if got := s.String(); got != "{1,2,3}" {
		t.Errorf("String() = %q", got)
	}
}

func TestDivisibleRates(t *testing.T) {
	tr := sample(t)
	if !tr.DivisibleRates(1) {
		t.Error("DivisibleRates(1) = false, want true")
	}

	// 6 runs 3 times per call of 3; 7 runs 2 times per 3 calls of 6
	for _, e := range []Edge{{From: 3, To: 6, Rate: 3}, {From: 6, To: 7, Rate: 2}} {
		if err := tr.AddNode(Node{ID: e.To, Runtime: 1, Memory: 1}); err != nil {
			t.Fatal(err)
		}
		if err := tr.AddEdge(e); err != nil {
			t.Fatal(err)
		}
	}
	tests := []struct {
		root NodeID
		want bool
	}{
		{1, false},
		{2, true},
		{3, false},
		{6, false},
		{7, true},
	}
	for _, tt := range tests {
		if got := tr.DivisibleRates(tt.root); got != tt.want {
			t.Errorf("DivisibleRates(%d) = %v, want %v", tt.root, got, tt.want)
		}
	}
}

func TestRandom(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for _, n := range []int{1, 2, 10, 40} {
		tr := Random(rng, "rnd", n, RandomOptions{DivisibleRates: true})
		if tr.Len() != n {
			t.Fatalf("Len() = %d, want %d", tr.Len(), n)
		}
		if err := tr.Validate(1); err != nil {
			t.Fatalf("Validate() error = %v", err)
		}
		for _, v := range tr.Nodes() {
			p, _ := tr.Parent(v)
			if p != Platform && tr.Rate(v)%tr.Rate(p) != 0 {
				t.Errorf("rate of %d (%d) not a multiple of caller rate %d", v, tr.Rate(v), tr.Rate(p))
			}
		}
		if !tr.DivisibleRates(1) {
			t.Error("DivisibleRates(1) = false for a tree drawn with divisible rates")
		}
		leaf := tr.DeepestLeaf(1)
		if !tr.IsLeaf(leaf) {
			t.Errorf("DeepestLeaf() = %d is not a leaf", leaf)
		}
		if _, err := tr.CriticalPath(1, leaf); err != nil {
			t.Errorf("CriticalPath(1, %d) error = %v", leaf, err)
		}
	}
}
