package io

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/hsnlab/SLAMBUC/pkg/tree"
)

const sample = `{
  "name": "checkout",
  "nodes": [
    {"id": 1, "runtime": 120, "memory": 128},
    {"id": 2, "runtime": 40, "memory": 64},
    {"id": 3, "runtime": 15, "memory": 32}
  ],
  "edges": [
    {"from": 1, "to": 2, "rate": 3, "data": 2},
    {"from": 0, "to": 1, "rate": 1, "data": 5},
    {"from": 1, "to": 3, "rate": 1, "data": 0}
  ]
}`

func TestReadJSON(t *testing.T) {
	tr, err := ReadJSON(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	if tr.Name() != "checkout" {
		t.Errorf("Name() = %q, want checkout", tr.Name())
	}
	if tr.Root() != 1 {
		t.Errorf("Root() = %d, want 1", tr.Root())
	}
	if got := tr.Children(1); !slices.Equal(got, []tree.NodeID{2, 3}) {
		t.Errorf("Children(1) = %v, want [2 3]", got)
	}
	if tr.Rate(2) != 3 || tr.Data(1) != 5 || tr.Runtime(3) != 15 {
		t.Errorf("attributes not decoded: rate(2)=%d data(1)=%d runtime(3)=%d", tr.Rate(2), tr.Data(1), tr.Runtime(3))
	}
}

func TestReadJSONErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"duplicate node", `{"nodes":[{"id":1,"runtime":1,"memory":1},{"id":1,"runtime":1,"memory":1}],"edges":[]}`, tree.ErrDuplicateNode},
		{"unknown endpoint", `{"nodes":[{"id":1,"runtime":1,"memory":1}],"edges":[{"from":0,"to":2,"rate":1}]}`, tree.ErrUnknownNode},
		{"zero rate", `{"nodes":[{"id":1,"runtime":1,"memory":1}],"edges":[{"from":0,"to":1,"rate":0}]}`, tree.ErrInvalidRate},
		{"unreachable", `{"nodes":[{"id":1,"runtime":1,"memory":1},{"id":2,"runtime":1,"memory":1}],"edges":[{"from":0,"to":1,"rate":1}]}`, tree.ErrUnreachableNode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadJSON(strings.NewReader(tt.input))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ReadJSON() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	if _, err := ReadJSON(strings.NewReader("{")); err == nil {
		t.Error("ReadJSON() accepted malformed JSON")
	}
}

func TestRoundTrip(t *testing.T) {
	tr, err := ReadJSON(strings.NewReader(sample))
	if err != nil {
		t.Fatal(err)
	}
	var first bytes.Buffer
	if err := WriteJSON(tr, &first); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}
	again, err := ReadJSON(bytes.NewReader(first.Bytes()))
	if err != nil {
		t.Fatalf("ReadJSON(exported) error = %v", err)
	}
	var second bytes.Buffer
	if err := WriteJSON(again, &second); err != nil {
		t.Fatal(err)
	}
	if first.String() != second.String() {
		t.Errorf("round trip changed the document:\n%s\nvs\n%s", first.String(), second.String())
	}
}

func TestImportExportFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "orders.json")
	noName := strings.Replace(sample, `"name": "checkout",`, "", 1)
	if err := os.WriteFile(src, []byte(noName), 0o644); err != nil {
		t.Fatal(err)
	}
	tr, err := ImportJSON(src)
	if err != nil {
		t.Fatalf("ImportJSON() error = %v", err)
	}
	if tr.Name() != "orders" {
		t.Errorf("Name() = %q, want file base name", tr.Name())
	}
	dst := filepath.Join(dir, "out.json")
	if err := ExportJSON(tr, dst); err != nil {
		t.Fatalf("ExportJSON() error = %v", err)
	}
	back, err := ImportJSON(dst)
	if err != nil {
		t.Fatalf("ImportJSON(exported) error = %v", err)
	}
	if back.Len() != 3 || back.Name() != "orders" {
		t.Errorf("re-imported tree %q has %d nodes, want orders with 3", back.Name(), back.Len())
	}
	if _, err := ImportJSON(filepath.Join(dir, "missing.json")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("ImportJSON(missing) error = %v, want ErrNotExist", err)
	}
}
