package io

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hsnlab/SLAMBUC/pkg/tree"
)

// ReadYAML decodes a YAML call tree from r. The document has the same
// fields as the JSON format and is validated the same way as [ReadJSON].
func ReadYAML(r io.Reader) (*tree.Tree, error) {
	return decodeYAML(r, "")
}

func decodeYAML(r io.Reader, fallback string) (*tree.Tree, error) {
	var data document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&data); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return data.build(fallback)
}

// ImportYAML reads the YAML file at path, naming the tree after the file
// when the document carries no name.
func ImportYAML(path string) (*tree.Tree, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	t, err := decodeYAML(f, fileName(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// WriteYAML encodes t as YAML with the node and edge order of [WriteJSON].
func WriteYAML(t *tree.Tree, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(newDocument(t)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return enc.Close()
}

// ExportFile writes t to path, as YAML for .yaml and .yml extensions and
// as JSON otherwise.
func ExportFile(t *tree.Tree, path string) error {
	if !isYAML(path) {
		return ExportJSON(t, path)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteYAML(t, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
