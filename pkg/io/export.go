package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/tooltree/pkg/core/treemap"
)

// WriteJSON encodes treemap data as indented JSON and writes it to w.
// The output can be re-imported with [ReadJSON].
func WriteJSON(d *treemap.Data, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// Marshal returns the compact JSON encoding of d.
func Marshal(d *treemap.Data) ([]byte, error) {
	return json.Marshal(d)
}

// ExportJSON writes treemap data to a JSON file at path.
func ExportJSON(d *treemap.Data, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(d, f)
}
