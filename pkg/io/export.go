package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/cschone/bikefit/pkg/frame"
)

// WriteSpec encodes a spec (and optional rider) to w in the JSON file schema.
// The output can be re-read with [ReadSpec] for round-trip processing.
func WriteSpec(spec frame.BicycleSpec, rider *frame.RiderSpec, w io.Writer) error {
	out := struct {
		Bicycle frame.BicycleSpec `json:"bicycle"`
		Rider   *frame.RiderSpec  `json:"rider,omitempty"`
	}{
		Bicycle: spec,
		Rider:   rider,
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportSpec writes a spec to a JSON file at path.
// This is a convenience wrapper around [WriteSpec] for file-based output.
func ExportSpec(spec frame.BicycleSpec, rider *frame.RiderSpec, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteSpec(spec, rider, f)
}
