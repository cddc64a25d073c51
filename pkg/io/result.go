package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/skilltree/pkg/pipeline"
)

// WriteResult encodes a build result as indented JSON.
func WriteResult(res *pipeline.Result, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportResult writes a build result to a JSON file at path.
func ExportResult(res *pipeline.Result, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteResult(res, f)
}

// ReadResult decodes a build result. A document without categories is
// rejected.
func ReadResult(r io.Reader) (*pipeline.Result, error) {
	var res pipeline.Result
	if err := json.NewDecoder(r).Decode(&res); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if res.Categories == nil {
		return nil, fmt.Errorf("decode: no categories")
	}
	for name, c := range res.Categories {
		if c == nil {
			return nil, fmt.Errorf("category %s: empty entry", name)
		}
	}
	return &res, nil
}

// ImportResult reads a build result file.
func ImportResult(path string) (*pipeline.Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadResult(f)
}
