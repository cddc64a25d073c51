package item

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/skilltree/pkg/errors"
)

// Supported catalog encodings.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Catalog is the input document of a build.
type Catalog struct {
	// Categories optionally declares the expected categories. A declared
	// category with no items is reported as empty rather than ignored.
	Categories []string `json:"categories,omitempty" yaml:"categories,omitempty" bson:"categories,omitempty"`
	Items      []Item   `json:"items" yaml:"items" bson:"items" validate:"dive"`
}

// Validate checks item fields and ID uniqueness.
func (c *Catalog) Validate() error {
	if err := errors.ValidateStruct(errors.ErrCodeInvalidInput, c); err != nil {
		return err
	}
	seen := make(map[string]bool, len(c.Items))
	for _, it := range c.Items {
		if err := errors.ValidateID("item id", it.ID); err != nil {
			return err
		}
		if err := errors.ValidateID("category", it.Category); err != nil {
			return err
		}
		if seen[it.ID] {
			return errors.New(errors.ErrCodeInvalidInput, "duplicate item id %q", it.ID)
		}
		seen[it.ID] = true
	}
	for _, name := range c.Categories {
		if err := errors.ValidateID("category", name); err != nil {
			return err
		}
	}
	return nil
}

// CategoryNames returns declared categories plus any category referenced by
// an item, sorted.
func (c *Catalog) CategoryNames() []string {
	set := make(map[string]bool)
	for _, name := range c.Categories {
		set[name] = true
	}
	for _, it := range c.Items {
		set[it.Category] = true
	}
	return slices.Sorted(maps.Keys(set))
}

// ByCategory groups items per category. Every name from [Catalog.CategoryNames]
// is present, possibly with an empty slice. Items keep their input order.
func (c *Catalog) ByCategory() map[string][]Item {
	out := make(map[string][]Item)
	for _, name := range c.CategoryNames() {
		out[name] = nil
	}
	for _, it := range c.Items {
		out[it.Category] = append(out[it.Category], it)
	}
	return out
}

// FormatFromPath infers the encoding from a file extension.
func FormatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// ReadFile reads and validates a catalog file.
func ReadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "catalog %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return Read(bytes.NewReader(data), FormatFromPath(path))
}

// Read decodes and validates a catalog. A bare top-level list of items is
// accepted as well as the full document form.
func Read(r io.Reader, format string) (*Catalog, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	var cat Catalog
	switch format {
	case FormatYAML:
		err = decodeYAML(data, &cat)
	case FormatJSON, "":
		err = decodeJSON(data, &cat)
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported catalog format %q", format)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode catalog")
	}
	if err := cat.Validate(); err != nil {
		return nil, err
	}
	return &cat, nil
}

func decodeJSON(data []byte, cat *Catalog) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		return json.Unmarshal(trimmed, &cat.Items)
	}
	return json.Unmarshal(trimmed, cat)
}

func decodeYAML(data []byte, cat *Catalog) error {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return err
	}
	if len(root.Content) > 0 && root.Content[0].Kind == yaml.SequenceNode {
		return root.Content[0].Decode(&cat.Items)
	}
	return root.Decode(cat)
}

// Write encodes a catalog as indented JSON or YAML.
func Write(w io.Writer, cat *Catalog, format string) error {
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(cat); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(cat); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
		return nil
	}
}
