package pipeline

import (
	"encoding/json"
	"fmt"

	"github.com/matzehuels/skilltree/pkg/errors"
	"github.com/matzehuels/skilltree/pkg/render/nodelink"
)

// Output formats of [Render].
const (
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatPNG  = "png"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatJSON: true,
	FormatDOT:  true,
	FormatSVG:  true,
	FormatPNG:  true,
}

// ValidateFormat checks that format is supported.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeUnsupported, "invalid format %q (must be one of: json, dot, svg, png)", format)
	}
	return nil
}

// Render draws one category of a result. JSON is the category result
// itself; the other formats show nodes pinned at their coordinates.
func Render(res *Result, category, format string, opts nodelink.Options) ([]byte, error) {
	if err := ValidateFormat(format); err != nil {
		return nil, err
	}
	cr, ok := res.Categories[category]
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "category %q not in result", category)
	}
	if format == FormatJSON {
		return json.MarshalIndent(cr, "", "  ")
	}

	dot := nodelink.PlacementDOT(category, cr.Nodes, opts)
	switch format {
	case FormatDOT:
		return []byte(dot), nil
	case FormatSVG:
		out, err := nodelink.RenderSVG(dot, nodelink.EngineNeato)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		return out, nil
	default:
		out, err := nodelink.RenderPNG(dot, nodelink.EngineNeato)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		return out, nil
	}
}
