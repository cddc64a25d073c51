package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	pkgio "github.com/matzehuels/skilltree/pkg/io"
	"github.com/matzehuels/skilltree/pkg/pipeline"
	"github.com/matzehuels/skilltree/pkg/render/nodelink"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	categories []string
	formats    []string
	output     string
	detailed   bool
	scale      float64
}

// renderCommand creates the render command for drawing build results.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [result.json]",
		Short: "Draw placed skill trees as DOT, SVG or PNG",
		Long: `Draw the categories of a build result with nodes pinned at their grid
coordinates. Without --category every category is drawn.

Output files are named <base>.<category>.<format>, where base defaults to the
result file name.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := validateFormats(opts.formats); err != nil {
				return err
			}
			return c.runRender(args[0], opts)
		},
	}

	cmd.Flags().StringSliceVarP(&opts.categories, "category", "c", nil, "categories to draw (default: all)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, dot, json (comma-separated)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output base path")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "add tier and theme to node labels")
	cmd.Flags().Float64Var(&opts.scale, "scale", nodelink.DefaultScale, "coordinate scale")

	return cmd
}

func (c *CLI) runRender(input string, opts renderOpts) error {
	res, err := pkgio.ImportResult(input)
	if err != nil {
		return fmt.Errorf("load result %s: %w", input, err)
	}
	categories := opts.categories
	if len(categories) == 0 {
		categories = res.Names()
	}

	base := opts.output
	if base == "" {
		base = strings.TrimSuffix(input, filepath.Ext(input))
		base = strings.TrimSuffix(base, ".result")
	}

	prog := newProgress(c.Logger)
	var paths []string
	for _, name := range categories {
		for _, format := range opts.formats {
			data, err := pipeline.Render(res, name, format, nodelink.Options{Detailed: opts.detailed, Scale: opts.scale})
			if err != nil {
				return err
			}
			path := fmt.Sprintf("%s.%s.%s", base, name, format)
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
			paths = append(paths, path)
		}
	}
	prog.done(fmt.Sprintf("Rendered %d files", len(paths)))

	printSuccess("Render complete")
	for _, p := range paths {
		printFile(p)
	}
	return nil
}
