package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/skilltree/pkg/builder"
	pkgio "github.com/matzehuels/skilltree/pkg/io"
	"github.com/matzehuels/skilltree/pkg/item"
	"github.com/matzehuels/skilltree/pkg/pipeline"
	"github.com/matzehuels/skilltree/pkg/render/nodelink"
	"github.com/matzehuels/skilltree/pkg/tree"
	"github.com/matzehuels/skilltree/pkg/tree/sanitize"
)

// treeOpts holds the command-line flags for the tree command.
type treeOpts struct {
	settings settingsFlags
	category string
	format   string
	output   string
	detailed bool
}

// treeCommand creates the tree command, which stops before the grid.
func (c *CLI) treeCommand() *cobra.Command {
	var opts treeOpts

	cmd := &cobra.Command{
		Use:   "tree [catalog]",
		Short: "Build prerequisite trees without placing them",
		Long: `Build the prerequisite tree of every category (or one with --category),
sanitize it and write it out.

Formats:
  json  nodes and child/convergence edges, one file per category
  dot   Graphviz source with convergence edges dashed
  svg   Graphviz rendering (dot engine)`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch opts.format {
			case pipeline.FormatJSON, pipeline.FormatDOT, pipeline.FormatSVG:
			default:
				return fmt.Errorf("invalid format %q (must be json, dot or svg)", opts.format)
			}
			cfg, err := c.settings(cmd, &opts.settings)
			if err != nil {
				return err
			}
			return c.runTree(cmd.Context(), args[0], cfg.Settings, opts)
		},
	}

	opts.settings.register(cmd)
	cmd.Flags().StringVarP(&opts.category, "category", "c", "", "only build this category")
	cmd.Flags().StringVarP(&opts.format, "format", "f", pipeline.FormatJSON, "output format: json, dot, svg")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output directory (default: next to the catalog)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "add tier and theme to node labels (dot, svg)")

	return cmd
}

func (c *CLI) runTree(ctx context.Context, input string, settings pipeline.Settings, opts treeOpts) error {
	cat, err := item.ReadFile(input)
	if err != nil {
		return fmt.Errorf("load catalog %s: %w", input, err)
	}
	byCat := cat.ByCategory()
	if opts.category != "" {
		items, ok := byCat[opts.category]
		if !ok {
			return fmt.Errorf("category %q not in catalog", opts.category)
		}
		byCat = map[string][]item.Item{opts.category: items}
	}

	bo := settings.BuilderOptions()
	bo.Logger = loggerFromContext(ctx)
	forest := builder.Build(byCat, bo)
	if ctx.Err() != nil {
		return ctx.Err()
	}

	dir := opts.output
	if dir == "" {
		dir = filepath.Dir(input)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))

	so := settings.SanitizeOptions()
	so.Logger = loggerFromContext(ctx)
	written := 0
	for _, name := range cat.CategoryNames() {
		t, ok := forest.Trees[name]
		if !ok {
			if err, failed := forest.Errors[name]; failed {
				printWarning("%s: %v", name, err)
			}
			continue
		}
		sanitize.Sanitize(t, so)
		t.AssignSections(tree.DefaultRootShare, tree.DefaultTrunkShare)
		for _, issue := range tree.Validate(t, settings.MaxChildren) {
			printWarning("%s: %s", name, issue)
		}

		path := filepath.Join(dir, fmt.Sprintf("%s.%s.tree.%s", base, name, opts.format))
		if err := writeTree(t, path, opts); err != nil {
			return err
		}
		report := forest.Reports[name]
		printFile(path)
		printDetail("%d nodes · %d themes · %d convergence edges · root %s",
			t.Len(), report.Themes, report.ConvergenceEdges, t.Root())
		written++
	}
	printSuccess("Wrote %d trees", written)
	return nil
}

func writeTree(t *tree.Tree, path string, opts treeOpts) error {
	if opts.format == pipeline.FormatJSON {
		if err := pkgio.ExportTree(t, path); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		return nil
	}
	dot := nodelink.TreeDOT(t, nodelink.Options{Detailed: opts.detailed})
	data := []byte(dot)
	if opts.format == pipeline.FormatSVG {
		var err error
		if data, err = nodelink.RenderSVG(dot, nodelink.EngineDot); err != nil {
			return fmt.Errorf("render %s: %w", path, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
