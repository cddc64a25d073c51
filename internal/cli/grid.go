package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/skilltree/pkg/grid"
	"github.com/matzehuels/skilltree/pkg/item"
	"github.com/matzehuels/skilltree/pkg/pipeline"
)

// gridCommand creates the grid command, which writes a generated grid spec
// that can be edited and passed back to build --grid.
func (c *CLI) gridCommand() *cobra.Command {
	var (
		output string
		gen    grid.GenerateOptions
	)

	cmd := &cobra.Command{
		Use:   "grid [catalog]",
		Short: "Generate a grid spec sized for a catalog",
		Long: `Generate a grid spec with enough points for every category of a catalog.

Radial grids put each category on its own sector of concentric rings; linear
grids give each category a column of rows. Output is JSON, or YAML when the
output file ends in .yaml or .yml.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			opts := cfg.Grid
			flags := cmd.Flags()
			if flags.Changed("mode") {
				opts.Mode = gen.Mode
			}
			if flags.Changed("tier-spacing") {
				opts.TierSpacing = gen.TierSpacing
			}
			if flags.Changed("ring-radius") {
				opts.RingRadius = gen.RingRadius
			}
			if flags.Changed("slack") {
				opts.Slack = gen.Slack
			}
			return c.runGrid(args[0], output, opts)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().StringVar((*string)(&gen.Mode), "mode", string(grid.ModeRadial), "grid shape: radial, linear")
	cmd.Flags().Float64Var(&gen.TierSpacing, "tier-spacing", 0, "distance between rings or rows")
	cmd.Flags().Float64Var(&gen.RingRadius, "ring-radius", 0, "radius of the innermost ring")
	cmd.Flags().Float64Var(&gen.Slack, "slack", 0, "generated points per item")

	return cmd
}

func (c *CLI) runGrid(input, output string, opts grid.GenerateOptions) error {
	if opts.Mode != "" && opts.Mode != grid.ModeRadial && opts.Mode != grid.ModeLinear {
		return fmt.Errorf("invalid mode %q (must be radial or linear)", opts.Mode)
	}
	cat, err := item.ReadFile(input)
	if err != nil {
		return fmt.Errorf("load catalog %s: %w", input, err)
	}
	spec := pipeline.GenerateGrid(cat, opts)
	c.Logger.Debug("generated grid", "points", len(spec.Points), "mode", spec.Mode)

	if output == "" {
		return grid.WriteSpec(os.Stdout, spec, item.FormatJSON)
	}
	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("create %s: %w", output, err)
	}
	defer f.Close()
	if err := grid.WriteSpec(f, spec, item.FormatFromPath(output)); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}
	printSuccess("Generated %d grid points", len(spec.Points))
	printFile(output)
	return nil
}
