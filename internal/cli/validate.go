package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/skilltree/pkg/grid"
	"github.com/matzehuels/skilltree/pkg/item"
)

// validateCommand creates the validate command. It checks inputs without
// building anything.
func (c *CLI) validateCommand() *cobra.Command {
	var gridPath string

	cmd := &cobra.Command{
		Use:   "validate [catalog]",
		Short: "Check a catalog, the settings file and a grid",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return fmt.Errorf("settings: %w", err)
			}
			cat, err := item.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("catalog: %w", err)
			}
			var spec *grid.Spec
			if gridPath != "" {
				if spec, err = grid.ReadSpecFile(gridPath); err != nil {
					return fmt.Errorf("grid: %w", err)
				}
			}
			printSuccess("Settings valid")
			printSuccess("Catalog valid: %d items in %d categories", len(cat.Items), len(cat.CategoryNames()))
			reportCatalog(cat, spec, cfg)
			return nil
		},
	}

	cmd.Flags().StringVarP(&gridPath, "grid", "g", "", "grid spec file to check")
	return cmd
}

// reportCatalog prints per-category tiers and, with a grid, the point
// budget of each category.
func reportCatalog(cat *item.Catalog, spec *grid.Spec, cfg *Config) {
	byCat := cat.ByCategory()
	for _, name := range cat.CategoryNames() {
		items := byCat[name]
		if len(items) == 0 {
			printWarning("%s: no items, will be skipped", name)
			continue
		}
		tiers := item.Tiers(items)
		names := make([]string, len(tiers))
		for i, t := range tiers {
			names[i] = t.String()
		}
		printKeyValue(name, fmt.Sprintf("%d items · tiers %s", len(items), strings.Join(names, ", ")))
		if tiers[len(tiers)-1] > cfg.Settings.MaxTier {
			printWarning("%s: tier %d exceeds max_tier %d", name, tiers[len(tiers)-1], cfg.Settings.MaxTier)
		}
		if spec == nil {
			continue
		}
		if points := len(spec.PointsFor(name)); points < len(items) {
			printWarning("%s: %d grid points for %d items, the grid will be densified", name, points, len(items))
		}
	}
	if spec != nil {
		printSuccess("Grid valid: %d points, threshold %.2f", len(spec.Points), spec.EffectiveThreshold())
	}
}
