package cli

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/matzehuels/skilltree/pkg/errors"
	"github.com/matzehuels/skilltree/pkg/grid"
	"github.com/matzehuels/skilltree/pkg/pipeline"
)

// configFile is the settings file name looked up in the working directory.
const configFile = "skilltree.toml"

// Config is the content of a settings file:
//
//	parallel = true
//
//	[settings]
//	seed = 7
//	max_children = 4
//	theme_mode = "layered"
//
//	[settings.tier_zones]
//	expert = [60, 90]
//
//	[grid]
//	mode = "linear"
//	tier_spacing = 12
type Config struct {
	Settings pipeline.Settings   `toml:"settings"`
	Grid     grid.GenerateOptions `toml:"grid"`
	Parallel bool                 `toml:"parallel"`
}

// DefaultConfig returns the configuration used when no file is found.
func DefaultConfig() *Config {
	return &Config{Settings: pipeline.DefaultSettings()}
}

// configPaths returns the candidate settings files in search order.
func configPaths(explicit string) []string {
	if explicit != "" {
		return []string{explicit}
	}
	paths := []string{configFile}
	if dir, err := configDir(); err == nil {
		paths = append(paths, filepath.Join(dir, "config.toml"))
	}
	return paths
}

// LoadConfig reads the first settings file found, layered over
// [DefaultConfig]. It returns the path it read, or "" when no file exists.
// An explicit path must exist. Unknown keys are rejected.
func LoadConfig(explicit string) (*Config, string, error) {
	cfg := DefaultConfig()
	for _, path := range configPaths(explicit) {
		if _, err := os.Stat(path); err != nil {
			if explicit != "" {
				return nil, "", errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
			}
			continue
		}
		meta, err := toml.DecodeFile(path, cfg)
		if err != nil {
			return nil, "", errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return nil, "", errors.New(errors.ErrCodeInvalidConfig, "%s: unknown keys: %s", path, strings.Join(keys, ", "))
		}
		if err := cfg.Settings.Validate(); err != nil {
			return nil, "", err
		}
		return cfg, path, nil
	}
	return cfg, "", nil
}

// =============================================================================
// Settings Flags
// =============================================================================

// settingsFlags are the settings that can be overridden on the command line.
type settingsFlags struct {
	seed        uint64
	maxChildren int
	spread      float64
	radialBias  float64
	branchDeg   float64
	themeMode   string
}

func (f *settingsFlags) register(cmd *cobra.Command) {
	d := pipeline.DefaultSettings()
	cmd.Flags().Uint64Var(&f.seed, "seed", d.Seed, "random seed")
	cmd.Flags().IntVar(&f.maxChildren, "max-children", d.MaxChildren, "maximum children per node (1-8)")
	cmd.Flags().Float64Var(&f.spread, "spread", d.Spread, "branch spread, 0-100")
	cmd.Flags().Float64Var(&f.radialBias, "radial-bias", d.RadialBias, "outward growth bias, 0-100")
	cmd.Flags().Float64Var(&f.branchDeg, "branch-spacing", d.BranchSpacingDeg, "minimum angle between sibling branches in degrees")
	cmd.Flags().StringVar(&f.themeMode, "theme-mode", d.ThemeMode, "theme grouping on the grid: none, layered, smart")
}

// apply copies flags the user set onto s. Flags left at their default keep
// the file value.
func (f *settingsFlags) apply(cmd *cobra.Command, s *pipeline.Settings) {
	changed := cmd.Flags().Changed
	if changed("seed") {
		s.Seed = f.seed
	}
	if changed("max-children") {
		s.MaxChildren = f.maxChildren
	}
	if changed("spread") {
		s.Spread = f.spread
	}
	if changed("radial-bias") {
		s.RadialBias = f.radialBias
	}
	if changed("branch-spacing") {
		s.BranchSpacingDeg = f.branchDeg
	}
	if changed("theme-mode") {
		s.ThemeMode = f.themeMode
	}
}

// settings loads the config file and applies flag overrides.
func (c *CLI) settings(cmd *cobra.Command, flags *settingsFlags) (*Config, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	out := *cfg
	flags.apply(cmd, &out.Settings)
	if err := out.Settings.Validate(); err != nil {
		return nil, err
	}
	return &out, nil
}
