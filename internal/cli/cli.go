// Package cli implements the skilltree command-line interface.
//
// # Commands
//
//   - build: build and place skill trees for a catalog
//   - tree: build the prerequisite trees only, without a grid
//   - grid: generate a grid spec sized for a catalog
//   - render: draw one category of a result as DOT, SVG or PNG
//   - validate: check a catalog, settings file and grid
//   - inspect: browse a result interactively
//   - history: list, show and delete recorded runs
//   - cache: inspect and clear the result cache
//
// # Configuration
//
// Settings come from a TOML file, found in this order: the --config flag,
// ./skilltree.toml, then $XDG_CONFIG_HOME/skilltree/config.toml. Flags
// override file values. Backends are picked by environment variables:
//
//	SKILLTREE_CACHE      file (default), memory, redis or none
//	SKILLTREE_REDIS_URL  redis://host:6379/0
//	SKILLTREE_MONGO_URI  mongodb://host:27017 (file history if unset)
//	SKILLTREE_MONGO_DB   database name (default skilltree)
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. The logger is
// carried in the command context.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/skilltree/pkg/buildinfo"
	"github.com/matzehuels/skilltree/pkg/cache"
	"github.com/matzehuels/skilltree/pkg/observability"
	"github.com/matzehuels/skilltree/pkg/pipeline"
	"github.com/matzehuels/skilltree/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "skilltree"

	envCache    = "SKILLTREE_CACHE"
	envRedisURL = "SKILLTREE_REDIS_URL"
	envMongoURI = "SKILLTREE_MONGO_URI"
	envMongoDB  = "SKILLTREE_MONGO_DB"
)

// Cache backends selectable through SKILLTREE_CACHE.
const (
	cacheFile   = "file"
	cacheMemory = "memory"
	cacheRedis  = "redis"
	cacheNone   = "none"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	config     *Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level. At debug level the log hooks are
// installed so cache, store and per-category events are reported.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
	if level <= log.DebugLevel {
		observability.LogHooks{Logger: c.Logger}.Install()
	}
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Skilltree turns item catalogs into skill trees on a grid",
		Long: `Skilltree groups catalog items into themed prerequisite trees, one per
category, and places every tree on a 2D grid of points.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "settings file (default: ./skilltree.toml)")

	root.AddCommand(c.buildCommand())
	root.AddCommand(c.treeCommand())
	root.AddCommand(c.gridCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.validateCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.historyCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the settings file once per process.
func (c *CLI) loadConfig() (*Config, error) {
	if c.config != nil {
		return c.config, nil
	}
	cfg, path, err := LoadConfig(c.configPath)
	if err != nil {
		return nil, err
	}
	if path != "" {
		c.Logger.Debug("loaded config", "path", path)
	}
	c.config = cfg
	return cfg, nil
}

// =============================================================================
// Runner and Store Factories
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	backend := cacheNone
	if !noCache {
		backend = cacheBackend()
	}
	ch, err := newCache(ctx, backend)
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("cache backend", "backend", backend)
	return pipeline.NewRunner(ch, nil, c.Logger), nil
}

// cacheBackend returns the SKILLTREE_CACHE backend, defaulting to file.
func cacheBackend() string {
	if b := strings.ToLower(strings.TrimSpace(os.Getenv(envCache))); b != "" {
		return b
	}
	return cacheFile
}

func newCache(ctx context.Context, backend string) (cache.Cache, error) {
	switch backend {
	case cacheNone:
		return cache.NewNullCache(), nil
	case cacheMemory:
		return cache.NewMemoryCache(cache.DefaultMemoryEntries)
	case cacheRedis:
		url := os.Getenv(envRedisURL)
		if url == "" {
			return nil, fmt.Errorf("%s=redis needs %s", envCache, envRedisURL)
		}
		return cache.NewRedisCache(ctx, url, cache.DefaultRedisPrefix)
	case cacheFile:
		dir, err := cacheDir()
		if err != nil {
			return cache.NewNullCache(), nil
		}
		return cache.NewFileCache(dir)
	default:
		return nil, fmt.Errorf("unknown %s %q (must be file, memory, redis or none)", envCache, backend)
	}
}

// newStore opens the run history: MongoDB when SKILLTREE_MONGO_URI is set,
// else JSON files under the config directory.
func (c *CLI) newStore(ctx context.Context) (store.Store, error) {
	if uri := os.Getenv(envMongoURI); uri != "" {
		c.Logger.Debug("history backend", "backend", "mongo")
		return store.NewMongoStore(ctx, uri, os.Getenv(envMongoDB))
	}
	dir, err := configDir()
	if err != nil {
		return nil, fmt.Errorf("get config dir: %w", err)
	}
	c.Logger.Debug("history backend", "backend", "file", "dir", dir)
	return store.NewFileStore(filepath.Join(dir, "runs"))
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/skilltree/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// configDir returns the config directory using XDG standard (~/.config/skilltree/).
func configDir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}

// =============================================================================
// Flag Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// validateFormats checks every requested format.
func validateFormats(formats []string) error {
	for _, f := range formats {
		if err := pipeline.ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}
