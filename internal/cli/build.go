package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/skilltree/pkg/grid"
	pkgio "github.com/matzehuels/skilltree/pkg/io"
	"github.com/matzehuels/skilltree/pkg/item"
	"github.com/matzehuels/skilltree/pkg/observability"
	"github.com/matzehuels/skilltree/pkg/pipeline"
	"github.com/matzehuels/skilltree/pkg/store"
)

// buildOpts holds the command-line flags for the build command.
type buildOpts struct {
	settings  settingsFlags
	gridPath  string
	output    string
	parallel  bool
	noCache   bool
	refresh   bool
	noHistory bool
}

// buildCommand creates the build command.
func (c *CLI) buildCommand() *cobra.Command {
	var opts buildOpts

	cmd := &cobra.Command{
		Use:   "build [catalog]",
		Short: "Build and place skill trees for a catalog",
		Long: `Build one skill tree per category of a JSON or YAML catalog and place it
on a grid.

Without --grid a radial grid sized for the catalog is generated, shaped by
the [grid] section of the settings file. Results are cached by content hash
and every run is recorded in the history.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.settings(cmd, &opts.settings)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("parallel") {
				cfg.Parallel = opts.parallel
			}
			return c.runBuild(cmd.Context(), args[0], cfg, opts)
		},
	}

	opts.settings.register(cmd)
	cmd.Flags().StringVarP(&opts.gridPath, "grid", "g", "", "grid spec file (default: generated)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: <catalog>.result.json)")
	cmd.Flags().BoolVar(&opts.parallel, "parallel", false, "build categories in parallel")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "rebuild even when a cached result exists")
	cmd.Flags().BoolVar(&opts.noHistory, "no-history", false, "do not record the run")

	return cmd
}

// runBuild loads the inputs, runs the pipeline and writes the result.
func (c *CLI) runBuild(ctx context.Context, input string, cfg *Config, opts buildOpts) error {
	cat, err := item.ReadFile(input)
	if err != nil {
		return fmt.Errorf("load catalog %s: %w", input, err)
	}
	spec, err := loadGrid(opts.gridPath, cat, cfg)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	req := pipeline.Request{Catalog: cat, Settings: cfg.Settings, Grid: spec, Refresh: opts.refresh}

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Placing %d items...", len(cat.Items)))
	restore := spinner.track(len(cat.CategoryNames()))
	spinner.Start()

	logger := loggerFromContext(ctx)
	prog := newProgress(logger)
	res, cacheHit, err := runner.Execute(ctx, req, pipeline.Options{Parallel: cfg.Parallel, Logger: logger})
	restore()
	if spinner.Cancelled() {
		spinner.Stop()
		return ctx.Err()
	}
	if err != nil {
		spinner.StopWithError("Build failed")
		return fmt.Errorf("build: %w", err)
	}
	spinner.Stop()
	prog.done("Built skill trees")

	outputPath := opts.output
	if outputPath == "" {
		outputPath = strings.TrimSuffix(input, filepath.Ext(input)) + ".result.json"
	}
	if err := pkgio.ExportResult(res, outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	placed, unplaced := res.Totals()
	printSuccess("Build complete")
	printFile(outputPath)
	printStats(len(res.Categories), placed, unplaced, cacheHit)
	printNewline()
	printResultTable(res)

	if !opts.noHistory {
		c.recordRun(ctx, runner, req, res)
	}

	printNewline()
	printNextStep("Render", fmt.Sprintf("%s render %s --category %s", appName, outputPath, firstCategory(res)))
	return nil
}

// loadGrid reads the grid file, or generates one from the config.
func loadGrid(path string, cat *item.Catalog, cfg *Config) (*grid.Spec, error) {
	if path == "" {
		return pipeline.GenerateGrid(cat, cfg.Grid), nil
	}
	spec, err := grid.ReadSpecFile(path)
	if err != nil {
		return nil, fmt.Errorf("load grid %s: %w", path, err)
	}
	return spec, nil
}

// recordRun saves the run to the history. Failures are logged, not returned:
// the result file is already written.
func (c *CLI) recordRun(ctx context.Context, runner *pipeline.Runner, req pipeline.Request, res *pipeline.Result) {
	logger := loggerFromContext(ctx)
	st, err := c.newStore(ctx)
	if err != nil {
		logger.Warn("history unavailable", "err", err)
		return
	}
	defer st.Close()

	key, err := runner.Key(req)
	if err != nil {
		logger.Warn("hash inputs", "err", err)
		return
	}
	run := store.NewRun(key, req.Settings.Seed, res)
	if err := st.Save(ctx, run); err != nil {
		logger.Warn("record run", "err", err)
		return
	}
	printDetail("Run %s", run.ID)
}

func firstCategory(res *pipeline.Result) string {
	if names := res.Names(); len(names) > 0 {
		return names[0]
	}
	return "<category>"
}

// track reports category completions on the spinner line until the
// returned func restores the previous hooks.
func (s *Spinner) track(total int) func() {
	prev := observability.Pipeline()
	observability.SetPipelineHooks(&spinnerHooks{PipelineHooks: prev, spinner: s, total: total})
	return func() { observability.SetPipelineHooks(prev) }
}
