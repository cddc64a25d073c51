package pipeline

import (
	"context"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/skilltree/pkg/builder"
	"github.com/matzehuels/skilltree/pkg/errors"
	"github.com/matzehuels/skilltree/pkg/grid"
	"github.com/matzehuels/skilltree/pkg/item"
	"github.com/matzehuels/skilltree/pkg/layout"
	"github.com/matzehuels/skilltree/pkg/observability"
	"github.com/matzehuels/skilltree/pkg/similarity"
	"github.com/matzehuels/skilltree/pkg/tree/sanitize"
)

// Build places items on the grid described by spec. A nil spec generates a
// radial grid sized for the catalog.
func Build(ctx context.Context, items []item.Item, settings Settings, spec *grid.Spec, opts Options) (*Result, error) {
	return BuildCatalog(ctx, &item.Catalog{Items: items}, settings, spec, opts)
}

// BuildCatalog is [Build] for a full catalog. Declared categories without
// items are reported as skipped. Untagged grid points are split between the
// categories with [grid.Spec.Partition].
func BuildCatalog(ctx context.Context, cat *item.Catalog, settings Settings, spec *grid.Spec, opts Options) (*Result, error) {
	opts.setDefaults()
	settings.SetDefaults()
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if err := cat.Validate(); err != nil {
		return nil, err
	}
	byCat := cat.ByCategory()
	names := cat.CategoryNames()
	if spec == nil {
		spec = GenerateGrid(cat, grid.GenerateOptions{})
	} else if err := spec.Validate(); err != nil {
		return nil, err
	}
	var populated []string
	for _, name := range names {
		if len(byCat[name]) > 0 {
			populated = append(populated, name)
		}
	}
	spec = spec.Partition(populated)

	start := time.Now()
	hooks := observability.Pipeline()
	hooks.OnBuildStart(ctx, len(names), len(cat.Items))
	opts.Logger.Debug("build started", "categories", len(names), "items", len(cat.Items), "seed", settings.Seed)

	results := make([]*CategoryResult, len(names))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.workers())
	for i, name := range names {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = runCategory(gctx, name, byCat[name], &settings, spec, opts)
			return nil
		})
	}
	err := g.Wait()
	hooks.OnBuildComplete(ctx, time.Since(start), err)
	if err != nil {
		return nil, err
	}

	res := &Result{Categories: make(map[string]*CategoryResult, len(names))}
	for i, name := range names {
		res.Categories[name] = results[i]
	}
	placed, unplaced := res.Totals()
	opts.Logger.Info("built skill trees",
		"categories", len(names),
		"placed", placed,
		"unplaced", unplaced,
		"skipped", res.Count(StatusSkipped),
		"duration", time.Since(start))
	return res, nil
}

// GenerateGrid sizes a generated grid for the catalog's categories.
func GenerateGrid(cat *item.Catalog, opts grid.GenerateOptions) *grid.Spec {
	counts := make(map[string]int)
	for _, it := range cat.Items {
		counts[it.Category]++
	}
	return grid.Generate(cat.CategoryNames(), counts, opts)
}

func runCategory(ctx context.Context, category string, items []item.Item, s *Settings, spec *grid.Spec, opts Options) *CategoryResult {
	start := time.Now()
	hooks := observability.Pipeline()
	hooks.OnCategoryStart(ctx, category, len(items))
	logger := opts.Logger.With("category", category)

	res, err := placeCategory(category, items, s, spec, opts.Oracle, logger)
	res.Stats.Items = len(items)
	if err != nil {
		res.Status = StatusSkipped
		res.Error = err.Error()
		res.Nodes = []layout.PlacedNode{}
		res.Unplaced = itemIDs(items)
		logger.Warn("category skipped", "code", errors.GetCode(err), "err", errors.UserMessage(err))
	}

	hooks.OnCategoryComplete(ctx, observability.CategoryEvent{
		Category: category,
		Status:   string(res.Status),
		Placed:   len(res.Nodes),
		Unplaced: len(res.Unplaced),
		Warnings: len(res.Warnings),
		Duration: time.Since(start),
		Err:      err,
	})
	return res
}

// placeCategory runs build, sanitize, grid and layout for one category.
func placeCategory(category string, items []item.Item, s *Settings, spec *grid.Spec, oracle similarity.Oracle, logger *log.Logger) (*CategoryResult, error) {
	res := &CategoryResult{}
	rng := builder.CategoryRand(s.Seed, category)

	bo := s.BuilderOptions()
	bo.Oracle = oracle
	bo.Logger = logger
	t, report, err := builder.BuildCategory(category, items, bo, rng)
	if err != nil {
		return res, err
	}
	res.RootID = t.Root()
	res.Warnings = append(res.Warnings, report.Warnings...)
	res.Stats.Themes = report.Themes
	res.Stats.Rescued = report.Rescued
	res.Stats.ConvergenceEdges = report.ConvergenceEdges

	so := s.SanitizeOptions()
	so.Logger = logger
	sr := sanitize.Sanitize(t, so)
	res.Stats.Rescued += sr.Rescued
	res.Stats.Reparented = sr.Reparented
	if sr.LimitReached {
		res.Warnings = append(res.Warnings, errors.New(errors.ErrCodeIterationLimit,
			"fan-out cap %d still exceeded after %d sanitize iterations", s.MaxChildren, sr.Iterations).Error())
	}

	g := grid.Build(spec.PointsFor(category), spec.EffectiveThreshold())
	pl := layout.Layout(t, g, layout.Options{
		Settings: s.LayoutSettings(),
		Origin:   spec.Origin(category),
		Anchors:  spec.AnchorsFor(category),
		Logger:   logger,
	}, rng)

	res.Nodes = pl.Nodes
	res.Unplaced = pl.Unplaced
	res.Warnings = append(res.Warnings, pl.Warnings...)
	res.Metrics = pl.Metrics
	res.Stats.Deferred = pl.Deferred
	res.Stats.Forced = pl.Forced
	res.Stats.GridPoints = pl.GridPoints
	res.Status = StatusPlaced
	if len(pl.Unplaced) > 0 {
		res.Status = StatusPartial
	}
	logger.Debug("placed category", "status", res.Status, "nodes", len(pl.Nodes), "unplaced", len(pl.Unplaced), "forced", pl.Forced)
	return res, nil
}

func itemIDs(items []item.Item) []string {
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	slices.Sort(ids)
	return ids
}
