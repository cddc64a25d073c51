// Package pipeline runs the full skill-tree build: theme discovery, tree
// construction, sanitization and grid layout, for every category of a
// catalog.
//
// # Stages
//
// Each category goes through the same stages, in order:
//
//  1. Build: [builder.BuildCategory] derives the prerequisite tree.
//  2. Sanitize: [sanitize.Sanitize] rescues orphans and caps fan-out.
//  3. Grid: a [grid.Graph] is built from the points the category may use.
//  4. Layout: [layout.Layout] places every node.
//
// Categories are independent. Each one draws from its own generator seeded
// by (seed, category), so results are identical whether categories run in
// parallel or not.
//
// # Usage
//
// One-shot build:
//
//	res, err := pipeline.Build(ctx, items, pipeline.DefaultSettings(), spec, pipeline.Options{})
//
// Cached build, as the CLI does it:
//
//	runner := pipeline.NewRunner(fileCache, nil, logger)
//	res, hit, err := runner.Execute(ctx, pipeline.Request{Catalog: cat, Settings: s, Grid: spec}, opts)
//
// # Failure Policy
//
// Invalid catalogs, settings or grids reject the whole build before any work
// with INVALID_INPUT or INVALID_CONFIG. Everything after that is isolated per
// category: an empty category or one without a root candidate is skipped, a
// category whose grid ran out is returned partially placed. Every category
// result lists its unplaced items, so placed plus unplaced always equals the
// category's item count.
package pipeline

import (
	"io"
	"runtime"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/skilltree/pkg/similarity"
)

// Options are runtime options that do not change results.
type Options struct {
	// Parallel builds categories concurrently, up to GOMAXPROCS at a time.
	Parallel bool

	// Oracle overrides the per-category TF-IDF similarity. It must be safe
	// for concurrent use when Parallel is set. Builds with a custom oracle
	// are never cached.
	Oracle similarity.Oracle

	Logger *log.Logger
}

func (o *Options) setDefaults() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

func (o *Options) workers() int {
	if o.Parallel {
		return runtime.GOMAXPROCS(0)
	}
	return 1
}
