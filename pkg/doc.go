// Package pkg holds the skilltree libraries.
//
// # Overview
//
// Skilltree turns a flat catalog of items (id, category, tier, name, text)
// into one themed prerequisite tree per category and places each tree on a
// 2D grid of points. The packages split into four areas:
//
//  1. Model: [item], [tree], [grid]
//  2. Construction: [tokens], [similarity], [theme], [builder], [tree/sanitize]
//  3. Placement: [layout]
//  4. Plumbing: [pipeline], [cache], [store], [io], [render/nodelink],
//     [observability], [errors], [buildinfo]
//
// # Data Flow
//
//	items (JSON/YAML catalog)
//	     ↓
//	[similarity] oracle + [theme] assignment
//	     ↓
//	[builder] prerequisite tree per category
//	     ↓
//	[tree/sanitize] cycle, reachability and fan-out repair
//	     ↓
//	[grid] point graph, densified when too small
//	     ↓
//	[layout] placement + quality metrics
//	     ↓
//	[pipeline.Result] (JSON, DOT, SVG, PNG)
//
// # Quick Start
//
//	cat, _ := item.ReadFile("spells.yaml")
//	spec := pipeline.GenerateGrid(cat, grid.GenerateOptions{})
//	res, err := pipeline.BuildCatalog(ctx, cat, pipeline.DefaultSettings(), spec, pipeline.Options{})
//	if err != nil {
//	    return err
//	}
//	for _, name := range res.Names() {
//	    fmt.Println(name, res.Categories[name].Status)
//	}
//
// Categories fail independently: an empty category or one without a root
// candidate is skipped, a grid that runs out of points yields a partial
// result listing the unplaced items. Same inputs and seed give byte-identical
// results.
//
// # Caching and History
//
// [pipeline.Runner] caches results by content hash in any [cache.Cache]
// (file, in-memory LRU, Redis or none). The CLI records each run in a
// [store.Store] backed by JSON files or MongoDB.
//
// [item]: github.com/matzehuels/skilltree/pkg/item
// [tree]: github.com/matzehuels/skilltree/pkg/tree
// [grid]: github.com/matzehuels/skilltree/pkg/grid
// [tokens]: github.com/matzehuels/skilltree/pkg/tokens
// [similarity]: github.com/matzehuels/skilltree/pkg/similarity
// [theme]: github.com/matzehuels/skilltree/pkg/theme
// [builder]: github.com/matzehuels/skilltree/pkg/builder
// [tree/sanitize]: github.com/matzehuels/skilltree/pkg/tree/sanitize
// [layout]: github.com/matzehuels/skilltree/pkg/layout
// [pipeline]: github.com/matzehuels/skilltree/pkg/pipeline
// [pipeline.Result]: github.com/matzehuels/skilltree/pkg/pipeline#Result
// [pipeline.Runner]: github.com/matzehuels/skilltree/pkg/pipeline#Runner
// [cache]: github.com/matzehuels/skilltree/pkg/cache
// [cache.Cache]: github.com/matzehuels/skilltree/pkg/cache#Cache
// [store]: github.com/matzehuels/skilltree/pkg/store
// [store.Store]: github.com/matzehuels/skilltree/pkg/store#Store
// [io]: github.com/matzehuels/skilltree/pkg/io
// [render/nodelink]: github.com/matzehuels/skilltree/pkg/render/nodelink
// [observability]: github.com/matzehuels/skilltree/pkg/observability
// [errors]: github.com/matzehuels/skilltree/pkg/errors
// [buildinfo]: github.com/matzehuels/skilltree/pkg/buildinfo
package pkg
