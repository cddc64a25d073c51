package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/skilltree/pkg/buildinfo"
	"github.com/matzehuels/skilltree/pkg/cache"
	"github.com/matzehuels/skilltree/pkg/grid"
	"github.com/matzehuels/skilltree/pkg/item"
)

// Runner wraps [BuildCatalog] with a result cache keyed by a content hash of
// the catalog, the effective settings and the grid.
//
// A Runner holds no build state; one Runner may serve concurrent builds.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner. A nil cache disables caching and a nil keyer
// uses [cache.DefaultKeyer].
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// Request is one build.
type Request struct {
	Catalog  *item.Catalog
	Settings Settings
	Grid     *grid.Spec

	// Refresh skips the cache lookup. The fresh result is still stored.
	Refresh bool
}

// Execute builds req, serving the result from cache when possible. The
// returned bool reports a cache hit.
func (r *Runner) Execute(ctx context.Context, req Request, opts Options) (*Result, bool, error) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
	if req.Catalog == nil {
		return nil, false, fmt.Errorf("request has no catalog")
	}
	req.Settings.SetDefaults()

	if opts.Oracle != nil {
		r.Logger.Debug("custom similarity oracle, cache bypassed")
		res, err := BuildCatalog(ctx, req.Catalog, req.Settings, req.Grid, opts)
		return res, false, err
	}

	key, err := r.Key(req)
	if err != nil {
		return nil, false, fmt.Errorf("cache key: %w", err)
	}

	if !req.Refresh {
		var cached Result
		err := cache.GetJSON(ctx, r.Cache, "result", key, &cached)
		switch {
		case err == nil:
			r.Logger.Debug("result served from cache", "key", key)
			return &cached, true, nil
		case !errors.Is(err, cache.ErrCacheMiss):
			r.Logger.Warn("cache read failed", "err", err)
		}
	}

	start := time.Now()
	res, err := BuildCatalog(ctx, req.Catalog, req.Settings, req.Grid, opts)
	if err != nil {
		return nil, false, err
	}
	if err := cache.SetJSON(ctx, r.Cache, "result", key, res, cache.TTLResult); err != nil {
		r.Logger.Warn("cache write failed", "err", err)
	}
	r.Logger.Debug("result cached", "key", key, "build", time.Since(start))
	return res, false, nil
}

// Key returns the cache key of req. Settings are hashed after defaults are
// applied, so an explicit default and an omitted field share a key.
func (r *Runner) Key(req Request) (string, error) {
	req.Settings.SetDefaults()
	in, err := cache.HashJSON(req.Catalog)
	if err != nil {
		return "", err
	}
	sh, err := cache.HashJSON(req.Settings)
	if err != nil {
		return "", err
	}
	gh, err := cache.HashJSON(req.Grid)
	if err != nil {
		return "", err
	}
	return r.Keyer.ResultKey(in, cache.ResultKeyOpts{SettingsHash: sh, GridHash: gh, Builder: buildinfo.Version}), nil
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
