package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks reports every event to a logger at debug level, and failures at
// warn level.
type LogHooks struct {
	Logger *log.Logger
}

// Install registers l for pipeline, cache and store events.
func (l LogHooks) Install() {
	SetPipelineHooks(l)
	SetCacheHooks(l)
	SetStoreHooks(l)
}

func (l LogHooks) OnBuildStart(_ context.Context, categories, items int) {
	l.Logger.Debug("build started", "categories", categories, "items", items)
}

func (l LogHooks) OnBuildComplete(_ context.Context, d time.Duration, err error) {
	if err != nil {
		l.Logger.Warn("build failed", "duration", d, "err", err)
		return
	}
	l.Logger.Debug("build finished", "duration", d)
}

func (l LogHooks) OnCategoryStart(_ context.Context, category string, items int) {
	l.Logger.Debug("category started", "category", category, "items", items)
}

func (l LogHooks) OnCategoryComplete(_ context.Context, e CategoryEvent) {
	kv := []any{"category", e.Category, "status", e.Status, "placed", e.Placed, "unplaced", e.Unplaced, "duration", e.Duration}
	if e.Err != nil {
		l.Logger.Warn("category skipped", append(kv, "err", e.Err)...)
		return
	}
	l.Logger.Debug("category finished", kv...)
}

func (l LogHooks) OnCacheHit(_ context.Context, kind string)  { l.Logger.Debug("cache hit", "kind", kind) }
func (l LogHooks) OnCacheMiss(_ context.Context, kind string) { l.Logger.Debug("cache miss", "kind", kind) }

func (l LogHooks) OnCacheSet(_ context.Context, kind string, size int) {
	l.Logger.Debug("cache set", "kind", kind, "bytes", size)
}

func (l LogHooks) OnRunSaved(_ context.Context, id string, d time.Duration) {
	l.Logger.Debug("run saved", "id", id, "duration", d)
}

func (l LogHooks) OnStoreError(_ context.Context, op string, err error) {
	l.Logger.Warn("run store failed", "op", op, "err", err)
}
