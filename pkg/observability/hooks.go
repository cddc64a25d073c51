// Package observability provides optional hooks for build, cache and store
// events.
//
// Libraries emit events through the registry; the CLI, or any embedding
// program, registers implementations at startup. Nothing here depends on a
// metrics or tracing backend.
//
// # Usage
//
// Register hooks once, before any build:
//
//	observability.SetPipelineHooks(myHooks)
//
// Libraries call:
//
//	observability.Pipeline().OnCategoryStart(ctx, category, len(items))
//
// The registry is a process-wide side channel. Build results never depend on
// which hooks are installed.
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Hook interfaces
// =============================================================================

// PipelineHooks receives build events.
type PipelineHooks interface {
	OnBuildStart(ctx context.Context, categories, items int)
	OnBuildComplete(ctx context.Context, duration time.Duration, err error)

	OnCategoryStart(ctx context.Context, category string, items int)
	OnCategoryComplete(ctx context.Context, e CategoryEvent)
}

// CategoryEvent summarizes one finished category.
type CategoryEvent struct {
	Category string
	Status   string
	Placed   int
	Unplaced int
	Warnings int
	Duration time.Duration
	Err      error
}

// CacheHooks receives cache events. kind is "result" or "tree".
type CacheHooks interface {
	OnCacheHit(ctx context.Context, kind string)
	OnCacheMiss(ctx context.Context, kind string)
	OnCacheSet(ctx context.Context, kind string, size int)
}

// StoreHooks receives run-history events.
type StoreHooks interface {
	OnRunSaved(ctx context.Context, id string, duration time.Duration)
	OnStoreError(ctx context.Context, op string, err error)
}

// =============================================================================
// No-op implementations
// =============================================================================

// NoopPipelineHooks ignores every event.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnBuildStart(context.Context, int, int)                {}
func (NoopPipelineHooks) OnBuildComplete(context.Context, time.Duration, error) {}
func (NoopPipelineHooks) OnCategoryStart(context.Context, string, int)          {}
func (NoopPipelineHooks) OnCategoryComplete(context.Context, CategoryEvent)     {}

// NoopCacheHooks ignores every event.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopStoreHooks ignores every event.
type NoopStoreHooks struct{}

func (NoopStoreHooks) OnRunSaved(context.Context, string, time.Duration) {}
func (NoopStoreHooks) OnStoreError(context.Context, string, error)       {}

// =============================================================================
// Registry
// =============================================================================

var (
	hooksMu       sync.RWMutex
	pipelineHooks PipelineHooks = NoopPipelineHooks{}
	cacheHooks    CacheHooks    = NoopCacheHooks{}
	storeHooks    StoreHooks    = NoopStoreHooks{}
)

// SetPipelineHooks installs h. Nil is ignored.
func SetPipelineHooks(h PipelineHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		pipelineHooks = h
	}
}

// SetCacheHooks installs h. Nil is ignored.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetStoreHooks installs h. Nil is ignored.
func SetStoreHooks(h StoreHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		storeHooks = h
	}
}

// Pipeline returns the installed pipeline hooks.
func Pipeline() PipelineHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return pipelineHooks
}

// Cache returns the installed cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Store returns the installed store hooks.
func Store() StoreHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return storeHooks
}

// Reset restores the no-op hooks.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	pipelineHooks = NoopPipelineHooks{}
	cacheHooks = NoopCacheHooks{}
	storeHooks = NoopStoreHooks{}
}
