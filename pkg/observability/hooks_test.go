package observability

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	p := NoopPipelineHooks{}
	p.OnBuildStart(ctx, 2, 10)
	p.OnCategoryStart(ctx, "fire", 5)
	p.OnCategoryComplete(ctx, CategoryEvent{Category: "fire", Status: "placed"})
	p.OnBuildComplete(ctx, time.Second, nil)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "result")
	c.OnCacheMiss(ctx, "tree")
	c.OnCacheSet(ctx, "result", 1024)

	s := NoopStoreHooks{}
	s.OnRunSaved(ctx, "id", time.Millisecond)
	s.OnStoreError(ctx, "save", errors.New("boom"))
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()
	defer Reset()

	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Pipeline() default is not NoopPipelineHooks")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() default is not NoopCacheHooks")
	}
	if _, ok := Store().(NoopStoreHooks); !ok {
		t.Error("Store() default is not NoopStoreHooks")
	}

	rec := &recorder{}
	SetPipelineHooks(rec)
	SetCacheHooks(rec)
	if Pipeline() != rec || Cache() != rec {
		t.Error("Set*Hooks did not install the recorder")
	}

	SetPipelineHooks(nil)
	if Pipeline() != rec {
		t.Error("SetPipelineHooks(nil) replaced the hooks")
	}

	Pipeline().OnCategoryStart(context.Background(), "fire", 3)
	Cache().OnCacheHit(context.Background(), "result")
	if rec.starts != 1 || rec.hits != 1 {
		t.Errorf("recorder = %+v, want one start and one hit", rec)
	}

	Reset()
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Reset() did not restore defaults")
	}
}

func TestLogHooks(t *testing.T) {
	Reset()
	defer Reset()

	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})
	LogHooks{Logger: logger}.Install()

	ctx := context.Background()
	Pipeline().OnCategoryComplete(ctx, CategoryEvent{Category: "fire", Status: "skipped", Err: errors.New("no root")})
	Cache().OnCacheMiss(ctx, "result")
	Store().OnStoreError(ctx, "save", errors.New("timeout"))

	out := buf.String()
	for _, want := range []string{"category skipped", "no root", "cache miss", "run store failed"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

type recorder struct {
	NoopPipelineHooks
	NoopCacheHooks
	starts, hits int
}

func (r *recorder) OnCategoryStart(context.Context, string, int) { r.starts++ }
func (r *recorder) OnCacheHit(context.Context, string)           { r.hits++ }
